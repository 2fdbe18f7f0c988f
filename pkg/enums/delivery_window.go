package enums

import "fmt"

// DeliveryWindow is one of the fixed labeled time windows a shopper may pick
// for a delivery slot.
type DeliveryWindow string

const (
	DeliveryWindowEarlyMorning DeliveryWindow = "7 AM - 10 AM"
	DeliveryWindowMorning      DeliveryWindow = "10 AM - 1 PM"
	DeliveryWindowAfternoon    DeliveryWindow = "1 PM - 4 PM"
	DeliveryWindowEvening      DeliveryWindow = "4 PM - 7 PM"
	DeliveryWindowNight        DeliveryWindow = "7 PM - 10 PM"
)

var validDeliveryWindows = []DeliveryWindow{
	DeliveryWindowEarlyMorning,
	DeliveryWindowMorning,
	DeliveryWindowAfternoon,
	DeliveryWindowEvening,
	DeliveryWindowNight,
}

// String implements fmt.Stringer.
func (d DeliveryWindow) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryWindow.
func (d DeliveryWindow) IsValid() bool {
	for _, candidate := range validDeliveryWindows {
		if candidate == d {
			return true
		}
	}
	return false
}

// DeliveryWindows returns the full fixed set, in display order.
func DeliveryWindows() []DeliveryWindow {
	out := make([]DeliveryWindow, len(validDeliveryWindows))
	copy(out, validDeliveryWindows)
	return out
}

// ParseDeliveryWindow converts raw input into a DeliveryWindow.
func ParseDeliveryWindow(value string) (DeliveryWindow, error) {
	for _, candidate := range validDeliveryWindows {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery window %q", value)
}
