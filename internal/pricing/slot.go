package pricing

import (
	"time"

	"github.com/rahulmenon/freshkart-backend/pkg/enums"
	pkgerrors "github.com/rahulmenon/freshkart-backend/pkg/errors"
)

// SlotDateLayout is the wire format for delivery slot dates.
const SlotDateLayout = "2006-01-02"

// slotDays is how many calendar days, starting tomorrow, a slot may target.
const slotDays = 3

// Slot is a chosen delivery date and time window. Checkout is blocked until
// both parts are selected.
type Slot struct {
	Date   string `json:"date"`
	Window string `json:"window"`
}

// AvailableDates returns the selectable slot dates relative to now.
func AvailableDates(now time.Time) []string {
	dates := make([]string, 0, slotDays)
	for i := 1; i <= slotDays; i++ {
		dates = append(dates, now.AddDate(0, 0, i).Format(SlotDateLayout))
	}
	return dates
}

// ValidateSlot checks the slot against the selectable dates and the fixed
// window labels.
func ValidateSlot(slot Slot, now time.Time) error {
	if slot.Date == "" || slot.Window == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery date and time window are required")
	}

	if _, err := time.Parse(SlotDateLayout, slot.Date); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery date must be formatted YYYY-MM-DD")
	}

	valid := false
	for _, date := range AvailableDates(now) {
		if date == slot.Date {
			valid = true
			break
		}
	}
	if !valid {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery date is outside the bookable window").
			WithDetails(map[string]any{"available_dates": AvailableDates(now)})
	}

	if !enums.DeliveryWindow(slot.Window).IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery time window is not offered").
			WithDetails(map[string]any{"available_windows": enums.DeliveryWindows()})
	}

	return nil
}
