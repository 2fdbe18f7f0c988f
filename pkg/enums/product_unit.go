package enums

import "fmt"

// ProductUnit is the catalog base unit a product is sold in. The unit label a
// shopper selects in the cart (e.g. "500g", "2pc") is a separate free-form
// value resolved against this base unit.
type ProductUnit string

const (
	ProductUnitKg    ProductUnit = "kg"
	ProductUnitPiece ProductUnit = "pc"
	ProductUnitBunch ProductUnit = "bunch"
)

var validProductUnits = []ProductUnit{
	ProductUnitKg,
	ProductUnitPiece,
	ProductUnitBunch,
}

// String implements fmt.Stringer.
func (p ProductUnit) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductUnit.
func (p ProductUnit) IsValid() bool {
	for _, candidate := range validProductUnits {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductUnit converts raw input into a ProductUnit.
func ParseProductUnit(value string) (ProductUnit, error) {
	for _, candidate := range validProductUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product unit %q", value)
}
