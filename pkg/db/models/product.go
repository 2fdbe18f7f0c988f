package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rahulmenon/freshkart-backend/pkg/enums"
)

// SaleUnit is one purchasable quantity label with its own price, e.g.
// {"500g", 24.00} on a product whose base unit is kg.
type SaleUnit struct {
	Label string          `json:"label"`
	Price decimal.Decimal `json:"price"`
}

// SaleUnitList is the per-product label-to-price table, stored as jsonb.
type SaleUnitList []SaleUnit

// Value implements driver.Valuer for jsonb storage.
func (l SaleUnitList) Value() (driver.Value, error) {
	if l == nil {
		l = SaleUnitList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *SaleUnitList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = SaleUnitList{}
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported sale unit source %T", src)
	}
}

// Product represents a storefront catalog listing. Prices are stored in
// major currency units with two-decimal precision.
type Product struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name           string            `gorm:"column:name;not null" json:"name"`
	Description    *string           `gorm:"column:description" json:"description,omitempty"`
	Category       string            `gorm:"column:category;not null" json:"category"`
	Unit           enums.ProductUnit `gorm:"column:unit;type:product_unit;not null" json:"unit"`
	SaleUnits      SaleUnitList      `gorm:"column:sale_units;type:jsonb;not null;default:'[]'" json:"saleUnits"`
	Price          decimal.Decimal   `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	CompareAtPrice *decimal.Decimal  `gorm:"column:compare_at_price;type:numeric(12,2)" json:"compareAtPrice,omitempty"`
	ImageURL       *string           `gorm:"column:image_url" json:"imageUrl,omitempty"`
	IsActive       bool              `gorm:"column:is_active;not null;default:true" json:"isActive"`
	StockQty       int               `gorm:"column:stock_qty;not null;default:0" json:"stockQty"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// InStock reports whether the product can currently be added to a cart.
func (p Product) InStock() bool {
	return p.IsActive && p.StockQty > 0
}

// UnitPriceFor resolves a shopper-facing quantity label ("500g", "2pc") to
// its price. Labels outside the sale-unit table are not purchasable, except
// the base unit itself, which sells at the listed price.
func (p Product) UnitPriceFor(label string) (decimal.Decimal, bool) {
	for _, unit := range p.SaleUnits {
		if unit.Label == label {
			return unit.Price, true
		}
	}
	if label == p.Unit.String() {
		return p.Price, true
	}
	return decimal.Decimal{}, false
}
