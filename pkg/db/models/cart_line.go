package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one user-facing cart entry. Line identity is the
// (user, product, selected unit label) triple, enforced by a unique index so
// a product added twice under the same label merges into one row while
// "500g" and "1kg" of the same product stay separate lines.
type CartLine struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_cart_lines_identity" json:"-"`
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_cart_lines_identity" json:"productId"`
	SelectedUnit string          `gorm:"column:selected_unit;type:text;not null;uniqueIndex:ux_cart_lines_identity" json:"selectedUnit"`
	Quantity     int             `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unitPrice"`
	ProductName  string          `gorm:"column:product_name;not null" json:"productName"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// LineSubtotal is the frozen unit price times quantity.
func (l CartLine) LineSubtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
