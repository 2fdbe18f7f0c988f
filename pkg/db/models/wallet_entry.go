package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rahulmenon/freshkart-backend/pkg/enums"
)

// WalletEntry is the append-only ledger behind the wallet balance. The
// (order, type) unique index makes per-order credits such as delivery
// cashback idempotent at the storage layer.
type WalletEntry struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index" json:"-"`
	OrderID   *uuid.UUID            `gorm:"column:order_id;type:uuid;uniqueIndex:ux_wallet_entries_order_type" json:"orderId,omitempty"`
	Type      enums.WalletEntryType `gorm:"column:type;type:wallet_entry_type;not null;uniqueIndex:ux_wallet_entries_order_type" json:"type"`
	Amount    decimal.Decimal       `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Note      *string               `gorm:"column:note" json:"note,omitempty"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
