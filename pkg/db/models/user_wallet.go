package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserWallet holds the spendable balance for one user. All mutations happen
// through wallet entries under a row lock so the balance never goes negative.
type UserWallet struct {
	UserID    uuid.UUID       `gorm:"column:user_id;type:uuid;primaryKey" json:"userId"`
	Balance   decimal.Decimal `gorm:"column:balance;type:numeric(12,2);not null;default:0" json:"balance"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
