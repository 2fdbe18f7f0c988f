package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rahulmenon/freshkart-backend/pkg/enums"
	"github.com/rahulmenon/freshkart-backend/pkg/types"
)

// Order is the immutable record produced at checkout. The pricing breakdown
// is captured at placement time and never recomputed afterwards.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index" json:"-"`
	Status          enums.OrderStatus   `gorm:"column:status;type:order_status;not null;default:'processing'" json:"status"`
	Subtotal        decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null" json:"subtotal"`
	CouponCode      *string             `gorm:"column:coupon_code" json:"couponCode,omitempty"`
	CouponDiscount  decimal.Decimal     `gorm:"column:coupon_discount;type:numeric(12,2);not null;default:0" json:"couponDiscount"`
	DeliveryFee     decimal.Decimal     `gorm:"column:delivery_fee;type:numeric(12,2);not null;default:0" json:"deliveryFee"`
	WalletApplied   decimal.Decimal     `gorm:"column:wallet_applied;type:numeric(12,2);not null;default:0" json:"walletApplied"`
	Total           decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null" json:"total"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:payment_method;not null" json:"paymentMethod"`
	TrackingID      string              `gorm:"column:tracking_id;not null;uniqueIndex" json:"trackingId"`
	GatewayOrderID  *string             `gorm:"column:gateway_order_id" json:"gatewayOrderId,omitempty"`
	PaymentID       *string             `gorm:"column:payment_id" json:"paymentId,omitempty"`
	Address         types.Address       `gorm:"column:address;type:jsonb;serializer:json;not null" json:"address"`
	DeliveryDate    string              `gorm:"column:delivery_date;not null" json:"deliveryDate"`
	DeliveryWindow  string              `gorm:"column:delivery_window;not null" json:"deliveryWindow"`
	CashbackGranted bool                `gorm:"column:cashback_granted;not null;default:false" json:"cashbackGranted"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
	DeliveredAt     *time.Time          `gorm:"column:delivered_at" json:"deliveredAt,omitempty"`
	CancelledAt     *time.Time          `gorm:"column:cancelled_at" json:"cancelledAt,omitempty"`
}
