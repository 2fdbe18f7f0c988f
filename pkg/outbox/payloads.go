package outbox

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rahulmenon/freshkart-backend/pkg/enums"
)

// OrderCreatedPayload is emitted when checkout confirms an order.
type OrderCreatedPayload struct {
	OrderID       uuid.UUID           `json:"orderId"`
	UserID        uuid.UUID           `json:"userId"`
	Total         decimal.Decimal     `json:"total"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod"`
	ItemCount     int                 `json:"itemCount"`
}

// OrderStatusChangedPayload is emitted on every lifecycle transition.
type OrderStatusChangedPayload struct {
	OrderID    uuid.UUID         `json:"orderId"`
	UserID     uuid.UUID         `json:"userId"`
	FromStatus enums.OrderStatus `json:"fromStatus"`
	ToStatus   enums.OrderStatus `json:"toStatus"`
}

// OrderCancelledPayload is emitted when a cancellable order is cancelled.
type OrderCancelledPayload struct {
	OrderID        uuid.UUID       `json:"orderId"`
	UserID         uuid.UUID       `json:"userId"`
	RefundedAmount decimal.Decimal `json:"refundedAmount"`
}

// WalletCreditedPayload is emitted when the wallet receives a credit.
type WalletCreditedPayload struct {
	UserID    uuid.UUID             `json:"userId"`
	OrderID   *uuid.UUID            `json:"orderId,omitempty"`
	EntryType enums.WalletEntryType `json:"entryType"`
	Amount    decimal.Decimal       `json:"amount"`
	Balance   decimal.Decimal       `json:"balance"`
}
