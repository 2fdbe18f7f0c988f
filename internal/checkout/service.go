package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rahulmenon/freshkart-backend/internal/cart"
	"github.com/rahulmenon/freshkart-backend/internal/orders"
	"github.com/rahulmenon/freshkart-backend/internal/pricing"
	"github.com/rahulmenon/freshkart-backend/pkg/db/models"
	"github.com/rahulmenon/freshkart-backend/pkg/enums"
	pkgerrors "github.com/rahulmenon/freshkart-backend/pkg/errors"
	"github.com/rahulmenon/freshkart-backend/pkg/logger"
	"github.com/rahulmenon/freshkart-backend/pkg/metrics"
	"github.com/rahulmenon/freshkart-backend/pkg/outbox"
	"github.com/rahulmenon/freshkart-backend/pkg/razorpay"
	"github.com/rahulmenon/freshkart-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartStore interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*cart.View, error)
	ClearTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type walletStore interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	DebitTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, orderID uuid.UUID, amount decimal.Decimal) (*models.UserWallet, error)
}

type paymentGateway interface {
	CreateOrder(ctx context.Context, params razorpay.OrderCreateParams) (*razorpay.GatewayOrder, error)
	FetchOrder(ctx context.Context, gatewayOrderID string) (*razorpay.GatewayOrder, error)
	VerifyPaymentSignature(ctx context.Context, gatewayOrderID, paymentID, signature string) error
	Currency() string
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// QuoteRequest carries the adjustable pricing knobs.
type QuoteRequest struct {
	CouponCode   string
	RedeemWallet bool
}

// PlaceOrderInput is a full checkout submission.
type PlaceOrderInput struct {
	CouponCode    string
	RedeemWallet  bool
	Address       types.Address
	Slot          pricing.Slot
	PaymentMethod enums.PaymentMethod
}

// ConfirmPaymentInput completes a gateway-backed checkout after the shopper
// has paid client-side.
type ConfirmPaymentInput struct {
	PlaceOrderInput
	GatewayOrderID string
	PaymentID      string
	Signature      string
}

// PaymentIntent is handed to the client to drive the gateway widget.
type PaymentIntent struct {
	GatewayOrderID string         `json:"gatewayOrderId"`
	AmountMinor    int64          `json:"amountMinor"`
	Currency       string         `json:"currency"`
	Quote          *pricing.Quote `json:"quote"`
}

// PlacementResult is either a created order (COD or fully wallet-covered) or
// a payment intent awaiting confirmation.
type PlacementResult struct {
	Order   *models.Order  `json:"order,omitempty"`
	Payment *PaymentIntent `json:"payment,omitempty"`
}

// Service orchestrates pricing, payment, and order creation.
type Service interface {
	Quote(ctx context.Context, userID uuid.UUID, req QuoteRequest) (*pricing.Quote, error)
	PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*PlacementResult, error)
	ConfirmPayment(ctx context.Context, userID uuid.UUID, input ConfirmPaymentInput) (*models.Order, error)
}

type service struct {
	cart    cartStore
	wallets walletStore
	orders  orders.OrderRepository
	tx      txRunner
	gateway paymentGateway
	events  eventEmitter
	metrics *metrics.CheckoutMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds the checkout service.
func NewService(
	cartSvc cartStore,
	wallets walletStore,
	orderRepo orders.OrderRepository,
	tx txRunner,
	gateway paymentGateway,
	events eventEmitter,
	checkoutMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
) (Service, error) {
	if cartSvc == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if wallets == nil {
		return nil, fmt.Errorf("wallet store required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	return &service{
		cart:    cartSvc,
		wallets: wallets,
		orders:  orderRepo,
		tx:      tx,
		gateway: gateway,
		events:  events,
		metrics: checkoutMetrics,
		logg:    logg,
		now:     time.Now,
	}, nil
}

// Quote prices the current cart without side effects.
func (s *service) Quote(ctx context.Context, userID uuid.UUID, req QuoteRequest) (*pricing.Quote, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	view, err := s.cart.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(view.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	balance, err := s.wallets.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	return pricing.Price(pricing.QuoteInput{
		Subtotal:      view.Subtotal,
		CouponCode:    req.CouponCode,
		RedeemWallet:  req.RedeemWallet,
		WalletBalance: balance,
	})
}

// PlaceOrder validates the submission and either creates the order outright
// (COD, or a total fully covered by wallet points) or registers a gateway
// order and returns a payment intent. Online orders are only persisted after
// ConfirmPayment verifies the signature.
func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*PlacementResult, error) {
	started := s.now()

	quote, view, err := s.validateSubmission(ctx, userID, input)
	if err != nil {
		s.metrics.IncFailed("validation")
		return nil, err
	}

	if !input.PaymentMethod.RequiresGateway() || quote.FinalTotal.IsZero() {
		order, err := s.createOrder(ctx, userID, input, quote, view, nil, nil)
		if err != nil {
			s.metrics.IncFailed("persistence")
			return nil, err
		}
		s.metrics.IncPlaced(input.PaymentMethod.String())
		s.metrics.ObserveDuration("place_order", s.now().Sub(started))
		return &PlacementResult{Order: order}, nil
	}

	gatewayOrder, err := s.gateway.CreateOrder(ctx, razorpay.OrderCreateParams{
		AmountMinor: toMinorUnits(quote.FinalTotal),
		Receipt:     uuid.NewString(),
		Notes:       map[string]any{"user_id": userID.String()},
	})
	if err != nil {
		s.metrics.IncFailed("gateway")
		return nil, err
	}

	s.metrics.ObserveDuration("place_order", s.now().Sub(started))
	return &PlacementResult{
		Payment: &PaymentIntent{
			GatewayOrderID: gatewayOrder.ID,
			AmountMinor:    gatewayOrder.AmountMinor,
			Currency:       s.gateway.Currency(),
			Quote:          quote,
		},
	}, nil
}

// ConfirmPayment verifies the gateway signature, re-prices the cart, and
// creates the order only when the re-priced total still matches the amount
// the gateway order was authorized for. A failed verification or a cart that
// changed since payment creates nothing and debits nothing.
func (s *service) ConfirmPayment(ctx context.Context, userID uuid.UUID, input ConfirmPaymentInput) (*models.Order, error) {
	started := s.now()

	if !input.PaymentMethod.RequiresGateway() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment confirmation only applies to online payments")
	}

	if err := s.gateway.VerifyPaymentSignature(ctx, input.GatewayOrderID, input.PaymentID, input.Signature); err != nil {
		s.metrics.IncFailed("signature")
		return nil, err
	}

	quote, view, err := s.validateSubmission(ctx, userID, input.PlaceOrderInput)
	if err != nil {
		s.metrics.IncFailed("validation")
		return nil, err
	}

	gatewayOrder, err := s.gateway.FetchOrder(ctx, input.GatewayOrderID)
	if err != nil {
		s.metrics.IncFailed("gateway")
		return nil, err
	}
	if payable := toMinorUnits(quote.FinalTotal); gatewayOrder.AmountMinor != payable {
		s.metrics.IncFailed("amount_mismatch")
		return nil, pkgerrors.New(pkgerrors.CodePaymentFailed, "paid amount no longer matches the payable total").
			WithDetails(map[string]any{
				"authorized_minor": gatewayOrder.AmountMinor,
				"payable_minor":    payable,
			})
	}

	order, err := s.createOrder(ctx, userID, input.PlaceOrderInput, quote, view, &input.GatewayOrderID, &input.PaymentID)
	if err != nil {
		s.metrics.IncFailed("persistence")
		return nil, err
	}

	s.metrics.IncPlaced(input.PaymentMethod.String())
	s.metrics.ObserveDuration("confirm_payment", s.now().Sub(started))
	return order, nil
}

func (s *service) validateSubmission(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*pricing.Quote, *cart.View, error) {
	if userID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
	if err := input.Address.Validate(); err != nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if err := pricing.ValidateSlot(input.Slot, s.now()); err != nil {
		return nil, nil, err
	}

	view, err := s.cart.GetCart(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if len(view.Lines) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	balance, err := s.wallets.GetBalance(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	quote, err := pricing.Price(pricing.QuoteInput{
		Subtotal:      view.Subtotal,
		CouponCode:    input.CouponCode,
		RedeemWallet:  input.RedeemWallet,
		WalletBalance: balance,
	})
	if err != nil {
		return nil, nil, err
	}
	return quote, view, nil
}

// newTrackingID mints the shopper-facing fulfillment reference.
func newTrackingID() string {
	return "FK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

// createOrder freezes the cart into an immutable order. Order insert, wallet
// debit, outbox event, and cart clearing commit or roll back as one unit.
func (s *service) createOrder(
	ctx context.Context,
	userID uuid.UUID,
	input PlaceOrderInput,
	quote *pricing.Quote,
	view *cart.View,
	gatewayOrderID, paymentID *string,
) (*models.Order, error) {
	order := &models.Order{
		ID:             uuid.New(),
		UserID:         userID,
		Status:         enums.OrderStatusProcessing,
		Subtotal:       quote.Subtotal,
		CouponDiscount: quote.Discount,
		DeliveryFee:    quote.DeliveryCharge,
		WalletApplied:  quote.WalletUsed,
		Total:          quote.FinalTotal,
		PaymentMethod:  input.PaymentMethod,
		TrackingID:     newTrackingID(),
		GatewayOrderID: gatewayOrderID,
		PaymentID:      paymentID,
		Address:        input.Address,
		DeliveryDate:   input.Slot.Date,
		DeliveryWindow: input.Slot.Window,
	}
	if quote.CouponCode != "" {
		code := quote.CouponCode
		order.CouponCode = &code
	}

	order.Items = make([]models.OrderItem, 0, len(view.Lines))
	for _, line := range view.Lines {
		order.Items = append(order.Items, models.OrderItem{
			OrderID:      order.ID,
			ProductID:    line.ProductID,
			ProductName:  line.ProductName,
			SelectedUnit: line.SelectedUnit,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			LineSubtotal: line.LineSubtotal(),
		})
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		if quote.WalletUsed.IsPositive() {
			if _, err := s.wallets.DebitTx(ctx, tx, userID, order.ID, quote.WalletUsed); err != nil {
				return err
			}
		}

		if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: userID},
			Data: outbox.OrderCreatedPayload{
				OrderID:       order.ID,
				UserID:        userID,
				Total:         order.Total,
				PaymentMethod: order.PaymentMethod,
				ItemCount:     len(order.Items),
			},
		}); err != nil {
			return err
		}

		return s.cart.ClearTx(ctx, tx, userID)
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "order placed")
	}
	return order, nil
}

func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
