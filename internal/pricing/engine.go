package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/rahulmenon/freshkart-backend/pkg/errors"
)

// Pricing thresholds in major currency units.
var (
	MinOrderValue         = decimal.NewFromInt(100)
	FreeDeliveryThreshold = decimal.NewFromInt(200)
	DeliveryFee           = decimal.NewFromInt(40)
)

// CashbackRate is the fraction of the order total credited to the wallet when
// an order is delivered.
var CashbackRate = decimal.RequireFromString("0.10")

// CouponRule computes the discount for a subtotal. Percent discounts round to
// the nearest whole currency unit.
type CouponRule struct {
	Code        string
	Percent     int64
	Description string
}

func (r CouponRule) discountFor(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(decimal.NewFromInt(r.Percent)).Div(decimal.NewFromInt(100)).Round(0)
}

// couponTable is fixed; codes match case-insensitively.
var couponTable = map[string]CouponRule{
	"FRESH20":   {Code: "FRESH20", Percent: 20, Description: "20% off your order"},
	"WELCOME10": {Code: "WELCOME10", Percent: 10, Description: "10% off for new shoppers"},
	"VEGGIE5":   {Code: "VEGGIE5", Percent: 5, Description: "5% off seasonal produce"},
}

// LookupCoupon resolves a code against the fixed table.
func LookupCoupon(code string) (CouponRule, bool) {
	rule, ok := couponTable[strings.ToUpper(strings.TrimSpace(code))]
	return rule, ok
}

// QuoteInput is the cart snapshot the engine prices.
type QuoteInput struct {
	Subtotal      decimal.Decimal
	CouponCode    string
	RedeemWallet  bool
	WalletBalance decimal.Decimal
}

// Quote is the priced breakdown forwarded to the gateway. All fields are
// non-negative for any valid input.
type Quote struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DeliveryCharge decimal.Decimal `json:"deliveryCharge"`
	Discount       decimal.Decimal `json:"discount"`
	WalletUsed     decimal.Decimal `json:"walletUsed"`
	FinalTotal     decimal.Decimal `json:"finalTotal"`
	CouponCode     string          `json:"couponCode,omitempty"`
}

// Price applies the delivery, coupon, and wallet rules to a cart snapshot.
//
// A subtotal below the order minimum blocks checkout outright. An unknown
// coupon code clears any previous discount and fails so the caller never
// proceeds with a stale discount.
func Price(input QuoteInput) (*Quote, error) {
	if input.Subtotal.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subtotal cannot be negative")
	}
	if input.Subtotal.LessThan(MinOrderValue) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order subtotal is below the minimum").
			WithDetails(map[string]any{
				"subtotal":        input.Subtotal,
				"min_order_value": MinOrderValue,
			})
	}

	deliveryCharge := DeliveryFee
	if input.Subtotal.GreaterThanOrEqual(FreeDeliveryThreshold) {
		deliveryCharge = decimal.Zero
	}

	discount := decimal.Zero
	appliedCode := ""
	if trimmed := strings.TrimSpace(input.CouponCode); trimmed != "" {
		rule, ok := LookupCoupon(trimmed)
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is not valid").
				WithDetails(map[string]any{"coupon_code": trimmed})
		}
		discount = rule.discountFor(input.Subtotal)
		appliedCode = rule.Code
	}

	payableBeforeWallet := input.Subtotal.Add(deliveryCharge).Sub(discount)
	if payableBeforeWallet.IsNegative() {
		payableBeforeWallet = decimal.Zero
	}

	walletUsed := decimal.Zero
	if input.RedeemWallet && input.WalletBalance.IsPositive() {
		walletUsed = decimal.Min(input.WalletBalance, payableBeforeWallet)
	}

	finalTotal := payableBeforeWallet.Sub(walletUsed)
	if finalTotal.IsNegative() {
		finalTotal = decimal.Zero
	}

	return &Quote{
		Subtotal:       input.Subtotal,
		DeliveryCharge: deliveryCharge,
		Discount:       discount,
		WalletUsed:     walletUsed,
		FinalTotal:     finalTotal,
		CouponCode:     appliedCode,
	}, nil
}

// Cashback returns the loyalty credit for a delivered order, rounded to two
// decimal places.
func Cashback(orderTotal decimal.Decimal) decimal.Decimal {
	if orderTotal.IsNegative() {
		return decimal.Zero
	}
	return orderTotal.Mul(CashbackRate).Round(2)
}
