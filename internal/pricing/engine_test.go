package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rahulmenon/freshkart-backend/pkg/enums"
	pkgerrors "github.com/rahulmenon/freshkart-backend/pkg/errors"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func mustPrice(t *testing.T, input QuoteInput) *Quote {
	t.Helper()
	quote, err := Price(input)
	if err != nil {
		t.Fatalf("unexpected pricing error: %v", err)
	}
	return quote
}

func TestMinimumOrderBoundary(t *testing.T) {
	t.Parallel()

	_, err := Price(QuoteInput{Subtotal: dec("99")})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("subtotal 99 must be blocked, got %v", err)
	}

	quote := mustPrice(t, QuoteInput{Subtotal: dec("100")})
	if !quote.FinalTotal.Equal(dec("140")) {
		t.Fatalf("subtotal 100 should total 140 with delivery, got %s", quote.FinalTotal)
	}
}

func TestDeliveryFeeBoundary(t *testing.T) {
	t.Parallel()

	quote := mustPrice(t, QuoteInput{Subtotal: dec("199")})
	if !quote.DeliveryCharge.Equal(dec("40")) {
		t.Fatalf("subtotal 199 should pay delivery 40, got %s", quote.DeliveryCharge)
	}

	quote = mustPrice(t, QuoteInput{Subtotal: dec("200")})
	if !quote.DeliveryCharge.IsZero() {
		t.Fatalf("subtotal 200 should ship free, got %s", quote.DeliveryCharge)
	}
}

func TestCouponFresh20(t *testing.T) {
	t.Parallel()

	quote := mustPrice(t, QuoteInput{Subtotal: dec("1000"), CouponCode: "FRESH20"})
	if !quote.Discount.Equal(dec("200")) {
		t.Fatalf("FRESH20 on 1000 should discount 200, got %s", quote.Discount)
	}
	if quote.CouponCode != "FRESH20" {
		t.Fatalf("expected canonical coupon code, got %q", quote.CouponCode)
	}
}

func TestCouponIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	quote := mustPrice(t, QuoteInput{Subtotal: dec("1000"), CouponCode: " fresh20 "})
	if !quote.Discount.Equal(dec("200")) {
		t.Fatalf("lowercase coupon should match, got discount %s", quote.Discount)
	}
}

func TestUnknownCouponFailsLoudly(t *testing.T) {
	t.Parallel()

	_, err := Price(QuoteInput{Subtotal: dec("1000"), CouponCode: "BOGUS"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unknown coupon must fail, got %v", err)
	}
}

func TestCouponDiscountRoundsToWholeUnit(t *testing.T) {
	t.Parallel()

	// 20% of 101 is 20.2, rounded to 20.
	quote := mustPrice(t, QuoteInput{Subtotal: dec("101"), CouponCode: "FRESH20"})
	if !quote.Discount.Equal(dec("20")) {
		t.Fatalf("expected rounded discount 20, got %s", quote.Discount)
	}
}

func TestWalletRedemptionIsCapped(t *testing.T) {
	t.Parallel()

	// Payable is 240; balance 500 must only draw 240.
	quote := mustPrice(t, QuoteInput{
		Subtotal:      dec("240"),
		RedeemWallet:  true,
		WalletBalance: dec("500"),
	})
	if !quote.WalletUsed.Equal(dec("240")) {
		t.Fatalf("wallet should cover exactly the payable, got %s", quote.WalletUsed)
	}
	if !quote.FinalTotal.IsZero() {
		t.Fatalf("final total should be zero, got %s", quote.FinalTotal)
	}

	// Balance 50 draws only 50.
	quote = mustPrice(t, QuoteInput{
		Subtotal:      dec("240"),
		RedeemWallet:  true,
		WalletBalance: dec("50"),
	})
	if !quote.WalletUsed.Equal(dec("50")) {
		t.Fatalf("wallet draw should cap at balance, got %s", quote.WalletUsed)
	}
	if !quote.FinalTotal.Equal(dec("190")) {
		t.Fatalf("expected final 190, got %s", quote.FinalTotal)
	}
}

func TestWalletIgnoredWhenDisabled(t *testing.T) {
	t.Parallel()

	quote := mustPrice(t, QuoteInput{
		Subtotal:      dec("300"),
		RedeemWallet:  false,
		WalletBalance: dec("500"),
	})
	if !quote.WalletUsed.IsZero() {
		t.Fatalf("wallet must not be drawn when disabled, got %s", quote.WalletUsed)
	}
}

func TestOutputsNeverNegative(t *testing.T) {
	t.Parallel()

	inputs := []QuoteInput{
		{Subtotal: dec("100"), CouponCode: "FRESH20"},
		{Subtotal: dec("100"), RedeemWallet: true, WalletBalance: dec("10000")},
		{Subtotal: dec("250"), CouponCode: "FRESH20", RedeemWallet: true, WalletBalance: dec("10000")},
	}
	for _, input := range inputs {
		quote := mustPrice(t, input)
		for name, value := range map[string]decimal.Decimal{
			"deliveryCharge": quote.DeliveryCharge,
			"discount":       quote.Discount,
			"walletUsed":     quote.WalletUsed,
			"finalTotal":     quote.FinalTotal,
		} {
			if value.IsNegative() {
				t.Fatalf("%s went negative for input %+v", name, input)
			}
		}
	}
}

func TestFrozenPriceScenario(t *testing.T) {
	t.Parallel()

	// Two lines at 135 each: subtotal 270, free delivery, no coupon/wallet.
	quote := mustPrice(t, QuoteInput{Subtotal: dec("270")})
	if !quote.DeliveryCharge.IsZero() {
		t.Fatalf("expected free delivery, got %s", quote.DeliveryCharge)
	}
	if !quote.FinalTotal.Equal(dec("270")) {
		t.Fatalf("expected final 270, got %s", quote.FinalTotal)
	}
}

func TestCashbackRounding(t *testing.T) {
	t.Parallel()

	if got := Cashback(dec("270")); !got.Equal(dec("27")) {
		t.Fatalf("expected cashback 27, got %s", got)
	}
	if got := Cashback(dec("133.33")); !got.Equal(dec("13.33")) {
		t.Fatalf("expected cashback 13.33, got %s", got)
	}
	if got := Cashback(dec("-5")); !got.IsZero() {
		t.Fatalf("negative totals earn nothing, got %s", got)
	}
}

func TestValidateSlot(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 7, 10, 15, 0, 0, 0, time.UTC)
	window := enums.DeliveryWindowMorning.String()

	if err := ValidateSlot(Slot{Date: "2025-07-11", Window: window}, now); err != nil {
		t.Fatalf("tomorrow should be bookable: %v", err)
	}
	if err := ValidateSlot(Slot{Date: "2025-07-13", Window: window}, now); err != nil {
		t.Fatalf("third day should be bookable: %v", err)
	}

	if err := ValidateSlot(Slot{Date: "2025-07-10", Window: window}, now); err == nil {
		t.Fatal("same-day delivery must be rejected")
	}
	if err := ValidateSlot(Slot{Date: "2025-07-14", Window: window}, now); err == nil {
		t.Fatal("beyond the bookable window must be rejected")
	}
	if err := ValidateSlot(Slot{Date: "2025-07-11", Window: "2 AM - 4 AM"}, now); err == nil {
		t.Fatal("unknown window must be rejected")
	}
	if err := ValidateSlot(Slot{Window: window}, now); err == nil {
		t.Fatal("missing date must be rejected")
	}
	if err := ValidateSlot(Slot{Date: "11-07-2025", Window: window}, now); err == nil {
		t.Fatal("malformed date must be rejected")
	}
}
