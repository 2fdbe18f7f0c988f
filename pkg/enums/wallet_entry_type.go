package enums

import "fmt"

// WalletEntryType classifies an append-only wallet ledger entry.
type WalletEntryType string

const (
	// WalletEntryTypeRedemption debits points against an order total at checkout.
	WalletEntryTypeRedemption WalletEntryType = "redemption"
	// WalletEntryTypeCashback credits loyalty points when an order is delivered.
	WalletEntryTypeCashback WalletEntryType = "cashback"
	// WalletEntryTypeRefund returns redeemed points when an order is cancelled.
	WalletEntryTypeRefund WalletEntryType = "refund"
)

var validWalletEntryTypes = []WalletEntryType{
	WalletEntryTypeRedemption,
	WalletEntryTypeCashback,
	WalletEntryTypeRefund,
}

// String implements fmt.Stringer.
func (w WalletEntryType) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WalletEntryType.
func (w WalletEntryType) IsValid() bool {
	for _, candidate := range validWalletEntryTypes {
		if candidate == w {
			return true
		}
	}
	return false
}

// IsCredit reports whether entries of this type increase the balance.
func (w WalletEntryType) IsCredit() bool {
	return w == WalletEntryTypeCashback || w == WalletEntryTypeRefund
}

// ParseWalletEntryType converts raw input into a WalletEntryType.
func ParseWalletEntryType(value string) (WalletEntryType, error) {
	for _, candidate := range validWalletEntryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wallet entry type %q", value)
}
