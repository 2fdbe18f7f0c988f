package razorpay

import "fmt"

// OrderCreateParams describes a gateway order request. AmountMinor is the
// payable total in minor currency units.
type OrderCreateParams struct {
	AmountMinor int64
	Receipt     string
	Notes       map[string]any
}

func (p OrderCreateParams) validate() error {
	if p.AmountMinor <= 0 {
		return fmt.Errorf("amount must be positive, got %d", p.AmountMinor)
	}
	if p.Receipt == "" {
		return fmt.Errorf("receipt is required")
	}
	return nil
}

func (p OrderCreateParams) toRequestData(currency string) map[string]any {
	data := map[string]any{
		"amount":   p.AmountMinor,
		"currency": currency,
		"receipt":  p.Receipt,
	}
	if len(p.Notes) > 0 {
		data["notes"] = p.Notes
	}
	return data
}

// GatewayOrder is the subset of the gateway order response the platform uses.
type GatewayOrder struct {
	ID          string
	AmountMinor int64
	Currency    string
	Status      string
}

func gatewayOrderFromResponse(resp map[string]any) *GatewayOrder {
	order := &GatewayOrder{}
	if resp == nil {
		return order
	}
	if id, ok := resp["id"].(string); ok {
		order.ID = id
	}
	switch amount := resp["amount"].(type) {
	case float64:
		order.AmountMinor = int64(amount)
	case int64:
		order.AmountMinor = amount
	case int:
		order.AmountMinor = int64(amount)
	}
	if currency, ok := resp["currency"].(string); ok {
		order.Currency = currency
	}
	if status, ok := resp["status"].(string); ok {
		order.Status = status
	}
	return order
}
