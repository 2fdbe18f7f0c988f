package enums

import "testing"

func TestOrderStatusForwardChain(t *testing.T) {
	chain := []OrderStatus{
		OrderStatusProcessing,
		OrderStatusPacked,
		OrderStatusOutForDelivery,
		OrderStatusDelivered,
	}
	for i := 0; i < len(chain)-1; i++ {
		if !chain[i].CanTransitionTo(chain[i+1]) {
			t.Fatalf("%s should transition to %s", chain[i], chain[i+1])
		}
	}
}

func TestOrderStatusRejectsBackwardAndSkip(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
	}{
		{OrderStatusDelivered, OrderStatusProcessing},
		{OrderStatusPacked, OrderStatusProcessing},
		{OrderStatusProcessing, OrderStatusOutForDelivery},
		{OrderStatusProcessing, OrderStatusDelivered},
		{OrderStatusPacked, OrderStatusDelivered},
		{OrderStatusDelivered, OrderStatusDelivered},
	}
	for _, tc := range tests {
		if tc.from.CanTransitionTo(tc.to) {
			t.Fatalf("%s -> %s should be rejected", tc.from, tc.to)
		}
	}
}

func TestOrderStatusCancellationBranch(t *testing.T) {
	if !OrderStatusProcessing.CanTransitionTo(OrderStatusCancelled) {
		t.Fatal("processing should be cancellable")
	}
	if !OrderStatusPacked.CanTransitionTo(OrderStatusCancelled) {
		t.Fatal("packed should be cancellable")
	}
	if OrderStatusOutForDelivery.CanTransitionTo(OrderStatusCancelled) {
		t.Fatal("out_for_delivery must not be cancellable")
	}
	if OrderStatusDelivered.CanTransitionTo(OrderStatusCancelled) {
		t.Fatal("delivered must not be cancellable")
	}
}

func TestOrderStatusTerminalStates(t *testing.T) {
	if !OrderStatusDelivered.IsTerminal() || !OrderStatusCancelled.IsTerminal() {
		t.Fatal("delivered and cancelled are terminal")
	}
	if OrderStatusProcessing.IsTerminal() {
		t.Fatal("processing is not terminal")
	}
	if OrderStatus("bogus").IsTerminal() {
		t.Fatal("unknown status is not terminal, it is invalid")
	}
}

func TestParseOrderStatus(t *testing.T) {
	if _, err := ParseOrderStatus("out_for_delivery"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseOrderStatus("shipped"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
