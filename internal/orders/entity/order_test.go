package entity

import "testing"

func TestCanTransitionHappyPath(t *testing.T) {
	path := []string{
		OrderStatusDraft,
		OrderStatusConfirmingSupplier,
		OrderStatusInventoryReserved,
		OrderStatusSupplierRequested,
		OrderStatusInTransit,
		OrderStatusReceivedQA,
		OrderStatusPacking,
		OrderStatusEnRoute,
		OrderStatusDelivered,
		OrderStatusPaymentPending,
		OrderStatusPaid,
	}
	for i := 0; i < len(path)-1; i++ {
		if !CanTransition(path[i], path[i+1]) {
			t.Errorf("expected %s -> %s to be allowed", path[i], path[i+1])
		}
	}
}

func TestCanTransitionRejectsSkipsAndBackwards(t *testing.T) {
	cases := []struct {
		from, to string
	}{
		{OrderStatusDraft, OrderStatusInTransit},
		{OrderStatusDraft, OrderStatusPaid},
		{OrderStatusConfirmingSupplier, OrderStatusDraft},
		{OrderStatusDelivered, OrderStatusPacking},
		{OrderStatusPaid, OrderStatusDraft},
		{OrderStatusCancelled, OrderStatusDraft},
		{OrderStatusReturned, OrderStatusPaymentPending},
	}
	for _, c := range cases {
		if CanTransition(c.from, c.to) {
			t.Errorf("expected %s -> %s to be rejected", c.from, c.to)
		}
	}
}

func TestExceptionExits(t *testing.T) {
	// Cancelled and returned are reachable from every non-terminal state.
	nonTerminal := []string{
		OrderStatusDraft,
		OrderStatusConfirmingSupplier,
		OrderStatusInventoryReserved,
		OrderStatusSupplierRequested,
		OrderStatusInTransit,
		OrderStatusReceivedQA,
		OrderStatusPacking,
		OrderStatusEnRoute,
		OrderStatusDelivered,
		OrderStatusPaymentPending,
	}
	for _, from := range nonTerminal {
		if !CanTransition(from, OrderStatusCancelled) {
			t.Errorf("expected %s -> cancelled to be allowed", from)
		}
		if !CanTransition(from, OrderStatusReturned) {
			t.Errorf("expected %s -> returned to be allowed", from)
		}
	}
	// Terminal states have no exits at all.
	for _, from := range []string{OrderStatusPaid, OrderStatusCancelled, OrderStatusReturned} {
		for _, to := range nonTerminal {
			if CanTransition(from, to) {
				t.Errorf("expected %s -> %s to be rejected", from, to)
			}
		}
	}
}

func TestStatusRankOrdering(t *testing.T) {
	if StatusRank(OrderStatusDraft) >= StatusRank(OrderStatusPaid) {
		t.Fatal("draft should rank below paid")
	}
	if StatusRank(OrderStatusInTransit) >= StatusRank(OrderStatusReceivedQA) {
		t.Fatal("in_transit should rank below received_qa")
	}
	if StatusRank(OrderStatusCancelled) != -1 {
		t.Fatal("exception states have no rank")
	}
}

func TestIsStatusLocked(t *testing.T) {
	locked := []string{
		OrderStatusReceivedQA, OrderStatusPacking, OrderStatusEnRoute,
		OrderStatusDelivered, OrderStatusPaymentPending, OrderStatusPaid,
		OrderStatusCancelled, OrderStatusReturned,
	}
	unlocked := []string{
		OrderStatusDraft, OrderStatusConfirmingSupplier,
		OrderStatusInventoryReserved, OrderStatusSupplierRequested,
		OrderStatusInTransit,
	}
	for _, s := range locked {
		if !IsStatusLocked(s) {
			t.Errorf("expected %s to be locked", s)
		}
	}
	for _, s := range unlocked {
		if IsStatusLocked(s) {
			t.Errorf("expected %s to be unlocked", s)
		}
	}
}

func TestResellerPrice(t *testing.T) {
	cases := []struct {
		public, want float64
	}{
		{100, 75},
		{99.99, 74.99},
		{0, 0},
		{33.33, 25},
	}
	for _, c := range cases {
		if got := ResellerPrice(c.public); got != c.want {
			t.Errorf("ResellerPrice(%v) = %v, want %v", c.public, got, c.want)
		}
	}
}

func TestMarginBelowCost(t *testing.T) {
	item := &OrderItem{PriceCost: 80, PriceClienta: 75}
	if !item.MarginBelowCost() {
		t.Fatal("clienta price below cost should flag")
	}
	item = &OrderItem{PriceCost: 70, PriceClienta: 75}
	if item.MarginBelowCost() {
		t.Fatal("clienta price above cost should not flag")
	}
}

func TestCanPackageTransition(t *testing.T) {
	allowed := []struct{ from, to string }{
		{PackageStateAssembled, PackageStateEnRoute},
		{PackageStateEnRoute, PackageStateDelivered},
		{PackageStateEnRoute, PackageStateReturned},
	}
	for _, c := range allowed {
		if !CanPackageTransition(c.from, c.to) {
			t.Errorf("expected package %s -> %s to be allowed", c.from, c.to)
		}
	}
	denied := []struct{ from, to string }{
		{PackageStateAssembled, PackageStateDelivered},
		{PackageStateDelivered, PackageStateEnRoute},
		{PackageStateDelivered, PackageStateReturned},
		{PackageStateReturned, PackageStateAssembled},
	}
	for _, c := range denied {
		if CanPackageTransition(c.from, c.to) {
			t.Errorf("expected package %s -> %s to be rejected", c.from, c.to)
		}
	}
}
