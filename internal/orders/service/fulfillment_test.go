package service

import (
	"testing"

	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/orders/entity"
)

func sampleItems() []entity.OrderItem {
	return []entity.OrderItem{
		{ID: "a", Quantity: 3, ConfirmationState: entity.ConfirmationConfirmed, ConfirmedQty: 2},
		{ID: "b", Quantity: 2, ConfirmationState: entity.ConfirmationSubstitute, ConfirmedQty: 2},
		{ID: "c", Quantity: 4, ConfirmationState: entity.ConfirmationOutOfStock},
		{ID: "d", Quantity: 1, ConfirmationState: entity.ConfirmationPending},
		{ID: "e", Quantity: 5},
	}
}

func TestPieceCounters(t *testing.T) {
	items := sampleItems()

	if got := ConfirmedPieces(items); got != 4 {
		t.Errorf("ConfirmedPieces = %d, want 4", got)
	}
	if got := OutOfStockPieces(items); got != 4 {
		t.Errorf("OutOfStockPieces = %d, want 4", got)
	}
	if got := PendingPieces(items); got != 6 {
		t.Errorf("PendingPieces = %d, want 6", got)
	}
}

func TestAllResolved(t *testing.T) {
	if AllResolved(sampleItems()) {
		t.Fatal("pending items should not resolve")
	}
	if !AllResolved(nil) {
		t.Fatal("empty list is vacuously resolved")
	}
	resolved := []entity.OrderItem{
		{ID: "a", ConfirmationState: entity.ConfirmationConfirmed},
		{ID: "b", ConfirmationState: entity.ConfirmationOutOfStock},
		{ID: "c", ConfirmationState: entity.ConfirmationSubstitute},
	}
	if !AllResolved(resolved) {
		t.Fatal("confirmed/out_of_stock/substitute all count as resolved")
	}
}

func TestMaxConfirmable(t *testing.T) {
	catalog := &entity.OrderItem{Quantity: 5, Source: entity.ItemSourceCatalog}
	if got := MaxConfirmable(catalog, 0); got != 5 {
		t.Errorf("catalog item ignores stock, got %d", got)
	}

	inv := &entity.OrderItem{Quantity: 5, Source: entity.ItemSourceInventory}
	if got := MaxConfirmable(inv, 3); got != 3 {
		t.Errorf("inventory item capped by stock, got %d", got)
	}
	if got := MaxConfirmable(inv, 9); got != 5 {
		t.Errorf("inventory item capped by requested qty, got %d", got)
	}
	if got := MaxConfirmable(inv, -1); got != 0 {
		t.Errorf("negative stock floors at zero, got %d", got)
	}
}

func TestClampConfirmedQty(t *testing.T) {
	item := &entity.OrderItem{Quantity: 4}
	cases := []struct{ in, want int }{
		{-2, 0},
		{0, 0},
		{3, 3},
		{4, 4},
		{9, 4},
	}
	for _, c := range cases {
		if got := ClampConfirmedQty(item, c.in); got != c.want {
			t.Errorf("ClampConfirmedQty(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestUnassignedConfirmedItems(t *testing.T) {
	order := &entity.Order{
		Items: []entity.OrderItem{
			{ID: "a", ConfirmationState: entity.ConfirmationConfirmed},
			{ID: "b", ConfirmationState: entity.ConfirmationSubstitute},
			{ID: "c", ConfirmationState: entity.ConfirmationOutOfStock},
		},
		Packages: []entity.PackageRecord{
			{ID: "p1", State: entity.PackageStateAssembled, ItemIDs: entity.StringArray{"a"}},
		},
	}

	out := UnassignedConfirmedItems(order)
	if len(out) != 1 || out[0].ID != "b" {
		t.Fatalf("expected only item b unassigned, got %v", out)
	}

	// Items in a returned package are back on the table.
	order.Packages[0].State = entity.PackageStateReturned
	out = UnassignedConfirmedItems(order)
	if len(out) != 2 {
		t.Fatalf("returned package releases its items, got %d", len(out))
	}
}

func TestClosedPackageCount(t *testing.T) {
	order := &entity.Order{
		Packages: []entity.PackageRecord{
			{ID: "p1", State: entity.PackageStateAssembled},
			{ID: "p2", State: entity.PackageStateEnRoute},
			{ID: "p3", State: entity.PackageStateReturned},
		},
	}
	if got := ClosedPackageCount(order); got != 2 {
		t.Errorf("ClosedPackageCount = %d, want 2", got)
	}
}
