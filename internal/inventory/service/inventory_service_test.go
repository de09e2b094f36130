package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/inventory/entity"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/inventory/repository"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/testutil"
)

func setupInventory(t *testing.T) (*InventoryService, *repository.InventoryRepository) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repo := repository.NewInventoryRepository(db)
	return NewInventoryService(repo, zap.NewNop()), repo
}

func strPtr(s string) *string { return &s }

func TestReceiveInboundCreatesItem(t *testing.T) {
	svc, repo := setupInventory(t)
	ctx := context.Background()

	err := svc.ReceiveInbound(ctx, InboundRequest{
		Title: "Blusa bordada", Variant: "M", Color: "rojo",
		SupplierID: strPtr("sup-1"), ProductRef: "ref-1",
		Qty: 5, UnitCost: 60,
		IdempotencyKey: "inbound_test_1", OperatorID: "op-1",
	})
	if err != nil {
		t.Fatalf("ReceiveInbound: %v", err)
	}

	// Empty item id synthesizes a stable one from the descriptive fields.
	itemID := entity.SyntheticItemID("sup-1", "ref-1", "M", "rojo")
	item, err := repo.FindByID(ctx, itemID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if item.AvailableQty != 5 || item.ReservedQty != 0 {
		t.Fatalf("stock = %d/%d, want 5/0", item.AvailableQty, item.ReservedQty)
	}
}

func TestReceiveInboundIdempotent(t *testing.T) {
	svc, repo := setupInventory(t)
	ctx := context.Background()

	req := InboundRequest{
		ItemID: "item-fixed", Title: "Rebozo", Qty: 3,
		IdempotencyKey: "inbound_dup", OperatorID: "op-1",
	}
	for i := 0; i < 3; i++ {
		if err := svc.ReceiveInbound(ctx, req); err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}

	item, err := repo.FindByID(ctx, "item-fixed")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if item.AvailableQty != 3 {
		t.Fatalf("available = %d, duplicate key must not stack", item.AvailableQty)
	}

	movements, total, err := svc.ListMovements(ctx, "item-fixed", 1, 20)
	if err != nil {
		t.Fatalf("ListMovements: %v", err)
	}
	if total != 1 || len(movements) != 1 {
		t.Fatalf("expected a single ledger entry, got %d", total)
	}
}

func TestReserveStockFloorsAvailable(t *testing.T) {
	svc, repo := setupInventory(t)
	ctx := context.Background()

	if err := svc.ReceiveInbound(ctx, InboundRequest{
		ItemID: "item-r", Title: "Falda", Qty: 2,
		IdempotencyKey: "inbound_r", OperatorID: "op-1",
	}); err != nil {
		t.Fatalf("inbound: %v", err)
	}

	// Reserve more than on hand: reservation records in full, available
	// floors at zero.
	if err := svc.ReserveStock(ctx, ReserveRequest{
		ItemID: "item-r", Qty: 5, OrderID: "ord-1",
		IdempotencyKey: "reserve_r", OperatorID: "op-1",
	}); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	item, _ := repo.FindByID(ctx, "item-r")
	if item.AvailableQty != 0 {
		t.Errorf("available = %d, want floor at 0", item.AvailableQty)
	}
	if item.ReservedQty != 5 {
		t.Errorf("reserved = %d, want 5", item.ReservedQty)
	}

	// Duplicate reservation key is a no-op.
	if err := svc.ReserveStock(ctx, ReserveRequest{
		ItemID: "item-r", Qty: 5, OrderID: "ord-1",
		IdempotencyKey: "reserve_r", OperatorID: "op-1",
	}); err != nil {
		t.Fatalf("duplicate reserve: %v", err)
	}
	item, _ = repo.FindByID(ctx, "item-r")
	if item.ReservedQty != 5 {
		t.Errorf("duplicate key stacked the reservation: %d", item.ReservedQty)
	}
}

func TestReserveUnknownItem(t *testing.T) {
	svc, _ := setupInventory(t)
	err := svc.ReserveStock(context.Background(), ReserveRequest{
		ItemID: "no-such-item", Qty: 1, OrderID: "ord-1",
		IdempotencyKey: "reserve_missing",
	})
	if err == nil {
		t.Fatal("reserving an unknown item must fail")
	}
}

func TestReleaseStock(t *testing.T) {
	svc, repo := setupInventory(t)
	ctx := context.Background()

	if err := svc.ReceiveInbound(ctx, InboundRequest{
		ItemID: "item-l", Title: "Huipil", Qty: 4,
		IdempotencyKey: "inbound_l",
	}); err != nil {
		t.Fatalf("inbound: %v", err)
	}
	if err := svc.ReserveStock(ctx, ReserveRequest{
		ItemID: "item-l", Qty: 3, OrderID: "ord-2",
		IdempotencyKey: "reserve_l",
	}); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	if err := svc.ReleaseStock(ctx, ReleaseRequest{
		ItemID: "item-l", Qty: 3, OrderID: "ord-2",
		IdempotencyKey: "release_l",
	}); err != nil {
		t.Fatalf("release: %v", err)
	}

	item, _ := repo.FindByID(ctx, "item-l")
	if item.AvailableQty != 4 || item.ReservedQty != 0 {
		t.Fatalf("stock after release = %d/%d, want 4/0", item.AvailableQty, item.ReservedQty)
	}
}

func TestAdjustRequiresNonZeroDelta(t *testing.T) {
	svc, repo := setupInventory(t)
	ctx := context.Background()

	if err := svc.ReceiveInbound(ctx, InboundRequest{
		ItemID: "item-a", Title: "Blusa", Qty: 10,
		IdempotencyKey: "inbound_a",
	}); err != nil {
		t.Fatalf("inbound: %v", err)
	}

	if err := svc.Adjust(ctx, AdjustRequest{ItemID: "item-a", Delta: 0, Reason: "conteo"}); err == nil {
		t.Fatal("zero delta must be rejected")
	}

	if err := svc.Adjust(ctx, AdjustRequest{ItemID: "item-a", Delta: -2, Reason: "merma"}); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	item, _ := repo.FindByID(ctx, "item-a")
	if item.AvailableQty != 8 {
		t.Fatalf("available after adjust = %d, want 8", item.AvailableQty)
	}
}
