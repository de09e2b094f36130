package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	invservice "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/inventory/service"
	ordersentity "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/orders/entity"
	ordersrepo "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/orders/repository"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/supplyops/entity"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/supplyops/repository"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/testutil"
)

// fakeGateway counts idempotent calls per key and can fail reservations on
// demand to simulate a crash between stages.
type fakeGateway struct {
	inboundCalls map[string]int
	reserveCalls map[string]int
	failReserve  bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		inboundCalls: make(map[string]int),
		reserveCalls: make(map[string]int),
	}
}

func (f *fakeGateway) ReceiveInbound(ctx context.Context, req invservice.InboundRequest) error {
	if req.Qty <= 0 {
		return invservice.ErrInvalidQty
	}
	f.inboundCalls[req.IdempotencyKey]++
	return nil
}

func (f *fakeGateway) ReserveStock(ctx context.Context, req invservice.ReserveRequest) error {
	if req.Qty <= 0 {
		return invservice.ErrInvalidQty
	}
	if f.failReserve {
		return errors.New("inventory unavailable")
	}
	f.reserveCalls[req.IdempotencyKey]++
	return nil
}

func setupReconciler(t *testing.T) (*ReconcilerService, *fakeGateway, *ordersrepo.Repositories, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	orderRepos := ordersrepo.NewRepositories(db)
	gw := newFakeGateway()
	svc := NewReconcilerService(repos, orderRepos, gw, zap.NewNop())
	return svc, gw, orderRepos, db
}

func strPtr(s string) *string { return &s }

func seedConfirmedOrder(t *testing.T, db *gorm.DB, orderID, status string) *ordersentity.Order {
	t.Helper()
	order := testutil.SeedOrder(t, db, orderID, status)
	items := []ordersentity.OrderItem{
		{
			ID: orderID + "-item-1", OrderID: orderID, Title: "Blusa bordada",
			Variant: "M", Color: "rojo", Quantity: 3,
			Source: ordersentity.ItemSourceCatalog, SupplierID: strPtr("sup-1"),
			ConfirmationState: ordersentity.ConfirmationConfirmed, ConfirmedQty: 2,
		},
		{
			ID: orderID + "-item-2", OrderID: orderID, Title: "Rebozo",
			Quantity: 1, Source: ordersentity.ItemSourceCatalog, SupplierID: strPtr("sup-2"),
			ConfirmationState: ordersentity.ConfirmationConfirmed, ConfirmedQty: 1,
		},
		// Out of stock: no procurement line.
		{
			ID: orderID + "-item-3", OrderID: orderID, Title: "Falda",
			Quantity: 2, Source: ordersentity.ItemSourceCatalog, SupplierID: strPtr("sup-1"),
			ConfirmationState: ordersentity.ConfirmationOutOfStock,
		},
		// Inventory-sourced: fulfilled from held stock, no procurement line.
		{
			ID: orderID + "-item-4", OrderID: orderID, Title: "Huipil",
			Quantity: 1, Source: ordersentity.ItemSourceInventory,
			SupplierID:        strPtr("sup-1"),
			ConfirmationState: ordersentity.ConfirmationConfirmed, ConfirmedQty: 1,
		},
	}
	for i := range items {
		if err := db.Create(&items[i]).Error; err != nil {
			t.Fatalf("seed item: %v", err)
		}
	}
	return order
}

func TestUpsertFromConfirmedOrder(t *testing.T) {
	svc, _, _, db := setupReconciler(t)
	ctx := context.Background()
	seedConfirmedOrder(t, db, "ord-u1", ordersentity.OrderStatusInventoryReserved)

	ops, err := svc.UpsertFromConfirmedOrder(ctx, "ord-u1")
	if err != nil {
		t.Fatalf("UpsertFromConfirmedOrder: %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("expected 2 procurement lines, got %d", len(ops))
	}
	for _, op := range ops {
		if op.Status != entity.OperationStatusToPickup {
			t.Errorf("new line status = %s, want to_pickup", op.Status)
		}
		if op.ID != entity.OperationID(op.OrderID, op.OrderItemID) {
			t.Errorf("line id must be derived from order/item")
		}
	}
	// Quantity comes from the confirmed count, not the requested one.
	if ops[0].Quantity != 2 && ops[1].Quantity != 2 {
		t.Error("expected one line with confirmed qty 2")
	}
}

func TestUpsertPreservesPipelineProgress(t *testing.T) {
	svc, _, _, db := setupReconciler(t)
	ctx := context.Background()
	seedConfirmedOrder(t, db, "ord-u2", ordersentity.OrderStatusInventoryReserved)

	first, err := svc.UpsertFromConfirmedOrder(ctx, "ord-u2")
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	// Move one line forward, then re-run the upsert.
	advanced, err := svc.AdvanceStatus(ctx, first[0].ID, entity.OperationStatusPickedUp)
	if err != nil {
		t.Fatalf("AdvanceStatus: %v", err)
	}

	second, err := svc.UpsertFromConfirmedOrder(ctx, "ord-u2")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if len(second) != len(first) {
		t.Fatalf("re-run changed line count: %d vs %d", len(second), len(first))
	}
	for _, op := range second {
		if op.ID == advanced.ID && op.Status != entity.OperationStatusPickedUp {
			t.Errorf("re-run regressed pipeline status to %s", op.Status)
		}
	}
}

func TestAdvanceStatusGuards(t *testing.T) {
	svc, _, _, db := setupReconciler(t)
	ctx := context.Background()
	seedConfirmedOrder(t, db, "ord-a1", ordersentity.OrderStatusSupplierRequested)

	ops, err := svc.UpsertFromConfirmedOrder(ctx, "ord-a1")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	opID := ops[0].ID

	// Skipping a stage is rejected.
	if _, err := svc.AdvanceStatus(ctx, opID, entity.OperationStatusInTransit); err == nil {
		t.Fatal("to_pickup -> in_transit must be rejected")
	}
	// Receiving must go through the allocate endpoint.
	if _, err := svc.AdvanceStatus(ctx, opID, entity.OperationStatusReceived); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("direct receive should fail with ErrInvalidTransition, got %v", err)
	}

	if _, err := svc.AdvanceStatus(ctx, opID, entity.OperationStatusPickedUp); err != nil {
		t.Fatalf("to_pickup -> picked_up: %v", err)
	}
}

func TestReceiveAndAllocateIdempotent(t *testing.T) {
	svc, gw, _, db := setupReconciler(t)
	ctx := context.Background()
	seedConfirmedOrder(t, db, "ord-r1", ordersentity.OrderStatusSupplierRequested)

	ops, err := svc.UpsertFromConfirmedOrder(ctx, "ord-r1")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	opID := ops[0].ID
	qty := ops[0].Quantity

	got, err := svc.ReceiveAndAllocate(ctx, opID, "retry-1", "op-user")
	if err != nil {
		t.Fatalf("ReceiveAndAllocate: %v", err)
	}
	if got.Status != entity.OperationStatusReceived {
		t.Errorf("status = %s, want received", got.Status)
	}
	if !got.ReceivedToInventory || !got.ReservationApplied {
		t.Error("allocation flags must be set")
	}
	if got.ReceivedQty != qty || got.ReservedQtyForOrder != qty {
		t.Errorf("allocation quantities = %d/%d, want %d", got.ReceivedQty, got.ReservedQtyForOrder, qty)
	}
	if got.InventoryItemID == nil || *got.InventoryItemID == "" {
		t.Fatal("inventory item id must be recorded")
	}

	// Retry with the same root after completion: zero new external calls,
	// the final state does not change.
	again, err := svc.ReceiveAndAllocate(ctx, opID, "retry-1", "op-user")
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if again.ReceivedQty != qty {
		t.Errorf("retry changed received qty to %d", again.ReceivedQty)
	}
	if again.Status != entity.OperationStatusReceived {
		t.Errorf("retry status = %s", again.Status)
	}
	if gw.inboundCalls["inbound_retry-1"] != 1 || gw.reserveCalls["reserve_retry-1"] != 1 {
		t.Fatalf("completed root must skip the gateway, got inbound=%v reserve=%v",
			gw.inboundCalls, gw.reserveCalls)
	}
}

func TestReceiveRetryAfterReserveFailure(t *testing.T) {
	svc, gw, _, db := setupReconciler(t)
	ctx := context.Background()
	seedConfirmedOrder(t, db, "ord-r2", ordersentity.OrderStatusSupplierRequested)

	ops, err := svc.UpsertFromConfirmedOrder(ctx, "ord-r2")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	opID := ops[0].ID

	// First attempt dies between the inbound receipt and the reservation.
	gw.failReserve = true
	if _, err := svc.ReceiveAndAllocate(ctx, opID, "retry-2", "op-user"); err == nil {
		t.Fatal("expected reservation failure")
	}
	if gw.inboundCalls["inbound_retry-2"] != 1 {
		t.Fatal("inbound stage should have run once")
	}

	// The line is not marked received and the inbound effect stays.
	op, err := svc.Get(ctx, opID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if op.Status == entity.OperationStatusReceived {
		t.Fatal("partial failure must not mark the line received")
	}
	if !op.HasMarker(entity.TxMarkerKey("retry-2")) {
		t.Fatal("tx marker must survive the failed attempt")
	}

	// Retry with the same root completes; the inbound key dedupes on the
	// inventory side, the reservation finally lands.
	gw.failReserve = false
	got, err := svc.ReceiveAndAllocate(ctx, opID, "retry-2", "op-user")
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if got.Status != entity.OperationStatusReceived {
		t.Fatalf("retry status = %s, want received", got.Status)
	}
	if gw.reserveCalls["reserve_retry-2"] != 1 {
		t.Errorf("reserve must use the same key on retry: %v", gw.reserveCalls)
	}
	// The inbound stage runs again with the same key; the inventory side
	// dedupes it against its movement ledger.
	if gw.inboundCalls["inbound_retry-2"] != 2 {
		t.Errorf("inbound retry must reuse its key: %v", gw.inboundCalls)
	}
}

func TestReceiveZeroQuantityLine(t *testing.T) {
	svc, gw, _, db := setupReconciler(t)
	ctx := context.Background()
	testutil.SeedOrder(t, db, "ord-r4", ordersentity.OrderStatusSupplierRequested)
	item := ordersentity.OrderItem{
		ID: "ord-r4-item-1", OrderID: "ord-r4", Title: "Blusa bordada",
		Quantity: 2, Source: ordersentity.ItemSourceCatalog, SupplierID: strPtr("sup-1"),
		ConfirmationState: ordersentity.ConfirmationConfirmed, ConfirmedQty: 0,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}

	ops, err := svc.UpsertFromConfirmedOrder(ctx, "ord-r4")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if len(ops) != 1 || ops[0].Quantity != 0 {
		t.Fatalf("expected one zero-quantity line, got %+v", ops)
	}

	// A line confirmed at zero pieces still closes out, without touching
	// inventory at all.
	got, err := svc.ReceiveAndAllocate(ctx, ops[0].ID, "", "op-user")
	if err != nil {
		t.Fatalf("ReceiveAndAllocate: %v", err)
	}
	if got.Status != entity.OperationStatusReceived {
		t.Errorf("status = %s, want received", got.Status)
	}
	if got.ReceivedToInventory || got.ReservationApplied {
		t.Error("zero-quantity line must not claim inventory effects")
	}
	if got.ReceivedQty != 0 || got.ReservedQtyForOrder != 0 {
		t.Errorf("allocation quantities = %d/%d, want 0", got.ReceivedQty, got.ReservedQtyForOrder)
	}
	if len(gw.inboundCalls) != 0 || len(gw.reserveCalls) != 0 {
		t.Fatalf("gateway must not be called for zero quantity: inbound=%v reserve=%v",
			gw.inboundCalls, gw.reserveCalls)
	}
}

func TestAdvanceLogsOrderTimeline(t *testing.T) {
	svc, _, orderRepos, db := setupReconciler(t)
	ctx := context.Background()
	seedConfirmedOrder(t, db, "ord-a2", ordersentity.OrderStatusSupplierRequested)

	ops, err := svc.UpsertFromConfirmedOrder(ctx, "ord-a2")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := svc.AdvanceStatus(ctx, ops[0].ID, entity.OperationStatusPickedUp); err != nil {
		t.Fatalf("advance: %v", err)
	}

	events, _, err := orderRepos.Event.FindByOrder(ctx, "ord-a2", 1, 50)
	if err != nil {
		t.Fatalf("FindByOrder: %v", err)
	}
	found := false
	for _, ev := range events {
		if ev.Action == "operation_advance" &&
			ev.FromStatus == entity.OperationStatusToPickup &&
			ev.ToStatus == entity.OperationStatusPickedUp {
			found = true
		}
	}
	if !found {
		t.Fatalf("pipeline step missing from the order timeline: %+v", events)
	}
}

func TestSyncOrderStatus(t *testing.T) {
	svc, _, orderRepos, db := setupReconciler(t)
	ctx := context.Background()
	seedConfirmedOrder(t, db, "ord-s1", ordersentity.OrderStatusSupplierRequested)

	ops, err := svc.UpsertFromConfirmedOrder(ctx, "ord-s1")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// One line in transit pulls the order to in_transit.
	if _, err := svc.AdvanceStatus(ctx, ops[0].ID, entity.OperationStatusPickedUp); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if _, err := svc.AdvanceStatus(ctx, ops[0].ID, entity.OperationStatusInTransit); err != nil {
		t.Fatalf("advance: %v", err)
	}
	order, err := orderRepos.Order.FindByID(ctx, "ord-s1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if order.Status != ordersentity.OrderStatusInTransit {
		t.Fatalf("order status = %s, want in_transit", order.Status)
	}

	// All lines received pulls the order to received_qa.
	for _, op := range ops {
		if _, err := svc.ReceiveAndAllocate(ctx, op.ID, "", "op-user"); err != nil {
			t.Fatalf("receive %s: %v", op.ID, err)
		}
	}
	order, _ = orderRepos.Order.FindByID(ctx, "ord-s1")
	if order.Status != ordersentity.OrderStatusReceivedQA {
		t.Fatalf("order status = %s, want received_qa", order.Status)
	}
}

func TestSyncLeavesLockedOrdersAlone(t *testing.T) {
	svc, _, orderRepos, db := setupReconciler(t)
	ctx := context.Background()
	order := seedConfirmedOrder(t, db, "ord-s2", ordersentity.OrderStatusPacking)

	ops, err := svc.UpsertFromConfirmedOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// Receiving a straggler line after the order moved past QA must not
	// drag the order backwards.
	if _, err := svc.ReceiveAndAllocate(ctx, ops[0].ID, "", "op-user"); err != nil {
		t.Fatalf("receive: %v", err)
	}

	got, err := orderRepos.Order.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Status != ordersentity.OrderStatusPacking {
		t.Fatalf("locked order moved to %s", got.Status)
	}
}

func TestSyncNeverMovesBackwards(t *testing.T) {
	svc, _, orderRepos, db := setupReconciler(t)
	ctx := context.Background()
	seedConfirmedOrder(t, db, "ord-s3", ordersentity.OrderStatusInTransit)

	// Lines exist but none advanced: the computed target would be
	// supplier_requested, behind the order's current marker.
	if _, err := svc.UpsertFromConfirmedOrder(ctx, "ord-s3"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := svc.SyncOrderStatus(ctx, "ord-s3"); err != nil {
		t.Fatalf("sync: %v", err)
	}

	got, _ := orderRepos.Order.FindByID(ctx, "ord-s3")
	if got.Status != ordersentity.OrderStatusInTransit {
		t.Fatalf("sync regressed order to %s", got.Status)
	}
}

func TestReceiveDefaultsRootToOperationID(t *testing.T) {
	svc, gw, _, db := setupReconciler(t)
	ctx := context.Background()
	seedConfirmedOrder(t, db, "ord-r3", ordersentity.OrderStatusSupplierRequested)

	ops, err := svc.UpsertFromConfirmedOrder(ctx, "ord-r3")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	opID := ops[0].ID

	if _, err := svc.ReceiveAndAllocate(ctx, opID, "", "op-user"); err != nil {
		t.Fatalf("receive: %v", err)
	}
	if gw.inboundCalls["inbound_"+opID] != 1 {
		t.Fatalf("empty root must default to the operation id: %v", gw.inboundCalls)
	}

	op, _ := svc.Get(ctx, opID)
	if !op.HasMarker(entity.FinalMarkerKey(opID)) {
		t.Fatal("final marker keyed by the default root")
	}
	// Marker timestamps are stored as RFC3339 strings.
	raw, ok := op.IdempotencyKeys[entity.FinalMarkerKey(opID)]
	if !ok {
		t.Fatal("marker missing from the key map")
	}
	if s, ok := raw.(string); !ok || s == "" {
		t.Fatalf("marker value = %#v, want RFC3339 string", raw)
	} else if _, err := time.Parse(time.RFC3339, s); err != nil {
		t.Fatalf("marker not RFC3339: %v", err)
	}
}
