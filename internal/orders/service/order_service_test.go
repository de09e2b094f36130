package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/orders/entity"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/orders/repository"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/testutil"
)

func setupOrderService(t *testing.T) (*OrderService, *IncidentService, *repository.Repositories) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	orderSvc := NewOrderService(repos, db, zap.NewNop(), nil)
	incidentSvc := NewIncidentService(repos, zap.NewNop(), nil, nil, "", "")
	return orderSvc, incidentSvc, repos
}

func TestCreateOrderDefaultsAndWarnings(t *testing.T) {
	svc, _, _ := setupOrderService(t)
	ctx := context.Background()

	order, warnings, err := svc.CreateOrder(ctx, CreateOrderRequest{
		Items: []OrderItemRequest{
			{Title: "Blusa bordada", Quantity: 2, PricePublic: 100, PriceCost: 60},
			{Title: "Rebozo", Quantity: 1, PricePublic: 100, PriceCost: 80},
		},
	}, "op-1")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.Status != entity.OrderStatusDraft {
		t.Errorf("new order status = %s, want draft", order.Status)
	}
	if order.Code == "" {
		t.Error("order code must be generated")
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(order.Items))
	}
	for _, it := range order.Items {
		if it.PriceClienta != entity.ResellerPrice(it.PricePublic) {
			t.Errorf("item %s clienta price = %v, want %v", it.Title, it.PriceClienta, entity.ResellerPrice(it.PricePublic))
		}
	}
	// 100*0.75 = 75 < cost 80 on the second item.
	if len(warnings) != 1 {
		t.Fatalf("expected one margin warning, got %v", warnings)
	}
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	svc, _, _ := setupOrderService(t)
	ctx := context.Background()

	order, _, err := svc.CreateOrder(ctx, CreateOrderRequest{
		Items: []OrderItemRequest{{Title: "Blusa", Quantity: 1, PricePublic: 50}},
	}, "op-1")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, order.ID, entity.OrderStatusPaid, "op-1"); err == nil {
		t.Fatal("draft -> paid must be rejected")
	}

	updated, err := svc.UpdateStatus(ctx, order.ID, entity.OrderStatusConfirmingSupplier, "op-1")
	if err != nil {
		t.Fatalf("draft -> confirming_supplier: %v", err)
	}
	if updated.Status != entity.OrderStatusConfirmingSupplier {
		t.Errorf("status = %s", updated.Status)
	}
}

func TestUpdateItemConfirmationClampsAndZeroes(t *testing.T) {
	svc, _, _ := setupOrderService(t)
	ctx := context.Background()

	order, _, err := svc.CreateOrder(ctx, CreateOrderRequest{
		Items: []OrderItemRequest{{Title: "Falda", Quantity: 3, PricePublic: 40}},
	}, "op-1")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	itemID := order.Items[0].ID

	// Over-confirmation clamps to the requested quantity.
	item, err := svc.UpdateItemConfirmation(ctx, order.ID, itemID, ItemConfirmationRequest{
		ConfirmationState: entity.ConfirmationConfirmed,
		ConfirmedQty:      10,
	}, "op-1")
	if err != nil {
		t.Fatalf("UpdateItemConfirmation: %v", err)
	}
	if item.ConfirmedQty != 3 {
		t.Errorf("confirmed qty = %d, want clamp to 3", item.ConfirmedQty)
	}

	// Out of stock forces the confirmed quantity to zero.
	item, err = svc.UpdateItemConfirmation(ctx, order.ID, itemID, ItemConfirmationRequest{
		ConfirmationState: entity.ConfirmationOutOfStock,
		ConfirmedQty:      2,
	}, "op-1")
	if err != nil {
		t.Fatalf("UpdateItemConfirmation: %v", err)
	}
	if item.ConfirmedQty != 0 {
		t.Errorf("out_of_stock confirmed qty = %d, want 0", item.ConfirmedQty)
	}

	// Unknown states are rejected.
	if _, err = svc.UpdateItemConfirmation(ctx, order.ID, itemID, ItemConfirmationRequest{
		ConfirmationState: "maybe",
	}, "op-1"); err == nil {
		t.Fatal("unknown confirmation state must be rejected")
	}
}

func TestAssemblePackageValidatesItems(t *testing.T) {
	svc, _, _ := setupOrderService(t)
	ctx := context.Background()

	order, _, err := svc.CreateOrder(ctx, CreateOrderRequest{
		Items: []OrderItemRequest{
			{Title: "Blusa", Quantity: 1, PricePublic: 50},
			{Title: "Falda", Quantity: 1, PricePublic: 40},
		},
	}, "op-1")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	// Nothing confirmed yet.
	if _, err := svc.AssemblePackage(ctx, order.ID, AssemblePackageRequest{
		ItemIDs: []string{order.Items[0].ID},
	}, "op-1"); err == nil {
		t.Fatal("unconfirmed items must not be packable")
	}

	if _, err := svc.UpdateItemConfirmation(ctx, order.ID, order.Items[0].ID, ItemConfirmationRequest{
		ConfirmationState: entity.ConfirmationConfirmed, ConfirmedQty: 1,
	}, "op-1"); err != nil {
		t.Fatalf("confirm item: %v", err)
	}

	pkg, err := svc.AssemblePackage(ctx, order.ID, AssemblePackageRequest{
		ItemIDs: []string{order.Items[0].ID},
	}, "op-1")
	if err != nil {
		t.Fatalf("AssemblePackage: %v", err)
	}
	if pkg.Sequence != 1 || pkg.State != entity.PackageStateAssembled {
		t.Errorf("package sequence=%d state=%s", pkg.Sequence, pkg.State)
	}
}

func TestAssemblePackageRejectsAssignedItems(t *testing.T) {
	svc, _, _ := setupOrderService(t)
	ctx := context.Background()

	order, _, err := svc.CreateOrder(ctx, CreateOrderRequest{
		Items: []OrderItemRequest{{Title: "Blusa", Quantity: 1, PricePublic: 50}},
	}, "op-1")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	itemID := order.Items[0].ID
	if _, err := svc.UpdateItemConfirmation(ctx, order.ID, itemID, ItemConfirmationRequest{
		ConfirmationState: entity.ConfirmationConfirmed, ConfirmedQty: 1,
	}, "op-1"); err != nil {
		t.Fatalf("confirm item: %v", err)
	}

	pkg, err := svc.AssemblePackage(ctx, order.ID, AssemblePackageRequest{
		ItemIDs: []string{itemID},
	}, "op-1")
	if err != nil {
		t.Fatalf("AssemblePackage: %v", err)
	}

	// An item already sitting in an open parcel cannot join a second one.
	if _, err := svc.AssemblePackage(ctx, order.ID, AssemblePackageRequest{
		ItemIDs: []string{itemID},
	}, "op-1"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("double assignment should fail with ErrInvalidState, got %v", err)
	}

	// Once its parcel comes back returned, the item is free again.
	if _, err := svc.UpdatePackageState(ctx, order.ID, pkg.ID, entity.PackageStateEnRoute, "op-1"); err != nil {
		t.Fatalf("en_route: %v", err)
	}
	if _, err := svc.UpdatePackageState(ctx, order.ID, pkg.ID, entity.PackageStateReturned, "op-1"); err != nil {
		t.Fatalf("returned: %v", err)
	}
	if _, err := svc.AssemblePackage(ctx, order.ID, AssemblePackageRequest{
		ItemIDs: []string{itemID},
	}, "op-1"); err != nil {
		t.Fatalf("reassembling a returned item: %v", err)
	}
}

func TestIncidentRollupsRecompute(t *testing.T) {
	svc, incidentSvc, repos := setupOrderService(t)
	ctx := context.Background()

	order, _, err := svc.CreateOrder(ctx, CreateOrderRequest{
		Items: []OrderItemRequest{{Title: "Blusa", Quantity: 1, PricePublic: 50}},
	}, "op-1")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	low, err := incidentSvc.CreateIncident(ctx, order.ID, CreateIncidentRequest{
		Type: entity.IncidentTypeItemMissing, Description: "Falta una pieza",
	}, "op-1")
	if err != nil {
		t.Fatalf("CreateIncident: %v", err)
	}
	if low.Severity != entity.IncidentSeverityLow {
		t.Errorf("default severity = %s, want low", low.Severity)
	}

	high, err := incidentSvc.CreateIncident(ctx, order.ID, CreateIncidentRequest{
		Type: entity.IncidentTypeDamagedGoods, Severity: entity.IncidentSeverityHigh,
	}, "op-1")
	if err != nil {
		t.Fatalf("CreateIncident high: %v", err)
	}

	got, err := repos.Order.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.OpenIncidents != 2 || !got.HasHighIncident {
		t.Fatalf("rollups after create: open=%d high=%v", got.OpenIncidents, got.HasHighIncident)
	}
	if got.LastIncidentAt == nil {
		t.Fatal("last_incident_at must be set")
	}

	// Resolution needs a note.
	if _, err := incidentSvc.ResolveIncident(ctx, order.ID, high.ID, ResolveIncidentRequest{}, "op-1"); err == nil {
		t.Fatal("resolution without note must be rejected")
	}

	if _, err := incidentSvc.ResolveIncident(ctx, order.ID, high.ID, ResolveIncidentRequest{
		ResolutionNote: "Pieza reemplazada",
	}, "op-1"); err != nil {
		t.Fatalf("ResolveIncident: %v", err)
	}

	got, _ = repos.Order.FindByID(ctx, order.ID)
	if got.OpenIncidents != 1 || got.HasHighIncident {
		t.Fatalf("rollups after resolve: open=%d high=%v", got.OpenIncidents, got.HasHighIncident)
	}

	// Resolving twice is rejected.
	if _, err := incidentSvc.ResolveIncident(ctx, order.ID, high.ID, ResolveIncidentRequest{
		ResolutionNote: "otra vez",
	}, "op-1"); err == nil {
		t.Fatal("double resolution must be rejected")
	}
}

func TestTimelineEventsRecorded(t *testing.T) {
	svc, _, _ := setupOrderService(t)
	ctx := context.Background()

	order, _, err := svc.CreateOrder(ctx, CreateOrderRequest{
		Items: []OrderItemRequest{{Title: "Blusa", Quantity: 1, PricePublic: 50}},
	}, "op-1")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, order.ID, entity.OrderStatusConfirmingSupplier, "op-1"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	events, total, err := svc.ListEvents(ctx, order.ID, 1, 20)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if total < 2 {
		t.Fatalf("expected create + status_change events, got %d", total)
	}
	// Newest first.
	if events[0].Action != "status_change" {
		t.Errorf("latest event = %s, want status_change", events[0].Action)
	}
}
