package service

import (
	"testing"

	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/orders/entity"
)

var allStatuses = []string{
	entity.OrderStatusDraft,
	entity.OrderStatusConfirmingSupplier,
	entity.OrderStatusInventoryReserved,
	entity.OrderStatusSupplierRequested,
	entity.OrderStatusInTransit,
	entity.OrderStatusReceivedQA,
	entity.OrderStatusPacking,
	entity.OrderStatusEnRoute,
	entity.OrderStatusDelivered,
	entity.OrderStatusPaymentPending,
	entity.OrderStatusPaid,
	entity.OrderStatusCancelled,
	entity.OrderStatusReturned,
}

func intPtr(v int) *int { return &v }

// orderVariants produces orders in a status across the interesting shape
// combinations: with/without items, with/without packages, planned set or
// not, items resolved or pending.
func orderVariants(status string) []*entity.Order {
	confirmed := entity.OrderItem{
		ID: "item-a", Title: "Blusa", Quantity: 2,
		ConfirmationState: entity.ConfirmationConfirmed, ConfirmedQty: 2,
	}
	pending := entity.OrderItem{
		ID: "item-b", Title: "Falda", Quantity: 1,
		ConfirmationState: entity.ConfirmationPending,
	}
	closedPkg := entity.PackageRecord{
		ID: "pkg-a", Sequence: 1, TotalPackages: 1,
		State: entity.PackageStateAssembled, ItemIDs: entity.StringArray{"item-a"},
	}

	return []*entity.Order{
		{ID: "o1", Status: status},
		{ID: "o2", Status: status, Items: []entity.OrderItem{confirmed}},
		{ID: "o3", Status: status, Items: []entity.OrderItem{confirmed, pending}},
		{ID: "o4", Status: status, Items: []entity.OrderItem{confirmed},
			Packages: []entity.PackageRecord{closedPkg}},
		{ID: "o5", Status: status, Items: []entity.OrderItem{confirmed},
			Packages: []entity.PackageRecord{closedPkg}, PlannedPackages: intPtr(1)},
		{ID: "o6", Status: status, Items: []entity.OrderItem{confirmed},
			PlannedPackages: intPtr(2)},
	}
}

// The primary action's disabled flag must always equal its own checklist's
// blocking flag, for every status and order shape.
func TestPrimaryActionMatchesChecklist(t *testing.T) {
	for _, status := range allStatuses {
		for _, order := range orderVariants(status) {
			act := PrimaryAction(order)
			cl := ActionChecklist(order, act.ActionID)
			if act.Disabled != cl.Blocking {
				t.Errorf("status=%s order=%s action=%s: disabled=%v but blocking=%v",
					status, order.ID, act.ActionID, act.Disabled, cl.Blocking)
			}
			if act.Disabled && act.Reason == "" {
				t.Errorf("status=%s order=%s: disabled action must carry a reason", status, order.ID)
			}
			if !act.Disabled && act.Reason != "" {
				t.Errorf("status=%s order=%s: enabled action must not carry a reason", status, order.ID)
			}
		}
	}
}

func TestPrimaryActionPerStatus(t *testing.T) {
	cases := []struct {
		status string
		action string
	}{
		{entity.OrderStatusDraft, ActionCompleteOrder},
		{entity.OrderStatusConfirmingSupplier, ActionConfirmExist},
		{entity.OrderStatusInventoryReserved, ActionRequestSuppliers},
		{entity.OrderStatusSupplierRequested, ActionTrackInbound},
		{entity.OrderStatusInTransit, ActionReceiveQA},
		{entity.OrderStatusReceivedQA, ActionPrepareDispatch},
		{entity.OrderStatusPacking, ActionDispatch},
		{entity.OrderStatusEnRoute, ActionRegisterDelivery},
		{entity.OrderStatusDelivered, ActionRegisterPayment},
		{entity.OrderStatusPaymentPending, ActionConfirmPayment},
		{entity.OrderStatusPaid, ActionViewOrder},
		{entity.OrderStatusCancelled, ActionViewOrder},
		{entity.OrderStatusReturned, ActionViewOrder},
	}
	for _, c := range cases {
		act := PrimaryAction(&entity.Order{ID: "o", Status: c.status})
		if act.ActionID != c.action {
			t.Errorf("status=%s: got action %s, want %s", c.status, act.ActionID, c.action)
		}
	}
}

func TestCompleteOrderRequiresItems(t *testing.T) {
	empty := &entity.Order{ID: "o", Status: entity.OrderStatusDraft}
	act := PrimaryAction(empty)
	if !act.Disabled {
		t.Fatal("draft order without items must have a disabled primary action")
	}

	withItems := &entity.Order{
		ID: "o", Status: entity.OrderStatusDraft,
		Items: []entity.OrderItem{{ID: "i", Quantity: 1}},
	}
	act = PrimaryAction(withItems)
	if act.Disabled {
		t.Fatalf("draft order with items should be actionable, got reason %q", act.Reason)
	}
}

func TestConfirmExistencesRequiresResolution(t *testing.T) {
	order := &entity.Order{
		ID: "o", Status: entity.OrderStatusConfirmingSupplier,
		Items: []entity.OrderItem{
			{ID: "a", Quantity: 1, ConfirmationState: entity.ConfirmationConfirmed, ConfirmedQty: 1},
			{ID: "b", Quantity: 1, ConfirmationState: entity.ConfirmationPending},
		},
	}
	if !PrimaryAction(order).Disabled {
		t.Fatal("pending items must block confirm_existences")
	}

	order.Items[1].ConfirmationState = entity.ConfirmationOutOfStock
	if PrimaryAction(order).Disabled {
		t.Fatal("out_of_stock counts as resolved")
	}
}

func TestPrepareDispatchChecklist(t *testing.T) {
	confirmed := entity.OrderItem{
		ID: "item-a", Quantity: 2,
		ConfirmationState: entity.ConfirmationConfirmed, ConfirmedQty: 2,
	}
	order := &entity.Order{
		ID: "o", Status: entity.OrderStatusReceivedQA,
		Items: []entity.OrderItem{confirmed},
	}

	// Nothing planned, nothing packed.
	cl := ActionChecklist(order, ActionPrepareDispatch)
	if !cl.Blocking {
		t.Fatal("dispatch must be blocked with no plan and no packages")
	}

	// Planned but packages missing.
	order.PlannedPackages = intPtr(2)
	order.Packages = []entity.PackageRecord{{
		ID: "p1", Sequence: 1, TotalPackages: 2,
		State: entity.PackageStateAssembled, ItemIDs: entity.StringArray{"item-a"},
	}}
	cl = ActionChecklist(order, ActionPrepareDispatch)
	if !cl.Blocking {
		t.Fatal("one of two planned packages must still block")
	}

	// Fully packed.
	order.Packages = append(order.Packages, entity.PackageRecord{
		ID: "p2", Sequence: 2, TotalPackages: 2,
		State: entity.PackageStateAssembled,
	})
	cl = ActionChecklist(order, ActionPrepareDispatch)
	if cl.Blocking {
		for _, item := range cl.Items {
			if !item.OK {
				t.Fatalf("unexpected blocking item %s", item.Key)
			}
		}
	}

	// A returned package no longer counts as closed.
	order.Packages[1].State = entity.PackageStateReturned
	cl = ActionChecklist(order, ActionPrepareDispatch)
	if !cl.Blocking {
		t.Fatal("returned package must not count toward the plan")
	}
}

func TestUnassignedItemBlocksDispatch(t *testing.T) {
	order := &entity.Order{
		ID: "o", Status: entity.OrderStatusReceivedQA,
		PlannedPackages: intPtr(1),
		Items: []entity.OrderItem{
			{ID: "a", Quantity: 1, ConfirmationState: entity.ConfirmationConfirmed, ConfirmedQty: 1},
			{ID: "b", Quantity: 1, ConfirmationState: entity.ConfirmationSubstitute, ConfirmedQty: 1},
		},
		Packages: []entity.PackageRecord{{
			ID: "p1", Sequence: 1, TotalPackages: 1,
			State: entity.PackageStateAssembled, ItemIDs: entity.StringArray{"a"},
		}},
	}
	cl := ActionChecklist(order, ActionPrepareDispatch)
	if !cl.Blocking {
		t.Fatal("substitute item outside any package must block dispatch")
	}

	order.Packages[0].ItemIDs = entity.StringArray{"a", "b"}
	cl = ActionChecklist(order, ActionPrepareDispatch)
	if cl.Blocking {
		t.Fatal("all confirmed items assigned, dispatch should be clear")
	}
}
