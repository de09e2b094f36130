package service

import (
	"context"
	"fmt"
	"testing"

	ordersentity "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/orders/entity"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/supplyops/entity"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/testutil"
)

func TestExportWorklistSpansPages(t *testing.T) {
	svc, _, _, db := setupReconciler(t)
	ctx := context.Background()
	testutil.SeedOrder(t, db, "ord-x1", ordersentity.OrderStatusSupplierRequested)

	total := exportPageSize + 5
	for i := 0; i < total; i++ {
		itemID := fmt.Sprintf("ord-x1-item-%d", i)
		op := entity.SupplierOperation{
			ID:          entity.OperationID("ord-x1", itemID),
			OrderID:     "ord-x1",
			OrderItemID: itemID,
			SupplierID:  "sup-1",
			Title:       fmt.Sprintf("Producto %d", i),
			Quantity:    1,
			Status:      entity.OperationStatusToPickup,
		}
		if err := db.Create(&op).Error; err != nil {
			t.Fatalf("seed operation: %v", err)
		}
	}

	f, filename, err := svc.ExportWorklist(ctx, map[string]string{})
	if err != nil {
		t.Fatalf("ExportWorklist: %v", err)
	}
	if filename == "" {
		t.Error("filename must not be empty")
	}

	rows, err := f.GetRows("Surtido")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	// Header plus every operation, not just the first page.
	if len(rows) != total+1 {
		t.Fatalf("exported %d rows, want %d", len(rows)-1, total)
	}
}
