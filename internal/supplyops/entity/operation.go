package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// opNamespace seeds the deterministic operation id so the same order line
// always maps to the same row.
var opNamespace = uuid.MustParse("5e9c2a47-3d1f-4b8a-9c6e-2f0d8b714a3c")

// OperationID derives the stable procurement-line id for an order item.
func OperationID(orderID, orderItemID string) string {
	return uuid.NewSHA1(opNamespace, []byte(orderID+"/"+orderItemID)).String()
}

// SupplierOperation is one procurement line in the worklist, derived from a
// confirmed supplier-sourced order item. It advances through a strictly
// forward 4-stage pipeline and is terminal at received.
type SupplierOperation struct {
	ID          string `json:"id" gorm:"primaryKey;size:36"`
	OrderID     string `json:"order_id" gorm:"size:32;not null;index"`
	OrderItemID string `json:"order_item_id" gorm:"size:36;not null;index"`
	SupplierID  string `json:"supplier_id" gorm:"size:32;not null;index"`

	Title    string `json:"title" gorm:"size:200"`
	Variant  string `json:"variant" gorm:"size:100"`
	Color    string `json:"color" gorm:"size:64"`
	Quantity int    `json:"quantity" gorm:"not null"`

	Status string `json:"status" gorm:"size:16;default:to_pickup"`

	// Receipt allocation. InventoryItemID is set once, when the receive
	// transition allocates or synthesizes the inventory record.
	InventoryItemID     *string `json:"inventory_item_id" gorm:"size:64"`
	ReceivedToInventory bool    `json:"received_to_inventory" gorm:"default:false"`
	ReservationApplied  bool    `json:"reservation_applied" gorm:"default:false"`
	ReceivedQty         int     `json:"received_qty" gorm:"default:0"`
	ReservedQtyForOrder int     `json:"reserved_qty_for_order" gorm:"default:0"`

	// Markers for the staged receive sequence, keyed by derived idempotency
	// token, value is an RFC3339 timestamp of when the stage completed.
	IdempotencyKeys JSONB `json:"idempotency_keys" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SupplierOperation) TableName() string {
	return "supplier_operations"
}

// Operation status
const (
	OperationStatusToPickup  = "to_pickup"
	OperationStatusPickedUp  = "picked_up"
	OperationStatusInTransit = "in_transit"
	OperationStatusReceived  = "received"
)

// ValidOperationTransitions is the strictly forward pipeline.
var ValidOperationTransitions = map[string][]string{
	OperationStatusToPickup:  {OperationStatusPickedUp},
	OperationStatusPickedUp:  {OperationStatusInTransit},
	OperationStatusInTransit: {OperationStatusReceived},
}

// CanOperationTransition reports whether from → to is a legal pipeline step.
func CanOperationTransition(from, to string) bool {
	for _, s := range ValidOperationTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// HasMarker reports whether an idempotency stage already completed.
func (op *SupplierOperation) HasMarker(key string) bool {
	if op.IdempotencyKeys == nil {
		return false
	}
	_, ok := op.IdempotencyKeys[key]
	return ok
}

// SetMarker stamps a stage as done.
func (op *SupplierOperation) SetMarker(key string, at time.Time) {
	if op.IdempotencyKeys == nil {
		op.IdempotencyKeys = JSONB{}
	}
	op.IdempotencyKeys[key] = at.Format(time.RFC3339)
}

// TxMarkerKey and FinalMarkerKey name the two staged-receive markers for an
// idempotency root.
func TxMarkerKey(root string) string    { return fmt.Sprintf("tx_%s", root) }
func FinalMarkerKey(root string) string { return fmt.Sprintf("final_%s", root) }
