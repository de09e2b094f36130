package entity

import (
	"time"

	"github.com/google/uuid"
)

// itemNamespace seeds synthetic inventory ids so the same supplier/product
// combination always resolves to the same record.
var itemNamespace = uuid.MustParse("b7d3f0a2-9c41-4e6d-8f25-1a0c6e93d547")

// SyntheticItemID derives a stable inventory item id for a line that has no
// inventory record yet.
func SyntheticItemID(supplierID, productRef, variant, color string) string {
	return uuid.NewSHA1(itemNamespace, []byte(supplierID+"|"+productRef+"|"+variant+"|"+color)).String()
}

// InventoryItem is one held-stock record.
type InventoryItem struct {
	ID string `json:"id" gorm:"primaryKey;size:64"`

	Title   string `json:"title" gorm:"size:200;not null"`
	Variant string `json:"variant" gorm:"size:100"`
	Color   string `json:"color" gorm:"size:64"`

	SupplierID *string `json:"supplier_id" gorm:"size:32;index"`
	ProductRef string  `json:"product_ref" gorm:"size:64;index"`

	AvailableQty int `json:"available_qty" gorm:"default:0"`
	ReservedQty  int `json:"reserved_qty" gorm:"default:0"`

	UnitCost    float64 `json:"unit_cost" gorm:"type:decimal(12,2)"`
	PricePublic float64 `json:"price_public" gorm:"type:decimal(12,2)"`
	ImageURL    string  `json:"image_url" gorm:"size:500"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (InventoryItem) TableName() string {
	return "inventory_items"
}

// Movement types
const (
	MovementTypeInbound = "inbound"
	MovementTypeReserve = "reserve"
	MovementTypeRelease = "release"
	MovementTypeAdjust  = "adjust"
)

// InventoryMovement is the append-only stock ledger. The unique idempotency
// key makes repeated receipts and reservations no-ops.
type InventoryMovement struct {
	ID     string `json:"id" gorm:"primaryKey;size:32"`
	ItemID string `json:"item_id" gorm:"size:64;not null;index"`

	Type string `json:"type" gorm:"size:16;not null"`
	Qty  int    `json:"qty" gorm:"not null"`

	OrderID     *string `json:"order_id" gorm:"size:32;index"`
	OrderItemID *string `json:"order_item_id" gorm:"size:36"`

	IdempotencyKey string `json:"idempotency_key" gorm:"size:128;uniqueIndex;not null"`
	Reason         string `json:"reason" gorm:"size:200"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
}

func (InventoryMovement) TableName() string {
	return "inventory_movements"
}
