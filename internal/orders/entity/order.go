package entity

import (
	"math"
	"time"
)

// Order is the aggregate root for one customer purchase.
type Order struct {
	ID         string  `json:"id" gorm:"primaryKey;size:32"`
	Code       string  `json:"code" gorm:"size:32;uniqueIndex;not null"`
	CustomerID *string `json:"customer_id" gorm:"size:32;index"`
	RouteID    *string `json:"route_id" gorm:"size:32"`
	Status     string  `json:"status" gorm:"size:24;default:draft"`

	// Operator-declared number of physical parcels; gates dispatch.
	PlannedPackages *int `json:"planned_packages"`

	// Denormalized incident/event rollups, recomputed from the incident
	// table inside the same transaction as every incident write.
	OpenIncidents   int        `json:"open_incidents_count" gorm:"default:0"`
	HasHighIncident bool       `json:"has_high_incident" gorm:"default:false"`
	LastIncidentAt  *time.Time `json:"last_incident_at"`
	LastEventAt     *time.Time `json:"last_event_at"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Notes     string    `json:"notes" gorm:"type:text"`

	Items    []OrderItem     `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	Packages []PackageRecord `json:"packages,omitempty" gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string {
	return "orders"
}

// Order status
const (
	OrderStatusDraft              = "draft"
	OrderStatusConfirmingSupplier = "confirming_supplier"
	OrderStatusInventoryReserved  = "inventory_reserved"
	OrderStatusSupplierRequested  = "supplier_requested"
	OrderStatusInTransit          = "in_transit"
	OrderStatusReceivedQA         = "received_qa"
	OrderStatusPacking            = "packing"
	OrderStatusEnRoute            = "en_route"
	OrderStatusDelivered          = "delivered"
	OrderStatusPaymentPending     = "payment_pending"
	OrderStatusPaid               = "paid"
	OrderStatusCancelled          = "cancelled"
	OrderStatusReturned           = "returned"
)

// orderStatusRank gives the forward ordering of the happy path. The two
// exception states have no rank and are terminal.
var orderStatusRank = map[string]int{
	OrderStatusDraft:              0,
	OrderStatusConfirmingSupplier: 1,
	OrderStatusInventoryReserved:  2,
	OrderStatusSupplierRequested:  3,
	OrderStatusInTransit:          4,
	OrderStatusReceivedQA:         5,
	OrderStatusPacking:            6,
	OrderStatusEnRoute:            7,
	OrderStatusDelivered:          8,
	OrderStatusPaymentPending:     9,
	OrderStatusPaid:               10,
}

// StatusRank returns the happy-path position of a status, -1 for the
// exception states or unknown values.
func StatusRank(status string) int {
	if r, ok := orderStatusRank[status]; ok {
		return r
	}
	return -1
}

// IsTerminalStatus reports whether a status cannot be left.
func IsTerminalStatus(status string) bool {
	return status == OrderStatusPaid || status == OrderStatusCancelled || status == OrderStatusReturned
}

// IsStatusLocked reports whether the reconciler sync must never touch the
// order: anything at received_qa or later, plus the exception states.
func IsStatusLocked(status string) bool {
	if status == OrderStatusCancelled || status == OrderStatusReturned {
		return true
	}
	return StatusRank(status) >= orderStatusRank[OrderStatusReceivedQA]
}

// ValidOrderTransitions is the exhaustive legal-transition table: one step
// forward along the happy path, or out to cancelled/returned from any
// non-terminal state. Terminal states have no exits.
var ValidOrderTransitions = map[string][]string{
	OrderStatusDraft:              {OrderStatusConfirmingSupplier, OrderStatusCancelled, OrderStatusReturned},
	OrderStatusConfirmingSupplier: {OrderStatusInventoryReserved, OrderStatusCancelled, OrderStatusReturned},
	OrderStatusInventoryReserved:  {OrderStatusSupplierRequested, OrderStatusCancelled, OrderStatusReturned},
	OrderStatusSupplierRequested:  {OrderStatusInTransit, OrderStatusCancelled, OrderStatusReturned},
	OrderStatusInTransit:          {OrderStatusReceivedQA, OrderStatusCancelled, OrderStatusReturned},
	OrderStatusReceivedQA:         {OrderStatusPacking, OrderStatusCancelled, OrderStatusReturned},
	OrderStatusPacking:            {OrderStatusEnRoute, OrderStatusCancelled, OrderStatusReturned},
	OrderStatusEnRoute:            {OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned},
	OrderStatusDelivered:          {OrderStatusPaymentPending, OrderStatusCancelled, OrderStatusReturned},
	OrderStatusPaymentPending:     {OrderStatusPaid, OrderStatusCancelled, OrderStatusReturned},
}

// CanTransition reports whether from → to is a legal order status change.
func CanTransition(from, to string) bool {
	for _, s := range ValidOrderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// OrderItem is one product line in an order.
type OrderItem struct {
	ID      string `json:"id" gorm:"primaryKey;size:36"`
	OrderID string `json:"order_id" gorm:"size:32;not null;index"`

	Title    string `json:"title" gorm:"size:200;not null"`
	Variant  string `json:"variant" gorm:"size:100"`
	Color    string `json:"color" gorm:"size:64"`
	Quantity int    `json:"quantity" gorm:"not null"`

	// Origin of the product record: external catalog listing vs. held stock.
	Source string `json:"source" gorm:"size:16;default:catalog"`

	// Mirrors order-level lifecycle tags for list rendering only; not
	// authoritative.
	State string `json:"state" gorm:"size:24"`

	ConfirmationState string `json:"confirmation_state" gorm:"size:16;default:pending"`
	ConfirmedQty      int    `json:"confirmed_qty" gorm:"default:0"`

	SupplierID  *string `json:"supplier_id" gorm:"size:32"`
	ProductID   *string `json:"product_id" gorm:"size:32"`
	InventoryID *string `json:"inventory_id" gorm:"size:36"`

	PricePublic  float64 `json:"price_public" gorm:"type:decimal(12,2)"`
	PriceCost    float64 `json:"price_cost" gorm:"type:decimal(12,2)"`
	PriceClienta float64 `json:"price_clienta" gorm:"type:decimal(12,2)"`

	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// Item source
const (
	ItemSourceCatalog   = "catalog"
	ItemSourceInventory = "inventory"
)

// Confirmation state (confirm-existences phase)
const (
	ConfirmationPending    = "pending"
	ConfirmationConfirmed  = "confirmed"
	ConfirmationOutOfStock = "out_of_stock"
	ConfirmationSubstitute = "substitute"
)

// ResellerPrice computes the reseller price from the public price.
func ResellerPrice(pricePublic float64) float64 {
	return math.Round(pricePublic*0.75*100) / 100
}

// MarginBelowCost flags a reseller price below supplier cost. Soft warning
// only, never a rejection.
func (i *OrderItem) MarginBelowCost() bool {
	return i.PriceClienta < i.PriceCost
}
