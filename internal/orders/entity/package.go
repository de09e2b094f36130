package entity

import "time"

// PackageRecord is one physical shipping unit of an order.
type PackageRecord struct {
	ID      string `json:"id" gorm:"primaryKey;size:32"`
	OrderID string `json:"order_id" gorm:"size:32;not null;index"`

	Sequence      int    `json:"sequence" gorm:"not null"`
	TotalPackages int    `json:"total_packages" gorm:"not null"`
	State         string `json:"state" gorm:"size:16;default:assembled"`

	// OrderItem ids packed into this unit.
	ItemIDs StringArray `json:"item_ids" gorm:"type:jsonb"`

	// Monetary total collected on delivery, if any.
	AmountDue *float64 `json:"amount_due" gorm:"type:decimal(12,2)"`

	DeliveredAt *time.Time `json:"delivered_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (PackageRecord) TableName() string {
	return "order_packages"
}

// Package state
const (
	PackageStateAssembled = "assembled"
	PackageStateEnRoute   = "en_route"
	PackageStateDelivered = "delivered"
	PackageStateReturned  = "returned"
)

// ValidPackageTransitions is the legal package state flow.
var ValidPackageTransitions = map[string][]string{
	PackageStateAssembled: {PackageStateEnRoute},
	PackageStateEnRoute:   {PackageStateDelivered, PackageStateReturned},
}

// CanPackageTransition reports whether from → to is legal for a package.
func CanPackageTransition(from, to string) bool {
	for _, s := range ValidPackageTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsOpen reports whether the package can still hold item assignments.
func (p *PackageRecord) IsOpen() bool {
	return p.State == PackageStateAssembled || p.State == PackageStateEnRoute
}
