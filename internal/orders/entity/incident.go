package entity

import "time"

// Incident records an exceptional condition on an order, optionally tied to
// a package or a line item. Incidents are resolved, never deleted.
type Incident struct {
	ID        string  `json:"id" gorm:"primaryKey;size:32"`
	OrderID   string  `json:"order_id" gorm:"size:32;not null;index"`
	PackageID *string `json:"package_id" gorm:"size:32"`
	ItemID    *string `json:"item_id" gorm:"size:36"`

	// Free-form tag, e.g. ITEM_MISSING, PARTIAL_DELIVERY, DISPATCH_BLOCKED.
	Type     string `json:"type" gorm:"size:50;not null"`
	Severity string `json:"severity" gorm:"size:10;default:low"`
	Status   string `json:"status" gorm:"size:10;default:open"`

	AssigneeID     *string     `json:"assignee_id" gorm:"size:32"`
	EvidenceURLs   StringArray `json:"evidence_urls" gorm:"type:jsonb"`
	Description    string      `json:"description" gorm:"type:text"`
	ResolutionNote string      `json:"resolution_note" gorm:"type:text"`

	CreatedBy  string     `json:"created_by" gorm:"size:32"`
	ResolvedBy *string    `json:"resolved_by" gorm:"size:32"`
	ResolvedAt *time.Time `json:"resolved_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (Incident) TableName() string {
	return "order_incidents"
}

// Incident severity
const (
	IncidentSeverityLow    = "low"
	IncidentSeverityMedium = "medium"
	IncidentSeverityHigh   = "high"
)

// Incident status
const (
	IncidentStatusOpen     = "open"
	IncidentStatusResolved = "resolved"
)

// Common incident type tags
const (
	IncidentTypeItemMissing     = "ITEM_MISSING"
	IncidentTypeDamagedGoods    = "DAMAGED_GOODS"
	IncidentTypePartialDelivery = "PARTIAL_DELIVERY"
	IncidentTypeDispatchBlocked = "DISPATCH_BLOCKED"
)
