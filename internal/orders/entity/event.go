package entity

import "time"

// TimelineEvent is one append-only audit entry on an order. Every mutating
// operation writes one.
type TimelineEvent struct {
	ID      string `json:"id" gorm:"primaryKey;size:32"`
	OrderID string `json:"order_id" gorm:"size:32;not null;index"`

	Action     string `json:"action" gorm:"size:50;not null"` // create/status_change/item_confirm/package_assign/incident_open...
	FromStatus string `json:"from_status" gorm:"size:24"`
	ToStatus   string `json:"to_status" gorm:"size:24"`

	Content  string `json:"content" gorm:"type:text"`
	Metadata JSONB  `json:"metadata" gorm:"type:jsonb"`

	OperatorID string    `json:"operator_id" gorm:"size:32"`
	CreatedAt  time.Time `json:"created_at"`
}

func (TimelineEvent) TableName() string {
	return "order_events"
}
