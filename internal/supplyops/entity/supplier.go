package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONB maps to a postgres jsonb column.
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan JSONB: %v", value)
	}
	return json.Unmarshal(bytes, j)
}

// Supplier is a sourcing counterpart, typically a wholesale stall or
// small factory.
type Supplier struct {
	ID        string `json:"id" gorm:"primaryKey;size:32"`
	Code      string `json:"code" gorm:"size:32;uniqueIndex;not null"`
	Name      string `json:"name" gorm:"size:200;not null"`
	ShortName string `json:"short_name" gorm:"size:50"`
	Status    string `json:"status" gorm:"size:20;default:active"`

	ContactName string `json:"contact_name" gorm:"size:100"`
	Phone       string `json:"phone" gorm:"size:50"`
	Address     string `json:"address" gorm:"size:500"`

	// Where in the market the stall sits, e.g. "Pasillo 4, local 12".
	MarketLocation string `json:"market_location" gorm:"size:200"`
	PaymentTerms   string `json:"payment_terms" gorm:"size:100"`
	Notes          string `json:"notes" gorm:"type:text"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Supplier) TableName() string {
	return "suppliers"
}

// Supplier status
const (
	SupplierStatusActive   = "active"
	SupplierStatusInactive = "inactive"
)
