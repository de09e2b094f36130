package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringArray maps a []string to a jsonb column.
type StringArray []string

func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan StringArray: %v", value)
	}
	return json.Unmarshal(bytes, a)
}

// User is a back-office operator account.
type User struct {
	ID       string `json:"id" gorm:"primaryKey;size:32"`
	Username string `json:"username" gorm:"size:64;uniqueIndex;not null"`
	Name     string `json:"name" gorm:"size:100"`
	Email    string `json:"email" gorm:"size:200"`

	PasswordHash string `json:"-" gorm:"size:100;not null"`

	Roles       StringArray `json:"roles" gorm:"type:jsonb"`
	Permissions StringArray `json:"permissions" gorm:"type:jsonb"`

	Status      string     `json:"status" gorm:"size:20;default:active"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// User status
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)
