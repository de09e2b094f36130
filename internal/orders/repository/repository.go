package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories bundles the order-module repositories.
type Repositories struct {
	Order    *OrderRepository
	Incident *IncidentRepository
	Event    *EventRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Order:    NewOrderRepository(db),
		Incident: NewIncidentRepository(db),
		Event:    NewEventRepository(db),
	}
}
