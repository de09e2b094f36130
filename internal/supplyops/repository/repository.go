package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories bundles the supply-operations repositories.
type Repositories struct {
	Supplier  *SupplierRepository
	Operation *OperationRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Supplier:  NewSupplierRepository(db),
		Operation: NewOperationRepository(db),
	}
}
