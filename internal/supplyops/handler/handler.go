package handler

import (
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/supplyops/service"
)

// Handlers bundles the supply-operations HTTP handlers.
type Handlers struct {
	Supplier  *SupplierHandler
	Operation *OperationHandler
}

func NewHandlers(supplierSvc *service.SupplierService, reconcilerSvc *service.ReconcilerService) *Handlers {
	return &Handlers{
		Supplier:  NewSupplierHandler(supplierSvc),
		Operation: NewOperationHandler(reconcilerSvc),
	}
}
