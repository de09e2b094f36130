package handler

import (
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/orders/service"
)

// Handlers bundles the order-module HTTP handlers.
type Handlers struct {
	Order    *OrderHandler
	Incident *IncidentHandler
}

func NewHandlers(orderSvc *service.OrderService, incidentSvc *service.IncidentService) *Handlers {
	return &Handlers{
		Order:    NewOrderHandler(orderSvc),
		Incident: NewIncidentHandler(incidentSvc),
	}
}
