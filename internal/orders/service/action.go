package service

import (
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/orders/entity"
)

// Action identifiers, one per non-terminal order status.
const (
	ActionCompleteOrder    = "complete_order"
	ActionConfirmExist     = "confirm_existences"
	ActionRequestSuppliers = "request_suppliers"
	ActionTrackInbound     = "track_inbound"
	ActionReceiveQA        = "receive_qa"
	ActionPrepareDispatch  = "prepare_dispatch"
	ActionDispatch         = "dispatch"
	ActionRegisterDelivery = "register_delivery"
	ActionRegisterPayment  = "register_delivery_payment"
	ActionConfirmPayment   = "confirm_payment"
	ActionViewOrder        = "view_order"
)

// Action is the single recommended next step for an order.
type Action struct {
	ActionID string `json:"action_id"`
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
	Reason   string `json:"reason,omitempty"`
}

// CheckItem is one named precondition of an action.
type CheckItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	OK    bool   `json:"ok"`
}

// Checklist is the ordered precondition list for an action. Blocking is
// true iff any item failed.
type Checklist struct {
	ActionID string      `json:"action_id"`
	Items    []CheckItem `json:"items"`
	Blocking bool        `json:"blocking"`
}

// statusAction maps each status to its recommended action id and label.
var statusAction = map[string]struct {
	id    string
	label string
}{
	entity.OrderStatusDraft:              {ActionCompleteOrder, "Completar pedido"},
	entity.OrderStatusConfirmingSupplier: {ActionConfirmExist, "Confirmar existencias"},
	entity.OrderStatusInventoryReserved:  {ActionRequestSuppliers, "Solicitar a proveedores"},
	entity.OrderStatusSupplierRequested:  {ActionTrackInbound, "Seguir traslado"},
	entity.OrderStatusInTransit:          {ActionReceiveQA, "Recibir y revisar"},
	entity.OrderStatusReceivedQA:         {ActionPrepareDispatch, "Preparar despacho"},
	entity.OrderStatusPacking:            {ActionDispatch, "Despachar"},
	entity.OrderStatusEnRoute:            {ActionRegisterDelivery, "Registrar entrega"},
	entity.OrderStatusDelivered:          {ActionRegisterPayment, "Registrar pago de entrega"},
	entity.OrderStatusPaymentPending:     {ActionConfirmPayment, "Confirmar pago"},
	entity.OrderStatusPaid:               {ActionViewOrder, "Ver pedido"},
	entity.OrderStatusCancelled:          {ActionViewOrder, "Ver pedido"},
	entity.OrderStatusReturned:           {ActionViewOrder, "Ver pedido"},
}

// PrimaryAction returns the recommended next action for an order. The
// disabled flag and reason are derived from the action's checklist, so the
// two views can never disagree.
func PrimaryAction(order *entity.Order) Action {
	entry, ok := statusAction[order.Status]
	if !ok {
		entry = statusAction[entity.OrderStatusPaid]
	}

	act := Action{ActionID: entry.id, Label: entry.label}
	cl := ActionChecklist(order, entry.id)
	act.Disabled = cl.Blocking
	if cl.Blocking {
		for _, item := range cl.Items {
			if !item.OK {
				act.Reason = item.Label
				break
			}
		}
	}
	return act
}

// ActionChecklist returns the ordered preconditions for an action over the
// given order. Unknown or unconditional actions yield an empty, non-blocking
// checklist.
func ActionChecklist(order *entity.Order, actionID string) Checklist {
	cl := Checklist{ActionID: actionID}

	switch actionID {
	case ActionCompleteOrder:
		cl.Items = append(cl.Items, CheckItem{
			Key:   "has_items",
			Label: "El pedido tiene al menos un producto",
			OK:    len(order.Items) > 0,
		})

	case ActionConfirmExist:
		cl.Items = append(cl.Items, CheckItem{
			Key:   "all_items_resolved",
			Label: "Todos los productos confirmados o marcados sin existencia",
			OK:    AllResolved(order.Items),
		})

	case ActionPrepareDispatch:
		planned := 0
		if order.PlannedPackages != nil {
			planned = *order.PlannedPackages
		}
		cl.Items = append(cl.Items,
			CheckItem{
				Key:   "planned_packages_set",
				Label: "Cantidad de paquetes planificada",
				OK:    order.PlannedPackages != nil && planned > 0,
			},
			CheckItem{
				Key:   "packages_closed",
				Label: "Paquetes cerrados suficientes",
				OK:    order.PlannedPackages != nil && ClosedPackageCount(order) >= planned,
			},
			CheckItem{
				Key:   "no_unassigned_items",
				Label: "Sin productos confirmados fuera de paquete",
				OK:    len(UnassignedConfirmedItems(order)) == 0,
			},
		)

	case ActionDispatch:
		cl.Items = append(cl.Items, CheckItem{
			Key:   "has_packages",
			Label: "El pedido tiene paquetes armados",
			OK:    len(order.Packages) > 0,
		})

	case ActionRegisterPayment:
		cl.Items = append(cl.Items, CheckItem{
			Key:   "has_packages",
			Label: "El pedido tiene paquetes entregados",
			OK:    len(order.Packages) > 0,
		})
	}

	for _, item := range cl.Items {
		if !item.OK {
			cl.Blocking = true
			break
		}
	}
	return cl
}
