package handler

import (
	"errors"

	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/orders/repository"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/orders/service"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/web"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// GET /api/v1/orders?status=xxx&customer_id=xxx&route_id=xxx&search=xxx&page=1&page_size=20
func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, pageSize := web.GetPagination(c)
	filters := map[string]string{
		"status":      c.Query("status"),
		"customer_id": c.Query("customer_id"),
		"route_id":    c.Query("route_id"),
		"search":      c.Query("search"),
	}

	items, total, err := h.svc.ListOrders(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		web.InternalError(c, "No se pudo obtener la lista de pedidos: "+err.Error())
		return
	}
	web.Success(c, web.Paginated(items, page, pageSize, total))
}

// GET /api/v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.svc.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		web.NotFound(c, "El pedido no existe")
		return
	}
	web.Success(c, order)
}

// POST /api/v1/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "Parámetros inválidos: "+err.Error())
		return
	}

	order, warnings, err := h.svc.CreateOrder(c.Request.Context(), req, web.GetUserID(c))
	if err != nil {
		web.InternalError(c, "No se pudo crear el pedido: "+err.Error())
		return
	}
	web.Created(c, gin.H{"order": order, "warnings": warnings})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PUT /api/v1/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "Parámetros inválidos: "+err.Error())
		return
	}

	order, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, web.GetUserID(c))
	if err != nil {
		respondServiceError(c, err, "No se pudo actualizar el estado")
		return
	}
	web.Success(c, order)
}

type updateItemsRequest struct {
	Items []service.OrderItemRequest `json:"items" binding:"required"`
}

// PUT /api/v1/orders/:id/items
func (h *OrderHandler) UpdateItems(c *gin.Context) {
	var req updateItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "Parámetros inválidos: "+err.Error())
		return
	}

	order, warnings, err := h.svc.UpdateItems(c.Request.Context(), c.Param("id"), req.Items, web.GetUserID(c))
	if err != nil {
		respondServiceError(c, err, "No se pudieron actualizar los productos")
		return
	}
	web.Success(c, gin.H{"order": order, "warnings": warnings})
}

// PUT /api/v1/orders/:id/items/:itemId/confirmation
func (h *OrderHandler) UpdateItemConfirmation(c *gin.Context) {
	var req service.ItemConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "Parámetros inválidos: "+err.Error())
		return
	}

	item, err := h.svc.UpdateItemConfirmation(c.Request.Context(), c.Param("id"), c.Param("itemId"), req, web.GetUserID(c))
	if err != nil {
		respondServiceError(c, err, "No se pudo confirmar el producto")
		return
	}
	web.Success(c, item)
}

type plannedPackagesRequest struct {
	PlannedPackages int `json:"planned_packages" binding:"required,gt=0"`
}

// PUT /api/v1/orders/:id/planned-packages
func (h *OrderHandler) SetPlannedPackages(c *gin.Context) {
	var req plannedPackagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "Parámetros inválidos: "+err.Error())
		return
	}

	order, err := h.svc.SetPlannedPackages(c.Request.Context(), c.Param("id"), req.PlannedPackages, web.GetUserID(c))
	if err != nil {
		respondServiceError(c, err, "No se pudo registrar la planificación")
		return
	}
	web.Success(c, order)
}

// POST /api/v1/orders/:id/packages
func (h *OrderHandler) AssemblePackage(c *gin.Context) {
	var req service.AssemblePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "Parámetros inválidos: "+err.Error())
		return
	}

	pkg, err := h.svc.AssemblePackage(c.Request.Context(), c.Param("id"), req, web.GetUserID(c))
	if err != nil {
		respondServiceError(c, err, "No se pudo armar el paquete")
		return
	}
	web.Created(c, pkg)
}

type packageStateRequest struct {
	State string `json:"state" binding:"required"`
}

// PUT /api/v1/orders/:id/packages/:packageId/state
func (h *OrderHandler) UpdatePackageState(c *gin.Context) {
	var req packageStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "Parámetros inválidos: "+err.Error())
		return
	}

	pkg, err := h.svc.UpdatePackageState(c.Request.Context(), c.Param("id"), c.Param("packageId"), req.State, web.GetUserID(c))
	if err != nil {
		respondServiceError(c, err, "No se pudo actualizar el paquete")
		return
	}
	web.Success(c, pkg)
}

// POST /api/v1/orders/:id/delivery-payment
func (h *OrderHandler) RegisterDeliveryPayment(c *gin.Context) {
	var req service.DeliveryPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "Parámetros inválidos: "+err.Error())
		return
	}

	pkg, err := h.svc.RegisterDeliveryPayment(c.Request.Context(), c.Param("id"), req, web.GetUserID(c))
	if err != nil {
		respondServiceError(c, err, "No se pudo registrar el pago")
		return
	}
	web.Success(c, pkg)
}

// GET /api/v1/orders/:id/events?page=1&page_size=20
func (h *OrderHandler) ListEvents(c *gin.Context) {
	page, pageSize := web.GetPagination(c)
	items, total, err := h.svc.ListEvents(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		web.InternalError(c, "No se pudo obtener la bitácora: "+err.Error())
		return
	}
	web.Success(c, web.Paginated(items, page, pageSize, total))
}

// GET /api/v1/orders/:id/primary-action
func (h *OrderHandler) GetPrimaryAction(c *gin.Context) {
	order, err := h.svc.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		web.NotFound(c, "El pedido no existe")
		return
	}
	action := service.PrimaryAction(order)
	checklist := service.ActionChecklist(order, action.ActionID)
	web.Success(c, gin.H{"action": action, "checklist": checklist})
}

// GET /api/v1/orders/:id/checklist?action_id=prepare_dispatch
func (h *OrderHandler) GetActionChecklist(c *gin.Context) {
	order, err := h.svc.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		web.NotFound(c, "El pedido no existe")
		return
	}
	actionID := c.Query("action_id")
	if actionID == "" {
		actionID = service.PrimaryAction(order).ActionID
	}
	web.Success(c, service.ActionChecklist(order, actionID))
}

// GET /api/v1/orders/:id/fulfillment
func (h *OrderHandler) GetFulfillmentSummary(c *gin.Context) {
	order, err := h.svc.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		web.NotFound(c, "El pedido no existe")
		return
	}
	unassigned := service.UnassignedConfirmedItems(order)
	web.Success(c, gin.H{
		"confirmed_pieces":    service.ConfirmedPieces(order.Items),
		"out_of_stock_pieces": service.OutOfStockPieces(order.Items),
		"pending_pieces":      service.PendingPieces(order.Items),
		"all_resolved":        service.AllResolved(order.Items),
		"closed_packages":     service.ClosedPackageCount(order),
		"unassigned_items":    unassigned,
		"unassigned_count":    len(unassigned),
	})
}

func respondServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		web.NotFound(c, "El recurso no existe")
	case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrInvalidState):
		web.BadRequest(c, err.Error())
	default:
		web.InternalError(c, fallback+": "+err.Error())
	}
}
