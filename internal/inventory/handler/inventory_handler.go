package handler

import (
	"errors"

	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/inventory/repository"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/inventory/service"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/web"
	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	svc *service.InventoryService
}

func NewInventoryHandler(svc *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// GET /api/v1/inventory?search=xxx&supplier_id=xxx&in_stock=true&page=1
func (h *InventoryHandler) ListItems(c *gin.Context) {
	page, pageSize := web.GetPagination(c)
	filters := map[string]string{
		"search":      c.Query("search"),
		"supplier_id": c.Query("supplier_id"),
		"in_stock":    c.Query("in_stock"),
	}

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		web.InternalError(c, "No se pudo obtener el inventario: "+err.Error())
		return
	}
	web.Success(c, web.Paginated(items, page, pageSize, total))
}

// GET /api/v1/inventory/:id
func (h *InventoryHandler) GetItem(c *gin.Context) {
	item, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		web.NotFound(c, "El artículo no existe")
		return
	}
	web.Success(c, item)
}

// GET /api/v1/inventory/:id/movements
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	page, pageSize := web.GetPagination(c)
	items, total, err := h.svc.ListMovements(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		web.InternalError(c, "No se pudieron obtener los movimientos: "+err.Error())
		return
	}
	web.Success(c, web.Paginated(items, page, pageSize, total))
}

// POST /api/v1/inventory
func (h *InventoryHandler) UpsertItem(c *gin.Context) {
	var req service.UpsertItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "Parámetros inválidos: "+err.Error())
		return
	}

	item, err := h.svc.UpsertItem(c.Request.Context(), req)
	if err != nil {
		web.InternalError(c, "No se pudo guardar el artículo: "+err.Error())
		return
	}
	web.Success(c, item)
}

// POST /api/v1/inventory/inbound
func (h *InventoryHandler) ReceiveInbound(c *gin.Context) {
	var req service.InboundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "Parámetros inválidos: "+err.Error())
		return
	}
	req.OperatorID = web.GetUserID(c)

	if err := h.svc.ReceiveInbound(c.Request.Context(), req); err != nil {
		respondInventoryError(c, err, "No se pudo registrar la entrada")
		return
	}
	web.Success(c, gin.H{"applied": true})
}

// POST /api/v1/inventory/reserve
func (h *InventoryHandler) ReserveStock(c *gin.Context) {
	var req service.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "Parámetros inválidos: "+err.Error())
		return
	}
	req.OperatorID = web.GetUserID(c)

	if err := h.svc.ReserveStock(c.Request.Context(), req); err != nil {
		respondInventoryError(c, err, "No se pudo reservar")
		return
	}
	web.Success(c, gin.H{"applied": true})
}

// POST /api/v1/inventory/release
func (h *InventoryHandler) ReleaseStock(c *gin.Context) {
	var req service.ReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "Parámetros inválidos: "+err.Error())
		return
	}
	req.OperatorID = web.GetUserID(c)

	if err := h.svc.ReleaseStock(c.Request.Context(), req); err != nil {
		respondInventoryError(c, err, "No se pudo liberar la reserva")
		return
	}
	web.Success(c, gin.H{"applied": true})
}

// POST /api/v1/inventory/:id/adjust
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req service.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "Parámetros inválidos: "+err.Error())
		return
	}
	req.ItemID = c.Param("id")
	req.OperatorID = web.GetUserID(c)

	if err := h.svc.Adjust(c.Request.Context(), req); err != nil {
		respondInventoryError(c, err, "No se pudo ajustar el inventario")
		return
	}
	web.Success(c, gin.H{"applied": true})
}

func respondInventoryError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		web.NotFound(c, "El artículo no existe")
	case errors.Is(err, service.ErrInvalidQty):
		web.BadRequest(c, err.Error())
	default:
		web.InternalError(c, fallback+": "+err.Error())
	}
}
