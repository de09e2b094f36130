package handler

import (
	"errors"

	ordersrepo "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/orders/repository"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/supplyops/repository"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/supplyops/service"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/web"
	"github.com/gin-gonic/gin"
)

type OperationHandler struct {
	svc *service.ReconcilerService
}

func NewOperationHandler(svc *service.ReconcilerService) *OperationHandler {
	return &OperationHandler{svc: svc}
}

// GET /api/v1/supply-operations?supplier_id=xxx&status=xxx&order_id=xxx
func (h *OperationHandler) ListOperations(c *gin.Context) {
	page, pageSize := web.GetPagination(c)
	filters := map[string]string{
		"supplier_id": c.Query("supplier_id"),
		"status":      c.Query("status"),
		"order_id":    c.Query("order_id"),
	}

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		web.InternalError(c, "No se pudo obtener la lista de operaciones: "+err.Error())
		return
	}
	web.Success(c, web.Paginated(items, page, pageSize, total))
}

// GET /api/v1/supply-operations/:id
func (h *OperationHandler) GetOperation(c *gin.Context) {
	op, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		web.NotFound(c, "La operación no existe")
		return
	}
	web.Success(c, op)
}

// POST /api/v1/orders/:id/supply-operations
func (h *OperationHandler) UpsertFromOrder(c *gin.Context) {
	ops, err := h.svc.UpsertFromConfirmedOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondOperationError(c, err, "No se pudo generar la lista de surtido")
		return
	}
	web.Success(c, ops)
}

// GET /api/v1/orders/:id/supply-operations
func (h *OperationHandler) ListByOrder(c *gin.Context) {
	ops, err := h.svc.ListByOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		web.InternalError(c, "No se pudieron obtener las operaciones: "+err.Error())
		return
	}
	web.Success(c, ops)
}

type advanceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PUT /api/v1/supply-operations/:id/status
func (h *OperationHandler) AdvanceStatus(c *gin.Context) {
	var req advanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "Parámetros inválidos: "+err.Error())
		return
	}

	op, err := h.svc.AdvanceStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondOperationError(c, err, "No se pudo avanzar la operación")
		return
	}
	web.Success(c, op)
}

type receiveRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
}

// POST /api/v1/supply-operations/:id/receive
func (h *OperationHandler) ReceiveAndAllocate(c *gin.Context) {
	var req receiveRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		web.BadRequest(c, "Parámetros inválidos: "+err.Error())
		return
	}

	op, err := h.svc.ReceiveAndAllocate(c.Request.Context(), c.Param("id"), req.IdempotencyKey, web.GetUserID(c))
	if err != nil {
		respondOperationError(c, err, "No se pudo recibir la operación")
		return
	}
	web.Success(c, op)
}

// GET /api/v1/supply-operations/export?supplier_id=xxx&status=xxx
func (h *OperationHandler) ExportWorklist(c *gin.Context) {
	filters := map[string]string{
		"supplier_id": c.Query("supplier_id"),
		"status":      c.Query("status"),
		"order_id":    c.Query("order_id"),
	}

	f, filename, err := h.svc.ExportWorklist(c.Request.Context(), filters)
	if err != nil {
		web.InternalError(c, "No se pudo exportar la lista: "+err.Error())
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		web.InternalError(c, "write excel: "+err.Error())
	}
}

func respondOperationError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, ordersrepo.ErrNotFound):
		web.NotFound(c, "La operación no existe")
	case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrAlreadyReceived):
		web.BadRequest(c, err.Error())
	default:
		web.InternalError(c, fallback+": "+err.Error())
	}
}
