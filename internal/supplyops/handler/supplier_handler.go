package handler

import (
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/supplyops/service"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/web"
	"github.com/gin-gonic/gin"
)

type SupplierHandler struct {
	svc *service.SupplierService
}

func NewSupplierHandler(svc *service.SupplierService) *SupplierHandler {
	return &SupplierHandler{svc: svc}
}

// GET /api/v1/suppliers?search=xxx&status=xxx&page=1&page_size=20
func (h *SupplierHandler) ListSuppliers(c *gin.Context) {
	page, pageSize := web.GetPagination(c)
	filters := map[string]string{
		"search": c.Query("search"),
		"status": c.Query("status"),
	}

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		web.InternalError(c, "No se pudo obtener la lista de proveedores: "+err.Error())
		return
	}
	web.Success(c, web.Paginated(items, page, pageSize, total))
}

// GET /api/v1/suppliers/:id
func (h *SupplierHandler) GetSupplier(c *gin.Context) {
	supplier, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		web.NotFound(c, "El proveedor no existe")
		return
	}
	web.Success(c, supplier)
}

// POST /api/v1/suppliers
func (h *SupplierHandler) CreateSupplier(c *gin.Context) {
	var req service.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "Parámetros inválidos: "+err.Error())
		return
	}

	supplier, err := h.svc.Create(c.Request.Context(), req, web.GetUserID(c))
	if err != nil {
		web.InternalError(c, "No se pudo crear el proveedor: "+err.Error())
		return
	}
	web.Created(c, supplier)
}

// PUT /api/v1/suppliers/:id
func (h *SupplierHandler) UpdateSupplier(c *gin.Context) {
	var req service.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "Parámetros inválidos: "+err.Error())
		return
	}

	supplier, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		web.BadRequest(c, "No se pudo actualizar el proveedor: "+err.Error())
		return
	}
	web.Success(c, supplier)
}
