package handler

import (
	"errors"

	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/catalog/repository"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/catalog/service"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/web"
	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	svc *service.CatalogService
}

func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// GET /api/v1/catalog/listings?search=xxx&category=xxx&active=true
func (h *CatalogHandler) ListListings(c *gin.Context) {
	page, pageSize := web.GetPagination(c)
	filters := map[string]string{
		"search":      c.Query("search"),
		"category":    c.Query("category"),
		"supplier_id": c.Query("supplier_id"),
		"active":      c.Query("active"),
	}

	items, total, err := h.svc.ListListings(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		web.InternalError(c, "No se pudo obtener el catálogo: "+err.Error())
		return
	}
	web.Success(c, web.Paginated(items, page, pageSize, total))
}

// GET /api/v1/catalog/listings/:id
func (h *CatalogHandler) GetListing(c *gin.Context) {
	item, err := h.svc.GetListing(c.Request.Context(), c.Param("id"))
	if err != nil {
		web.NotFound(c, "El artículo no existe")
		return
	}
	web.Success(c, item)
}

// POST /api/v1/catalog/listings
func (h *CatalogHandler) UpsertListing(c *gin.Context) {
	var req service.ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "Parámetros inválidos: "+err.Error())
		return
	}

	item, err := h.svc.UpsertListing(c.Request.Context(), req)
	if err != nil {
		web.InternalError(c, "No se pudo guardar el artículo: "+err.Error())
		return
	}
	web.Success(c, item)
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// PUT /api/v1/catalog/listings/:id/active
func (h *CatalogHandler) SetListingActive(c *gin.Context) {
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "Parámetros inválidos: "+err.Error())
		return
	}

	item, err := h.svc.SetListingActive(c.Request.Context(), c.Param("id"), *req.Active)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	web.Success(c, item)
}

// GET /api/v1/catalog/customers
func (h *CatalogHandler) ListCustomers(c *gin.Context) {
	page, pageSize := web.GetPagination(c)
	filters := map[string]string{
		"search":   c.Query("search"),
		"route_id": c.Query("route_id"),
		"active":   c.Query("active"),
	}

	items, total, err := h.svc.ListCustomers(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		web.InternalError(c, "No se pudieron obtener las clientas: "+err.Error())
		return
	}
	web.Success(c, web.Paginated(items, page, pageSize, total))
}

// GET /api/v1/catalog/customers/:id
func (h *CatalogHandler) GetCustomer(c *gin.Context) {
	item, err := h.svc.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		web.NotFound(c, "La clienta no existe")
		return
	}
	web.Success(c, item)
}

// POST /api/v1/catalog/customers
func (h *CatalogHandler) UpsertCustomer(c *gin.Context) {
	var req service.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "Parámetros inválidos: "+err.Error())
		return
	}

	item, err := h.svc.UpsertCustomer(c.Request.Context(), req)
	if err != nil {
		web.InternalError(c, "No se pudo guardar la clienta: "+err.Error())
		return
	}
	web.Success(c, item)
}

// GET /api/v1/catalog/routes?active=true
func (h *CatalogHandler) ListRoutes(c *gin.Context) {
	items, err := h.svc.ListRoutes(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		web.InternalError(c, "No se pudieron obtener las rutas: "+err.Error())
		return
	}
	web.Success(c, items)
}

// POST /api/v1/catalog/routes
func (h *CatalogHandler) UpsertRoute(c *gin.Context) {
	var req service.RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "Parámetros inválidos: "+err.Error())
		return
	}

	item, err := h.svc.UpsertRoute(c.Request.Context(), req)
	if err != nil {
		web.InternalError(c, "No se pudo guardar la ruta: "+err.Error())
		return
	}
	web.Success(c, item)
}

// GET /api/v1/catalog/localities?route_id=xxx&active=true
func (h *CatalogHandler) ListLocalities(c *gin.Context) {
	items, err := h.svc.ListLocalities(c.Request.Context(), c.Query("route_id"), c.Query("active") == "true")
	if err != nil {
		web.InternalError(c, "No se pudieron obtener las localidades: "+err.Error())
		return
	}
	web.Success(c, items)
}

// POST /api/v1/catalog/localities
func (h *CatalogHandler) UpsertLocality(c *gin.Context) {
	var req service.LocalityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "Parámetros inválidos: "+err.Error())
		return
	}

	item, err := h.svc.UpsertLocality(c.Request.Context(), req)
	if err != nil {
		web.InternalError(c, "No se pudo guardar la localidad: "+err.Error())
		return
	}
	web.Success(c, item)
}

func respondCatalogError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		web.NotFound(c, "El recurso no existe")
		return
	}
	web.InternalError(c, err.Error())
}
