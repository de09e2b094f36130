package handler

import (
	"errors"

	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/orders/repository"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/orders/service"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/web"
	"github.com/gin-gonic/gin"
)

type IncidentHandler struct {
	svc *service.IncidentService
}

func NewIncidentHandler(svc *service.IncidentService) *IncidentHandler {
	return &IncidentHandler{svc: svc}
}

// GET /api/v1/orders/:id/incidents
func (h *IncidentHandler) ListIncidents(c *gin.Context) {
	items, err := h.svc.ListIncidents(c.Request.Context(), c.Param("id"))
	if err != nil {
		web.InternalError(c, "No se pudieron obtener las incidencias: "+err.Error())
		return
	}
	web.Success(c, items)
}

// POST /api/v1/orders/:id/incidents
func (h *IncidentHandler) CreateIncident(c *gin.Context) {
	var req service.CreateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "Parámetros inválidos: "+err.Error())
		return
	}

	inc, err := h.svc.CreateIncident(c.Request.Context(), c.Param("id"), req, web.GetUserID(c))
	if err != nil {
		respondIncidentError(c, err, "No se pudo crear la incidencia")
		return
	}
	web.Created(c, inc)
}

// PUT /api/v1/orders/:id/incidents/:incidentId
func (h *IncidentHandler) UpdateIncident(c *gin.Context) {
	var req service.UpdateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "Parámetros inválidos: "+err.Error())
		return
	}

	inc, err := h.svc.UpdateIncident(c.Request.Context(), c.Param("id"), c.Param("incidentId"), req, web.GetUserID(c))
	if err != nil {
		respondIncidentError(c, err, "No se pudo actualizar la incidencia")
		return
	}
	web.Success(c, inc)
}

// POST /api/v1/orders/:id/incidents/:incidentId/resolve
func (h *IncidentHandler) ResolveIncident(c *gin.Context) {
	var req service.ResolveIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "La nota de resolución es obligatoria")
		return
	}

	inc, err := h.svc.ResolveIncident(c.Request.Context(), c.Param("id"), c.Param("incidentId"), req, web.GetUserID(c))
	if err != nil {
		respondIncidentError(c, err, "No se pudo resolver la incidencia")
		return
	}
	web.Success(c, inc)
}

// POST /api/v1/orders/:id/incidents/:incidentId/evidence (multipart)
func (h *IncidentHandler) UploadEvidence(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		web.BadRequest(c, "Archivo requerido")
		return
	}

	src, err := file.Open()
	if err != nil {
		web.InternalError(c, "No se pudo leer el archivo: "+err.Error())
		return
	}
	defer src.Close()

	inc, err := h.svc.UploadEvidence(c.Request.Context(), c.Param("id"), c.Param("incidentId"),
		src, file.Filename, file.Size, file.Header.Get("Content-Type"), web.GetUserID(c))
	if err != nil {
		respondIncidentError(c, err, "No se pudo subir la evidencia")
		return
	}
	web.Success(c, inc)
}

func respondIncidentError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		web.NotFound(c, "El recurso no existe")
	case errors.Is(err, service.ErrResolutionNoteRequired),
		errors.Is(err, service.ErrIncidentResolved),
		errors.Is(err, service.ErrInvalidState):
		web.BadRequest(c, err.Error())
	default:
		web.InternalError(c, fallback+": "+err.Error())
	}
}
