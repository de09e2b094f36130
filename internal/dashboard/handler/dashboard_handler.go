package handler

import (
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/dashboard/service"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/web"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	svc *service.DashboardService
}

func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// GET /api/v1/dashboard/summary
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	summary, err := h.svc.GetSummary(c.Request.Context())
	if err != nil {
		web.InternalError(c, "No se pudo obtener el resumen: "+err.Error())
		return
	}
	web.Success(c, summary)
}
