package handler

import (
	"github.com/gin-gonic/gin"

	"barangay_portal_backend/internal/dashboard/service"
	"barangay_portal_backend/internal/dashboard/transport"
	"barangay_portal_backend/platform/httpkit"
)

// Handler handles HTTP requests for the staff dashboard.
type Handler struct {
	svc *service.Service
}

// New creates a new dashboard handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Stats returns the dashboard snapshot.
// GET /api/v1/admin/dashboard
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToStatsResponse(stats))
}
