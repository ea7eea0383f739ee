// Package chatbot stores telemetry from the resident-facing chat widget:
// response ratings and archived transcripts, with staff analytics.
package chatbot

import (
	"barangay_portal_backend/internal/chatbot/handler"
	"barangay_portal_backend/internal/chatbot/repository"
	"barangay_portal_backend/internal/chatbot/service"
	apphttp "barangay_portal_backend/internal/http"
	"barangay_portal_backend/platform/logger"
	"barangay_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the chatbot telemetry module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

var _ apphttp.Module = (*Module)(nil)

// NewModule creates and initializes the chatbot module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "chatbot"
}

// RegisterRoutes mounts public telemetry and staff analytics routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	public := ctx.V1.Group("/chatbot")
	public.POST("/feedback", ctx.SubmissionRateLimiter.RateLimit(), m.handler.Feedback)
	public.POST("/conversations", ctx.SubmissionRateLimiter.RateLimit(), m.handler.Conversation)

	ctx.Staff.GET("/chatbot/analytics", m.handler.Analytics)
}
