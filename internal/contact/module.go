// Package contact provides the resident inquiry bounded context: public
// submission plus the staff inbox with email replies.
package contact

import (
	"barangay_portal_backend/internal/contact/handler"
	"barangay_portal_backend/internal/contact/repository"
	"barangay_portal_backend/internal/contact/service"
	"barangay_portal_backend/internal/events"
	apphttp "barangay_portal_backend/internal/http"
	"barangay_portal_backend/internal/notification"
	"barangay_portal_backend/platform/logger"
	"barangay_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the contact bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

var _ apphttp.Module = (*Module)(nil)

// NewModule creates and initializes the contact module.
func NewModule(
	pool *pgxpool.Pool,
	dispatcher notification.Dispatcher,
	bus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, dispatcher, bus, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "contact"
}

// Service exposes the inbox service for the dashboard module.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts public and staff contact routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/contact", ctx.SubmissionRateLimiter.RateLimit(), m.handler.Submit)

	staff := ctx.Staff.Group("/contact")
	staff.GET("", m.handler.List)
	staff.GET("/:id", m.handler.Get)
	staff.PATCH("/:id/read", m.handler.MarkRead)
	staff.DELETE("/:id", m.handler.Delete)
	staff.POST("/:id/reply", m.handler.Reply)
}
