// Package appointments provides the health-center appointment bounded
// context: public slot booking and tracking plus the staff queue.
package appointments

import (
	"barangay_portal_backend/internal/appointments/handler"
	"barangay_portal_backend/internal/appointments/repository"
	"barangay_portal_backend/internal/appointments/service"
	"barangay_portal_backend/internal/events"
	apphttp "barangay_portal_backend/internal/http"
	identityservice "barangay_portal_backend/internal/identity/service"
	"barangay_portal_backend/internal/notification"
	"barangay_portal_backend/internal/tracking"
	"barangay_portal_backend/platform/logger"
	"barangay_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the appointments bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

var _ apphttp.Module = (*Module)(nil)

// NewModule creates and initializes the appointments module.
func NewModule(
	pool *pgxpool.Pool,
	identity *identityservice.Service,
	dispatcher notification.Dispatcher,
	bus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, identity, tracking.NewGenerator(), dispatcher, bus, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "appointments"
}

// Service exposes the booking service.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository exposes the storage layer for the dashboard module.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts public and staff appointment routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	public := ctx.V1.Group("/appointments")
	public.POST("", ctx.SubmissionRateLimiter.RateLimit(), m.handler.Book)
	public.GET("/slots", m.handler.AvailableSlots)
	public.GET("/track/:trackingId", m.handler.Track)

	mine := ctx.Protected.Group("/my/appointments")
	mine.POST("", ctx.SubmissionRateLimiter.RateLimit(), m.handler.BookOwn)
	mine.GET("", m.handler.ListMine)

	staff := ctx.Staff.Group("/appointments")
	staff.GET("", m.handler.List)
	staff.GET("/:id", m.handler.Get)
	staff.POST("/:id/confirm", m.handler.Confirm)
	staff.POST("/:id/cancel", m.handler.Cancel)
	staff.PATCH("/:id/status", m.handler.SetStatus)
}
