// Package auth provides account registration and login for the portal.
// Accounts live in the shared users table owned by the identity module; this
// module only adds credentials and tokens on top.
package auth

import (
	"barangay_portal_backend/internal/auth/handler"
	"barangay_portal_backend/internal/auth/service"
	apphttp "barangay_portal_backend/internal/http"
	"barangay_portal_backend/internal/identity/repository"
	"barangay_portal_backend/platform/config"
	"barangay_portal_backend/platform/logger"
	"barangay_portal_backend/platform/validator"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

var _ apphttp.Module = (*Module)(nil)

// NewModule creates and initializes the auth module.
func NewModule(users repository.Repository, cfg config.AuthServiceConfig, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(users, cfg, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Service exposes the auth service.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterRoutes(authGroup)

	ctx.Protected.GET("/auth/me", m.handler.Me)
}
