// Package identity provides the shared account bounded context. It is not
// HTTP-facing; auth, certificates, and appointments consume its service.
package identity

import (
	"barangay_portal_backend/internal/identity/repository"
	"barangay_portal_backend/internal/identity/service"
	"barangay_portal_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires the identity repository and service.
type Module struct {
	service *service.Service
	repo    repository.Repository
}

// NewModule creates the identity module.
func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	return &Module{service: svc, repo: repo}
}

// Service returns the identity service for other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the user repository.
func (m *Module) Repository() repository.Repository {
	return m.repo
}
