// Package dashboard aggregates per-module counters into the staff
// overview endpoint.
package dashboard

import (
	"barangay_portal_backend/internal/dashboard/handler"
	"barangay_portal_backend/internal/dashboard/service"
	apphttp "barangay_portal_backend/internal/http"
)

// Module is the dashboard module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

var _ apphttp.Module = (*Module)(nil)

// NewModule creates and initializes the dashboard module.
func NewModule(
	certificates service.CertificateCounter,
	appointments service.AppointmentCounter,
	inbox service.InboxCounter,
	residents service.ResidentCounter,
) *Module {
	svc := service.New(certificates, appointments, inbox, residents)
	return &Module{handler: handler.New(svc)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "dashboard"
}

// RegisterRoutes mounts the staff stats route.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Staff.GET("/dashboard", m.handler.Stats)
}
