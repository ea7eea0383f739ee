package notification

import (
	"context"
	"fmt"

	"barangay_portal_backend/internal/email"
	"barangay_portal_backend/internal/events"
	apphttp "barangay_portal_backend/internal/http"
	"barangay_portal_backend/internal/notification/handler"
	"barangay_portal_backend/internal/notification/inapp"
	"barangay_portal_backend/internal/notification/outbox"
	"barangay_portal_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires the notification pipeline: the resident-facing dispatcher
// (direct or outbox-backed) and the staff activity feed.
type Module struct {
	dispatcher Dispatcher
	courier    *Courier
	outboxRepo *outbox.Repository
	feed       *inapp.Service
	handler    *handler.HTTPHandler
	log        *logger.Logger
}

var _ apphttp.Module = (*Module)(nil)

// NewModule builds the notification module. When useOutbox is true the
// dispatcher writes durable rows for the scheduler worker; otherwise mail is
// sent inline.
func NewModule(pool *pgxpool.Pool, sender email.Sender, store AttachmentStore, artifactBucket string, useOutbox bool, log *logger.Logger) *Module {
	courier := NewCourier(sender, store, artifactBucket)
	outboxRepo := outbox.New(pool)

	var dispatcher Dispatcher
	if useOutbox {
		dispatcher = NewOutboxDispatcher(outboxRepo, log)
	} else {
		dispatcher = NewDirectDispatcher(courier, log)
	}

	feedRepo := inapp.NewRepository(pool)
	feed := inapp.NewService(feedRepo, log)

	return &Module{
		dispatcher: dispatcher,
		courier:    courier,
		outboxRepo: outboxRepo,
		feed:       feed,
		handler:    handler.NewHTTPHandler(feed),
		log:        log,
	}
}

func (m *Module) Name() string { return "notification" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Staff.Group("/notifications"))
}

// Dispatcher returns the resident-facing dispatcher for domain services.
func (m *Module) Dispatcher() Dispatcher { return m.dispatcher }

// Courier returns the delivery mapper used by the scheduler worker.
func (m *Module) Courier() *Courier { return m.courier }

// OutboxRepository exposes the durable queue for the scheduler.
func (m *Module) OutboxRepository() *outbox.Repository { return m.outboxRepo }

// RegisterHandlers subscribes the staff feed to domain events so new
// submissions show up in the admin dashboard without polling.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.CertificateSubmitted{}.EventName(), events.HandlerFunc(m.onCertificateSubmitted))
	bus.Subscribe(events.AppointmentBooked{}.EventName(), events.HandlerFunc(m.onAppointmentBooked))
	bus.Subscribe(events.ContactMessageReceived{}.EventName(), events.HandlerFunc(m.onContactMessageReceived))
}

func (m *Module) onCertificateSubmitted(ctx context.Context, event events.Event) error {
	e, ok := event.(events.CertificateSubmitted)
	if !ok {
		return nil
	}
	id := e.RequestID
	return m.feed.Post(ctx, inapp.PostParams{
		Title:        "New certificate request",
		Content:      fmt.Sprintf("%s requested (%s)", e.CertificateType, e.TrackingID),
		ResourceID:   &id,
		ResourceType: "certificate_request",
		Category:     "info",
	})
}

func (m *Module) onAppointmentBooked(ctx context.Context, event events.Event) error {
	e, ok := event.(events.AppointmentBooked)
	if !ok {
		return nil
	}
	id := e.AppointmentID
	return m.feed.Post(ctx, inapp.PostParams{
		Title:        "New appointment request",
		Content:      fmt.Sprintf("%s on %s at %s (%s)", e.ServiceType, e.Date, e.Time, e.TrackingID),
		ResourceID:   &id,
		ResourceType: "appointment",
		Category:     "info",
	})
}

func (m *Module) onContactMessageReceived(ctx context.Context, event events.Event) error {
	e, ok := event.(events.ContactMessageReceived)
	if !ok {
		return nil
	}
	id := e.MessageID
	return m.feed.Post(ctx, inapp.PostParams{
		Title:        "New contact message",
		Content:      fmt.Sprintf("%s: %s", e.Name, e.Subject),
		ResourceID:   &id,
		ResourceType: "contact_message",
		Category:     "info",
	})
}
