// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"barangay_portal_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Certificate Domain Events
// =============================================================================

// CertificateSubmitted is published when a new certificate request is created.
type CertificateSubmitted struct {
	BaseEvent
	RequestID       uuid.UUID `json:"requestId"`
	TrackingID      string    `json:"trackingId"`
	UserID          uuid.UUID `json:"userId"`
	CertificateType string    `json:"certificateType"`
	Channel         string    `json:"channel"`
}

func (e CertificateSubmitted) EventName() string { return "certificates.request.submitted" }

// CertificateStatusChanged is published when a certificate request reaches a
// new status (approved, rejected, or an administrative correction).
type CertificateStatusChanged struct {
	BaseEvent
	RequestID       uuid.UUID `json:"requestId"`
	TrackingID      string    `json:"trackingId"`
	CertificateType string    `json:"certificateType"`
	OldStatus       string    `json:"oldStatus"`
	NewStatus       string    `json:"newStatus"`
}

func (e CertificateStatusChanged) EventName() string { return "certificates.request.status_changed" }

// =============================================================================
// Appointment Domain Events
// =============================================================================

// AppointmentBooked is published when a slot booking is admitted.
type AppointmentBooked struct {
	BaseEvent
	AppointmentID uuid.UUID `json:"appointmentId"`
	TrackingID    string    `json:"trackingId"`
	UserID        uuid.UUID `json:"userId"`
	ServiceType   string    `json:"serviceType"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
}

func (e AppointmentBooked) EventName() string { return "appointments.booked" }

// AppointmentStatusChanged is published when an appointment's status changes
// (confirmed, cancelled, or an administrative correction).
type AppointmentStatusChanged struct {
	BaseEvent
	AppointmentID uuid.UUID `json:"appointmentId"`
	TrackingID    string    `json:"trackingId"`
	ServiceType   string    `json:"serviceType"`
	OldStatus     string    `json:"oldStatus"`
	NewStatus     string    `json:"newStatus"`
}

func (e AppointmentStatusChanged) EventName() string { return "appointments.status.changed" }

// =============================================================================
// Contact Domain Events
// =============================================================================

// ContactMessageReceived is published when a resident submits an inquiry.
type ContactMessageReceived struct {
	BaseEvent
	MessageID uuid.UUID `json:"messageId"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
}

func (e ContactMessageReceived) EventName() string { return "contact.message.received" }
