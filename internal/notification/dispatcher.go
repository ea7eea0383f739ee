// Package notification routes lifecycle emails to residents and keeps a
// staff-facing activity feed. Domain modules hand a Notification to a
// Dispatcher and never talk to SMTP or object storage directly.
package notification

import (
	"context"

	"barangay_portal_backend/internal/notification/outbox"
	"barangay_portal_backend/platform/logger"
)

// Notification kinds. The kind selects the email template and subject line.
const (
	KindCertificateReceived  = "certificate.received"
	KindCertificateApproved  = "certificate.approved"
	KindCertificateRejected  = "certificate.rejected"
	KindAppointmentReceived  = "appointment.received"
	KindAppointmentConfirmed = "appointment.confirmed"
	KindContactReply         = "contact.reply"
)

// Payload carries the template fields for a notification. Only the fields
// relevant to the kind are set; the rest stay empty and are omitted from the
// stored JSON.
type Payload struct {
	TrackingID      string `json:"trackingId,omitempty"`
	CertificateType string `json:"certificateType,omitempty"`
	ServiceType     string `json:"serviceType,omitempty"`
	Date            string `json:"date,omitempty"`
	Time            string `json:"time,omitempty"`
	Remarks         string `json:"remarks,omitempty"`
	Reason          string `json:"reason,omitempty"`
	Subject         string `json:"subject,omitempty"`
	Body            string `json:"body,omitempty"`
}

// Notification is a single outbound message addressed to one resident.
type Notification struct {
	Kind           string
	RecipientEmail string
	RecipientName  string
	AttachmentKey  *string
	Payload        Payload
}

// Dispatcher accepts a notification for delivery. Implementations decide
// whether delivery happens inline or through the durable outbox. Dispatch
// errors are reported to the caller but must never roll back the state
// change that produced the notification.
type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification) error
}

// DirectDispatcher delivers synchronously over SMTP. Used when the scheduler
// is disabled, typically in development.
type DirectDispatcher struct {
	courier *Courier
	log     *logger.Logger
}

func NewDirectDispatcher(courier *Courier, log *logger.Logger) *DirectDispatcher {
	return &DirectDispatcher{courier: courier, log: log}
}

func (d *DirectDispatcher) Dispatch(ctx context.Context, n Notification) error {
	if err := d.courier.Deliver(ctx, n); err != nil {
		d.log.DispatchFailure(n.Kind, n.RecipientEmail, n.Payload.TrackingID, err)
		return err
	}
	return nil
}

// OutboxDispatcher persists the notification for asynchronous delivery by the
// scheduler worker. A successful insert means the notification is queued.
type OutboxDispatcher struct {
	repo *outbox.Repository
	log  *logger.Logger
}

func NewOutboxDispatcher(repo *outbox.Repository, log *logger.Logger) *OutboxDispatcher {
	return &OutboxDispatcher{repo: repo, log: log}
}

func (d *OutboxDispatcher) Dispatch(ctx context.Context, n Notification) error {
	_, err := d.repo.Insert(ctx, outbox.InsertParams{
		Kind:           n.Kind,
		RecipientEmail: n.RecipientEmail,
		RecipientName:  n.RecipientName,
		Payload:        n.Payload,
		AttachmentKey:  n.AttachmentKey,
	})
	if err != nil {
		d.log.DispatchFailure(n.Kind, n.RecipientEmail, n.Payload.TrackingID, err)
		return err
	}
	return nil
}
