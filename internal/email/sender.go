// Package email renders and delivers the portal's outbound mail.
package email

import (
	"context"

	"barangay_portal_backend/platform/config"
)

// Attachment represents a file attachment for an email.
type Attachment struct {
	Content  []byte // raw file bytes
	FileName string // e.g. "Barangay_Clearance_CERT-20260302-0042.pdf"
	MIMEType string // e.g. "application/pdf"
}

// Sender delivers the templated notifications the lifecycle engine emits.
type Sender interface {
	SendCertificateReceived(ctx context.Context, toEmail, recipientName, certificateType, trackingID string) error
	SendCertificateApproved(ctx context.Context, toEmail, recipientName, certificateType, trackingID, remarks string, attachments ...Attachment) error
	SendCertificateRejected(ctx context.Context, toEmail, recipientName, certificateType, trackingID, reason string) error
	SendAppointmentReceived(ctx context.Context, toEmail, recipientName, serviceType, trackingID, date, timeSlot string) error
	SendAppointmentConfirmed(ctx context.Context, toEmail, recipientName, serviceType, trackingID, date, timeSlot string) error
	SendContactReply(ctx context.Context, toEmail, recipientName, originalSubject, replyBody string) error
}

// NoopSender drops every email. Used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendCertificateReceived(context.Context, string, string, string, string) error {
	return nil
}

func (NoopSender) SendCertificateApproved(context.Context, string, string, string, string, string, ...Attachment) error {
	return nil
}

func (NoopSender) SendCertificateRejected(context.Context, string, string, string, string, string) error {
	return nil
}

func (NoopSender) SendAppointmentReceived(context.Context, string, string, string, string, string, string) error {
	return nil
}

func (NoopSender) SendAppointmentConfirmed(context.Context, string, string, string, string, string, string) error {
	return nil
}

func (NoopSender) SendContactReply(context.Context, string, string, string, string) error {
	return nil
}

// NewSender builds the configured sender, falling back to NoopSender when
// email delivery is disabled.
func NewSender(cfg config.SMTPConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}

	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	), nil
}
