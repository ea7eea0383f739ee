package email

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements the Sender interface using a direct SMTP connection
// via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string, attachments ...Attachment) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	for _, att := range attachments {
		msg.AttachReader(att.FileName, bytes.NewReader(att.Content))
	}

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendCertificateReceived(ctx context.Context, toEmail, recipientName, certificateType, trackingID string) error {
	subject := fmt.Sprintf(subjectCertificateReceivedFmt, certificateType)
	content, err := renderEmailTemplate("certificate_received.html", certificateReceivedEmailData{
		baseEmailData: baseEmailData{
			Title:   "Certificate Request Received",
			Heading: "We received your request",
		},
		RecipientName:   recipientName,
		CertificateType: certificateType,
		TrackingID:      trackingID,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendCertificateApproved(ctx context.Context, toEmail, recipientName, certificateType, trackingID, remarks string, attachments ...Attachment) error {
	subject := fmt.Sprintf(subjectCertificateApprovedFmt, certificateType)
	content, err := renderEmailTemplate("certificate_approved.html", certificateApprovedEmailData{
		baseEmailData: baseEmailData{
			Title:   "Certificate Approved",
			Heading: "Your certificate is ready",
		},
		RecipientName:   recipientName,
		CertificateType: certificateType,
		TrackingID:      trackingID,
		Remarks:         remarks,
		HasAttachment:   len(attachments) > 0,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content, attachments...)
}

func (s *SMTPSender) SendCertificateRejected(ctx context.Context, toEmail, recipientName, certificateType, trackingID, reason string) error {
	subject := fmt.Sprintf(subjectCertificateRejectedFmt, certificateType)
	content, err := renderEmailTemplate("certificate_rejected.html", certificateRejectedEmailData{
		baseEmailData: baseEmailData{
			Title:   "Certificate Request Update",
			Heading: "An update on your request",
		},
		RecipientName:   recipientName,
		CertificateType: certificateType,
		TrackingID:      trackingID,
		Reason:          reason,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendAppointmentReceived(ctx context.Context, toEmail, recipientName, serviceType, trackingID, date, timeSlot string) error {
	subject := fmt.Sprintf(subjectAppointmentReceivedFmt, serviceType)
	content, err := renderEmailTemplate("appointment_received.html", appointmentEmailData{
		baseEmailData: baseEmailData{
			Title:   "Appointment Request Received",
			Heading: "We received your booking",
		},
		RecipientName: recipientName,
		ServiceType:   serviceType,
		TrackingID:    trackingID,
		Date:          date,
		TimeSlot:      timeSlot,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendAppointmentConfirmed(ctx context.Context, toEmail, recipientName, serviceType, trackingID, date, timeSlot string) error {
	subject := fmt.Sprintf(subjectAppointmentConfirmedFmt, serviceType)
	content, err := renderEmailTemplate("appointment_confirmed.html", appointmentEmailData{
		baseEmailData: baseEmailData{
			Title:   "Appointment Confirmed",
			Heading: "Your appointment is confirmed",
		},
		RecipientName: recipientName,
		ServiceType:   serviceType,
		TrackingID:    trackingID,
		Date:          date,
		TimeSlot:      timeSlot,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendContactReply(ctx context.Context, toEmail, recipientName, originalSubject, replyBody string) error {
	subject := fmt.Sprintf(subjectContactReplyFmt, originalSubject)
	content, err := renderEmailTemplate("contact_reply.html", contactReplyEmailData{
		baseEmailData: baseEmailData{
			Title:   "Reply from the Barangay Office",
			Heading: "Reply to your inquiry",
		},
		RecipientName:   recipientName,
		OriginalSubject: originalSubject,
		ReplyBody:       replyBody,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}
