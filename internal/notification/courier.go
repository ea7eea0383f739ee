package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"

	"barangay_portal_backend/internal/email"
	"barangay_portal_backend/internal/notification/outbox"
)

// AttachmentStore fetches stored artifacts referenced by a notification.
type AttachmentStore interface {
	DownloadFile(ctx context.Context, bucket, fileKey string) (io.ReadCloser, error)
}

// Courier turns a Notification into the matching email.Sender call. It is
// shared by the direct dispatcher and the scheduler worker so both paths
// produce identical mail.
type Courier struct {
	sender email.Sender
	store  AttachmentStore
	bucket string
}

func NewCourier(sender email.Sender, store AttachmentStore, artifactBucket string) *Courier {
	return &Courier{sender: sender, store: store, bucket: artifactBucket}
}

// FromRecord rebuilds a Notification from its stored outbox row.
func FromRecord(rec outbox.Record) (Notification, error) {
	var p Payload
	if len(rec.Payload) > 0 {
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			return Notification{}, fmt.Errorf("unmarshal outbox payload: %w", err)
		}
	}
	return Notification{
		Kind:           rec.Kind,
		RecipientEmail: rec.RecipientEmail,
		RecipientName:  rec.RecipientName,
		AttachmentKey:  rec.AttachmentKey,
		Payload:        p,
	}, nil
}

func (c *Courier) Deliver(ctx context.Context, n Notification) error {
	switch n.Kind {
	case KindCertificateReceived:
		return c.sender.SendCertificateReceived(ctx, n.RecipientEmail, n.RecipientName, n.Payload.CertificateType, n.Payload.TrackingID)
	case KindCertificateApproved:
		attachments, err := c.loadAttachments(ctx, n)
		if err != nil {
			return err
		}
		return c.sender.SendCertificateApproved(ctx, n.RecipientEmail, n.RecipientName, n.Payload.CertificateType, n.Payload.TrackingID, n.Payload.Remarks, attachments...)
	case KindCertificateRejected:
		return c.sender.SendCertificateRejected(ctx, n.RecipientEmail, n.RecipientName, n.Payload.CertificateType, n.Payload.TrackingID, n.Payload.Reason)
	case KindAppointmentReceived:
		return c.sender.SendAppointmentReceived(ctx, n.RecipientEmail, n.RecipientName, n.Payload.ServiceType, n.Payload.TrackingID, n.Payload.Date, n.Payload.Time)
	case KindAppointmentConfirmed:
		return c.sender.SendAppointmentConfirmed(ctx, n.RecipientEmail, n.RecipientName, n.Payload.ServiceType, n.Payload.TrackingID, n.Payload.Date, n.Payload.Time)
	case KindContactReply:
		return c.sender.SendContactReply(ctx, n.RecipientEmail, n.RecipientName, n.Payload.Subject, n.Payload.Body)
	default:
		return fmt.Errorf("unknown notification kind %q", n.Kind)
	}
}

func (c *Courier) loadAttachments(ctx context.Context, n Notification) ([]email.Attachment, error) {
	if n.AttachmentKey == nil || *n.AttachmentKey == "" {
		return nil, nil
	}
	if c.store == nil {
		return nil, fmt.Errorf("attachment %s requested but no store configured", *n.AttachmentKey)
	}

	rc, err := c.store.DownloadFile(ctx, c.bucket, *n.AttachmentKey)
	if err != nil {
		return nil, fmt.Errorf("fetch attachment %s: %w", *n.AttachmentKey, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read attachment %s: %w", *n.AttachmentKey, err)
	}

	return []email.Attachment{{
		Content:  content,
		FileName: path.Base(*n.AttachmentKey),
		MIMEType: "application/pdf",
	}}, nil
}
