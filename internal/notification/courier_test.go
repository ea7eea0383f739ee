package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"

	"barangay_portal_backend/internal/email"
	"barangay_portal_backend/internal/notification/outbox"
)

type sentCall struct {
	method      string
	to          string
	name        string
	trackingID  string
	attachments []email.Attachment
}

type fakeSender struct {
	calls []sentCall
	fail  bool
}

func (f *fakeSender) record(c sentCall) error {
	if f.fail {
		return fmt.Errorf("smtp unavailable")
	}
	f.calls = append(f.calls, c)
	return nil
}

func (f *fakeSender) SendCertificateReceived(_ context.Context, to, name, _, trackingID string) error {
	return f.record(sentCall{method: "certificate_received", to: to, name: name, trackingID: trackingID})
}

func (f *fakeSender) SendCertificateApproved(_ context.Context, to, name, _, trackingID, _ string, attachments ...email.Attachment) error {
	return f.record(sentCall{method: "certificate_approved", to: to, name: name, trackingID: trackingID, attachments: attachments})
}

func (f *fakeSender) SendCertificateRejected(_ context.Context, to, name, _, trackingID, _ string) error {
	return f.record(sentCall{method: "certificate_rejected", to: to, name: name, trackingID: trackingID})
}

func (f *fakeSender) SendAppointmentReceived(_ context.Context, to, name, _, trackingID, _, _ string) error {
	return f.record(sentCall{method: "appointment_received", to: to, name: name, trackingID: trackingID})
}

func (f *fakeSender) SendAppointmentConfirmed(_ context.Context, to, name, _, trackingID, _, _ string) error {
	return f.record(sentCall{method: "appointment_confirmed", to: to, name: name, trackingID: trackingID})
}

func (f *fakeSender) SendContactReply(_ context.Context, to, name, _, _ string) error {
	return f.record(sentCall{method: "contact_reply", to: to, name: name})
}

type fakeStore struct {
	objects map[string][]byte
}

func (f *fakeStore) DownloadFile(_ context.Context, _, fileKey string) (io.ReadCloser, error) {
	content, ok := f.objects[fileKey]
	if !ok {
		return nil, fmt.Errorf("object %s not found", fileKey)
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func TestCourierDeliversByKind(t *testing.T) {
	sender := &fakeSender{}
	courier := NewCourier(sender, &fakeStore{}, "certificates")

	kinds := []string{
		KindCertificateReceived,
		KindCertificateRejected,
		KindAppointmentReceived,
		KindAppointmentConfirmed,
		KindContactReply,
	}
	for _, kind := range kinds {
		err := courier.Deliver(context.Background(), Notification{
			Kind:           kind,
			RecipientEmail: "juan@example.com",
			RecipientName:  "Juan Dela Cruz",
			Payload:        Payload{TrackingID: "CERT-20260302-0042"},
		})
		if err != nil {
			t.Fatalf("Deliver(%s) returned error: %v", kind, err)
		}
	}

	if len(sender.calls) != len(kinds) {
		t.Fatalf("expected %d sender calls, got %d", len(kinds), len(sender.calls))
	}
	if sender.calls[0].method != "certificate_received" {
		t.Fatalf("expected certificate_received first, got %s", sender.calls[0].method)
	}
}

func TestCourierUnknownKind(t *testing.T) {
	courier := NewCourier(&fakeSender{}, &fakeStore{}, "certificates")

	err := courier.Deliver(context.Background(), Notification{Kind: "carrier.pigeon"})
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestCourierAttachesArtifact(t *testing.T) {
	pdfBytes := []byte("%PDF-1.7 fake")
	store := &fakeStore{objects: map[string][]byte{
		"certificates/Barangay_Clearance_CERT-20260302-0042.pdf": pdfBytes,
	}}
	sender := &fakeSender{}
	courier := NewCourier(sender, store, "certificates")

	key := "certificates/Barangay_Clearance_CERT-20260302-0042.pdf"
	err := courier.Deliver(context.Background(), Notification{
		Kind:           KindCertificateApproved,
		RecipientEmail: "juan@example.com",
		RecipientName:  "Juan Dela Cruz",
		AttachmentKey:  &key,
		Payload:        Payload{TrackingID: "CERT-20260302-0042", CertificateType: "Barangay Clearance"},
	})
	if err != nil {
		t.Fatalf("Deliver returned error: %v", err)
	}

	if len(sender.calls) != 1 {
		t.Fatalf("expected 1 sender call, got %d", len(sender.calls))
	}
	atts := sender.calls[0].attachments
	if len(atts) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(atts))
	}
	if atts[0].FileName != "Barangay_Clearance_CERT-20260302-0042.pdf" {
		t.Fatalf("unexpected attachment name %q", atts[0].FileName)
	}
	if !bytes.Equal(atts[0].Content, pdfBytes) {
		t.Fatal("attachment content does not match stored object")
	}
}

func TestCourierMissingAttachmentFails(t *testing.T) {
	sender := &fakeSender{}
	courier := NewCourier(sender, &fakeStore{}, "certificates")

	key := "certificates/gone.pdf"
	err := courier.Deliver(context.Background(), Notification{
		Kind:          KindCertificateApproved,
		AttachmentKey: &key,
	})
	if err == nil {
		t.Fatal("expected error when attachment is missing")
	}
	if len(sender.calls) != 0 {
		t.Fatal("no mail should be sent when the attachment cannot be loaded")
	}
}

func TestFromRecordRoundTrip(t *testing.T) {
	payload, err := json.Marshal(Payload{
		TrackingID:  "APPT-20260302-0007",
		ServiceType: "Medical Consultation",
		Date:        "2026-03-10",
		Time:        "09:30:00",
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	n, err := FromRecord(outbox.Record{
		Kind:           KindAppointmentConfirmed,
		RecipientEmail: "maria@example.com",
		RecipientName:  "Maria Clara",
		Payload:        payload,
	})
	if err != nil {
		t.Fatalf("FromRecord returned error: %v", err)
	}
	if n.Payload.TrackingID != "APPT-20260302-0007" {
		t.Fatalf("unexpected tracking id %q", n.Payload.TrackingID)
	}
	if n.Payload.Time != "09:30:00" {
		t.Fatalf("unexpected time %q", n.Payload.Time)
	}
}
