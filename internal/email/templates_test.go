package email

import (
	"strings"
	"testing"
)

func TestRenderCertificateApprovedTemplate(t *testing.T) {
	html, err := renderEmailTemplate("certificate_approved.html", certificateApprovedEmailData{
		baseEmailData:   baseEmailData{Title: "Certificate Approved", Heading: "Your certificate is ready"},
		RecipientName:   "Juan Dela Cruz",
		CertificateType: "Barangay Clearance",
		TrackingID:      "CERT-20260310-0042",
		Remarks:         "Claim within 30 days",
		HasAttachment:   true,
	})
	if err != nil {
		t.Fatalf("render returned error: %v", err)
	}

	for _, want := range []string{
		"Juan Dela Cruz",
		"Barangay Clearance",
		"CERT-20260310-0042",
		"Claim within 30 days",
		"attached to this email",
		"Barangay Services Portal",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("rendered email missing %q", want)
		}
	}
}

func TestRenderApprovedTemplateWithoutAttachment(t *testing.T) {
	html, err := renderEmailTemplate("certificate_approved.html", certificateApprovedEmailData{
		baseEmailData:   baseEmailData{Title: "Certificate Approved", Heading: "Your certificate is ready"},
		RecipientName:   "Juan Dela Cruz",
		CertificateType: "Barangay Clearance",
		TrackingID:      "CERT-20260310-0042",
	})
	if err != nil {
		t.Fatalf("render returned error: %v", err)
	}

	if strings.Contains(html, "attached to this email") {
		t.Fatal("email without attachment must not mention one")
	}
	if !strings.Contains(html, "claim your certificate at the barangay office") {
		t.Fatal("email without attachment must point at the office")
	}
}

func TestRenderContactReplyEscapesHTML(t *testing.T) {
	html, err := renderEmailTemplate("contact_reply.html", contactReplyEmailData{
		baseEmailData:   baseEmailData{Title: "Reply", Heading: "We got back to you"},
		RecipientName:   "Pedro Reyes",
		OriginalSubject: "Waste collection",
		ReplyBody:       "<script>alert(1)</script> Tuesdays and Fridays.",
	})
	if err != nil {
		t.Fatalf("render returned error: %v", err)
	}

	if strings.Contains(html, "<script>") {
		t.Fatal("reply body must be HTML-escaped")
	}
	if !strings.Contains(html, "Tuesdays and Fridays.") {
		t.Fatal("reply body content missing")
	}
}

func TestRenderAllTemplates(t *testing.T) {
	cases := []struct {
		name string
		data any
	}{
		{"certificate_received.html", certificateReceivedEmailData{
			baseEmailData:   baseEmailData{Title: "t", Heading: "h"},
			RecipientName:   "Juan",
			CertificateType: "Barangay Clearance",
			TrackingID:      "CERT-20260310-0001",
		}},
		{"certificate_rejected.html", certificateRejectedEmailData{
			baseEmailData:   baseEmailData{Title: "t", Heading: "h"},
			RecipientName:   "Juan",
			CertificateType: "Barangay Clearance",
			TrackingID:      "CERT-20260310-0001",
			Reason:          "incomplete details",
		}},
		{"appointment_received.html", appointmentEmailData{
			baseEmailData: baseEmailData{Title: "t", Heading: "h"},
			RecipientName: "Maria",
			ServiceType:   "General Checkup",
			TrackingID:    "APPT-20260310-0001",
			Date:          "2026-03-16",
			TimeSlot:      "09:00:00",
		}},
		{"appointment_confirmed.html", appointmentEmailData{
			baseEmailData: baseEmailData{Title: "t", Heading: "h"},
			RecipientName: "Maria",
			ServiceType:   "General Checkup",
			TrackingID:    "APPT-20260310-0001",
			Date:          "2026-03-16",
			TimeSlot:      "09:00:00",
		}},
	}

	for _, tc := range cases {
		if _, err := renderEmailTemplate(tc.name, tc.data); err != nil {
			t.Fatalf("render %s returned error: %v", tc.name, err)
		}
	}
}
