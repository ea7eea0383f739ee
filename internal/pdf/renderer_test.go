package pdf

import (
	"bytes"
	"testing"
	"time"

	"barangay_portal_backend/platform/apperr"
)

func sampleData() CertificateData {
	return CertificateData{
		RecipientName: "Juan Dela Cruz",
		Address:       "123 Sampaguita St., Purok 2",
		Purpose:       "local employment",
		TrackingID:    "CERT-20260302-0042",
		IssuedAt:      time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		OfficeName:    "Barangay San Isidro",
		OfficeAddress: "San Isidro, Quezon City",
	}
}

func TestRenderProducesPDF(t *testing.T) {
	r := NewRenderer()

	for _, certType := range []string{
		TypeBarangayClearance,
		TypeCertificateOfIndigency,
		TypeCertificateOfResidency,
		TypeBusinessPermitClearance,
	} {
		doc, err := r.Render(certType, sampleData())
		if err != nil {
			t.Fatalf("Render(%s) returned error: %v", certType, err)
		}
		if !bytes.HasPrefix(doc, []byte("%PDF")) {
			t.Fatalf("Render(%s) did not produce a PDF document", certType)
		}
	}
}

func TestRenderUnknownType(t *testing.T) {
	r := NewRenderer()

	_, err := r.Render("Cedula", sampleData())
	if err == nil {
		t.Fatal("expected error for unknown certificate type")
	}
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation kind, got %v", apperr.GetKind(err))
	}
}

func TestRenderRequiresRecipient(t *testing.T) {
	r := NewRenderer()

	data := sampleData()
	data.RecipientName = ""
	if _, err := r.Render(TypeBarangayClearance, data); err == nil {
		t.Fatal("expected error for missing recipient name")
	}
}

func TestArtifactKey(t *testing.T) {
	got := ArtifactKey(TypeBarangayClearance, "CERT-20260302-0042")
	want := "certificates/Barangay_Clearance_CERT-20260302-0042.pdf"
	if got != want {
		t.Fatalf("ArtifactKey = %q, want %q", got, want)
	}
}

func TestFormatLongDate(t *testing.T) {
	cases := []struct {
		day  int
		want string
	}{
		{1, "1st day of March 2026"},
		{2, "2nd day of March 2026"},
		{3, "3rd day of March 2026"},
		{11, "11th day of March 2026"},
		{21, "21st day of March 2026"},
	}
	for _, tc := range cases {
		got := formatLongDate(time.Date(2026, 3, tc.day, 0, 0, 0, 0, time.UTC))
		if got != tc.want {
			t.Fatalf("formatLongDate day %d = %q, want %q", tc.day, got, tc.want)
		}
	}
}
