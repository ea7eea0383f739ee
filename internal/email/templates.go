package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title   string
	Heading string
}

type certificateReceivedEmailData struct {
	baseEmailData
	RecipientName   string
	CertificateType string
	TrackingID      string
}

type certificateApprovedEmailData struct {
	baseEmailData
	RecipientName   string
	CertificateType string
	TrackingID      string
	Remarks         string
	HasAttachment   bool
}

type certificateRejectedEmailData struct {
	baseEmailData
	RecipientName   string
	CertificateType string
	TrackingID      string
	Reason          string
}

type appointmentEmailData struct {
	baseEmailData
	RecipientName string
	ServiceType   string
	TrackingID    string
	Date          string
	TimeSlot      string
}

type contactReplyEmailData struct {
	baseEmailData
	RecipientName   string
	OriginalSubject string
	ReplyBody       string
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}
