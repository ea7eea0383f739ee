// Package pdf renders certificate documents using maroto/v2. Each certificate
// type has its own attestation wording; the surrounding layout (letterhead,
// signature block, tracking footer) is shared.
package pdf

import (
	"fmt"
	"strings"
	"time"

	"barangay_portal_backend/platform/apperr"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// Supported certificate types. The values double as display titles.
const (
	TypeBarangayClearance       = "Barangay Clearance"
	TypeCertificateOfIndigency  = "Certificate of Indigency"
	TypeCertificateOfResidency  = "Certificate of Residency"
	TypeBusinessPermitClearance = "Business Permit Clearance"
)

var (
	colorPrimary   = &props.Color{Red: 26, Green: 86, Blue: 50}    // barangay green
	colorInk       = &props.Color{Red: 17, Green: 24, Blue: 39}    // near-black
	colorSecondary = &props.Color{Red: 107, Green: 114, Blue: 128} // gray-500
	colorBorder    = &props.Color{Red: 226, Green: 232, Blue: 240} // slate-200
)

// CertificateData holds everything a certificate layout needs.
type CertificateData struct {
	RecipientName string
	Address       string
	Purpose       string
	TrackingID    string
	IssuedAt      time.Time
	OfficeName    string
	OfficeAddress string
}

// Renderer generates the signed-and-sealed certificate document.
type Renderer interface {
	Render(certificateType string, data CertificateData) ([]byte, error)
}

// MarotoRenderer is the production Renderer.
type MarotoRenderer struct{}

func NewRenderer() *MarotoRenderer {
	return &MarotoRenderer{}
}

// ArtifactKey derives the storage key for a rendered certificate. Keys are
// deterministic so a re-approval overwrites the previous artifact.
func ArtifactKey(certificateType, trackingID string) string {
	return fmt.Sprintf("certificates/%s_%s.pdf", strings.ReplaceAll(certificateType, " ", "_"), trackingID)
}

// IsSupportedType reports whether a certificate layout exists for the type.
func IsSupportedType(certificateType string) bool {
	switch certificateType {
	case TypeBarangayClearance, TypeCertificateOfIndigency, TypeCertificateOfResidency, TypeBusinessPermitClearance:
		return true
	}
	return false
}

func (r *MarotoRenderer) Render(certificateType string, data CertificateData) ([]byte, error) {
	body, err := attestation(certificateType, data)
	if err != nil {
		return nil, err
	}
	if data.RecipientName == "" {
		return nil, apperr.Validation("recipient name is required")
	}

	cfg := config.NewBuilder().
		WithLeftMargin(20).
		WithTopMargin(15).
		WithRightMargin(20).
		Build()

	m := maroto.New(cfg)

	m.AddRows(buildLetterhead(data)...)
	m.AddRows(row.New(1).WithStyle(&props.Cell{
		BorderType:  border.Bottom,
		BorderColor: colorBorder,
	}))
	m.AddRows(row.New(10))

	m.AddRows(row.New(12).Add(
		col.New(12).Add(text.New(strings.ToUpper(certificateType), props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Center,
			Color: colorPrimary,
		})),
	))
	m.AddRows(row.New(8))

	m.AddRows(row.New(6).Add(
		col.New(12).Add(text.New("TO WHOM IT MAY CONCERN:", props.Text{
			Size:  10,
			Style: fontstyle.Bold,
			Color: colorInk,
		})),
	))
	m.AddRows(row.New(4))

	for _, paragraph := range body {
		m.AddRows(row.New(14).Add(
			col.New(12).Add(text.New(paragraph, props.Text{
				Size:  10,
				Color: colorInk,
			})),
		))
		m.AddRows(row.New(2))
	}

	issued := fmt.Sprintf("Issued this %s at the %s.", formatLongDate(data.IssuedAt), data.OfficeName)
	m.AddRows(row.New(10).Add(
		col.New(12).Add(text.New(issued, props.Text{
			Size:  10,
			Color: colorInk,
		})),
	))

	m.AddRows(row.New(20))
	m.AddRows(buildSignatureBlock()...)
	m.AddRows(row.New(14))

	m.AddRows(row.New(5).Add(
		col.New(12).Add(text.New("Reference No: "+data.TrackingID, props.Text{
			Size:  8,
			Color: colorSecondary,
		})),
	))
	m.AddRows(row.New(5).Add(
		col.New(12).Add(text.New("This certificate is valid for six (6) months from the date of issue.", props.Text{
			Size:  8,
			Color: colorSecondary,
		})),
	))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate certificate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

func buildLetterhead(data CertificateData) []core.Row {
	return []core.Row{
		row.New(6).Add(
			col.New(12).Add(text.New("Republic of the Philippines", props.Text{
				Size:  9,
				Align: align.Center,
				Color: colorInk,
			})),
		),
		row.New(7).Add(
			col.New(12).Add(text.New(data.OfficeName, props.Text{
				Size:  12,
				Style: fontstyle.Bold,
				Align: align.Center,
				Color: colorPrimary,
			})),
		),
		row.New(5).Add(
			col.New(12).Add(text.New(data.OfficeAddress, props.Text{
				Size:  8,
				Align: align.Center,
				Color: colorSecondary,
			})),
		),
		row.New(6).Add(
			col.New(12).Add(text.New("OFFICE OF THE PUNONG BARANGAY", props.Text{
				Size:  9,
				Style: fontstyle.Bold,
				Align: align.Center,
				Color: colorInk,
			})),
		),
	}
}

func buildSignatureBlock() []core.Row {
	return []core.Row{
		row.New(1).Add(
			col.New(7),
			col.New(5).WithStyle(&props.Cell{
				BorderType:  border.Bottom,
				BorderColor: colorInk,
			}),
		),
		row.New(5).Add(
			col.New(7),
			col.New(5).Add(text.New("Punong Barangay", props.Text{
				Size:  9,
				Align: align.Center,
				Color: colorInk,
			})),
		),
	}
}

// formatLongDate renders a date as "2nd day of March 2026".
func formatLongDate(t time.Time) string {
	day := t.Day()
	suffix := "th"
	switch {
	case day%100 >= 11 && day%100 <= 13:
		suffix = "th"
	case day%10 == 1:
		suffix = "st"
	case day%10 == 2:
		suffix = "nd"
	case day%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s day of %s %d", day, suffix, t.Month().String(), t.Year())
}

// attestation returns the body paragraphs for the certificate type.
func attestation(certificateType string, data CertificateData) ([]string, error) {
	name := data.RecipientName
	address := data.Address
	if address == "" {
		address = "this barangay"
	}
	purpose := data.Purpose
	if purpose == "" {
		purpose = "whatever legal purpose it may serve"
	}

	switch certificateType {
	case TypeBarangayClearance:
		return []string{
			fmt.Sprintf("This is to certify that %s, of legal age and a resident of %s, has no derogatory record on file in this office as of the date of issuance.", name, address),
			fmt.Sprintf("This clearance is issued upon the request of the above-named person for %s.", purpose),
		}, nil
	case TypeCertificateOfIndigency:
		return []string{
			fmt.Sprintf("This is to certify that %s, a resident of %s, belongs to an indigent family in this barangay.", name, address),
			fmt.Sprintf("This certification is issued upon the request of the above-named person for %s.", purpose),
		}, nil
	case TypeCertificateOfResidency:
		return []string{
			fmt.Sprintf("This is to certify that %s is a bona fide resident of %s.", name, address),
			fmt.Sprintf("This certification is issued upon the request of the above-named person for %s.", purpose),
		}, nil
	case TypeBusinessPermitClearance:
		return []string{
			fmt.Sprintf("This is to certify that the business owned and operated by %s, located at %s, has been cleared to operate within the territorial jurisdiction of this barangay.", name, address),
			fmt.Sprintf("This clearance is issued upon the request of the above-named person for %s.", purpose),
		}, nil
	default:
		return nil, apperr.Validation(fmt.Sprintf("unsupported certificate type %q", certificateType))
	}
}
