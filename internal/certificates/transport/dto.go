package transport

import (
	"time"

	"barangay_portal_backend/internal/certificates/repository"
)

// SubmitCertificateRequest binds from JSON or from multipart form data; the
// multipart form may carry an additional "idFile" part with an ID scan.
type SubmitCertificateRequest struct {
	FullName        string  `json:"fullName" form:"fullName" validate:"required,min=2,max=120"`
	Email           string  `json:"email" form:"email" validate:"required,email"`
	Phone           string  `json:"phone" form:"phone" validate:"omitempty,max=32"`
	CertificateType string  `json:"certificateType" form:"certificateType" validate:"required,oneof='Barangay Clearance' 'Certificate of Indigency' 'Certificate of Residency' 'Business Permit Clearance'"`
	Purpose         string  `json:"purpose" form:"purpose" validate:"required,max=500"`
	RequestedBy     string  `json:"requestedBy" form:"requestedBy" validate:"required,datetime=2006-01-02"`
	IDType          *string `json:"idType" form:"idType" validate:"omitempty,max=60"`
	IDNumber        *string `json:"idNumber" form:"idNumber" validate:"omitempty,max=60"`
}

// SubmitOwnCertificateRequest is the authenticated variant: the requester
// identity comes from the access token, so no contact fields are accepted.
type SubmitOwnCertificateRequest struct {
	CertificateType string  `json:"certificateType" form:"certificateType" validate:"required,oneof='Barangay Clearance' 'Certificate of Indigency' 'Certificate of Residency' 'Business Permit Clearance'"`
	Purpose         string  `json:"purpose" form:"purpose" validate:"required,max=500"`
	RequestedBy     string  `json:"requestedBy" form:"requestedBy" validate:"required,datetime=2006-01-02"`
	IDType          *string `json:"idType" form:"idType" validate:"omitempty,max=60"`
	IDNumber        *string `json:"idNumber" form:"idNumber" validate:"omitempty,max=60"`
}

type MyCertificatesRequest struct {
	Page  int `form:"page" validate:"omitempty,min=1"`
	Limit int `form:"limit" validate:"omitempty,min=1,max=100"`
}

type ApproveCertificateRequest struct {
	Remarks string `json:"remarks" validate:"omitempty,max=500"`
	Address string `json:"address" validate:"omitempty,max=300"`
}

type RejectCertificateRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

type SetStatusRequest struct {
	Status  string  `json:"status" validate:"required,oneof=pending approved rejected"`
	Remarks *string `json:"remarks" validate:"omitempty,max=500"`
}

type ListCertificatesRequest struct {
	Status          string `form:"status" validate:"omitempty,oneof=pending approved rejected"`
	CertificateType string `form:"certificateType" validate:"omitempty,max=60"`
	Page            int    `form:"page" validate:"omitempty,min=1"`
	Limit           int    `form:"limit" validate:"omitempty,min=1,max=100"`
}

type CertificateResponse struct {
	ID              string     `json:"id"`
	TrackingID      string     `json:"trackingId"`
	RequesterName   string     `json:"requesterName"`
	RequesterEmail  string     `json:"requesterEmail"`
	CertificateType string     `json:"certificateType"`
	Purpose         string     `json:"purpose"`
	RequestedBy     string     `json:"requestedBy"`
	Status          string     `json:"status"`
	Remarks         *string    `json:"remarks,omitempty"`
	ProcessedAt     *time.Time `json:"processedAt,omitempty"`
	FeeAmount       float64    `json:"feeAmount"`
	Channel         string     `json:"channel"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// TrackResponse is the public status view; it hides staff-only fields.
type TrackResponse struct {
	TrackingID      string     `json:"trackingId"`
	CertificateType string     `json:"certificateType"`
	Status          string     `json:"status"`
	Remarks         *string    `json:"remarks,omitempty"`
	ProcessedAt     *time.Time `json:"processedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

type ProcessResponse struct {
	Request            CertificateResponse `json:"request"`
	NotificationQueued bool                `json:"notificationQueued"`
}

type ListCertificatesResponse struct {
	Items []CertificateResponse `json:"items"`
	Total int                   `json:"total"`
	Page  int                   `json:"page"`
}

func ToCertificateResponse(req *repository.CertificateRequest) CertificateResponse {
	return CertificateResponse{
		ID:              req.ID.String(),
		TrackingID:      req.TrackingID,
		RequesterName:   req.RequesterName,
		RequesterEmail:  req.RequesterEmail,
		CertificateType: req.CertificateType,
		Purpose:         req.Purpose,
		RequestedBy:     req.RequestedBy.Format("2006-01-02"),
		Status:          req.Status,
		Remarks:         req.Remarks,
		ProcessedAt:     req.ProcessedAt,
		FeeAmount:       req.FeeAmount,
		Channel:         req.Channel,
		CreatedAt:       req.CreatedAt,
	}
}

func ToTrackResponse(req *repository.CertificateRequest) TrackResponse {
	return TrackResponse{
		TrackingID:      req.TrackingID,
		CertificateType: req.CertificateType,
		Status:          req.Status,
		Remarks:         req.Remarks,
		ProcessedAt:     req.ProcessedAt,
		CreatedAt:       req.CreatedAt,
	}
}
