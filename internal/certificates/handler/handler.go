package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"barangay_portal_backend/internal/certificates/repository"
	"barangay_portal_backend/internal/certificates/service"
	"barangay_portal_backend/internal/certificates/transport"
	"barangay_portal_backend/platform/httpkit"
	"barangay_portal_backend/platform/sanitize"
	"barangay_portal_backend/platform/validator"
)

// ArtifactURLSigner issues short-lived download links for stored artifacts.
type ArtifactURLSigner interface {
	SignedURL(ctx context.Context, fileKey string) (string, error)
}

// Handler handles HTTP requests for certificate requests.
type Handler struct {
	svc    *service.Service
	val    *validator.Validator
	signer ArtifactURLSigner
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid certificate request ID"
)

// New creates a new certificates handler.
func New(svc *service.Service, val *validator.Validator, signer ArtifactURLSigner) *Handler {
	return &Handler{svc: svc, val: val, signer: signer}
}

// Submit accepts a public certificate request. JSON and multipart bodies are
// both accepted; multipart may carry an optional "idFile" part.
// POST /api/v1/certificates
func (h *Handler) Submit(c *gin.Context) {
	var req transport.SubmitCertificateRequest
	if err := c.ShouldBind(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	requestedBy, err := time.Parse("2006-01-02", req.RequestedBy)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, "requestedBy must be YYYY-MM-DD")
		return
	}

	idFile, closeIDFile, err := formIDFile(c)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "could not read ID file upload", nil)
		return
	}
	defer closeIDFile()

	result, err := h.svc.Submit(c.Request.Context(), service.SubmitParams{
		FullName:        sanitize.Text(req.FullName),
		Email:           req.Email,
		Phone:           req.Phone,
		CertificateType: req.CertificateType,
		Purpose:         sanitize.Text(req.Purpose),
		RequestedBy:     requestedBy,
		IDType:          req.IDType,
		IDNumber:        req.IDNumber,
		IDFile:          idFile,
		Channel:         "online",
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ProcessResponse{
		Request:            transport.ToCertificateResponse(result.Request),
		NotificationQueued: result.NotificationQueued,
	})
}

// SubmitOwn accepts a certificate request from an authenticated resident.
// The owning user is resolved from the access token.
// POST /api/v1/my/certificates
func (h *Handler) SubmitOwn(c *gin.Context) {
	ident, ok := httpkit.MustGetIdentity(c)
	if !ok {
		return
	}

	var req transport.SubmitOwnCertificateRequest
	if err := c.ShouldBind(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	requestedBy, err := time.Parse("2006-01-02", req.RequestedBy)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, "requestedBy must be YYYY-MM-DD")
		return
	}

	idFile, closeIDFile, err := formIDFile(c)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "could not read ID file upload", nil)
		return
	}
	defer closeIDFile()

	result, err := h.svc.SubmitForUser(c.Request.Context(), ident.UserID, service.SubmitParams{
		CertificateType: req.CertificateType,
		Purpose:         sanitize.Text(req.Purpose),
		RequestedBy:     requestedBy,
		IDType:          req.IDType,
		IDNumber:        req.IDNumber,
		IDFile:          idFile,
		Channel:         "online",
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ProcessResponse{
		Request:            transport.ToCertificateResponse(result.Request),
		NotificationQueued: result.NotificationQueued,
	})
}

// ListMine pages the authenticated resident's own requests.
// GET /api/v1/my/certificates
func (h *Handler) ListMine(c *gin.Context) {
	ident, ok := httpkit.MustGetIdentity(c)
	if !ok {
		return
	}

	var req transport.MyCertificatesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 {
		limit = 20
	}

	items, total, err := h.svc.ListForUser(c.Request.Context(), ident.UserID, limit, (page-1)*limit)
	if httpkit.HandleError(c, err) {
		return
	}

	responses := make([]transport.CertificateResponse, 0, len(items))
	for i := range items {
		responses = append(responses, transport.ToCertificateResponse(&items[i]))
	}

	httpkit.OK(c, transport.ListCertificatesResponse{Items: responses, Total: total, Page: page})
}

// Track returns the public status of a tracking id.
// GET /api/v1/certificates/track/:trackingId
func (h *Handler) Track(c *gin.Context) {
	req, err := h.svc.Track(c.Request.Context(), c.Param("trackingId"))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToTrackResponse(req))
}

// List pages the staff queue.
// GET /api/v1/admin/certificates
func (h *Handler) List(c *gin.Context) {
	var req transport.ListCertificatesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 {
		limit = 20
	}

	items, total, err := h.svc.List(c.Request.Context(), repository.ListFilters{
		Status:          req.Status,
		CertificateType: req.CertificateType,
		Limit:           limit,
		Offset:          (page - 1) * limit,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	responses := make([]transport.CertificateResponse, 0, len(items))
	for i := range items {
		responses = append(responses, transport.ToCertificateResponse(&items[i]))
	}

	httpkit.OK(c, transport.ListCertificatesResponse{Items: responses, Total: total, Page: page})
}

// Get returns one request for staff review.
// GET /api/v1/admin/certificates/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	req, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToCertificateResponse(req))
}

// Approve approves a request and emails the rendered certificate.
// POST /api/v1/admin/certificates/:id/approve
func (h *Handler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.ApproveCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Approve(c.Request.Context(), id, sanitize.Text(req.Remarks), sanitize.Text(req.Address))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ProcessResponse{
		Request:            transport.ToCertificateResponse(result.Request),
		NotificationQueued: result.NotificationQueued,
	})
}

// Reject rejects a request with an optional reason.
// POST /api/v1/admin/certificates/:id/reject
func (h *Handler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.RejectCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Reject(c.Request.Context(), id, sanitize.Text(req.Reason))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ProcessResponse{
		Request:            transport.ToCertificateResponse(result.Request),
		NotificationQueued: result.NotificationQueued,
	})
}

// SetStatus is the administrative correction endpoint.
// PATCH /api/v1/admin/certificates/:id/status
func (h *Handler) SetStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	updated, err := h.svc.SetStatus(c.Request.Context(), id, req.Status, req.Remarks)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToCertificateResponse(updated))
}

// Download issues a short-lived link to the rendered artifact.
// GET /api/v1/admin/certificates/:id/download
func (h *Handler) Download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	req, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	if req.ArtifactKey == nil {
		httpkit.Error(c, http.StatusNotFound, "no certificate document has been generated", nil)
		return
	}

	url, err := h.signer.SignedURL(c.Request.Context(), *req.ArtifactKey)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"url": url})
}

func formIDFile(c *gin.Context) (*service.IDUpload, func(), error) {
	header, err := c.FormFile("idFile")
	if err != nil {
		// A missing part or a non-multipart body both mean "no ID scan".
		if errors.Is(err, http.ErrMissingFile) || !errors.Is(err, multipart.ErrMessageTooLarge) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}

	file, err := header.Open()
	if err != nil {
		return nil, func() {}, err
	}

	return &service.IDUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	}, func() { _ = file.Close() }, nil
}
