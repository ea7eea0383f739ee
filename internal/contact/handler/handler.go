package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"barangay_portal_backend/internal/contact/repository"
	"barangay_portal_backend/internal/contact/service"
	"barangay_portal_backend/internal/contact/transport"
	"barangay_portal_backend/platform/httpkit"
	"barangay_portal_backend/platform/sanitize"
	"barangay_portal_backend/platform/validator"
)

// Handler handles HTTP requests for contact messages.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid contact message ID"
)

// New creates a new contact handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Submit accepts a public inquiry.
// POST /api/v1/contact
func (h *Handler) Submit(c *gin.Context) {
	var req transport.SubmitContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	msg, err := h.svc.Submit(c.Request.Context(), service.SubmitParams{
		Name:    sanitize.Text(req.Name),
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: sanitize.Text(req.Subject),
		Body:    sanitize.Text(req.Body),
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ToContactMessageResponse(msg))
}

// List pages the staff inbox.
// GET /api/v1/admin/contact
func (h *Handler) List(c *gin.Context) {
	var req transport.ListContactRequest
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

	messages, total, err := h.svc.List(c.Request.Context(), repository.ListFilters{
		Status: req.Status,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	responses := make([]transport.ContactMessageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, transport.ToContactMessageResponse(&messages[i]))
	}

	httpkit.OK(c, transport.ListContactResponse{Messages: responses, Total: total, Page: page})
}

// Get returns one message.
// GET /api/v1/admin/contact/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	msg, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToContactMessageResponse(msg))
}

// MarkRead marks a message as handled.
// PATCH /api/v1/admin/contact/:id/read
func (h *Handler) MarkRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	if httpkit.HandleError(c, h.svc.MarkRead(c.Request.Context(), id)) {
		return
	}

	httpkit.OK(c, gin.H{"status": repository.StatusRead})
}

// Delete removes a message.
// DELETE /api/v1/admin/contact/:id
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), id)) {
		return
	}

	httpkit.OK(c, gin.H{"deleted": true})
}

// Reply emails the resident and marks the message read.
// POST /api/v1/admin/contact/:id/reply
func (h *Handler) Reply(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.ReplyContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Reply(c.Request.Context(), id, sanitize.Text(req.Body))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ReplyResponse{
		Message:            transport.ToContactMessageResponse(result.Message),
		NotificationQueued: result.NotificationQueued,
	})
}
