package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"barangay_portal_backend/internal/chatbot/service"
	"barangay_portal_backend/internal/chatbot/transport"
	"barangay_portal_backend/platform/httpkit"
	"barangay_portal_backend/platform/sanitize"
	"barangay_portal_backend/platform/validator"
)

// Handler handles HTTP requests for chatbot telemetry.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a new chatbot handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Feedback records one rating from the widget.
// POST /api/v1/chatbot/feedback
func (h *Handler) Feedback(c *gin.Context) {
	var req transport.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	fb, err := h.svc.RecordFeedback(c.Request.Context(), service.FeedbackParams{
		MessageID:      req.MessageID,
		ConversationID: req.ConversationID,
		Helpful:        *req.Helpful,
		UserMessage:    sanitize.Text(req.UserMessage),
		BotResponse:    sanitize.Text(req.BotResponse),
		Comment:        sanitize.Text(req.Comment),
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ToFeedbackResponse(fb))
}

// Conversation archives a transcript from the widget.
// POST /api/v1/chatbot/conversations
func (h *Handler) Conversation(c *gin.Context) {
	var req transport.ConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	conv, err := h.svc.RecordConversation(c.Request.Context(), service.ConversationParams{
		ConversationID: req.ConversationID,
		Messages:       req.Messages,
		MessageCount:   req.MessageCount,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ToConversationResponse(conv))
}

// Analytics aggregates ratings for staff.
// GET /api/v1/admin/chatbot/analytics
func (h *Handler) Analytics(c *gin.Context) {
	analytics, err := h.svc.Analytics(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToAnalyticsResponse(analytics))
}
