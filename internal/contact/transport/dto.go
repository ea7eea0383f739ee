// Package transport defines the request/response DTOs for the contact
// messages HTTP API.
package transport

import (
	"time"

	"barangay_portal_backend/internal/contact/repository"

	"github.com/google/uuid"
)

type SubmitContactRequest struct {
	Name    string `json:"name" binding:"required" validate:"required,min=2,max=150"`
	Email   string `json:"email" binding:"required" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,max=32"`
	Subject string `json:"subject" binding:"required" validate:"required,min=2,max=200"`
	Body    string `json:"body" binding:"required" validate:"required,min=2,max=5000"`
}

type ReplyContactRequest struct {
	Body string `json:"body" binding:"required" validate:"required,min=2,max=10000"`
}

type ListContactRequest struct {
	Status string `form:"status" validate:"omitempty,oneof=unread read"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

type ContactMessageResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type ReplyResponse struct {
	Message            ContactMessageResponse `json:"message"`
	NotificationQueued bool                   `json:"notificationQueued"`
}

type ListContactResponse struct {
	Messages []ContactMessageResponse `json:"messages"`
	Total    int                      `json:"total"`
	Page     int                      `json:"page"`
}

func ToContactMessageResponse(m *repository.Message) ContactMessageResponse {
	return ContactMessageResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Subject:   m.Subject,
		Body:      m.Body,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
	}
}
