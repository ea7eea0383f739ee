// Package transport defines the request/response DTOs for the
// announcements HTTP API.
package transport

import (
	"time"

	"barangay_portal_backend/internal/announcements/service"

	"github.com/google/uuid"
)

type CreateAnnouncementRequest struct {
	Title    string `form:"title" binding:"required" validate:"required,min=2,max=200"`
	Body     string `form:"body" binding:"required" validate:"required,min=2,max=10000"`
	Category string `form:"category" validate:"omitempty,max=50"`
}

type UpdateAnnouncementRequest struct {
	Title      *string `form:"title" validate:"omitempty,min=2,max=200"`
	Body       *string `form:"body" validate:"omitempty,min=2,max=10000"`
	Category   *string `form:"category" validate:"omitempty,max=50"`
	ClearImage bool    `form:"clearImage"`
}

type ListAnnouncementsRequest struct {
	Category string `form:"category" validate:"omitempty,max=50"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

type AnnouncementResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Category  string    `json:"category"`
	ImageURL  *string   `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ListAnnouncementsResponse struct {
	Announcements []AnnouncementResponse `json:"announcements"`
	Total         int                    `json:"total"`
	Page          int                    `json:"page"`
}

func ToAnnouncementResponse(v *service.View) AnnouncementResponse {
	return AnnouncementResponse{
		ID:        v.ID,
		Title:     v.Title,
		Body:      v.Body,
		Category:  v.Category,
		ImageURL:  v.ImageURL,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}
