// Package transport defines the request/response DTOs for the
// appointments HTTP API.
package transport

import (
	"time"

	"barangay_portal_backend/internal/appointments/repository"

	"github.com/google/uuid"
)

type BookAppointmentRequest struct {
	FullName      string  `json:"fullName" binding:"required" validate:"required,min=2,max=150"`
	Email         string  `json:"email" binding:"required" validate:"required,email"`
	Phone         string  `json:"phone" validate:"omitempty,max=32"`
	ServiceType   string  `json:"serviceType" binding:"required" validate:"required,min=2,max=100"`
	Date          string  `json:"date" binding:"required" validate:"required,datetime=2006-01-02"`
	Time          string  `json:"time" binding:"required" validate:"required,datetime=15:04:05"`
	HealthConcern *string `json:"healthConcern" validate:"omitempty,max=2000"`
}

// BookOwnAppointmentRequest is the authenticated variant: the resident
// identity comes from the access token, so no contact fields are accepted.
type BookOwnAppointmentRequest struct {
	ServiceType   string  `json:"serviceType" binding:"required" validate:"required,min=2,max=100"`
	Date          string  `json:"date" binding:"required" validate:"required,datetime=2006-01-02"`
	Time          string  `json:"time" binding:"required" validate:"required,datetime=15:04:05"`
	HealthConcern *string `json:"healthConcern" validate:"omitempty,max=2000"`
}

type MyAppointmentsRequest struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

type AvailableSlotsRequest struct {
	Date        string `form:"date" validate:"required,datetime=2006-01-02"`
	ServiceType string `form:"service" validate:"required,min=2,max=100"`
}

type UpdateAppointmentStatusRequest struct {
	Status  string  `json:"status" binding:"required" validate:"required,oneof=pending confirmed cancelled"`
	Remarks *string `json:"remarks" validate:"omitempty,max=1000"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=1000"`
}

type ListAppointmentsRequest struct {
	Status      string `form:"status" validate:"omitempty,oneof=pending confirmed cancelled"`
	ServiceType string `form:"serviceType" validate:"omitempty,max=100"`
	Date        string `form:"date" validate:"omitempty,datetime=2006-01-02"`
	Page        int    `form:"page"`
	Limit       int    `form:"limit"`
}

type AppointmentResponse struct {
	ID            uuid.UUID `json:"id"`
	TrackingID    string    `json:"trackingId"`
	ServiceType   string    `json:"serviceType"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	HealthConcern *string   `json:"healthConcern,omitempty"`
	Status        string    `json:"status"`
	Remarks       *string   `json:"remarks,omitempty"`
	ResidentName  string    `json:"residentName,omitempty"`
	ResidentEmail string    `json:"residentEmail,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// TrackResponse is the public status view. It omits staff-only fields.
type TrackResponse struct {
	TrackingID  string    `json:"trackingId"`
	ServiceType string    `json:"serviceType"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Status      string    `json:"status"`
	Remarks     *string   `json:"remarks,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type BookResponse struct {
	Appointment        AppointmentResponse `json:"appointment"`
	NotificationQueued bool                `json:"notificationQueued"`
}

type AvailableSlotsResponse struct {
	Date        string   `json:"date"`
	ServiceType string   `json:"serviceType"`
	Slots       []string `json:"slots"`
}

type ListAppointmentsResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
}

func ToAppointmentResponse(a *repository.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:            a.ID,
		TrackingID:    a.TrackingID,
		ServiceType:   a.ServiceType,
		Date:          a.Date.Format("2006-01-02"),
		Time:          a.Time,
		HealthConcern: a.HealthConcern,
		Status:        a.Status,
		Remarks:       a.Remarks,
		ResidentName:  a.ResidentName,
		ResidentEmail: a.ResidentEmail,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func ToTrackResponse(a *repository.Appointment) TrackResponse {
	return TrackResponse{
		TrackingID:  a.TrackingID,
		ServiceType: a.ServiceType,
		Date:        a.Date.Format("2006-01-02"),
		Time:        a.Time,
		Status:      a.Status,
		Remarks:     a.Remarks,
		CreatedAt:   a.CreatedAt,
	}
}
