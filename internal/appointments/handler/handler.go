package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"barangay_portal_backend/internal/appointments/repository"
	"barangay_portal_backend/internal/appointments/service"
	"barangay_portal_backend/internal/appointments/transport"
	"barangay_portal_backend/platform/httpkit"
	"barangay_portal_backend/platform/sanitize"
	"barangay_portal_backend/platform/validator"
)

// Handler handles HTTP requests for health-center appointments.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid appointment ID"
)

// New creates a new appointments handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Book accepts a public booking submission.
// POST /api/v1/appointments
func (h *Handler) Book(c *gin.Context) {
	var req transport.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, "date must be YYYY-MM-DD")
		return
	}

	var concern *string
	if req.HealthConcern != nil {
		cleaned := sanitize.Text(*req.HealthConcern)
		concern = &cleaned
	}

	result, err := h.svc.Book(c.Request.Context(), service.BookParams{
		FullName:      sanitize.Text(req.FullName),
		Email:         req.Email,
		Phone:         req.Phone,
		ServiceType:   sanitize.Text(req.ServiceType),
		Date:          date,
		Time:          req.Time,
		HealthConcern: concern,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.BookResponse{
		Appointment:        transport.ToAppointmentResponse(result.Appointment),
		NotificationQueued: result.NotificationQueued,
	})
}

// BookOwn books a slot for an authenticated resident. The owning user is
// resolved from the access token.
// POST /api/v1/my/appointments
func (h *Handler) BookOwn(c *gin.Context) {
	ident, ok := httpkit.MustGetIdentity(c)
	if !ok {
		return
	}

	var req transport.BookOwnAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, "date must be YYYY-MM-DD")
		return
	}

	var concern *string
	if req.HealthConcern != nil {
		cleaned := sanitize.Text(*req.HealthConcern)
		concern = &cleaned
	}

	result, err := h.svc.BookForUser(c.Request.Context(), ident.UserID, service.BookParams{
		ServiceType:   sanitize.Text(req.ServiceType),
		Date:          date,
		Time:          req.Time,
		HealthConcern: concern,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.BookResponse{
		Appointment:        transport.ToAppointmentResponse(result.Appointment),
		NotificationQueued: result.NotificationQueued,
	})
}

// ListMine pages the authenticated resident's own bookings.
// GET /api/v1/my/appointments
func (h *Handler) ListMine(c *gin.Context) {
	ident, ok := httpkit.MustGetIdentity(c)
	if !ok {
		return
	}

	var req transport.MyAppointmentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
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

	responses := make([]transport.AppointmentResponse, 0, len(items))
	for i := range items {
		responses = append(responses, transport.ToAppointmentResponse(&items[i]))
	}

	httpkit.OK(c, transport.ListAppointmentsResponse{
		Appointments: responses,
		Total:        total,
		Page:         page,
		Limit:        limit,
	})
}

// AvailableSlots lists slots with capacity left for a date and service.
// GET /api/v1/appointments/slots?date=YYYY-MM-DD&service=...
func (h *Handler) AvailableSlots(c *gin.Context) {
	var req transport.AvailableSlotsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, "date must be YYYY-MM-DD")
		return
	}

	available, err := h.svc.AvailableSlots(c.Request.Context(), date, req.ServiceType)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.AvailableSlotsResponse{
		Date:        req.Date,
		ServiceType: req.ServiceType,
		Slots:       available,
	})
}

// Track returns the public status of a tracking id.
// GET /api/v1/appointments/track/:trackingId
func (h *Handler) Track(c *gin.Context) {
	appt, err := h.svc.Track(c.Request.Context(), c.Param("trackingId"))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToTrackResponse(appt))
}

// List pages the staff queue.
// GET /api/v1/admin/appointments
func (h *Handler) List(c *gin.Context) {
	var req transport.ListAppointmentsRequest
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

	filters := repository.ListFilters{
		Status:      req.Status,
		ServiceType: req.ServiceType,
		Limit:       limit,
		Offset:      (page - 1) * limit,
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, "date must be YYYY-MM-DD")
			return
		}
		filters.Date = &date
	}

	items, total, err := h.svc.List(c.Request.Context(), filters)
	if httpkit.HandleError(c, err) {
		return
	}

	responses := make([]transport.AppointmentResponse, 0, len(items))
	for i := range items {
		responses = append(responses, transport.ToAppointmentResponse(&items[i]))
	}

	httpkit.OK(c, transport.ListAppointmentsResponse{
		Appointments: responses,
		Total:        total,
		Page:         page,
		Limit:        limit,
	})
}

// Get returns one appointment for staff review.
// GET /api/v1/admin/appointments/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	appt, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToAppointmentResponse(appt))
}

// Confirm marks an appointment confirmed and notifies the resident.
// POST /api/v1/admin/appointments/:id/confirm
func (h *Handler) Confirm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	result, err := h.svc.Confirm(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.BookResponse{
		Appointment:        transport.ToAppointmentResponse(result.Appointment),
		NotificationQueued: result.NotificationQueued,
	})
}

// Cancel cancels an appointment, freeing its slot capacity.
// POST /api/v1/admin/appointments/:id/cancel
func (h *Handler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.CancelAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	appt, err := h.svc.Cancel(c.Request.Context(), id, sanitize.Text(req.Reason))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToAppointmentResponse(appt))
}

// SetStatus is the administrative correction endpoint.
// PATCH /api/v1/admin/appointments/:id/status
func (h *Handler) SetStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	updated, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status, req.Remarks)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToAppointmentResponse(updated))
}
