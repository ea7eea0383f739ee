// Package service implements appointment slot booking and the staff
// confirmation workflow on top of the fixed half-hour slot grid.
package service

import (
	"context"
	"fmt"
	"time"

	"barangay_portal_backend/internal/appointments/repository"
	"barangay_portal_backend/internal/appointments/slots"
	"barangay_portal_backend/internal/events"
	identityrepo "barangay_portal_backend/internal/identity/repository"
	identityservice "barangay_portal_backend/internal/identity/service"
	"barangay_portal_backend/internal/notification"
	"barangay_portal_backend/internal/tracking"
	"barangay_portal_backend/platform/apperr"
	"barangay_portal_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	defaultConfirmRemarks = "Appointment confirmed"
	defaultCancelRemarks  = "Appointment cancelled"
)

type Service struct {
	repo       repository.Repository
	identity   *identityservice.Service
	tracker    *tracking.Generator
	dispatcher notification.Dispatcher
	bus        events.Bus
	log        *logger.Logger
}

func New(
	repo repository.Repository,
	identity *identityservice.Service,
	tracker *tracking.Generator,
	dispatcher notification.Dispatcher,
	bus events.Bus,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:       repo,
		identity:   identity,
		tracker:    tracker,
		dispatcher: dispatcher,
		bus:        bus,
		log:        log,
	}
}

// BookParams carries a booking submission. The contact fields are only
// consulted by the public flow; authenticated bookings resolve them from the
// stored user.
type BookParams struct {
	FullName      string
	Email         string
	Phone         string
	ServiceType   string
	Date          time.Time
	Time          string
	HealthConcern *string
}

// Result pairs the booking outcome with the dispatch outcome.
type Result struct {
	Appointment        *repository.Appointment
	NotificationQueued bool
}

// Book admits a booking if the slot has capacity left. The public flow
// creates or reuses the owning user by email.
func (s *Service) Book(ctx context.Context, params BookParams) (*Result, error) {
	if err := validateBook(params); err != nil {
		return nil, err
	}

	user, err := s.identity.EnsureUser(ctx, params.FullName, params.Email, params.Phone)
	if err != nil {
		return nil, err
	}

	return s.bookAs(ctx, user, params)
}

// BookForUser books a slot for an already-authenticated user. The owner
// comes from the access token, never from the request body.
func (s *Service) BookForUser(ctx context.Context, userID uuid.UUID, params BookParams) (*Result, error) {
	if err := validateBook(params); err != nil {
		return nil, err
	}

	user, err := s.identity.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.bookAs(ctx, user, params)
}

// ListForUser pages a resident's own bookings, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]repository.Appointment, int, error) {
	return s.repo.List(ctx, repository.ListFilters{UserID: userID, Limit: limit, Offset: offset})
}

func validateBook(params BookParams) error {
	if params.ServiceType == "" {
		return apperr.Validation("service type is required")
	}
	if !slots.IsValid(params.Time) {
		return apperr.Validation(fmt.Sprintf("%q is not a bookable time slot", params.Time))
	}
	return nil
}

func (s *Service) bookAs(ctx context.Context, user *identityrepo.User, params BookParams) (*Result, error) {
	appt, err := s.bookWithFreshTrackingID(ctx, user.ID, params)
	if err != nil {
		return nil, err
	}
	appt.ResidentName = user.FullName()
	appt.ResidentEmail = user.Email

	s.bus.Publish(ctx, events.AppointmentBooked{
		BaseEvent:     events.NewBaseEvent(),
		AppointmentID: appt.ID,
		TrackingID:    appt.TrackingID,
		UserID:        user.ID,
		ServiceType:   appt.ServiceType,
		Date:          appt.Date.Format("2006-01-02"),
		Time:          appt.Time,
	})

	queued := s.dispatch(ctx, notification.Notification{
		Kind:           notification.KindAppointmentReceived,
		RecipientEmail: user.Email,
		RecipientName:  user.FullName(),
		Payload: notification.Payload{
			TrackingID:  appt.TrackingID,
			ServiceType: appt.ServiceType,
			Date:        appt.Date.Format("2006-01-02"),
			Time:        appt.Time,
		},
	})

	return &Result{Appointment: appt, NotificationQueued: queued}, nil
}

// AvailableSlots lists every catalogue slot with capacity left, ascending.
func (s *Service) AvailableSlots(ctx context.Context, date time.Time, serviceType string) ([]string, error) {
	if serviceType == "" {
		return nil, apperr.Validation("service type is required")
	}

	counts, err := s.repo.BookedCounts(ctx, date, serviceType)
	if err != nil {
		return nil, err
	}

	available := make([]string, 0, 16)
	for _, slot := range slots.Catalogue() {
		if counts[slot] < slots.MaxPerSlot {
			available = append(available, slot)
		}
	}
	return available, nil
}

// Confirm marks an appointment confirmed and notifies the resident.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*Result, error) {
	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	remarks := defaultConfirmRemarks
	if err := s.repo.UpdateStatus(ctx, appt.ID, repository.StatusConfirmed, &remarks); err != nil {
		return nil, err
	}
	oldStatus := appt.Status
	appt.Status = repository.StatusConfirmed
	appt.Remarks = &remarks

	s.publishStatusChange(ctx, appt, oldStatus)

	queued := s.dispatch(ctx, notification.Notification{
		Kind:           notification.KindAppointmentConfirmed,
		RecipientEmail: appt.ResidentEmail,
		RecipientName:  appt.ResidentName,
		Payload: notification.Payload{
			TrackingID:  appt.TrackingID,
			ServiceType: appt.ServiceType,
			Date:        appt.Date.Format("2006-01-02"),
			Time:        appt.Time,
		},
	})

	return &Result{Appointment: appt, NotificationQueued: queued}, nil
}

// Cancel frees the appointment's slot capacity. No notification is sent.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*repository.Appointment, error) {
	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if reason == "" {
		reason = defaultCancelRemarks
	}
	if err := s.repo.UpdateStatus(ctx, appt.ID, repository.StatusCancelled, &reason); err != nil {
		return nil, err
	}
	oldStatus := appt.Status
	appt.Status = repository.StatusCancelled
	appt.Remarks = &reason

	s.publishStatusChange(ctx, appt, oldStatus)
	return appt, nil
}

// UpdateStatus is the administrative correction endpoint.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string, remarks *string) (*repository.Appointment, error) {
	switch status {
	case repository.StatusPending, repository.StatusConfirmed, repository.StatusCancelled:
	default:
		return nil, apperr.Validation(fmt.Sprintf("unknown status %q", status))
	}

	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, appt.ID, status, remarks); err != nil {
		return nil, err
	}
	oldStatus := appt.Status
	appt.Status = status
	appt.Remarks = remarks

	s.publishStatusChange(ctx, appt, oldStatus)
	return appt, nil
}

// Track resolves a tracking id for the public status page.
func (s *Service) Track(ctx context.Context, trackingID string) (*repository.Appointment, error) {
	return s.repo.FindByTrackingID(ctx, trackingID)
}

// Get loads an appointment by id for staff views.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*repository.Appointment, error) {
	return s.repo.FindByID(ctx, id)
}

// List pages the staff queue.
func (s *Service) List(ctx context.Context, filters repository.ListFilters) ([]repository.Appointment, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) bookWithFreshTrackingID(ctx context.Context, userID uuid.UUID, params BookParams) (*repository.Appointment, error) {
	for attempt := 0; attempt < tracking.MaxGenerateAttempts; attempt++ {
		trackingID, err := s.tracker.Generate(tracking.PrefixAppointment)
		if err != nil {
			return nil, err
		}

		appt, err := s.repo.BookSlot(ctx, repository.BookParams{
			TrackingID:    trackingID,
			UserID:        userID,
			ServiceType:   params.ServiceType,
			Date:          params.Date,
			Time:          params.Time,
			HealthConcern: params.HealthConcern,
		})
		if err == repository.ErrDuplicateTrackingID {
			continue
		}
		if err != nil {
			return nil, err
		}
		return appt, nil
	}
	return nil, apperr.Internal("could not allocate a unique tracking id")
}

func (s *Service) dispatch(ctx context.Context, n notification.Notification) bool {
	if err := s.dispatcher.Dispatch(ctx, n); err != nil {
		return false
	}
	return true
}

func (s *Service) publishStatusChange(ctx context.Context, appt *repository.Appointment, oldStatus string) {
	s.bus.Publish(ctx, events.AppointmentStatusChanged{
		BaseEvent:     events.NewBaseEvent(),
		AppointmentID: appt.ID,
		TrackingID:    appt.TrackingID,
		ServiceType:   appt.ServiceType,
		OldStatus:     oldStatus,
		NewStatus:     appt.Status,
	})
}
