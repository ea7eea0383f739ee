// Package service implements contact message intake and the staff inbox,
// including email replies to residents.
package service

import (
	"context"

	"barangay_portal_backend/internal/contact/repository"
	"barangay_portal_backend/internal/events"
	"barangay_portal_backend/internal/notification"
	"barangay_portal_backend/platform/apperr"
	"barangay_portal_backend/platform/logger"

	"github.com/google/uuid"
)

type Service struct {
	repo       repository.Repository
	dispatcher notification.Dispatcher
	bus        events.Bus
	log        *logger.Logger
}

func New(repo repository.Repository, dispatcher notification.Dispatcher, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, dispatcher: dispatcher, bus: bus, log: log}
}

// SubmitParams carries a public inquiry submission.
type SubmitParams struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Body    string
}

// ReplyResult pairs the updated message with the dispatch outcome.
type ReplyResult struct {
	Message            *repository.Message
	NotificationQueued bool
}

// Submit stores a resident inquiry and notifies the staff feed.
func (s *Service) Submit(ctx context.Context, params SubmitParams) (*repository.Message, error) {
	if params.Subject == "" {
		return nil, apperr.Validation("subject is required")
	}
	if params.Body == "" {
		return nil, apperr.Validation("message body is required")
	}

	msg, err := s.repo.Create(ctx, repository.CreateParams{
		Name:    params.Name,
		Email:   params.Email,
		Phone:   params.Phone,
		Subject: params.Subject,
		Body:    params.Body,
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.ContactMessageReceived{
		BaseEvent: events.NewBaseEvent(),
		MessageID: msg.ID,
		Name:      msg.Name,
		Subject:   msg.Subject,
	})

	return msg, nil
}

// List pages the staff inbox.
func (s *Service) List(ctx context.Context, filters repository.ListFilters) ([]repository.Message, int, error) {
	return s.repo.List(ctx, filters)
}

// Get loads one message.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*repository.Message, error) {
	return s.repo.FindByID(ctx, id)
}

// MarkRead marks a message as handled.
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, id)
}

// Delete removes a message from the inbox.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// CountUnread reports the unread inbox size for the dashboard.
func (s *Service) CountUnread(ctx context.Context) (int, error) {
	return s.repo.CountUnread(ctx)
}

// Reply emails the resident and marks the message read once the reply is
// queued. A dispatch failure leaves the message unread so staff retry.
func (s *Service) Reply(ctx context.Context, id uuid.UUID, body string) (*ReplyResult, error) {
	if body == "" {
		return nil, apperr.Validation("reply body is required")
	}

	msg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	queued := true
	if err := s.dispatcher.Dispatch(ctx, notification.Notification{
		Kind:           notification.KindContactReply,
		RecipientEmail: msg.Email,
		RecipientName:  msg.Name,
		Payload: notification.Payload{
			Subject: msg.Subject,
			Body:    body,
		},
	}); err != nil {
		queued = false
	}

	if queued {
		if err := s.repo.MarkRead(ctx, msg.ID); err != nil {
			return nil, err
		}
		msg.Status = repository.StatusRead
	}

	return &ReplyResult{Message: msg, NotificationQueued: queued}, nil
}
