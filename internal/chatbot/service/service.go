// Package service records chatbot telemetry: response ratings and
// archived transcripts, aggregated for the staff analytics view.
package service

import (
	"context"
	"encoding/json"

	"barangay_portal_backend/internal/chatbot/repository"
	"barangay_portal_backend/platform/apperr"
	"barangay_portal_backend/platform/logger"
)

const recentFeedbackLimit = 10

type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// FeedbackParams carries one rating from the widget.
type FeedbackParams struct {
	MessageID      string
	ConversationID string
	Helpful        bool
	UserMessage    string
	BotResponse    string
	Comment        string
}

// ConversationParams carries one archived transcript.
type ConversationParams struct {
	ConversationID string
	Messages       json.RawMessage
	MessageCount   int
}

// RecordFeedback stores a rating.
func (s *Service) RecordFeedback(ctx context.Context, params FeedbackParams) (*repository.Feedback, error) {
	if params.MessageID == "" {
		return nil, apperr.Validation("message id is required")
	}
	return s.repo.CreateFeedback(ctx, repository.FeedbackParams{
		MessageID:      params.MessageID,
		ConversationID: params.ConversationID,
		Helpful:        params.Helpful,
		UserMessage:    params.UserMessage,
		BotResponse:    params.BotResponse,
		Comment:        params.Comment,
	})
}

// RecordConversation archives a transcript.
func (s *Service) RecordConversation(ctx context.Context, params ConversationParams) (*repository.Conversation, error) {
	if params.ConversationID == "" {
		return nil, apperr.Validation("conversation id is required")
	}
	if params.MessageCount < 0 {
		return nil, apperr.Validation("message count cannot be negative")
	}
	return s.repo.CreateConversation(ctx, repository.ConversationParams{
		ConversationID: params.ConversationID,
		Messages:       params.Messages,
		MessageCount:   params.MessageCount,
	})
}

// Analytics aggregates ratings for staff.
func (s *Service) Analytics(ctx context.Context) (*repository.Analytics, error) {
	return s.repo.Analytics(ctx, recentFeedbackLimit)
}
