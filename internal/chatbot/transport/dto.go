// Package transport defines the request/response DTOs for the chatbot
// telemetry HTTP API.
package transport

import (
	"encoding/json"
	"time"

	"barangay_portal_backend/internal/chatbot/repository"

	"github.com/google/uuid"
)

type FeedbackRequest struct {
	MessageID      string `json:"messageId" binding:"required" validate:"required,max=100"`
	ConversationID string `json:"conversationId" validate:"omitempty,max=100"`
	Helpful        *bool  `json:"helpful" binding:"required" validate:"required"`
	UserMessage    string `json:"userMessage" validate:"omitempty,max=5000"`
	BotResponse    string `json:"botResponse" validate:"omitempty,max=10000"`
	Comment        string `json:"comment" validate:"omitempty,max=2000"`
}

type ConversationRequest struct {
	ConversationID string          `json:"conversationId" binding:"required" validate:"required,max=100"`
	Messages       json.RawMessage `json:"messages"`
	MessageCount   int             `json:"messageCount" validate:"gte=0"`
}

type FeedbackResponse struct {
	ID             uuid.UUID `json:"id"`
	MessageID      string    `json:"messageId"`
	ConversationID string    `json:"conversationId,omitempty"`
	Helpful        bool      `json:"helpful"`
	Comment        string    `json:"comment,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type ConversationResponse struct {
	ID             uuid.UUID `json:"id"`
	ConversationID string    `json:"conversationId"`
	MessageCount   int       `json:"messageCount"`
	CreatedAt      time.Time `json:"createdAt"`
}

type AnalyticsResponse struct {
	TotalFeedback      int                `json:"totalFeedback"`
	HelpfulCount       int                `json:"helpfulCount"`
	UnhelpfulCount     int                `json:"unhelpfulCount"`
	HelpfulnessRate    float64            `json:"helpfulnessRate"`
	TotalConversations int                `json:"totalConversations"`
	RecentFeedback     []FeedbackResponse `json:"recentFeedback"`
}

func ToFeedbackResponse(fb *repository.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:             fb.ID,
		MessageID:      fb.MessageID,
		ConversationID: fb.ConversationID,
		Helpful:        fb.Helpful,
		Comment:        fb.Comment,
		CreatedAt:      fb.CreatedAt,
	}
}

func ToConversationResponse(conv *repository.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:             conv.ID,
		ConversationID: conv.ConversationID,
		MessageCount:   conv.MessageCount,
		CreatedAt:      conv.CreatedAt,
	}
}

func ToAnalyticsResponse(a *repository.Analytics) AnalyticsResponse {
	recent := make([]FeedbackResponse, 0, len(a.RecentFeedback))
	for i := range a.RecentFeedback {
		recent = append(recent, ToFeedbackResponse(&a.RecentFeedback[i]))
	}
	return AnalyticsResponse{
		TotalFeedback:      a.TotalFeedback,
		HelpfulCount:       a.HelpfulCount,
		UnhelpfulCount:     a.UnhelpfulCount,
		HelpfulnessRate:    a.HelpfulnessRate,
		TotalConversations: a.TotalConversations,
		RecentFeedback:     recent,
	}
}
