package repository

import (
	"context"
	"encoding/json"
	"time"

	"barangay_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Feedback is one thumbs-up/down rating on a bot response.
type Feedback struct {
	ID             uuid.UUID
	MessageID      string
	ConversationID string
	Helpful        bool
	UserMessage    string
	BotResponse    string
	Comment        string
	CreatedAt      time.Time
}

// FeedbackParams holds the fields for a new rating.
type FeedbackParams struct {
	MessageID      string
	ConversationID string
	Helpful        bool
	UserMessage    string
	BotResponse    string
	Comment        string
}

// Conversation is an archived chat transcript.
type Conversation struct {
	ID             uuid.UUID
	ConversationID string
	Messages       json.RawMessage
	MessageCount   int
	CreatedAt      time.Time
}

// ConversationParams holds the fields for a new transcript.
type ConversationParams struct {
	ConversationID string
	Messages       json.RawMessage
	MessageCount   int
}

// Analytics aggregates feedback for the staff view.
type Analytics struct {
	TotalFeedback      int
	HelpfulCount       int
	UnhelpfulCount     int
	HelpfulnessRate    float64
	TotalConversations int
	RecentFeedback     []Feedback
}

// Repository is the storage contract for chatbot telemetry.
type Repository interface {
	CreateFeedback(ctx context.Context, params FeedbackParams) (*Feedback, error)
	CreateConversation(ctx context.Context, params ConversationParams) (*Conversation, error)
	Analytics(ctx context.Context, recentLimit int) (*Analytics, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

// New creates a PostgreSQL-backed chatbot repository.
func New(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) CreateFeedback(ctx context.Context, params FeedbackParams) (*Feedback, error) {
	const op = "chatbot.repository.CreateFeedback"

	var fb Feedback
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat_feedback (message_id, conversation_id, helpful, user_message, bot_response, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, message_id, conversation_id, helpful, user_message, bot_response, comment, created_at`,
		params.MessageID, params.ConversationID, params.Helpful,
		params.UserMessage, params.BotResponse, params.Comment,
	).Scan(&fb.ID, &fb.MessageID, &fb.ConversationID, &fb.Helpful,
		&fb.UserMessage, &fb.BotResponse, &fb.Comment, &fb.CreatedAt)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to store chat feedback", err).WithOp(op)
	}
	return &fb, nil
}

func (r *postgresRepository) CreateConversation(ctx context.Context, params ConversationParams) (*Conversation, error) {
	const op = "chatbot.repository.CreateConversation"

	messages := params.Messages
	if len(messages) == 0 {
		messages = json.RawMessage("[]")
	}

	var conv Conversation
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat_conversations (conversation_id, messages, message_count)
		VALUES ($1, $2, $3)
		RETURNING id, conversation_id, messages, message_count, created_at`,
		params.ConversationID, messages, params.MessageCount,
	).Scan(&conv.ID, &conv.ConversationID, &conv.Messages, &conv.MessageCount, &conv.CreatedAt)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to store chat conversation", err).WithOp(op)
	}
	return &conv, nil
}

func (r *postgresRepository) Analytics(ctx context.Context, recentLimit int) (*Analytics, error) {
	const op = "chatbot.repository.Analytics"

	var a Analytics
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE helpful),
		       COUNT(*) FILTER (WHERE NOT helpful)
		FROM chat_feedback`,
	).Scan(&a.TotalFeedback, &a.HelpfulCount, &a.UnhelpfulCount)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to aggregate chat feedback", err).WithOp(op)
	}
	if a.TotalFeedback > 0 {
		a.HelpfulnessRate = float64(a.HelpfulCount) / float64(a.TotalFeedback)
	}

	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM chat_conversations`).Scan(&a.TotalConversations); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to count chat conversations", err).WithOp(op)
	}

	if recentLimit <= 0 {
		recentLimit = 10
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, message_id, conversation_id, helpful, user_message, bot_response, comment, created_at
		FROM chat_feedback
		ORDER BY created_at DESC
		LIMIT $1`, recentLimit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load recent chat feedback", err).WithOp(op)
	}
	defer rows.Close()

	for rows.Next() {
		var fb Feedback
		if err := rows.Scan(&fb.ID, &fb.MessageID, &fb.ConversationID, &fb.Helpful,
			&fb.UserMessage, &fb.BotResponse, &fb.Comment, &fb.CreatedAt); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to scan chat feedback", err).WithOp(op)
		}
		a.RecentFeedback = append(a.RecentFeedback, fb)
	}
	return &a, rows.Err()
}
