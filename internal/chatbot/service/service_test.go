package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"barangay_portal_backend/internal/chatbot/repository"
	"barangay_portal_backend/platform/apperr"
	"barangay_portal_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeChatRepo struct {
	mu            sync.Mutex
	feedback      []repository.Feedback
	conversations []repository.Conversation
}

func (f *fakeChatRepo) CreateFeedback(_ context.Context, params repository.FeedbackParams) (*repository.Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fb := repository.Feedback{
		ID:             uuid.New(),
		MessageID:      params.MessageID,
		ConversationID: params.ConversationID,
		Helpful:        params.Helpful,
		UserMessage:    params.UserMessage,
		BotResponse:    params.BotResponse,
		Comment:        params.Comment,
		CreatedAt:      time.Now(),
	}
	f.feedback = append(f.feedback, fb)
	return &fb, nil
}

func (f *fakeChatRepo) CreateConversation(_ context.Context, params repository.ConversationParams) (*repository.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv := repository.Conversation{
		ID:             uuid.New(),
		ConversationID: params.ConversationID,
		Messages:       params.Messages,
		MessageCount:   params.MessageCount,
		CreatedAt:      time.Now(),
	}
	f.conversations = append(f.conversations, conv)
	return &conv, nil
}

func (f *fakeChatRepo) Analytics(_ context.Context, recentLimit int) (*repository.Analytics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := &repository.Analytics{
		TotalFeedback:      len(f.feedback),
		TotalConversations: len(f.conversations),
	}
	for _, fb := range f.feedback {
		if fb.Helpful {
			a.HelpfulCount++
		} else {
			a.UnhelpfulCount++
		}
	}
	if a.TotalFeedback > 0 {
		a.HelpfulnessRate = float64(a.HelpfulCount) / float64(a.TotalFeedback)
	}
	for i := len(f.feedback) - 1; i >= 0 && len(a.RecentFeedback) < recentLimit; i-- {
		a.RecentFeedback = append(a.RecentFeedback, f.feedback[i])
	}
	return a, nil
}

func newTestService() (*Service, *fakeChatRepo) {
	repo := &fakeChatRepo{}
	return New(repo, logger.New("development")), repo
}

func TestRecordFeedbackRequiresMessageID(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.RecordFeedback(context.Background(), FeedbackParams{Helpful: true})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("missing message id: got %v, want validation error", err)
	}
}

func TestRecordConversationRequiresID(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.RecordConversation(context.Background(), ConversationParams{MessageCount: 3})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("missing conversation id: got %v, want validation error", err)
	}
}

func TestAnalyticsAggregatesRatings(t *testing.T) {
	svc, _ := newTestService()

	ratings := []bool{true, true, true, false}
	for i, helpful := range ratings {
		_, err := svc.RecordFeedback(context.Background(), FeedbackParams{
			MessageID: uuid.NewString(),
			Helpful:   helpful,
			Comment:   map[bool]string{true: "helped", false: "wrong office hours"}[helpful],
		})
		if err != nil {
			t.Fatalf("rating %d returned error: %v", i, err)
		}
	}
	if _, err := svc.RecordConversation(context.Background(), ConversationParams{
		ConversationID: uuid.NewString(),
		MessageCount:   6,
	}); err != nil {
		t.Fatalf("RecordConversation returned error: %v", err)
	}

	a, err := svc.Analytics(context.Background())
	if err != nil {
		t.Fatalf("Analytics returned error: %v", err)
	}

	if a.TotalFeedback != 4 || a.HelpfulCount != 3 || a.UnhelpfulCount != 1 {
		t.Fatalf("counts = %d/%d/%d, want 4/3/1", a.TotalFeedback, a.HelpfulCount, a.UnhelpfulCount)
	}
	if a.HelpfulnessRate != 0.75 {
		t.Fatalf("helpfulness rate = %v, want 0.75", a.HelpfulnessRate)
	}
	if a.TotalConversations != 1 {
		t.Fatalf("conversations = %d, want 1", a.TotalConversations)
	}
	if len(a.RecentFeedback) != 4 {
		t.Fatalf("recent feedback holds %d entries, want 4", len(a.RecentFeedback))
	}
}
