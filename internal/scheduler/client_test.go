package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type testSchedulerConfig struct {
	redisURL string
}

func (c testSchedulerConfig) GetRedisURL() string                      { return c.redisURL }
func (c testSchedulerConfig) GetOutboxDispatchInterval() time.Duration { return time.Second }
func (c testSchedulerConfig) GetOutboxBatchSize() int                  { return 10 }
func (c testSchedulerConfig) IsSchedulerEnabled() bool                 { return true }

func TestClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatal("expected error when redis url is missing")
	}
}

func TestEnqueueOutboxDelivery(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testSchedulerConfig{redisURL: "redis://" + mr.Addr()}
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	defer client.Close()

	outboxID := uuid.New()
	if err := client.EnqueueOutboxDelivery(context.Background(), outboxID, time.Now()); err != nil {
		t.Fatalf("EnqueueOutboxDelivery returned error: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer inspector.Close()

	tasks, err := inspector.ListPendingTasks(defaultQueue)
	if err != nil {
		t.Fatalf("ListPendingTasks returned error: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 pending task, got %d", len(tasks))
	}
	if tasks[0].Type != TaskNotificationOutboxDeliver {
		t.Fatalf("unexpected task type %q", tasks[0].Type)
	}

	payload, err := ParseOutboxDeliverPayload(asynq.NewTask(tasks[0].Type, tasks[0].Payload))
	if err != nil {
		t.Fatalf("ParseOutboxDeliverPayload returned error: %v", err)
	}
	if payload.OutboxID != outboxID.String() {
		t.Fatalf("payload outbox id = %q, want %q", payload.OutboxID, outboxID)
	}
}
