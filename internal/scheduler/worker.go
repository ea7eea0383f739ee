package scheduler

import (
	"context"
	"fmt"

	"barangay_portal_backend/internal/notification"
	"barangay_portal_backend/internal/notification/outbox"
	"barangay_portal_backend/platform/config"
	"barangay_portal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// maxDeliveryAttempts bounds SMTP retries per outbox row. After this many
// attempts the row is marked failed and needs staff attention.
const maxDeliveryAttempts = 5

const defaultConcurrency = 10

// Worker consumes delivery tasks and performs the actual SMTP send. Retry is
// driven through the outbox table, not asynq: a failed delivery returns the
// row to pending and the dispatcher claims it again on a later cycle.
type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	repo    *outbox.Repository
	courier *notification.Courier
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, repo *outbox.Repository, courier *notification.Courier, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: defaultConcurrency,
		Queues: map[string]int{
			defaultQueue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:  server,
		mux:     mux,
		repo:    repo,
		courier: courier,
		log:     log,
	}

	mux.HandleFunc(TaskNotificationOutboxDeliver, w.handleOutboxDeliver)

	return w, nil
}

func (w *Worker) handleOutboxDeliver(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseOutboxDeliverPayload(task)
	if err != nil {
		return err
	}

	outboxID, err := uuid.Parse(payload.OutboxID)
	if err != nil {
		return err
	}

	rec, err := w.repo.GetByID(ctx, outboxID)
	if err != nil {
		return err
	}
	if rec.Status == outbox.StatusSucceeded || rec.Status == outbox.StatusFailed {
		return nil
	}

	if err := w.repo.MarkProcessing(ctx, rec.ID); err != nil {
		return err
	}
	attempts := rec.Attempts + 1

	n, err := notification.FromRecord(rec)
	if err != nil {
		// Malformed payloads never deliver, retrying is pointless.
		return w.repo.MarkFailed(ctx, rec.ID, err.Error())
	}

	if err := w.courier.Deliver(ctx, n); err != nil {
		w.log.DispatchFailure(rec.Kind, rec.RecipientEmail, n.Payload.TrackingID, err)
		if attempts >= maxDeliveryAttempts {
			return w.repo.MarkFailed(ctx, rec.ID, err.Error())
		}
		msg := err.Error()
		return w.repo.MarkPending(ctx, rec.ID, attempts, &msg)
	}

	return w.repo.MarkSucceeded(ctx, rec.ID)
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
