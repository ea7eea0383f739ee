package scheduler

import (
	"context"
	"time"

	"barangay_portal_backend/internal/notification/outbox"
	"barangay_portal_backend/platform/config"
	"barangay_portal_backend/platform/logger"
)

// OutboxDispatcher periodically claims pending outbox rows and hands them to
// the asynq queue. Rows that fail to enqueue fall back to pending so the next
// cycle retries them.
type OutboxDispatcher struct {
	client    *Client
	repo      *outbox.Repository
	interval  time.Duration
	batchSize int
	log       *logger.Logger
}

func NewOutboxDispatcher(cfg config.SchedulerConfig, client *Client, repo *outbox.Repository, log *logger.Logger) *OutboxDispatcher {
	interval := cfg.GetOutboxDispatchInterval()
	if interval <= 0 {
		interval = 2 * time.Second
	}
	batchSize := cfg.GetOutboxBatchSize()
	if batchSize < 1 {
		batchSize = 50
	}

	return &OutboxDispatcher{
		client:    client,
		repo:      repo,
		interval:  interval,
		batchSize: batchSize,
		log:       log,
	}
}

func (d *OutboxDispatcher) Run(ctx context.Context) {
	if d == nil || d.client == nil || d.repo == nil {
		return
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		records, err := d.repo.ClaimPending(ctx, d.batchSize)
		if err != nil {
			d.log.Warn("outbox claim failed", "error", err)
			continue
		}

		for _, rec := range records {
			if err := d.client.EnqueueOutboxDelivery(ctx, rec.ID, rec.RunAt); err != nil {
				msg := err.Error()
				_ = d.repo.MarkPending(ctx, rec.ID, rec.Attempts, &msg)
			}
		}
	}
}
