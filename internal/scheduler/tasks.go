// Package scheduler moves notifications from the durable outbox to SMTP.
// A dispatcher loop claims due rows and enqueues asynq tasks; the worker
// consumes the tasks and performs delivery.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskNotificationOutboxDeliver = "notification:outbox:deliver"

type OutboxDeliverPayload struct {
	OutboxID string `json:"outboxId"`
}

func NewOutboxDeliverTask(payload OutboxDeliverPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationOutboxDeliver, data), nil
}

func ParseOutboxDeliverPayload(task *asynq.Task) (OutboxDeliverPayload, error) {
	var payload OutboxDeliverPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return OutboxDeliverPayload{}, err
	}
	return payload, nil
}
