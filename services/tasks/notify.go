package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"clinicdesk/models"

	"github.com/hibiken/asynq"
)

// Task type names.
const (
	TypeNotificationDeliver = "notification:deliver"
)

// NewNotificationDeliverTask wraps a notification payload into an asynq task.
func NewNotificationDeliverTask(payload models.NotificationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification payload: %w", err)
	}
	return asynq.NewTask(TypeNotificationDeliver, data,
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	), nil
}
