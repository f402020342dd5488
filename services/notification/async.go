package notification

import (
	"context"
	"fmt"

	"clinicdesk/config"
	"clinicdesk/models"
	"clinicdesk/services/tasks"
	"clinicdesk/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// AsyncNotificationService enqueues notification events onto the task queue
// for delivery by the background worker.
type AsyncNotificationService struct {
	client *asynq.Client
}

// NewAsyncNotificationService creates the queue-backed notification service.
func NewAsyncNotificationService() *AsyncNotificationService {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskDB,
	})
	return &AsyncNotificationService{client: client}
}

func (s *AsyncNotificationService) Publish(ctx context.Context, payload models.NotificationPayload) error {
	task, err := tasks.NewNotificationDeliverTask(payload)
	if err != nil {
		return err
	}
	info, err := s.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue notification task: %w", err)
	}
	utils.GetLogger().Debug("enqueued notification",
		zap.String("event", payload.Event),
		zap.String("taskId", info.ID))
	return nil
}

// Close releases the underlying queue client.
func (s *AsyncNotificationService) Close() error {
	return s.client.Close()
}
