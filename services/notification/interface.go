package notification

import (
	"context"

	"clinicdesk/models"
)

// NotificationService publishes queue events toward patients. Publishing is
// fire-and-forget from the scheduler's point of view; delivery happens on a
// background worker.
type NotificationService interface {
	Publish(ctx context.Context, payload models.NotificationPayload) error
}
