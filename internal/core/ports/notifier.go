package ports

import (
	"context"

	"github.com/tasknexus/tasknexus-api/internal/core/domain"
)

// Notifier accepts fire-and-forget notifications. Notify never blocks the
// caller on delivery and never reports delivery failures.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}

// NotificationSink performs the actual delivery of a notification.
type NotificationSink interface {
	Deliver(ctx context.Context, n domain.Notification) error
}
