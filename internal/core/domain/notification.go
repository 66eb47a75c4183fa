package domain

import "time"

// NotificationKind identifies the side effect a notification requests.
type NotificationKind string

const (
	NotifyWelcome       NotificationKind = "welcome"
	NotifyTaskCreated   NotificationKind = "task_created"
	NotifyTaskCompleted NotificationKind = "task_completed"
)

// Notification is a fire-and-forget request handed to the Notifier.
type Notification struct {
	ID          string            `json:"id"`
	Kind        NotificationKind  `json:"kind"`
	RecipientID int64             `json:"recipient_id"`
	Email       string            `json:"email"`
	Subject     string            `json:"subject"`
	Data        map[string]string `json:"data,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}
