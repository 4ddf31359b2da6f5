package schema

import "time"

// NotificationType distinguishes automatic notices from mentions by other users.
type NotificationType string

const (
	NotificationSystem  NotificationType = "SYSTEM"
	NotificationMention NotificationType = "MENTION"
)

// Notification is one mailbox entry. Only the user named by UserID sees it; only Read ever changes.
type Notification struct {
	ID           string           `json:"id"`
	UserID       string           `json:"userId"`
	Message      string           `json:"message"`
	Type         NotificationType `json:"type"`
	Read         bool             `json:"read"`
	CreatedAt    time.Time        `json:"createdAt"`
	TargetModule string           `json:"targetModule,omitempty"`
	TargetTab    string           `json:"targetTab,omitempty"`
}
