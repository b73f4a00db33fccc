package models

import "time"

type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationInfo    NotificationType = "info"
	NotificationDefault NotificationType = "default"
)

// DefaultNotificationDuration applies when a notification is created
// without an explicit duration.
const DefaultNotificationDuration = 3 * time.Second

// Notification is user feedback that removes itself after Duration.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	Duration  time.Duration
	Timestamp time.Time
}
