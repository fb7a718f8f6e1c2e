package models

// RefItem is one entry of a reference list (currencies, carriers, units).
type RefItem struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// NotificationType classifies a user-facing notice.
type NotificationType string

const (
	NoticeSuccess NotificationType = "success"
	NoticeError   NotificationType = "error"
	NoticeWarning NotificationType = "warning"
	NoticeInfo    NotificationType = "info"
)

// Notification is the fire-and-forget payload handed to the notification
// collaborator.
type Notification struct {
	Type    NotificationType `json:"type"`
	Message string           `json:"message"`
}
