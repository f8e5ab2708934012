// internal/workers/notify/send-notification/models.go
package sendnotification

import "notify-workers/internal/models"

type Input struct {
	Notification models.Notification `json:"notification"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "failed", "disabled", "duplicate"
	Recipients     int    `json:"recipients"`
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Statuses
const (
	StatusSent      = "sent"
	StatusFailed    = "failed"
	StatusDisabled  = "disabled"
	StatusDuplicate = "duplicate"
)

// auditDocument is what gets indexed into the notification audit index.
type auditDocument struct {
	NotificationID string   `json:"notificationId"`
	RequestID      string   `json:"requestId"`
	CommunityID    string   `json:"communityId"`
	CommunityTitle string   `json:"communityTitle"`
	Recipients     []string `json:"recipients"`
	Status         string   `json:"status"`
	SentAt         string   `json:"sentAt"`
}
