package domain

import "time"

// Notification types.
const (
	NotificationMatch   = "match"
	NotificationLike    = "like"
	NotificationMessage = "message"
)

// Notification is an in-store inbox entry produced as a side effect of swipe
// and message events. There is no external delivery channel.
type Notification struct {
	NotificationID string            `json:"id" dynamodbav:"notification_id"`
	UserID         string            `json:"user_id" dynamodbav:"user_id"`
	Type           string            `json:"type" dynamodbav:"type"`
	Title          string            `json:"title" dynamodbav:"title"`
	Message        string            `json:"message" dynamodbav:"message"`
	Data           map[string]string `json:"data" dynamodbav:"data"`
	Read           bool              `json:"read" dynamodbav:"read"`
	CreatedAt      time.Time         `json:"created_at" dynamodbav:"created_at"`
}
