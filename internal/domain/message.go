package domain

import "time"

// Message belongs to exactly one match and is readable only by its two
// participants. Read starts false and flips when the recipient lists the
// conversation.
type Message struct {
	MessageID string    `json:"id" dynamodbav:"message_id"`
	MatchID   string    `json:"match_id" dynamodbav:"match_id"`
	SenderID  string    `json:"sender_id" dynamodbav:"sender_id"`
	Content   string    `json:"content" dynamodbav:"content"`
	Read      bool      `json:"read" dynamodbav:"read"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}

type SendMessageRequest struct {
	MatchID string `json:"match_id" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// ConversationSummary is the per-match message state used to enrich the
// match list: the newest message and how many are still unread by the viewer.
type ConversationSummary struct {
	LastMessage *Message
	UnreadCount int
}
