package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pizoo/pizoo-api/internal/application/notification"
	"github.com/pizoo/pizoo-api/internal/domain"
	"github.com/pizoo/pizoo-api/internal/pkg/id"
)

type Service interface {
	// List returns the conversation of a match, oldest first. Listing is a
	// read receipt: every unread message sent by the other participant is
	// marked read before the listing is returned.
	List(ctx context.Context, matchID, requesterID string) ([]domain.Message, error)
	// Send appends a message to the match and notifies the recipient.
	Send(ctx context.Context, senderID string, req domain.SendMessageRequest) (*domain.Message, error)
}

type messageStore interface {
	Put(ctx context.Context, m *domain.Message) error
	ListByMatch(ctx context.Context, matchID string) ([]domain.Message, error)
	ListUnreadFromOthers(ctx context.Context, matchID, viewerID string) ([]domain.Message, error)
	MarkRead(ctx context.Context, messageID string) error
}

type matchAuthorizer interface {
	Authorize(ctx context.Context, matchID, userID string) (*domain.Match, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type service struct {
	messages messageStore
	matches  matchAuthorizer
	users    userStore
	notifier notification.Notifier
}

func NewService(messages messageStore, matches matchAuthorizer, users userStore, notifier notification.Notifier) Service {
	return &service{messages: messages, matches: matches, users: users, notifier: notifier}
}

func (s *service) List(ctx context.Context, matchID, requesterID string) ([]domain.Message, error) {
	if _, err := s.matches.Authorize(ctx, matchID, requesterID); err != nil {
		return nil, err
	}
	unread, err := s.messages.ListUnreadFromOthers(ctx, matchID, requesterID)
	if err != nil {
		return nil, fmt.Errorf("list unread messages: %w", err)
	}
	for i := range unread {
		if err := s.messages.MarkRead(ctx, unread[i].MessageID); err != nil {
			return nil, fmt.Errorf("mark message %s read: %w", unread[i].MessageID, err)
		}
	}
	return s.messages.ListByMatch(ctx, matchID)
}

func (s *service) Send(ctx context.Context, senderID string, req domain.SendMessageRequest) (*domain.Message, error) {
	m, err := s.matches.Authorize(ctx, req.MatchID, senderID)
	if err != nil {
		return nil, err
	}
	msg := &domain.Message{
		MessageID: id.New(),
		MatchID:   req.MatchID,
		SenderID:  senderID,
		Content:   req.Content,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Put(ctx, msg); err != nil {
		return nil, fmt.Errorf("store message: %w", err)
	}
	s.notifier.Notify(ctx, notification.Event{
		UserID:  m.OtherUser(senderID),
		Type:    domain.NotificationMessage,
		Title:   "New message",
		Message: fmt.Sprintf("%s sent you a message", s.senderName(ctx, senderID)),
		Data:    map[string]string{"match_id": req.MatchID, "message_id": msg.MessageID, "content": req.Content},
	})
	return msg, nil
}

func (s *service) senderName(ctx context.Context, senderID string) string {
	u, err := s.users.Get(ctx, senderID)
	if err != nil {
		slog.Warn("failed to resolve sender name for notification", "user_id", senderID, "err", err)
		return "Someone"
	}
	return u.Name
}
