package swipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pizoo/pizoo-api/internal/application/notification"
	"github.com/pizoo/pizoo-api/internal/domain"
	"github.com/pizoo/pizoo-api/internal/pkg/id"
)

type Service interface {
	// Record appends the swipe and, on a reciprocal like, creates the match
	// and emits notifications to both users.
	Record(ctx context.Context, actorID string, req domain.SwipeRequest) (*domain.SwipeResult, error)
	// LikesMe returns the distinct users who liked userID and are not yet
	// matched with them, newest like first.
	LikesMe(ctx context.Context, userID string) ([]domain.Liker, error)
}

type swipeStore interface {
	Put(ctx context.Context, s *domain.Swipe) error
	HasLike(ctx context.Context, fromID, toID string) (bool, error)
	LikesReceived(ctx context.Context, toID string) ([]domain.Swipe, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type matchRegistry interface {
	Create(ctx context.Context, userA, userB string) (*domain.Match, bool, error)
}

type matchStore interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Match, error)
}

type service struct {
	swipes   swipeStore
	users    userStore
	registry matchRegistry
	matches  matchStore
	notifier notification.Notifier
}

func NewService(swipes swipeStore, users userStore, registry matchRegistry, matches matchStore, notifier notification.Notifier) Service {
	return &service{swipes: swipes, users: users, registry: registry, matches: matches, notifier: notifier}
}

func (s *service) Record(ctx context.Context, actorID string, req domain.SwipeRequest) (*domain.SwipeResult, error) {
	if req.Action != domain.SwipeLike && req.Action != domain.SwipePass {
		return nil, fmt.Errorf("unknown swipe action %q: %w", req.Action, domain.ErrBadRequest)
	}
	swipe := &domain.Swipe{
		SwipeID:    id.New(),
		FromUserID: actorID,
		ToUserID:   req.ToUserID,
		Action:     req.Action,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.swipes.Put(ctx, swipe); err != nil {
		return nil, fmt.Errorf("record swipe: %w", err)
	}
	if req.Action == domain.SwipePass {
		return &domain.SwipeResult{Success: true}, nil
	}

	reciprocal, err := s.swipes.HasLike(ctx, req.ToUserID, actorID)
	if err != nil {
		return nil, fmt.Errorf("check reciprocal like: %w", err)
	}
	if !reciprocal {
		s.notifier.Notify(ctx, notification.Event{
			UserID:  req.ToUserID,
			Type:    domain.NotificationLike,
			Title:   "Someone likes you!",
			Message: fmt.Sprintf("%s liked your profile", s.displayName(ctx, actorID)),
			Data:    map[string]string{"from_user_id": actorID},
		})
		return &domain.SwipeResult{Success: true}, nil
	}

	m, created, err := s.registry.Create(ctx, actorID, req.ToUserID)
	if err != nil {
		return nil, err
	}
	// A repeated like on an already-matched pair reports the match again
	// but must not re-notify either side.
	if created {
		s.notifyMatch(ctx, m, actorID, req.ToUserID)
		s.notifyMatch(ctx, m, req.ToUserID, actorID)
	}
	return &domain.SwipeResult{Success: true, IsMatch: true, MatchID: &m.MatchID}, nil
}

func (s *service) notifyMatch(ctx context.Context, m *domain.Match, recipientID, otherID string) {
	s.notifier.Notify(ctx, notification.Event{
		UserID:  recipientID,
		Type:    domain.NotificationMatch,
		Title:   "It's a match!",
		Message: fmt.Sprintf("You matched with %s", s.displayName(ctx, otherID)),
		Data:    map[string]string{"match_id": m.MatchID, "user_id": otherID},
	})
}

// displayName resolves a user's name for notification copy, falling back to a
// neutral label when the profile cannot be read.
func (s *service) displayName(ctx context.Context, userID string) string {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		slog.Warn("failed to resolve user name for notification", "user_id", userID, "err", err)
		return "Someone"
	}
	return u.Name
}

func (s *service) LikesMe(ctx context.Context, userID string) ([]domain.Liker, error) {
	likes, err := s.swipes.LikesReceived(ctx, userID)
	if err != nil {
		return nil, err
	}
	matches, err := s.matches.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	matched := make(map[string]struct{}, len(matches))
	for i := range matches {
		matched[matches[i].OtherUser(userID)] = struct{}{}
	}

	// Likes arrive newest first; keep the newest like per distinct liker.
	seen := make(map[string]struct{})
	likers := make([]domain.Liker, 0, len(likes))
	for i := range likes {
		fromID := likes[i].FromUserID
		if _, ok := seen[fromID]; ok {
			continue
		}
		seen[fromID] = struct{}{}
		if _, ok := matched[fromID]; ok {
			continue
		}
		u, err := s.users.Get(ctx, fromID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				slog.Warn("like references missing user", "user_id", fromID)
				continue
			}
			return nil, err
		}
		likers = append(likers, domain.Liker{User: u.Public(), LikedAt: likes[i].CreatedAt})
	}
	return likers, nil
}
