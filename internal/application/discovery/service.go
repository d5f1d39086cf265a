package discovery

import (
	"context"
	"log/slog"
	"time"

	"github.com/pizoo/pizoo-api/internal/domain"
)

// Result caps. Neither feed paginates; clients swipe through and re-fetch.
const (
	discoverLimit = 50
	nearbyLimit   = 100
)

type Service interface {
	// Discover returns up to 50 candidate profiles the user has not swiped
	// on yet, excluding the user themself.
	Discover(ctx context.Context, userID string) ([]*domain.PublicUser, error)
	// Nearby returns up to 100 profiles sharing the user's exact location
	// string, regardless of swipe history, excluding the user themself.
	Nearby(ctx context.Context, userID string) ([]*domain.PublicUser, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	ListExcluding(ctx context.Context, exclude map[string]struct{}, limit int) ([]domain.User, error)
	ListByLocation(ctx context.Context, location string, limit int) ([]domain.User, error)
}

type swipeStore interface {
	TargetIDs(ctx context.Context, fromID string) (map[string]struct{}, error)
}

type presenceStore interface {
	Online(ctx context.Context, userID string) (bool, error)
	LastActive(ctx context.Context, userID string) (*time.Time, error)
}

type service struct {
	users    userStore
	swipes   swipeStore
	presence presenceStore
}

func NewService(users userStore, swipes swipeStore, presence presenceStore) Service {
	return &service{users: users, swipes: swipes, presence: presence}
}

func (s *service) Discover(ctx context.Context, userID string) ([]*domain.PublicUser, error) {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, err
	}
	exclude, err := s.swipes.TargetIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	exclude[userID] = struct{}{}
	candidates, err := s.users.ListExcluding(ctx, exclude, discoverLimit)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, candidates, userID, discoverLimit), nil
}

func (s *service) Nearby(ctx context.Context, userID string) ([]*domain.PublicUser, error) {
	me, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	// Ask for one extra row since the user's own profile shares the location.
	neighbors, err := s.users.ListByLocation(ctx, me.Location, nearbyLimit+1)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, neighbors, userID, nearbyLimit), nil
}

// project converts candidates to public profiles with presence, dropping the
// requesting user and capping the result.
func (s *service) project(ctx context.Context, users []domain.User, selfID string, limit int) []*domain.PublicUser {
	out := make([]*domain.PublicUser, 0, len(users))
	for i := range users {
		if users[i].UserID == selfID {
			continue
		}
		if len(out) == limit {
			break
		}
		s.enrichPresence(ctx, &users[i])
		out = append(out, users[i].Public())
	}
	return out
}

func (s *service) enrichPresence(ctx context.Context, u *domain.User) {
	online, err := s.presence.Online(ctx, u.UserID)
	if err != nil {
		slog.Warn("presence lookup failed", "user_id", u.UserID, "err", err)
		return
	}
	u.Online = online
	last, err := s.presence.LastActive(ctx, u.UserID)
	if err != nil {
		slog.Warn("presence lookup failed", "user_id", u.UserID, "err", err)
		return
	}
	u.LastActive = last
}
