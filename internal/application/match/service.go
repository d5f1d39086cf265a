package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pizoo/pizoo-api/internal/domain"
	"github.com/pizoo/pizoo-api/internal/pkg/id"
)

type Service interface {
	// Create registers a match between two users. It is idempotent per
	// unordered pair: concurrent reciprocal swipes converge on one match.
	Create(ctx context.Context, userA, userB string) (m *domain.Match, created bool, err error)
	// ListFor returns the user's matches enriched with the other profile,
	// the latest message and the viewer's unread count.
	ListFor(ctx context.Context, userID string) ([]domain.MatchSummary, error)
	// Authorize loads a match and verifies userID participates in it.
	Authorize(ctx context.Context, matchID, userID string) (*domain.Match, error)
}

type matchStore interface {
	Create(ctx context.Context, m *domain.Match) (created bool, existing *domain.Match, err error)
	GetByID(ctx context.Context, matchID string) (*domain.Match, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Match, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type messageStore interface {
	ConversationSummaries(ctx context.Context, matchIDs []string, viewerID string) (map[string]domain.ConversationSummary, error)
}

type presenceStore interface {
	Online(ctx context.Context, userID string) (bool, error)
	LastActive(ctx context.Context, userID string) (*time.Time, error)
}

type service struct {
	matches  matchStore
	users    userStore
	messages messageStore
	presence presenceStore
}

func NewService(matches matchStore, users userStore, messages messageStore, presence presenceStore) Service {
	return &service{matches: matches, users: users, messages: messages, presence: presence}
}

func (s *service) Create(ctx context.Context, userA, userB string) (*domain.Match, bool, error) {
	m := &domain.Match{
		PairKey:   domain.PairKeyFor(userA, userB),
		MatchID:   id.New(),
		User1ID:   userA,
		User2ID:   userB,
		CreatedAt: time.Now().UTC(),
	}
	created, existing, err := s.matches.Create(ctx, m)
	if err != nil {
		return nil, false, fmt.Errorf("create match: %w", err)
	}
	return existing, created, nil
}

func (s *service) ListFor(ctx context.Context, userID string) ([]domain.MatchSummary, error) {
	matches, err := s.matches.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	matchIDs := make([]string, len(matches))
	for i := range matches {
		matchIDs[i] = matches[i].MatchID
	}
	conversations, err := s.messages.ConversationSummaries(ctx, matchIDs, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.MatchSummary, 0, len(matches))
	for i := range matches {
		m := &matches[i]
		otherID := m.OtherUser(userID)
		other, err := s.users.Get(ctx, otherID)
		if err != nil {
			// A deleted participant hides the match instead of failing
			// the whole list.
			if errors.Is(err, domain.ErrNotFound) {
				slog.Warn("match references missing user", "match_id", m.MatchID, "user_id", otherID)
				continue
			}
			return nil, err
		}
		s.enrichPresence(ctx, other)
		conv := conversations[m.MatchID]
		summaries = append(summaries, domain.MatchSummary{
			MatchID:     m.MatchID,
			User:        other.Public(),
			LastMessage: conv.LastMessage,
			UnreadCount: conv.UnreadCount,
			MatchedAt:   m.CreatedAt,
		})
	}
	return summaries, nil
}

func (s *service) Authorize(ctx context.Context, matchID, userID string) (*domain.Match, error) {
	m, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !m.HasParticipant(userID) {
		return nil, fmt.Errorf("user %s is not part of match %s: %w", userID, matchID, domain.ErrForbidden)
	}
	return m, nil
}

// enrichPresence fills the volatile presence fields. Cache errors degrade to
// offline rather than failing the read.
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
