package match

import (
	"context"
	"testing"
	"time"

	"github.com/pizoo/pizoo-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockMatchStore struct{ mock.Mock }

func (m *mockMatchStore) Create(ctx context.Context, mt *domain.Match) (bool, *domain.Match, error) {
	args := m.Called(ctx, mt)
	if existing, _ := args.Get(1).(*domain.Match); existing != nil {
		return args.Bool(0), existing, args.Error(2)
	}
	return args.Bool(0), nil, args.Error(2)
}
func (m *mockMatchStore) GetByID(ctx context.Context, matchID string) (*domain.Match, error) {
	args := m.Called(ctx, matchID)
	if mt, _ := args.Get(0).(*domain.Match); mt != nil {
		return mt, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockMatchStore) ListByUser(ctx context.Context, userID string) ([]domain.Match, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Match), args.Error(1)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockMessageStore struct{ mock.Mock }

func (m *mockMessageStore) ConversationSummaries(ctx context.Context, matchIDs []string, viewerID string) (map[string]domain.ConversationSummary, error) {
	args := m.Called(ctx, matchIDs, viewerID)
	return args.Get(0).(map[string]domain.ConversationSummary), args.Error(1)
}

type mockPresence struct{ mock.Mock }

func (m *mockPresence) Online(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}
func (m *mockPresence) LastActive(ctx context.Context, userID string) (*time.Time, error) {
	args := m.Called(ctx, userID)
	if ts, _ := args.Get(0).(*time.Time); ts != nil {
		return ts, args.Error(1)
	}
	return nil, args.Error(1)
}

func newSvc(ms *mockMatchStore, us *mockUserStore, msgs *mockMessageStore, ps *mockPresence) Service {
	return NewService(ms, us, msgs, ps)
}

// --- Create ---

func TestCreate_NewPair(t *testing.T) {
	matches := new(mockMatchStore)
	svc := newSvc(matches, new(mockUserStore), new(mockMessageStore), new(mockPresence))

	matches.On("Create", mock.Anything, mock.MatchedBy(func(m *domain.Match) bool {
		return m.PairKey == "a#b" && m.MatchID != ""
	})).Return(true, &domain.Match{PairKey: "a#b", MatchID: "m1"}, nil)

	m, created, err := svc.Create(context.Background(), "b", "a")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "m1", m.MatchID)
}

func TestCreate_ExistingPair_ReturnsWinner(t *testing.T) {
	matches := new(mockMatchStore)
	svc := newSvc(matches, new(mockUserStore), new(mockMessageStore), new(mockPresence))

	existing := &domain.Match{PairKey: "a#b", MatchID: "m-first"}
	matches.On("Create", mock.Anything, mock.Anything).Return(false, existing, nil)

	m, created, err := svc.Create(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "m-first", m.MatchID)
}

// --- Authorize ---

func TestAuthorize_Participant(t *testing.T) {
	matches := new(mockMatchStore)
	svc := newSvc(matches, new(mockUserStore), new(mockMessageStore), new(mockPresence))

	matches.On("GetByID", mock.Anything, "m1").
		Return(&domain.Match{MatchID: "m1", User1ID: "a", User2ID: "b"}, nil)

	m, err := svc.Authorize(context.Background(), "m1", "b")
	require.NoError(t, err)
	assert.Equal(t, "m1", m.MatchID)
}

func TestAuthorize_Outsider(t *testing.T) {
	matches := new(mockMatchStore)
	svc := newSvc(matches, new(mockUserStore), new(mockMessageStore), new(mockPresence))

	matches.On("GetByID", mock.Anything, "m1").
		Return(&domain.Match{MatchID: "m1", User1ID: "a", User2ID: "b"}, nil)

	_, err := svc.Authorize(context.Background(), "m1", "eve")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAuthorize_MissingMatch(t *testing.T) {
	matches := new(mockMatchStore)
	svc := newSvc(matches, new(mockUserStore), new(mockMessageStore), new(mockPresence))

	matches.On("GetByID", mock.Anything, "nope").Return(nil, domain.ErrNotFound)

	_, err := svc.Authorize(context.Background(), "nope", "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// --- ListFor ---

func TestListFor_EnrichesWithConversationAndPresence(t *testing.T) {
	matches := new(mockMatchStore)
	users := new(mockUserStore)
	msgs := new(mockMessageStore)
	ps := new(mockPresence)
	svc := newSvc(matches, users, msgs, ps)

	matchedAt := time.Now().UTC().Add(-time.Hour)
	matches.On("ListByUser", mock.Anything, "me").Return([]domain.Match{
		{MatchID: "m1", User1ID: "me", User2ID: "b", CreatedAt: matchedAt},
	}, nil)
	last := &domain.Message{MessageID: "msg9", MatchID: "m1", SenderID: "b", Content: "hey"}
	msgs.On("ConversationSummaries", mock.Anything, []string{"m1"}, "me").
		Return(map[string]domain.ConversationSummary{
			"m1": {LastMessage: last, UnreadCount: 3},
		}, nil)
	users.On("Get", mock.Anything, "b").Return(&domain.User{UserID: "b", Name: "Bob"}, nil)
	ps.On("Online", mock.Anything, "b").Return(true, nil)
	ps.On("LastActive", mock.Anything, "b").Return(nil, nil)

	summaries, err := svc.ListFor(context.Background(), "me")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "m1", summaries[0].MatchID)
	assert.Equal(t, "b", summaries[0].User.UserID)
	assert.True(t, summaries[0].User.Online)
	assert.Equal(t, 3, summaries[0].UnreadCount)
	assert.Equal(t, "msg9", summaries[0].LastMessage.MessageID)
	assert.Equal(t, matchedAt, summaries[0].MatchedAt)
}

func TestListFor_SkipsMatchWithDeletedUser(t *testing.T) {
	matches := new(mockMatchStore)
	users := new(mockUserStore)
	msgs := new(mockMessageStore)
	ps := new(mockPresence)
	svc := newSvc(matches, users, msgs, ps)

	matches.On("ListByUser", mock.Anything, "me").Return([]domain.Match{
		{MatchID: "m1", User1ID: "me", User2ID: "ghost"},
		{MatchID: "m2", User1ID: "b", User2ID: "me"},
	}, nil)
	msgs.On("ConversationSummaries", mock.Anything, []string{"m1", "m2"}, "me").
		Return(map[string]domain.ConversationSummary{}, nil)
	users.On("Get", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)
	users.On("Get", mock.Anything, "b").Return(&domain.User{UserID: "b"}, nil)
	ps.On("Online", mock.Anything, "b").Return(false, nil)
	ps.On("LastActive", mock.Anything, "b").Return(nil, nil)

	summaries, err := svc.ListFor(context.Background(), "me")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "m2", summaries[0].MatchID)
	assert.Nil(t, summaries[0].LastMessage)
	assert.Zero(t, summaries[0].UnreadCount)
}
