package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/pizoo/pizoo-api/internal/application/notification"
	"github.com/pizoo/pizoo-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockMessageStore struct{ mock.Mock }

func (m *mockMessageStore) Put(ctx context.Context, msg *domain.Message) error {
	return m.Called(ctx, msg).Error(0)
}
func (m *mockMessageStore) ListByMatch(ctx context.Context, matchID string) ([]domain.Message, error) {
	args := m.Called(ctx, matchID)
	return args.Get(0).([]domain.Message), args.Error(1)
}
func (m *mockMessageStore) ListUnreadFromOthers(ctx context.Context, matchID, viewerID string) ([]domain.Message, error) {
	args := m.Called(ctx, matchID, viewerID)
	return args.Get(0).([]domain.Message), args.Error(1)
}
func (m *mockMessageStore) MarkRead(ctx context.Context, messageID string) error {
	return m.Called(ctx, messageID).Error(0)
}

type mockAuthorizer struct{ mock.Mock }

func (m *mockAuthorizer) Authorize(ctx context.Context, matchID, userID string) (*domain.Match, error) {
	args := m.Called(ctx, matchID, userID)
	if mt, _ := args.Get(0).(*domain.Match); mt != nil {
		return mt, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type notifierRecorder struct {
	events []notification.Event
}

func (n *notifierRecorder) Notify(_ context.Context, e notification.Event) {
	n.events = append(n.events, e)
}

// --- List ---

func TestList_MarksUnreadFromOtherRead(t *testing.T) {
	msgs := new(mockMessageStore)
	auth := new(mockAuthorizer)
	svc := NewService(msgs, auth, new(mockUserStore), &notifierRecorder{})

	auth.On("Authorize", mock.Anything, "m1", "me").
		Return(&domain.Match{MatchID: "m1", User1ID: "me", User2ID: "b"}, nil)
	msgs.On("ListUnreadFromOthers", mock.Anything, "m1", "me").Return([]domain.Message{
		{MessageID: "msg1", SenderID: "b"},
		{MessageID: "msg2", SenderID: "b"},
	}, nil)
	msgs.On("MarkRead", mock.Anything, "msg1").Return(nil)
	msgs.On("MarkRead", mock.Anything, "msg2").Return(nil)
	msgs.On("ListByMatch", mock.Anything, "m1").Return([]domain.Message{
		{MessageID: "msg1"}, {MessageID: "msg2"},
	}, nil)

	out, err := svc.List(context.Background(), "m1", "me")
	require.NoError(t, err)
	assert.Len(t, out, 2)
	msgs.AssertCalled(t, "MarkRead", mock.Anything, "msg1")
	msgs.AssertCalled(t, "MarkRead", mock.Anything, "msg2")
}

func TestList_OutsiderForbidden(t *testing.T) {
	msgs := new(mockMessageStore)
	auth := new(mockAuthorizer)
	svc := NewService(msgs, auth, new(mockUserStore), &notifierRecorder{})

	auth.On("Authorize", mock.Anything, "m1", "eve").Return(nil, domain.ErrForbidden)

	_, err := svc.List(context.Background(), "m1", "eve")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	msgs.AssertNotCalled(t, "ListByMatch", mock.Anything, mock.Anything)
}

// --- Send ---

func TestSend_StoresUnreadAndNotifiesRecipient(t *testing.T) {
	msgs := new(mockMessageStore)
	auth := new(mockAuthorizer)
	users := new(mockUserStore)
	notifier := &notifierRecorder{}
	svc := NewService(msgs, auth, users, notifier)

	auth.On("Authorize", mock.Anything, "m1", "me").
		Return(&domain.Match{MatchID: "m1", User1ID: "me", User2ID: "b"}, nil)
	users.On("Get", mock.Anything, "me").Return(&domain.User{UserID: "me", Name: "Alice"}, nil)

	var stored *domain.Message
	msgs.On("Put", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.Message)
	}).Return(nil)

	msg, err := svc.Send(context.Background(), "me", domain.SendMessageRequest{MatchID: "m1", Content: "hey"})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.Read)
	assert.Equal(t, "me", stored.SenderID)
	assert.Equal(t, "hey", msg.Content)
	assert.WithinDuration(t, time.Now().UTC(), msg.CreatedAt, time.Minute)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, "b", notifier.events[0].UserID)
	assert.Equal(t, domain.NotificationMessage, notifier.events[0].Type)
	assert.Equal(t, "m1", notifier.events[0].Data["match_id"])
	assert.Equal(t, "hey", notifier.events[0].Data["content"])
	assert.Equal(t, stored.MessageID, notifier.events[0].Data["message_id"])
}

func TestSend_OutsiderForbidden(t *testing.T) {
	msgs := new(mockMessageStore)
	auth := new(mockAuthorizer)
	notifier := &notifierRecorder{}
	svc := NewService(msgs, auth, new(mockUserStore), notifier)

	auth.On("Authorize", mock.Anything, "m1", "eve").Return(nil, domain.ErrForbidden)

	_, err := svc.Send(context.Background(), "eve", domain.SendMessageRequest{MatchID: "m1", Content: "hi"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	msgs.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	assert.Empty(t, notifier.events)
}
