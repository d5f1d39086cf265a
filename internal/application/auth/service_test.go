package auth

import (
	"context"
	"testing"
	"time"

	"github.com/pizoo/pizoo-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

type mockPresence struct{ mock.Mock }

func (m *mockPresence) Touch(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}
func (m *mockPresence) Offline(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}
func (m *mockPresence) LastActive(ctx context.Context, userID string) (*time.Time, error) {
	args := m.Called(ctx, userID)
	if ts, _ := args.Get(0).(*time.Time); ts != nil {
		return ts, args.Error(1)
	}
	return nil, args.Error(1)
}

// chanMailer lets tests wait on the async welcome mail.
type chanMailer struct {
	sent chan string
}

func newChanMailer() *chanMailer { return &chanMailer{sent: make(chan string, 1)} }

func (m *chanMailer) SendEmail(to, subject, body string) error {
	m.sent <- to
	return nil
}

func validRegister() domain.RegisterRequest {
	return domain.RegisterRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
		Name:     "Alice",
		Age:      29,
		Gender:   "female",
		Location: "Berlin",
	}
}

// --- Register ---

func TestRegister_HappyPath(t *testing.T) {
	users := new(mockUserStore)
	signer := new(mockSigner)
	mailer := newChanMailer()
	svc := NewService(users, signer, new(mockPresence), mailer)

	users.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, domain.ErrNotFound)
	var stored *domain.User
	users.On("Put", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.User)
	}).Return(nil)
	signer.On("Sign", mock.Anything).Return("tok", nil)

	token, user, err := svc.Register(context.Background(), validRegister())
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	require.NotNil(t, stored)
	assert.Equal(t, user.UserID, stored.UserID)
	assert.NotEmpty(t, stored.UserID)
	assert.NotNil(t, stored.Photos)
	assert.NotNil(t, stored.Interests)

	// Password is stored as a bcrypt hash, never plaintext.
	assert.NotEqual(t, "correct-horse", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct-horse")))

	select {
	case to := <-mailer.sent:
		assert.Equal(t, "alice@example.com", to)
	case <-time.After(2 * time.Second):
		t.Fatal("welcome email was never sent")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := new(mockUserStore)
	svc := NewService(users, new(mockSigner), new(mockPresence), newChanMailer())

	users.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(&domain.User{UserID: "u1", Email: "alice@example.com"}, nil)

	_, _, err := svc.Register(context.Background(), validRegister())
	assert.ErrorIs(t, err, domain.ErrConflict)
	users.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

// --- Login ---

func TestLogin_HappyPath(t *testing.T) {
	users := new(mockUserStore)
	signer := new(mockSigner)
	svc := NewService(users, signer, new(mockPresence), newChanMailer())

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	users.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(&domain.User{UserID: "u1", Email: "alice@example.com", PasswordHash: string(hash)}, nil)
	signer.On("Sign", "u1").Return("tok", nil)

	token, user, err := svc.Login(context.Background(), domain.LoginRequest{Email: "alice@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.Equal(t, "u1", user.UserID)
}

func TestLogin_WrongPassword(t *testing.T) {
	users := new(mockUserStore)
	svc := NewService(users, new(mockSigner), new(mockPresence), newChanMailer())

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	users.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(&domain.User{UserID: "u1", PasswordHash: string(hash)}, nil)

	_, _, err = svc.Login(context.Background(), domain.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UnknownEmail_SameError(t *testing.T) {
	users := new(mockUserStore)
	svc := NewService(users, new(mockSigner), new(mockPresence), newChanMailer())

	users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrNotFound)

	_, _, err := svc.Login(context.Background(), domain.LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	// Unknown accounts and wrong passwords are indistinguishable to callers.
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

// --- Me / Logout ---

func TestMe_TouchesPresence(t *testing.T) {
	users := new(mockUserStore)
	ps := new(mockPresence)
	svc := NewService(users, new(mockSigner), ps, newChanMailer())

	users.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)
	ps.On("Touch", mock.Anything, "u1").Return(nil)
	ps.On("LastActive", mock.Anything, "u1").Return(nil, nil)

	user, err := svc.Me(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, user.Online)
	ps.AssertCalled(t, "Touch", mock.Anything, "u1")
}

func TestLogout_DropsPresence(t *testing.T) {
	ps := new(mockPresence)
	svc := NewService(new(mockUserStore), new(mockSigner), ps, newChanMailer())

	ps.On("Offline", mock.Anything, "u1").Return(nil)

	require.NoError(t, svc.Logout(context.Background(), "u1"))
	ps.AssertCalled(t, "Offline", mock.Anything, "u1")
}
