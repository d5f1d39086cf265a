package profile

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/pizoo/pizoo-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}

type mockPhotoStore struct{ mock.Mock }

func (m *mockPhotoStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, key, r, contentType)
	return args.String(0), args.Error(1)
}

type mockPresence struct{ mock.Mock }

func (m *mockPresence) Touch(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}
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

func strPtr(s string) *string { return &s }

// --- Get ---

func TestGet_PublicProjectionWithPresence(t *testing.T) {
	users := new(mockUserStore)
	ps := new(mockPresence)
	svc := NewService(users, new(mockPhotoStore), ps)

	users.On("Get", mock.Anything, "b").Return(&domain.User{
		UserID:       "b",
		Email:        "bob@example.com",
		PasswordHash: "secret-hash",
		Name:         "Bob",
	}, nil)
	ps.On("Online", mock.Anything, "b").Return(true, nil)
	ps.On("LastActive", mock.Anything, "b").Return(nil, nil)

	pub, err := svc.Get(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, "Bob", pub.Name)
	assert.True(t, pub.Online)
}

// --- UpdateMe ---

func TestUpdateMe_OnlySetFieldsInUpdateMap(t *testing.T) {
	users := new(mockUserStore)
	svc := NewService(users, new(mockPhotoStore), new(mockPresence))

	users.On("Get", mock.Anything, "me").Return(&domain.User{UserID: "me", Name: "Old", Bio: "old bio"}, nil)
	var gotUpdates map[string]interface{}
	users.On("Update", mock.Anything, "me", mock.Anything).Run(func(args mock.Arguments) {
		gotUpdates = args.Get(2).(map[string]interface{})
	}).Return(nil)

	_, err := svc.UpdateMe(context.Background(), "me", domain.UpdateProfileRequest{
		Bio:  strPtr("new bio"),
		Work: strPtr("barista"),
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"bio": "new bio", "work": "barista"}, gotUpdates)
}

func TestUpdateMe_NoFields(t *testing.T) {
	users := new(mockUserStore)
	svc := NewService(users, new(mockPhotoStore), new(mockPresence))

	_, err := svc.UpdateMe(context.Background(), "me", domain.UpdateProfileRequest{})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

// --- AddPhoto ---

func TestAddPhoto_AppendsUploadedURL(t *testing.T) {
	users := new(mockUserStore)
	photos := new(mockPhotoStore)
	svc := NewService(users, photos, new(mockPresence))

	users.On("Get", mock.Anything, "me").
		Return(&domain.User{UserID: "me", Photos: []string{"s3://pizoo-photos/me/old"}}, nil)
	photos.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "me/") && strings.HasSuffix(key, ".jpg")
	}), mock.Anything, "image/jpeg").Return("s3://pizoo-photos/me/new.jpg", nil)

	var gotUpdates map[string]interface{}
	users.On("Update", mock.Anything, "me", mock.Anything).Run(func(args mock.Arguments) {
		gotUpdates = args.Get(2).(map[string]interface{})
	}).Return(nil)

	user, err := svc.AddPhoto(context.Background(), "me", "selfie.jpg", strings.NewReader("jpegbytes"))
	require.NoError(t, err)
	assert.Equal(t, []string{"s3://pizoo-photos/me/old", "s3://pizoo-photos/me/new.jpg"}, user.Photos)
	assert.Equal(t, user.Photos, gotUpdates["photos"])
}

// --- Ping ---

func TestPing_TouchesPresence(t *testing.T) {
	ps := new(mockPresence)
	svc := NewService(new(mockUserStore), new(mockPhotoStore), ps)

	ps.On("Touch", mock.Anything, "me").Return(nil)
	require.NoError(t, svc.Ping(context.Background(), "me"))
	ps.AssertCalled(t, "Touch", mock.Anything, "me")
}
