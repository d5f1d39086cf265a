package profile

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/pizoo/pizoo-api/internal/domain"
	s3infra "github.com/pizoo/pizoo-api/internal/infrastructure/s3"
	"github.com/pizoo/pizoo-api/internal/pkg/id"
)

type Service interface {
	// Get returns another user's public profile with live presence.
	Get(ctx context.Context, userID string) (*domain.PublicUser, error)
	// UpdateMe applies the non-nil fields of req to the caller's profile.
	UpdateMe(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error)
	// AddPhoto stores the image and appends its URL to the caller's photos.
	AddPhoto(ctx context.Context, userID, filename string, r io.Reader) (*domain.User, error)
	// Ping refreshes the caller's presence window.
	Ping(ctx context.Context, userID string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type photoStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

type presenceStore interface {
	Touch(ctx context.Context, userID string) error
	Online(ctx context.Context, userID string) (bool, error)
	LastActive(ctx context.Context, userID string) (*time.Time, error)
}

type service struct {
	users    userStore
	photos   photoStore
	presence presenceStore
}

func NewService(users userStore, photos photoStore, presence presenceStore) Service {
	return &service{users: users, photos: photos, presence: presence}
}

func (s *service) Get(ctx context.Context, userID string) (*domain.PublicUser, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if online, err := s.presence.Online(ctx, userID); err == nil {
		user.Online = online
	} else {
		slog.Warn("presence lookup failed", "user_id", userID, "err", err)
	}
	if last, err := s.presence.LastActive(ctx, userID); err == nil {
		user.LastActive = last
	}
	return user.Public(), nil
}

func (s *service) UpdateMe(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Age != nil {
		updates["age"] = *req.Age
	}
	if req.Gender != nil {
		updates["gender"] = *req.Gender
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Photos != nil {
		updates["photos"] = *req.Photos
	}
	if req.Interests != nil {
		updates["interests"] = *req.Interests
	}
	if req.Work != nil {
		updates["work"] = *req.Work
	}
	if req.Education != nil {
		updates["education"] = *req.Education
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("no profile fields to update: %w", domain.ErrBadRequest)
	}
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, userID, updates); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.users.Get(ctx, userID)
}

func (s *service) AddPhoto(ctx context.Context, userID, filename string, r io.Reader) (*domain.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s/%s%s", userID, id.New(), filepath.Ext(filename))
	url, err := s.photos.Upload(ctx, key, r, s3infra.DetectContentType(filename))
	if err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}
	photos := append(user.Photos, url)
	if err := s.users.Update(ctx, userID, map[string]interface{}{"photos": photos}); err != nil {
		return nil, fmt.Errorf("attach photo: %w", err)
	}
	user.Photos = photos
	return user, nil
}

func (s *service) Ping(ctx context.Context, userID string) error {
	return s.presence.Touch(ctx, userID)
}
