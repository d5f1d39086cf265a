package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pizoo/pizoo-api/internal/domain"
	"github.com/pizoo/pizoo-api/internal/infrastructure/smtp"
	"github.com/pizoo/pizoo-api/internal/pkg/id"
)

type Service interface {
	// Register creates the account, sends a welcome mail in the background
	// and returns a signed token alongside the stored user.
	Register(ctx context.Context, req domain.RegisterRequest) (token string, user *domain.User, err error)
	// Login verifies credentials and issues a fresh token.
	Login(ctx context.Context, req domain.LoginRequest) (token string, user *domain.User, err error)
	// Me returns the caller's own profile and refreshes their presence.
	Me(ctx context.Context, userID string) (*domain.User, error)
	// Logout drops the caller's online flag. Tokens stay valid until expiry.
	Logout(ctx context.Context, userID string) error
}

type userStore interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type tokenSigner interface {
	Sign(userID string) (string, error)
}

type presenceStore interface {
	Touch(ctx context.Context, userID string) error
	Offline(ctx context.Context, userID string) error
	LastActive(ctx context.Context, userID string) (*time.Time, error)
}

type service struct {
	users    userStore
	tokens   tokenSigner
	presence presenceStore
	mailer   smtp.Mailer
}

func NewService(users userStore, tokens tokenSigner, presence presenceStore, mailer smtp.Mailer) Service {
	return &service{users: users, tokens: tokens, presence: presence, mailer: mailer}
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (string, *domain.User, error) {
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return "", nil, fmt.Errorf("email %s already registered: %w", req.Email, domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		UserID:       id.New(),
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Age:          req.Age,
		Gender:       req.Gender,
		Bio:          req.Bio,
		Location:     req.Location,
		Photos:       []string{},
		Interests:    req.Interests,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if user.Interests == nil {
		user.Interests = []string{}
	}
	if err := s.users.Put(ctx, user); err != nil {
		return "", nil, fmt.Errorf("store user: %w", err)
	}

	token, err := s.tokens.Sign(user.UserID)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	go s.sendWelcomeEmail(user.Email, user.Name)

	return token, user, nil
}

func (s *service) sendWelcomeEmail(email, name string) {
	body := fmt.Sprintf("Hi %s,\n\nWelcome to Pizoo! Your profile is live, go find your people.\n", name)
	if err := s.mailer.SendEmail(email, "Welcome to Pizoo", body); err != nil {
		slog.Warn("failed to send welcome email", "email", email, "err", err)
	}
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (string, *domain.User, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	token, err := s.tokens.Sign(user.UserID)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, user, nil
}

func (s *service) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.presence.Touch(ctx, userID); err != nil {
		slog.Warn("presence touch failed", "user_id", userID, "err", err)
	} else {
		user.Online = true
	}
	if last, err := s.presence.LastActive(ctx, userID); err == nil {
		user.LastActive = last
	}
	return user, nil
}

func (s *service) Logout(ctx context.Context, userID string) error {
	return s.presence.Offline(ctx, userID)
}
