package presence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pizoo/pizoo-api/internal/config"
	"github.com/redis/go-redis/v9"
)

// Store tracks per-user presence in Redis. A TTL'd online key expires on its
// own when pings stop; last_active survives until the next ping overwrites it.
type Store struct {
	Client *redis.Client
	ttl    time.Duration
}

// NewStore initializes the Redis-backed presence store from config.
// Only Addr is mandatory, Password/DB are optional.
func NewStore(cfg *config.Config) *Store {
	opts := &redis.Options{
		Addr: cfg.RedisAddr,
	}
	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}
	if cfg.RedisDB != 0 {
		opts.DB = cfg.RedisDB
	}
	return &Store{Client: redis.NewClient(opts), ttl: cfg.PresenceTTL}
}

// NewStoreWithClient wires an existing client, used by tests with miniredis.
func NewStoreWithClient(client *redis.Client, ttl time.Duration) *Store {
	return &Store{Client: client, ttl: ttl}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}

func keyOnline(userID string) string     { return fmt.Sprintf("presence:online:%s", userID) }
func keyLastActive(userID string) string { return fmt.Sprintf("presence:last_active:%s", userID) }

// Touch marks the user online for the configured TTL and records the ping time.
func (s *Store) Touch(ctx context.Context, userID string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	if err := s.Client.Set(ctx, keyOnline(userID), "1", s.ttl).Err(); err != nil {
		return err
	}
	return s.Client.Set(ctx, keyLastActive(userID), now, 0).Err()
}

// Offline drops the online key immediately, used on logout. The last_active
// timestamp is kept.
func (s *Store) Offline(ctx context.Context, userID string) error {
	return s.Client.Del(ctx, keyOnline(userID)).Err()
}

// Online reports whether the user's online key is still alive.
func (s *Store) Online(ctx context.Context, userID string) (bool, error) {
	_, err := s.Client.Get(ctx, keyOnline(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// LastActive returns the time of the user's most recent ping, or nil if the
// user has never pinged.
func (s *Store) LastActive(ctx context.Context, userID string) (*time.Time, error) {
	val, err := s.Client.Get(ctx, keyLastActive(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
