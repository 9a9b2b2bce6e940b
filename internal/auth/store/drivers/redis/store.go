// Package redis implements store.Store on a Redis instance. Record expiry is
// delegated to Redis key TTLs, so the housekeeping sweeps are no-ops and the
// record-lifetime invariant holds without application-level polling.
package redis

import (
	"context"

	"github.com/marufbep/authgate/internal/auth/store"
	"github.com/redis/go-redis/v9"
)

// Key prefixes. Refresh tokens are keyed by fingerprint, invalidated access
// tokens by raw token value, users by email.
const (
	refreshKeyPrefix     = "rt:"
	invalidatedKeyPrefix = "iat:"
	userKeyPrefix        = "user:"
)

type Store struct {
	client *redis.Client
}

type Options struct {
	Addr     string
	Password string
	DB       int
}

func NewStore(opts Options) *Store {
	return &Store{client: redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})}
}

// NewStoreWithClient wraps an existing client. Used by tests with miniredis.
func NewStoreWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Close() error { return s.client.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// ApplyMigrations is a no-op: Redis is schemaless.
func (s *Store) ApplyMigrations() error { return nil }

func (s *Store) RefreshTokens() store.RefreshTokens {
	return &refreshTokensRepo{client: s.client}
}

func (s *Store) InvalidatedTokens() store.InvalidatedTokens {
	return &invalidatedTokensRepo{client: s.client}
}

func (s *Store) Users() store.Users {
	return &usersRepo{client: s.client}
}
