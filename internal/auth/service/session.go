package service

import (
	"context"
	"time"

	"github.com/marufbep/authgate/internal/auth/domain"
	"github.com/marufbep/authgate/internal/auth/store"
	"github.com/marufbep/authgate/pkg/cryptox"
	"github.com/marufbep/authgate/pkg/idx"
)

// SessionStore wraps the durable store with the refresh-token hashing policy.
// With hashing enabled (the default) only a SHA-256 fingerprint of the
// refresh token is persisted; the policy must not change while records from
// the old policy are still live, or they all become unreachable.
type SessionStore struct {
	Store          store.Store
	HashingEnabled bool
}

// key derives the storage key for a raw refresh token.
func (s *SessionStore) key(raw string) string {
	if s.HashingEnabled {
		return cryptox.FingerprintToken(raw)
	}
	return raw
}

// StoreRefreshToken persists a new refresh-token record for username.
func (s *SessionStore) StoreRefreshToken(ctx context.Context, raw, username string, expiresAt time.Time) error {
	now := time.Now().UTC()
	return s.Store.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID:        idx.New().String(),
		TokenHash: s.key(raw),
		Username:  username,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: now,
		LastUsed:  now,
	})
}

// UsernameForRefreshToken resolves the session owner for a presented refresh
// token and records the use. Returns store.ErrNotFound when no live record
// exists.
func (s *SessionStore) UsernameForRefreshToken(ctx context.Context, raw string) (string, error) {
	rec, err := s.Store.RefreshTokens().TouchRefreshToken(ctx, s.key(raw), time.Now().UTC())
	if err != nil {
		return "", err
	}
	return rec.Username, nil
}

// InvalidateRefreshToken removes the record for a raw refresh token.
// Idempotent; unknown tokens are not an error.
func (s *SessionStore) InvalidateRefreshToken(ctx context.Context, raw string) error {
	return s.Store.RefreshTokens().DeleteRefreshToken(ctx, s.key(raw))
}

// InvalidateAccessToken adds a raw access token to the revocation list. The
// record lives exactly as long as the token would have.
func (s *SessionStore) InvalidateAccessToken(ctx context.Context, raw, username string, expiresAt time.Time, reason string) error {
	return s.Store.InvalidatedTokens().CreateInvalidatedToken(ctx, domain.InvalidatedToken{
		ID:            idx.New().String(),
		Token:         raw,
		Username:      username,
		ExpiresAt:     expiresAt.UTC(),
		InvalidatedAt: time.Now().UTC(),
		Reason:        reason,
	})
}

// IsAccessTokenInvalidated reports whether a live revocation record exists.
func (s *SessionStore) IsAccessTokenInvalidated(ctx context.Context, raw string) (bool, error) {
	return s.Store.InvalidatedTokens().IsTokenInvalidated(ctx, raw)
}
