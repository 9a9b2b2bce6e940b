package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/marufbep/authgate/internal/auth/domain"
	"github.com/redis/go-redis/v9"
)

type invalidatedTokensRepo struct {
	client *redis.Client
}

type invalidatedRecord struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	ExpiresAt     time.Time `json:"expires_at"`
	InvalidatedAt time.Time `json:"invalidated_at"`
	Reason        string    `json:"reason"`
}

func (r *invalidatedTokensRepo) CreateInvalidatedToken(
	ctx context.Context,
	t domain.InvalidatedToken,
) error {
	payload, err := json.Marshal(invalidatedRecord{
		ID:            t.ID,
		Username:      t.Username,
		ExpiresAt:     t.ExpiresAt.UTC(),
		InvalidatedAt: t.InvalidatedAt.UTC(),
		Reason:        t.Reason,
	})
	if err != nil {
		return err
	}

	// Plain SET: revoking an already-revoked token overwrites an equivalent
	// record, which keeps the operation idempotent.
	return r.client.SetArgs(ctx, invalidatedKeyPrefix+t.Token, payload, redis.SetArgs{
		ExpireAt: t.ExpiresAt,
	}).Err()
}

func (r *invalidatedTokensRepo) IsTokenInvalidated(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, invalidatedKeyPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteExpiredInvalidatedTokens is a no-op: Redis reaps expired keys itself.
func (r *invalidatedTokensRepo) DeleteExpiredInvalidatedTokens(context.Context) error { return nil }
