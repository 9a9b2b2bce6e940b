package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/marufbep/authgate/internal/auth/domain"
	"github.com/marufbep/authgate/internal/auth/store"
	"github.com/redis/go-redis/v9"
)

type refreshTokensRepo struct {
	client *redis.Client
}

type refreshRecord struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	LastUsed  time.Time `json:"last_used"`
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	payload, err := json.Marshal(refreshRecord{
		ID:        t.ID,
		Username:  t.Username,
		ExpiresAt: t.ExpiresAt.UTC(),
		CreatedAt: t.CreatedAt.UTC(),
		LastUsed:  t.LastUsed.UTC(),
	})
	if err != nil {
		return err
	}

	// SET NX doubles as the uniqueness constraint; ExpireAt hands record
	// lifetime to Redis.
	set := r.client.SetArgs(ctx, refreshKeyPrefix+t.TokenHash, payload, redis.SetArgs{
		Mode:     "NX",
		ExpireAt: t.ExpiresAt,
	})
	if err := set.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *refreshTokensRepo) TouchRefreshToken(
	ctx context.Context,
	hash string,
	now time.Time,
) (domain.RefreshToken, error) {
	key := refreshKeyPrefix + hash

	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.RefreshToken{}, store.ErrNotFound
		}
		return domain.RefreshToken{}, err
	}

	var rec refreshRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.RefreshToken{}, err
	}
	if !now.Before(rec.ExpiresAt) {
		return domain.RefreshToken{}, store.ErrNotFound
	}

	rec.LastUsed = now.UTC()
	updated, err := json.Marshal(rec)
	if err != nil {
		return domain.RefreshToken{}, err
	}
	if err := r.client.SetArgs(ctx, key, updated, redis.SetArgs{KeepTTL: true}).Err(); err != nil {
		return domain.RefreshToken{}, err
	}

	return domain.RefreshToken{
		ID:        rec.ID,
		TokenHash: hash,
		Username:  rec.Username,
		ExpiresAt: rec.ExpiresAt,
		CreatedAt: rec.CreatedAt,
		LastUsed:  rec.LastUsed,
	}, nil
}

func (r *refreshTokensRepo) DeleteRefreshToken(ctx context.Context, hash string) error {
	return r.client.Del(ctx, refreshKeyPrefix+hash).Err()
}

// DeleteExpiredRefreshTokens is a no-op: Redis reaps expired keys itself.
func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(context.Context) error { return nil }
