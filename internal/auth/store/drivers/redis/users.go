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

type usersRepo struct {
	client *redis.Client
}

type userRecord struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Name         string    `json:"name"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	payload, err := json.Marshal(userRecord{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Name:         u.Name,
		AvatarURL:    u.AvatarURL,
		Roles:        u.Roles,
		CreatedAt:    u.CreatedAt.UTC(),
	})
	if err != nil {
		return err
	}

	ok, err := r.client.SetNX(ctx, userKeyPrefix+u.Email, payload, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrAlreadyExists
	}
	return nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	raw, err := r.client.Get(ctx, userKeyPrefix+email).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.User{}, store.ErrNotFound
		}
		return domain.User{}, err
	}

	var rec userRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:           rec.ID,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		Name:         rec.Name,
		AvatarURL:    rec.AvatarURL,
		Roles:        rec.Roles,
		CreatedAt:    rec.CreatedAt,
	}, nil
}
