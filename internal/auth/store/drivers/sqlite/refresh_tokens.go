package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/marufbep/authgate/internal/auth/domain"
)

type refreshTokensRepo struct {
	db *sql.DB
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (id, token_hash, username, expires_at, created_at, last_used)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.TokenHash,
		t.Username,
		t.ExpiresAt.UTC(),
		t.CreatedAt.UTC(),
		t.LastUsed.UTC(),
	)
	return mapUnique(err)
}

func (r *refreshTokensRepo) TouchRefreshToken(
	ctx context.Context,
	hash string,
	now time.Time,
) (domain.RefreshToken, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, token_hash, username, expires_at, created_at, last_used
		FROM refresh_tokens
		WHERE token_hash = ? AND expires_at > ?`,
		hash, now.UTC(),
	)

	var t domain.RefreshToken
	if err := row.Scan(&t.ID, &t.TokenHash, &t.Username, &t.ExpiresAt, &t.CreatedAt, &t.LastUsed); err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}

	if _, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens SET last_used = ? WHERE token_hash = ?`,
		now.UTC(), hash,
	); err != nil {
		return domain.RefreshToken{}, err
	}
	t.LastUsed = now.UTC()

	return t, nil
}

func (r *refreshTokensRepo) DeleteRefreshToken(ctx context.Context, hash string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token_hash = ?`, hash)
	return err
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at <= ?`, time.Now().UTC())
	return err
}
