package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/marufbep/authgate/internal/auth/domain"
	"github.com/marufbep/authgate/internal/auth/store"
)

type invalidatedTokensRepo struct {
	db *sql.DB
}

func (r *invalidatedTokensRepo) CreateInvalidatedToken(
	ctx context.Context,
	t domain.InvalidatedToken,
) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invalidated_tokens (id, token, username, expires_at, invalidated_at, reason)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.Token,
		t.Username,
		t.ExpiresAt.UTC(),
		t.InvalidatedAt.UTC(),
		t.Reason,
	)
	// Revoking the same token twice is fine; the first record already blocks it.
	if err := mapUnique(err); errors.Is(err, store.ErrAlreadyExists) {
		return nil
	} else if err != nil {
		return err
	}
	return nil
}

func (r *invalidatedTokensRepo) IsTokenInvalidated(ctx context.Context, token string) (bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM invalidated_tokens
		WHERE token = ? AND expires_at > ?`,
		token, time.Now().UTC(),
	)

	var n int
	if err := row.Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *invalidatedTokensRepo) DeleteExpiredInvalidatedTokens(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM invalidated_tokens WHERE expires_at <= ?`, time.Now().UTC())
	return err
}
