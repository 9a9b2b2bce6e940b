package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/marufbep/authgate/internal/auth/domain"
)

type usersRepo struct {
	db *sql.DB
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, name, avatar_url, roles, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		u.Email,
		u.PasswordHash,
		u.Name,
		u.AvatarURL,
		strings.Join(u.Roles, " "),
		u.CreatedAt.UTC(),
	)
	return mapUnique(err)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, avatar_url, roles, created_at
		FROM users WHERE email = ?`,
		email,
	)

	var u domain.User
	var roles string
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.AvatarURL, &roles, &u.CreatedAt); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	if roles != "" {
		u.Roles = strings.Fields(roles)
	}
	return u, nil
}
