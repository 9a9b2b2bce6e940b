package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/marufbep/authgate/internal/auth/store"
	_ "modernc.org/sqlite"
)

// Store is the sqlite realization of store.Store. Expired rows are filtered
// out of every read and reaped by the housekeeping sweep; sqlite has no
// native per-row TTL.
type Store struct {
	db *sql.DB
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) RefreshTokens() store.RefreshTokens         { return &refreshTokensRepo{db: s.db} }
func (s *Store) InvalidatedTokens() store.InvalidatedTokens { return &invalidatedTokensRepo{db: s.db} }
func (s *Store) Users() store.Users                         { return &usersRepo{db: s.db} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func mapUnique(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}
