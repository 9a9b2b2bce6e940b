package store

import (
	"context"
	"errors"
	"time"

	"github.com/marufbep/authgate/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, redis)
// implement this. Sub-repositories keep concerns tidy and testable. Every
// record type carries an expiry; a driver either enforces it natively
// (redis TTL) or filters expired rows and relies on the housekeeping sweep.
type Store interface {
	RefreshTokens() RefreshTokens
	InvalidatedTokens() InvalidatedTokens
	Users() Users

	// ApplyMigrations prepares the schema. No-op for schemaless drivers.
	ApplyMigrations() error

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases underlying resources.
	Close() error
}

// RefreshTokens persists active-session records keyed by token hash.
type RefreshTokens interface {
	// CreateRefreshToken stores a new record. Returns ErrAlreadyExists when a
	// live record with the same token hash exists; the uniqueness constraint
	// on the hash is the only mutual-exclusion mechanism in the system.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// TouchRefreshToken looks up the record by hash, bumps last_used to now
	// and returns it. Returns ErrNotFound on a miss or when the record is
	// past its expiry.
	TouchRefreshToken(ctx context.Context, hash string, now time.Time) (domain.RefreshToken, error)

	// DeleteRefreshToken removes the record keyed by hash. Idempotent.
	DeleteRefreshToken(ctx context.Context, hash string) error

	// DeleteExpiredRefreshTokens is the housekeeping sweep. Drivers with
	// native expiry may no-op.
	DeleteExpiredRefreshTokens(ctx context.Context) error
}

// InvalidatedTokens is the access-token revocation list.
type InvalidatedTokens interface {
	// CreateInvalidatedToken records a revocation. Inserting the same token
	// twice is not an error; the effect is idempotent.
	CreateInvalidatedToken(ctx context.Context, t domain.InvalidatedToken) error

	// IsTokenInvalidated reports whether a live revocation record exists for
	// the raw token value. Records past their expiry never count.
	IsTokenInvalidated(ctx context.Context, token string) (bool, error)

	// DeleteExpiredInvalidatedTokens is the housekeeping sweep.
	DeleteExpiredInvalidatedTokens(ctx context.Context) error
}

// Users holds local email/password accounts.
type Users interface {
	// CreateUser inserts a new account (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByEmail returns the account or ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
}
