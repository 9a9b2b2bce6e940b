package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marufbep/authgate/internal/auth/domain"
	"github.com/marufbep/authgate/internal/auth/service"
	"github.com/marufbep/authgate/internal/auth/store/drivers/sqlite"
)

func farFuture() time.Time { return time.Now().Add(24 * time.Hour) }

func newLocalAuth(t *testing.T) *service.LocalAuthService {
	t.Helper()
	st, err := sqlite.NewStore("file:" + filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return &service.LocalAuthService{Users: st.Users()}
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()
	la := newLocalAuth(t)
	ctx := context.Background()

	u, err := la.Register(ctx, "Octo@Example.com", "correct horse battery", "Octo")
	require.NoError(t, err)
	// Email is normalised to lower case.
	require.Equal(t, "octo@example.com", u.Email)
	require.Equal(t, []string{domain.RoleUser}, u.Roles)
	require.NotEqual(t, "correct horse battery", u.PasswordHash)

	got, ok, err := la.Login(ctx, "octo@example.com", "correct horse battery")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, u.ID, got.ID)
}

func TestLoginDoesNotRevealWhichCredentialFailed(t *testing.T) {
	t.Parallel()
	la := newLocalAuth(t)
	ctx := context.Background()

	_, err := la.Register(ctx, "octo@example.com", "correct horse battery", "Octo")
	require.NoError(t, err)

	_, ok, err := la.Login(ctx, "octo@example.com", "wrong password!")
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = la.Login(ctx, "nobody@example.com", "correct horse battery")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()
	la := newLocalAuth(t)
	ctx := context.Background()

	_, err := la.Register(ctx, "octo@example.com", "correct horse battery", "Octo")
	require.NoError(t, err)

	_, err = la.Register(ctx, "octo@example.com", "another password!", "Impostor")
	require.ErrorIs(t, err, service.ErrEmailInUse)
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()
	la := newLocalAuth(t)
	ctx := context.Background()

	_, err := la.Register(ctx, "not-an-email", "correct horse battery", "Octo")
	require.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = la.Register(ctx, "octo@example.com", "short", "Octo")
	require.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestSessionStoreHashingToggle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st, err := sqlite.NewStore("file:" + filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	hashed := &service.SessionStore{Store: st, HashingEnabled: true}
	plain := &service.SessionStore{Store: st, HashingEnabled: false}

	// A token stored under the hashing policy is invisible to plain lookup
	// and vice versa: the policy must stay fixed for the life of a record.
	require.NoError(t, hashed.StoreRefreshToken(ctx, "raw-token", "octocat", farFuture()))
	_, err = plain.UsernameForRefreshToken(ctx, "raw-token")
	require.Error(t, err)

	username, err := hashed.UsernameForRefreshToken(ctx, "raw-token")
	require.NoError(t, err)
	require.Equal(t, "octocat", username)
}
