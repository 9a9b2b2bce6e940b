package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marufbep/authgate/internal/auth/domain"
	"github.com/marufbep/authgate/internal/auth/service"
	"github.com/marufbep/authgate/pkg/jwtx"
)

func newTokenService(t *testing.T) *service.TokenService {
	t.Helper()
	signer, err := jwtx.NewHS256(testSecret)
	require.NoError(t, err)
	return &service.TokenService{
		Signer:     signer,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
}

func TestGenerateAccessTokenRequiresSubject(t *testing.T) {
	t.Parallel()
	ts := newTokenService(t)

	_, err := ts.GenerateAccessToken(domain.Principal{})
	require.ErrorIs(t, err, service.ErrMissingSubject)

	_, err = ts.GenerateRefreshToken("", nil)
	require.ErrorIs(t, err, service.ErrMissingSubject)
}

func TestGenerateRefreshTokenWithoutProfile(t *testing.T) {
	t.Parallel()
	ts := newTokenService(t)

	token, err := ts.GenerateRefreshToken("octocat", nil)
	require.NoError(t, err)

	claims, err := ts.ParseClaims(token)
	require.NoError(t, err)
	require.Equal(t, jwtx.TypeRefresh, claims.TokenType)
	require.Equal(t, "octocat", claims.Subject)
	// Login backstops to the subject when no profile rides along.
	require.Equal(t, "octocat", claims.Login)
	require.Empty(t, claims.Email)
}

func TestPrincipalFromClaims(t *testing.T) {
	t.Parallel()
	ts := newTokenService(t)

	token, err := ts.GenerateAccessToken(domain.Principal{
		UserID:      "42",
		Username:    "octocat",
		DisplayName: "The Octocat",
		Email:       "octo@example.com",
	})
	require.NoError(t, err)

	claims, err := ts.ParseClaims(token)
	require.NoError(t, err)

	p := service.PrincipalFromClaims(claims)
	require.Equal(t, "42", p.UserID)
	require.Equal(t, "octocat", p.Username)
	require.Equal(t, "The Octocat", p.DisplayName)
	require.Equal(t, "octo@example.com", p.Email)
	require.Empty(t, p.AvatarURL)
}
