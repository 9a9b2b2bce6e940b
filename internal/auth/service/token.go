package service

import (
	"errors"
	"time"

	"github.com/marufbep/authgate/internal/auth/domain"
	"github.com/marufbep/authgate/pkg/jwtx"
)

var (
	// ErrMissingSubject reports a principal without a usable token subject.
	ErrMissingSubject = errors.New("missing_subject")
)

// TokenService mints and parses the session JWTs. Access tokens carry the
// full principal projection; refresh tokens carry the same profile claims as
// passenger data so a rotation can rebuild the principal without a provider
// round trip.
type TokenService struct {
	Signer     *jwtx.HS256
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// GenerateAccessToken mints a type=access token for the principal.
func (s *TokenService) GenerateAccessToken(p domain.Principal) (string, error) {
	if p.Username == "" {
		return "", ErrMissingSubject
	}

	claims := jwtx.NewClaims(p.Username, jwtx.TypeAccess, s.AccessTTL, time.Now().UTC())
	applyProfile(&claims, p)
	return s.Signer.Sign(claims)
}

// GenerateRefreshToken mints a type=refresh token with username as subject.
// A non-nil principal adds the profile passenger claims.
func (s *TokenService) GenerateRefreshToken(username string, p *domain.Principal) (string, error) {
	if username == "" {
		return "", ErrMissingSubject
	}

	claims := jwtx.NewClaims(username, jwtx.TypeRefresh, s.RefreshTTL, time.Now().UTC())
	if p != nil {
		applyProfile(&claims, *p)
	}
	if claims.Login == "" {
		claims.Login = username
	}
	return s.Signer.Sign(claims)
}

// ParseClaims verifies the signature and returns the claims. Expiry is not
// checked here; callers run Claims.ValidateExpiry as a separate step.
func (s *TokenService) ParseClaims(raw string) (jwtx.Claims, error) {
	return s.Signer.Verify(raw)
}

func applyProfile(c *jwtx.Claims, p domain.Principal) {
	c.UserID = jwtx.UserID(p.UserID)
	c.Login = p.Username
	c.Name = p.DisplayName
	c.Email = p.Email
	c.AvatarURL = p.AvatarURL
}

// PrincipalFromClaims rebuilds the principal carried by a token's claims.
// The subject backstops a missing login claim.
func PrincipalFromClaims(c jwtx.Claims) domain.Principal {
	username := c.Login
	if username == "" {
		username = c.Subject
	}
	return domain.Principal{
		UserID:      string(c.UserID),
		Username:    username,
		DisplayName: c.Name,
		Email:       c.Email,
		AvatarURL:   c.AvatarURL,
	}
}
