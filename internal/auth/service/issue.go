package service

import (
	"context"
	"time"

	"github.com/marufbep/authgate/internal/auth/domain"
)

// TokenPair is a freshly-minted session: both tokens plus their lifetimes,
// which callers project into cookie Max-Age values.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

// SessionIssuer mints a token pair for a resolved principal and persists the
// refresh side. This is the seam where a provider callback or a successful
// local login lands.
type SessionIssuer struct {
	Tokens   *TokenService
	Sessions *SessionStore
}

// IssueSession mints access+refresh tokens for p and stores the refresh
// record.
func (s *SessionIssuer) IssueSession(ctx context.Context, p domain.Principal) (TokenPair, error) {
	accessToken, err := s.Tokens.GenerateAccessToken(p)
	if err != nil {
		return TokenPair{}, err
	}

	refreshToken, err := s.Tokens.GenerateRefreshToken(p.Username, &p)
	if err != nil {
		return TokenPair{}, err
	}

	expiresAt := time.Now().UTC().Add(s.Tokens.RefreshTTL)
	if err := s.Sessions.StoreRefreshToken(ctx, refreshToken, p.Username, expiresAt); err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessTTL:    s.Tokens.AccessTTL,
		RefreshTTL:   s.Tokens.RefreshTTL,
	}, nil
}
