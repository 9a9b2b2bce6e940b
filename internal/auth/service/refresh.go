package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/marufbep/authgate/internal/auth/domain"
	"github.com/marufbep/authgate/internal/auth/store"
	"github.com/marufbep/authgate/pkg/jwtx"
	"github.com/marufbep/authgate/pkg/slogx"
)

var (
	// ErrTokenMissing reports that no refresh token was presented.
	ErrTokenMissing = errors.New("token_missing")

	// ErrTokenInvalid reports a refresh token that is unknown, forged, or of
	// the wrong type.
	ErrTokenInvalid = errors.New("token_invalid")

	// ErrTokenExpired reports a refresh token past its lifetime.
	ErrTokenExpired = errors.New("token_expired")

	// ErrRefreshFailed reports an internal failure while minting or
	// persisting the replacement tokens.
	ErrRefreshFailed = errors.New("refresh_failed")
)

// RefreshResult carries the renewed tokens. RefreshToken is empty when
// rotation is disabled and the presented token stays live.
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
	Username     string
}

// RefreshService implements the single-use refresh exchange: validate the
// presented token against both the store and its own signature, mint a new
// access token from the passenger claims, and rotate the refresh token when
// configured to.
type RefreshService struct {
	Tokens          *TokenService
	Sessions        *SessionStore
	RotationEnabled bool
}

// Refresh exchanges raw for a new access token (and, with rotation on, a new
// refresh token). Failures map onto the typed sentinels above; the zero
// result accompanies every error.
func (s *RefreshService) Refresh(ctx context.Context, raw string) (RefreshResult, error) {
	l := slogx.FromContext(ctx)

	if raw == "" {
		return RefreshResult{}, ErrTokenMissing
	}

	// The store is the source of truth for liveness: a token absent from it
	// was rotated away, logged out, or never issued.
	username, err := s.Sessions.UsernameForRefreshToken(ctx, raw)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Warn("refresh token not found in store")
			return RefreshResult{}, ErrTokenInvalid
		}
		return RefreshResult{}, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	claims, err := s.Tokens.ParseClaims(raw)
	if err != nil {
		// A record existed for a token that fails verification; drop it.
		_ = s.Sessions.InvalidateRefreshToken(ctx, raw)
		l.Warn("stored refresh token failed verification", slog.Any("error", err))
		return RefreshResult{}, ErrTokenExpired
	}
	if err := claims.ValidateExpiry(); err != nil {
		_ = s.Sessions.InvalidateRefreshToken(ctx, raw)
		l.Warn("refresh token expired", slog.String("username", username))
		return RefreshResult{}, ErrTokenExpired
	}
	if claims.TokenType != jwtx.TypeRefresh {
		_ = s.Sessions.InvalidateRefreshToken(ctx, raw)
		l.Warn("token presented for refresh is not a refresh token",
			slog.String("type", claims.TokenType))
		return RefreshResult{}, ErrTokenInvalid
	}

	principal := PrincipalFromClaims(claims)
	if principal.Username == "" {
		principal.Username = username
	}

	accessToken, err := s.Tokens.GenerateAccessToken(principal)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	result := RefreshResult{AccessToken: accessToken, Username: username}

	if s.RotationEnabled {
		rotated, err := s.rotate(ctx, raw, username, principal)
		if err != nil {
			return RefreshResult{}, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
		}
		result.RefreshToken = rotated
		l.Info("refresh token rotated", slog.String("username", username))
	}

	l.Info("access token refreshed", slog.String("username", username))
	return result, nil
}

// rotate retires the presented refresh token and issues its single-use
// replacement. Invalidate-then-store runs sequentially; a crash between the
// two steps costs the user a re-login, never a duplicate live token.
func (s *RefreshService) rotate(ctx context.Context, current, username string, p domain.Principal) (string, error) {
	if err := s.Sessions.InvalidateRefreshToken(ctx, current); err != nil {
		return "", err
	}

	next, err := s.Tokens.GenerateRefreshToken(username, &p)
	if err != nil {
		return "", err
	}
	expiresAt := time.Now().UTC().Add(s.Tokens.RefreshTTL)
	if err := s.Sessions.StoreRefreshToken(ctx, next, username, expiresAt); err != nil {
		return "", err
	}
	return next, nil
}
