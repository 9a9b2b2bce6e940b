package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/marufbep/authgate/internal/auth/domain"
	"github.com/marufbep/authgate/internal/auth/service"
	"github.com/marufbep/authgate/pkg/httpx"
	"github.com/marufbep/authgate/pkg/jwtx"
	"github.com/marufbep/authgate/pkg/slogx"
)

// Cookie names shared by the filter and the auth handlers.
const (
	CookieAccessToken  = "jwt"
	CookieRefreshToken = "refresh_token"
)

type principalKey struct{}

// WithPrincipal returns a context carrying the authenticated principal.
func WithPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the authenticated principal, or nil for an
// anonymous request.
func PrincipalFromContext(ctx context.Context) *domain.Principal {
	p, _ := ctx.Value(principalKey{}).(*domain.Principal)
	return p
}

// AuthFilter authenticates requests from the access-token cookie. Every
// failure mode degrades to anonymous and the request continues down the
// chain; handlers that need identity enforce it with RequireAuth.
type AuthFilter struct {
	Tokens   *service.TokenService
	Sessions *service.SessionStore
}

// Middleware runs the cookie check in a fixed order: revocation list first,
// then signature, then expiry, then token type. The revocation check comes
// before signature verification so a revoked token never earns CPU time or
// log noise from the verifier.
func (f *AuthFilter) Middleware() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := slogx.FromContext(ctx)

			cookie, err := r.Cookie(CookieAccessToken)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			if PrincipalFromContext(ctx) != nil {
				next.ServeHTTP(w, r)
				return
			}
			raw := cookie.Value

			revoked, err := f.Sessions.IsAccessTokenInvalidated(ctx, raw)
			if err != nil {
				l.Error("revocation check failed", slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}
			if revoked {
				l.Debug("access token is invalidated")
				next.ServeHTTP(w, r)
				return
			}

			claims, err := f.Tokens.ParseClaims(raw)
			if err != nil {
				l.Debug("access token failed verification", slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}
			if err := claims.ValidateExpiry(); err != nil {
				next.ServeHTTP(w, r)
				return
			}
			if claims.TokenType != jwtx.TypeAccess {
				l.Debug("cookie token is not an access token",
					slog.String("type", claims.TokenType))
				next.ServeHTTP(w, r)
				return
			}

			p := service.PrincipalFromClaims(claims)
			l.Debug("request authenticated", slog.String("username", p.Username))
			next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, &p)))
		})
	}
}

// RequireAuth rejects anonymous requests with the JSON 401 the API contract
// promises. Must run after the AuthFilter.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if PrincipalFromContext(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
