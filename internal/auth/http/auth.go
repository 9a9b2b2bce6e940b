package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/marufbep/authgate/internal/auth/domain"
	"github.com/marufbep/authgate/internal/auth/provider"
	"github.com/marufbep/authgate/internal/auth/service"
	"github.com/marufbep/authgate/pkg/httpx"
	"github.com/marufbep/authgate/pkg/slogx"
)

// AuthHandler serves the session lifecycle endpoints: status, refresh,
// login/signup, logout and the provider list.
type AuthHandler struct {
	Tokens   *service.TokenService
	Sessions *service.SessionStore
	Refresh  *service.RefreshService
	Local    *service.LocalAuthService
	Issuer   *service.SessionIssuer

	Cookies          httpx.CookieFactory
	LocalAuthEnabled bool
	Providers        []provider.Descriptor
}

type userResponse struct {
	ID        string `json:"id,omitempty"`
	Login     string `json:"login"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

func userFromPrincipal(p domain.Principal) userResponse {
	return userResponse{
		ID:        p.UserID,
		Login:     p.Username,
		Name:      p.DisplayName,
		Email:     p.Email,
		AvatarURL: p.AvatarURL,
	}
}

type authStatusResponse struct {
	Authenticated bool          `json:"authenticated"`
	User          *userResponse `json:"user,omitempty"`
}

// HandleStatus reports whether the request carries a valid session. Always
// 200; anonymous callers get {authenticated:false}.
func (h *AuthHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if p := PrincipalFromContext(r.Context()); p != nil {
		u := userFromPrincipal(*p)
		httpx.WriteJSON(w, http.StatusOK, authStatusResponse{Authenticated: true, User: &u})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authStatusResponse{Authenticated: false})
}

// HandleRefresh exchanges the refresh-token cookie for a fresh access token,
// rotating the refresh token when configured to.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var raw string
	if cookie, err := r.Cookie(CookieRefreshToken); err == nil {
		raw = cookie.Value
	}

	res, err := h.Refresh.Refresh(r.Context(), raw)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenMissing):
			writeError(w, http.StatusUnauthorized, "token_missing", "Refresh token not found")
		case errors.Is(err, service.ErrTokenExpired):
			writeError(w, http.StatusUnauthorized, "token_expired", "Refresh token has expired")
		case errors.Is(err, service.ErrTokenInvalid):
			writeError(w, http.StatusUnauthorized, "token_invalid", "Invalid or expired refresh token")
		default:
			slogx.FromContext(r.Context()).Error("refresh failed", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "refresh_failed", "Token refresh failed")
		}
		return
	}

	if res.RefreshToken != "" {
		http.SetCookie(w, h.Cookies.Build(CookieRefreshToken, res.RefreshToken, h.Tokens.RefreshTTL))
	}
	http.SetCookie(w, h.Cookies.Build(CookieAccessToken, res.AccessToken, h.Tokens.AccessTTL))

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Token refreshed successfully",
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// HandleLogin authenticates a local account and issues session cookies.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.LocalAuthEnabled {
		writeError(w, http.StatusForbidden, "access_denied", "Local authentication is disabled")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Malformed request body")
		return
	}

	u, ok, err := h.Local.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		slogx.FromContext(r.Context()).Error("login failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "server_error", "Login failed")
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "login_failed", "Invalid email or password")
		return
	}

	h.issueSessionCookies(w, r, u.Principal())
}

// HandleSignup registers a local account and issues session cookies.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	if !h.LocalAuthEnabled {
		writeError(w, http.StatusForbidden, "access_denied", "Local authentication is disabled")
		return
	}

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Malformed request body")
		return
	}

	u, err := h.Local.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailInUse):
			writeError(w, http.StatusBadRequest, "signup_failed", "Email already in use")
		case errors.Is(err, service.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "signup_failed", err.Error())
		default:
			slogx.FromContext(r.Context()).Error("signup failed", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "server_error", "Signup failed")
		}
		return
	}

	h.issueSessionCookies(w, r, u.Principal())
}

func (h *AuthHandler) issueSessionCookies(w http.ResponseWriter, r *http.Request, p domain.Principal) {
	pair, err := h.Issuer.IssueSession(r.Context(), p)
	if err != nil {
		slogx.FromContext(r.Context()).Error("session issuance failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "server_error", "Could not establish session")
		return
	}

	http.SetCookie(w, h.Cookies.Build(CookieAccessToken, pair.AccessToken, pair.AccessTTL))
	http.SetCookie(w, h.Cookies.Build(CookieRefreshToken, pair.RefreshToken, pair.RefreshTTL))
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

// HandleLogout invalidates whatever session tokens the request carries and
// clears both cookies. Best-effort by contract: the response is 200 even when
// nothing could be invalidated, so a client can always discard its session.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := slogx.FromContext(ctx)

	if cookie, err := r.Cookie(CookieAccessToken); err == nil && cookie.Value != "" {
		raw := cookie.Value
		claims, err := h.Tokens.ParseClaims(raw)
		// Only a valid, unexpired token earns a revocation record; anything
		// else dies on its own.
		if err == nil && claims.ValidateExpiry() == nil {
			username := claims.Subject
			if err := h.Sessions.InvalidateAccessToken(ctx, raw, username, claims.ExpiresAt.Time, "logout"); err != nil {
				l.Warn("failed to invalidate access token during logout", slog.Any("error", err))
			}
		}
	}
	if cookie, err := r.Cookie(CookieRefreshToken); err == nil && cookie.Value != "" {
		if err := h.Sessions.InvalidateRefreshToken(ctx, cookie.Value); err != nil {
			l.Warn("failed to invalidate refresh token during logout", slog.Any("error", err))
		}
	}

	http.SetCookie(w, h.Cookies.Clear(CookieAccessToken))
	http.SetCookie(w, h.Cookies.Clear(CookieRefreshToken))
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logout successful",
	})
}

// HandleProviders lists the configured login options.
func (h *AuthHandler) HandleProviders(w http.ResponseWriter, r *http.Request) {
	providers := make([]provider.Descriptor, 0, len(h.Providers)+1)
	providers = append(providers, h.Providers...)
	if h.LocalAuthEnabled {
		providers = append(providers, provider.Descriptor{Key: "local", Name: "Email & Password"})
	}
	httpx.WriteJSON(w, http.StatusOK, providers)
}
