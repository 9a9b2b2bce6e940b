package http_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marufbep/authgate/internal/auth/domain"
	authhttp "github.com/marufbep/authgate/internal/auth/http"
	"github.com/marufbep/authgate/internal/auth/service"
	"github.com/marufbep/authgate/internal/auth/store/drivers/sqlite"
	"github.com/marufbep/authgate/pkg/httpx"
	"github.com/marufbep/authgate/pkg/jwtx"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type env struct {
	router *authhttp.Router
	tokens *service.TokenService
	issuer *service.SessionIssuer
}

func newEnv(t *testing.T) *env {
	t.Helper()

	st, err := sqlite.NewStore("file:" + filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	signer, err := jwtx.NewHS256(testSecret)
	require.NoError(t, err)

	tokens := &service.TokenService{
		Signer:     signer,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
	sessions := &service.SessionStore{Store: st, HashingEnabled: true}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := authhttp.NewRouter("test", st, logger)
	router.TokenService = tokens
	router.SessionStore = sessions
	router.RefreshService = &service.RefreshService{Tokens: tokens, Sessions: sessions, RotationEnabled: true}
	router.LocalAuthService = &service.LocalAuthService{Users: st.Users()}
	router.SessionIssuer = &service.SessionIssuer{Tokens: tokens, Sessions: sessions}
	router.Cookies = httpx.CookieFactory{SameSite: "Lax"}
	router.LocalAuthEnabled = true
	router.ApplyRoutes()

	return &env{
		router: router,
		tokens: tokens,
		issuer: router.SessionIssuer,
	}
}

func (e *env) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func cookieByName(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func signup(t *testing.T, e *env, email, password, name string) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"email":"` + email + `","password":"` + password + `","name":"` + name + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return e.do(req)
}

func TestLoginScenario(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	rec := signup(t, e, "octocat@example.com", "correct horse battery", "The Octocat")
	require.Equal(t, http.StatusOK, rec.Code)

	body := `{"email":"octocat@example.com","password":"correct horse battery"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = e.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decodeBody(t, rec)["success"])

	access := cookieByName(t, rec, "jwt")
	require.NotNil(t, access)
	require.True(t, access.HttpOnly)
	require.Equal(t, 900, access.MaxAge)

	refresh := cookieByName(t, rec, "refresh_token")
	require.NotNil(t, refresh)
	require.Equal(t, 7*24*3600, refresh.MaxAge)

	claims, err := e.tokens.ParseClaims(access.Value)
	require.NoError(t, err)
	require.Equal(t, jwtx.TypeAccess, claims.TokenType)
	require.Equal(t, "octocat@example.com", claims.Login)
}

func TestLoginWrongPassword(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	signup(t, e, "octocat@example.com", "correct horse battery", "The Octocat")

	body := `{"email":"octocat@example.com","password":"not the password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	rec := e.do(req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "login_failed", decodeBody(t, rec)["error"])
	// The generic failure carries no session cookies.
	require.Empty(t, rec.Result().Cookies())
}

func TestSignupDuplicateEmail(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	rec := signup(t, e, "octocat@example.com", "correct horse battery", "One")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = signup(t, e, "octocat@example.com", "another password!", "Two")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "signup_failed", decodeBody(t, rec)["error"])
}

func TestLocalAuthDisabled(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	e.router.LocalAuthEnabled = false
	e.router.Mux = http.NewServeMux()
	e.router.ApplyRoutes()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`))
	rec := e.do(req)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "access_denied", decodeBody(t, rec)["error"])
}

func TestRefreshWithoutCookie(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	rec := e.do(req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "token_missing", decodeBody(t, rec)["error"])
}

func TestRefreshRotatesCookies(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	pair, err := e.issuer.IssueSession(context.Background(), domain.Principal{Username: "octocat"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: pair.RefreshToken})
	rec := e.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decodeBody(t, rec)["success"])

	access := cookieByName(t, rec, "jwt")
	require.NotNil(t, access)
	claims, err := e.tokens.ParseClaims(access.Value)
	require.NoError(t, err)
	require.Equal(t, jwtx.TypeAccess, claims.TokenType)

	rotated := cookieByName(t, rec, "refresh_token")
	require.NotNil(t, rotated)
	require.NotEqual(t, pair.RefreshToken, rotated.Value)

	// The retired refresh token is single use.
	req = httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: pair.RefreshToken})
	rec = e.do(req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "token_invalid", decodeBody(t, rec)["error"])
}

func TestAuthStatus(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	// Anonymous.
	rec := e.do(httptest.NewRequest(http.MethodGet, "/api/auth/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, decodeBody(t, rec)["authenticated"])

	// Authenticated.
	pair, err := e.issuer.IssueSession(context.Background(), domain.Principal{
		UserID:   "42",
		Username: "octocat",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: pair.AccessToken})
	rec = e.do(req)

	body := decodeBody(t, rec)
	require.Equal(t, true, body["authenticated"])
	user := body["user"].(map[string]any)
	require.Equal(t, "octocat", user["login"])
	require.Equal(t, "42", user["id"])
}

func TestLogoutRevokesSession(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	pair, err := e.issuer.IssueSession(context.Background(), domain.Principal{Username: "octocat"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: pair.AccessToken})
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: pair.RefreshToken})
	rec := e.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decodeBody(t, rec)["success"])

	// Both cookies are cleared.
	for _, name := range []string{"jwt", "refresh_token"} {
		c := cookieByName(t, rec, name)
		require.NotNil(t, c)
		require.Empty(t, c.Value)
		require.Contains(t, c.String(), "Max-Age=0")
	}

	// The access token no longer authenticates even though its signature and
	// expiry are still good.
	req = httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: pair.AccessToken})
	rec = e.do(req)
	require.Equal(t, false, decodeBody(t, rec)["authenticated"])

	// And the refresh token is dead.
	req = httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: pair.RefreshToken})
	rec = e.do(req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutWithExpiredAccessToken(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	expired := &service.TokenService{Signer: e.tokens.Signer, AccessTTL: -time.Minute, RefreshTTL: time.Hour}
	token, err := expired.GenerateAccessToken(domain.Principal{Username: "octocat"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: token})
	rec := e.do(req)

	// Logout never fails and writes no revocation record for a token that is
	// already dead.
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decodeBody(t, rec)["success"])

	revoked, err := e.router.SessionStore.IsAccessTokenInvalidated(context.Background(), token)
	require.NoError(t, err)
	require.False(t, revoked)

	c := cookieByName(t, rec, "jwt")
	require.NotNil(t, c)
	require.Contains(t, c.String(), "Max-Age=0")
}

func TestProtectedEndpointsRequireAuth(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	rec := e.do(httptest.NewRequest(http.MethodGet, "/api/user", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "Unauthorized", body["error"])
	require.Equal(t, "Authentication required", body["message"])

	pair, err := e.issuer.IssueSession(context.Background(), domain.Principal{Username: "octocat", Email: "octo@example.com"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: pair.AccessToken})
	rec = e.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "octocat", decodeBody(t, rec)["login"])

	// Refresh tokens must not authenticate requests.
	req = httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: pair.RefreshToken})
	rec = e.do(req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProvidersListsLocalWhenEnabled(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	rec := e.do(httptest.NewRequest(http.MethodGet, "/api/auth/providers", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var providers []map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &providers))
	require.Len(t, providers, 1)
	require.Equal(t, "local", providers[0]["key"])
	require.Equal(t, "Email & Password", providers[0]["name"])
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	rec := e.do(httptest.NewRequest(http.MethodGet, "/api/public/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK", decodeBody(t, rec)["status"])

	rec = e.do(httptest.NewRequest(http.MethodGet, "/livez", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decodeBody(t, rec)["status"])
}
