package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/marufbep/authgate/internal/auth/provider"
	"github.com/marufbep/authgate/internal/auth/service"
	"github.com/marufbep/authgate/internal/auth/store"
	"github.com/marufbep/authgate/pkg/httpx"
	"github.com/marufbep/authgate/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	TokenService     *service.TokenService
	SessionStore     *service.SessionStore
	RefreshService   *service.RefreshService
	LocalAuthService *service.LocalAuthService
	SessionIssuer    *service.SessionIssuer

	Cookies          httpx.CookieFactory
	LocalAuthEnabled bool
	Providers        []provider.Descriptor
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	filter := &AuthFilter{Tokens: r.TokenService, Sessions: r.SessionStore}

	r.registerAuth(filter)
	r.registerAPI(filter)
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth(filter *AuthFilter) {
	h := &AuthHandler{
		Tokens:           r.TokenService,
		Sessions:         r.SessionStore,
		Refresh:          r.RefreshService,
		Local:            r.LocalAuthService,
		Issuer:           r.SessionIssuer,
		Cookies:          r.Cookies,
		LocalAuthEnabled: r.LocalAuthEnabled,
		Providers:        r.Providers,
	}

	// Status reads the filter outcome, so the filter runs in front of it.
	r.Mux.Handle("GET /api/auth/status",
		httpx.Chain(http.HandlerFunc(h.HandleStatus),
			filter.Middleware(),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /api/auth/providers",
		httpx.Chain(http.HandlerFunc(h.HandleProviders),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// Credential and token-exchange endpoints carry the strict limit.
	r.Mux.Handle("POST /api/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/signup",
		httpx.Chain(http.HandlerFunc(h.HandleSignup),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerAPI(filter *AuthFilter) {
	h := &APIHandler{}

	r.Mux.Handle("GET /api/public/health",
		httpx.Chain(http.HandlerFunc(h.HandlePublicHealth),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /api/user",
		httpx.Chain(http.HandlerFunc(h.HandleUser),
			filter.Middleware(),
			RequireAuth,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /api/protected/data",
		httpx.Chain(http.HandlerFunc(h.HandleProtectedData),
			filter.Middleware(),
			RequireAuth,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /api/protected/action",
		httpx.Chain(http.HandlerFunc(h.HandleProtectedAction),
			filter.Middleware(),
			RequireAuth,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
