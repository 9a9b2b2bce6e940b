package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/marufbep/authgate/internal/auth/http"
	"github.com/marufbep/authgate/internal/auth/service"
	"github.com/marufbep/authgate/internal/auth/store"
	"github.com/marufbep/authgate/internal/auth/store/drivers/redis"
	"github.com/marufbep/authgate/internal/auth/store/drivers/sqlite"
	"github.com/marufbep/authgate/pkg/httpx"
	"github.com/marufbep/authgate/pkg/jwtx"
	"github.com/marufbep/authgate/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth gateway with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	tokenService        *service.TokenService
	sessionStore        *service.SessionStore
	refreshService      *service.RefreshService
	localAuthService    *service.LocalAuthService
	sessionIssuer       *service.SessionIssuer
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "authgate",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initStore(); err != nil {
		return nil, err
	}

	signer, err := jwtx.NewHS256([]byte(cfg.JWTSecret))
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize token signer: %w", err)
	}

	app.initServices(signer)
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("authgate starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"store", app.cfg.StoreDriver,
		"local_auth", app.cfg.LocalAuthEnabled,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down authgate...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing store", "error", err)
		return err
	}

	app.logger.Info("authgate stopped")
	return nil
}

// initStore opens the configured driver and applies migrations.
func (app *Application) initStore() error {
	switch app.cfg.StoreDriver {
	case DriverRedis:
		app.db = redis.NewStore(redis.Options{
			Addr:     app.cfg.RedisAddr,
			Password: app.cfg.RedisPassword,
			DB:       app.cfg.RedisDB,
		})
	default:
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
		db, err := sqlite.NewStore(dsn)
		if err != nil {
			return fmt.Errorf("failed to initialize store: %w", err)
		}
		app.db = db
	}

	if err := app.db.ApplyMigrations(); err != nil {
		_ = app.db.Close()
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	app.logger.Info("store ready", "driver", app.cfg.StoreDriver)
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices(signer *jwtx.HS256) {
	app.tokenService = &service.TokenService{
		Signer:     signer,
		AccessTTL:  app.cfg.AccessTokenTTL,
		RefreshTTL: app.cfg.RefreshTokenTTL,
	}

	app.sessionStore = &service.SessionStore{
		Store:          app.db,
		HashingEnabled: app.cfg.HashingEnabled,
	}

	app.refreshService = &service.RefreshService{
		Tokens:          app.tokenService,
		Sessions:        app.sessionStore,
		RotationEnabled: app.cfg.RotationEnabled,
	}

	app.localAuthService = &service.LocalAuthService{Users: app.db.Users()}
	app.sessionIssuer = &service.SessionIssuer{
		Tokens:   app.tokenService,
		Sessions: app.sessionStore,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)

	router.TokenService = app.tokenService
	router.SessionStore = app.sessionStore
	router.RefreshService = app.refreshService
	router.LocalAuthService = app.localAuthService
	router.SessionIssuer = app.sessionIssuer
	router.Cookies = httpx.CookieFactory{
		Secure:   app.cfg.CookieSecure,
		SameSite: app.cfg.CookieSameSite,
	}
	router.LocalAuthEnabled = app.cfg.LocalAuthEnabled
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
