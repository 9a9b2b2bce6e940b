package app

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/marufbep/authgate/pkg/jwtx"
)

// Store driver names accepted by STORE_DRIVER.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

type Config struct {
	JWTSecret       string        // Required: HMAC secret for token signing (min 32 bytes)
	AccessTokenTTL  time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTokenTTL time.Duration // Optional: refresh token lifetime (default: 168h)

	HashingEnabled   bool // Optional: persist refresh tokens as fingerprints (default: true)
	RotationEnabled  bool // Optional: single-use refresh tokens (default: true)
	LocalAuthEnabled bool // Optional: email/password endpoints (default: false)

	CookieSecure   bool   // Optional: HTTPS-only cookies (default: false)
	CookieSameSite string // Optional: SameSite policy (Lax, Strict, None) (default: Lax)

	StoreDriver   string // Optional: sqlite or redis (default: sqlite)
	DatabaseFile  string // Optional: path to SQLite database file (default: ./auth.db)
	RedisAddr     string // Optional: redis host:port (default: localhost:6379)
	RedisPassword string // Optional: redis password
	RedisDB       int    // Optional: redis logical database (default: 0)

	FrontendURL          string        // Optional: origin of the browser client (default: http://localhost:3000)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired-record sweep interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		JWTSecret:       os.Getenv("JWT_SECRET"),
		AccessTokenTTL:  getEnvDurationOrDefault("JWT_ACCESS_TOKEN_EXPIRATION", jwtx.DefaultAccessTokenTTL),
		RefreshTokenTTL: getEnvDurationOrDefault("JWT_REFRESH_TOKEN_EXPIRATION", jwtx.DefaultRefreshTokenTTL),

		HashingEnabled:   getEnvBoolOrDefault("REFRESH_TOKEN_HASHING_ENABLED", true),
		RotationEnabled:  getEnvBoolOrDefault("REFRESH_TOKEN_ROTATION_ENABLED", true),
		LocalAuthEnabled: getEnvBoolOrDefault("LOCAL_AUTH_ENABLED", false),

		CookieSecure:   getEnvBoolOrDefault("COOKIE_SECURE", false),
		CookieSameSite: getEnvOrDefault("COOKIE_SAMESITE", "Lax"),

		StoreDriver:   getEnvOrDefault("STORE_DRIVER", DriverSQLite),
		DatabaseFile:  getEnvOrDefault("DATABASE_FILE", "auth.db"),
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", 0),

		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

// Validate checks the invariants the rest of the wiring relies on.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if len(c.JWTSecret) < jwtx.MinSecretLen {
		return jwtx.ErrWeakSecret
	}
	if c.StoreDriver != DriverSQLite && c.StoreDriver != DriverRedis {
		return errors.New("STORE_DRIVER must be sqlite or redis")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Go duration strings (e.g. "15m", "168h").
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are milliseconds, the convention the token expiration
	// keys historically used (900000 = 15 minutes).
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond
	}

	return defaultValue
}
