package app

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/secbyexample/seclab/pkg/cryptox"
	"github.com/secbyexample/seclab/pkg/jwtx"
)

const (
	StoreDriverMemory = "memory"
	StoreDriverSQLite = "sqlite"
)

type Config struct {
	TokenSecret string        // HMAC secret for token signing (generated when unset)
	Issuer      string        // Issuer claim for tokens (default: seclab)
	AccessTTL   time.Duration // Access token lifetime (default: 15m)
	RefreshTTL  time.Duration // Refresh token lifetime (default: 168h)

	StoreDriver  string // Store backend: memory or sqlite (default: memory)
	DatabaseFile string // SQLite database path (default: ./seclab.db)

	SecurityLogFile    string        // JSON-lines security event sink (default: ./security.log)
	MaxLoginFailures   int           // Failures per window before an actor is flagged (default: 3)
	LoginFailureWindow time.Duration // Window for the failure budget (default: 5m)

	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: text)
}

// LoadConfig reads configuration from SECLAB_* environment variables,
// loading a .env file first when one exists. The token secret is generated
// fresh when unset, which is fine for a lab: every restart invalidates all
// outstanding tokens.
func LoadConfig() Config {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	cfg := Config{
		TokenSecret:        os.Getenv("SECLAB_TOKEN_SECRET"),
		Issuer:             getEnvOrDefault("SECLAB_ISSUER", "seclab"),
		AccessTTL:          getEnvDurationOrDefault("SECLAB_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL:         getEnvDurationOrDefault("SECLAB_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),
		StoreDriver:        getEnvOrDefault("SECLAB_STORE_DRIVER", StoreDriverMemory),
		DatabaseFile:       getEnvOrDefault("SECLAB_DATABASE_FILE", "seclab.db"),
		SecurityLogFile:    getEnvOrDefault("SECLAB_SECURITY_LOG_FILE", "security.log"),
		MaxLoginFailures:   getEnvIntOrDefault("SECLAB_MAX_LOGIN_FAILURES", 3),
		LoginFailureWindow: getEnvDurationOrDefault("SECLAB_LOGIN_FAILURE_WINDOW", 5*time.Minute),
		Env:                getEnvOrDefault("ENV", "dev"),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          getEnvOrDefault("LOG_FORMAT", "text"),
	}

	if cfg.TokenSecret == "" {
		cfg.TokenSecret = cryptox.MustGenerateToken(cryptox.TokenSize256)
	}

	return cfg
}

// Validate rejects configurations that would only fail later at request
// time. Secret and TTL problems must surface at startup.
func (c Config) Validate() error {
	if c.TokenSecret == "" {
		return fmt.Errorf("config: %w", jwtx.ErrNoSecret)
	}
	if c.AccessTTL <= 0 {
		return fmt.Errorf("config: access TTL must be positive, got %s", c.AccessTTL)
	}
	if c.RefreshTTL <= 0 {
		return fmt.Errorf("config: refresh TTL must be positive, got %s", c.RefreshTTL)
	}
	if c.AccessTTL >= c.RefreshTTL {
		return fmt.Errorf("config: access TTL %s must be shorter than refresh TTL %s", c.AccessTTL, c.RefreshTTL)
	}
	switch c.StoreDriver {
	case StoreDriverMemory, StoreDriverSQLite:
	default:
		return fmt.Errorf("config: unknown store driver %q", c.StoreDriver)
	}
	if c.StoreDriver == StoreDriverSQLite && c.DatabaseFile == "" {
		return fmt.Errorf("config: sqlite driver needs a database file")
	}
	if c.MaxLoginFailures <= 0 {
		return fmt.Errorf("config: max login failures must be positive, got %d", c.MaxLoginFailures)
	}
	if c.LoginFailureWindow <= 0 {
		return fmt.Errorf("config: login failure window must be positive, got %s", c.LoginFailureWindow)
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are taken as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
