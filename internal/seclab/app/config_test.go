package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearSeclabEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SECLAB_TOKEN_SECRET", "SECLAB_ISSUER", "SECLAB_ACCESS_TTL",
		"SECLAB_REFRESH_TTL", "SECLAB_STORE_DRIVER", "SECLAB_DATABASE_FILE",
		"SECLAB_SECURITY_LOG_FILE", "SECLAB_MAX_LOGIN_FAILURES",
		"SECLAB_LOGIN_FAILURE_WINDOW", "ENV", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearSeclabEnv(t)

	cfg := LoadConfig()
	require.Equal(t, "seclab", cfg.Issuer)
	require.Equal(t, 15*time.Minute, cfg.AccessTTL)
	require.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	require.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	require.Equal(t, 3, cfg.MaxLoginFailures)
	require.Equal(t, 5*time.Minute, cfg.LoginFailureWindow)

	// No secret in the environment means a generated one, never empty.
	require.NotEmpty(t, cfg.TokenSecret)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_GeneratedSecretsDiffer(t *testing.T) {
	clearSeclabEnv(t)
	require.NotEqual(t, LoadConfig().TokenSecret, LoadConfig().TokenSecret)
}

func TestLoadConfig_Overrides(t *testing.T) {
	clearSeclabEnv(t)
	t.Setenv("SECLAB_TOKEN_SECRET", "pinned-secret")
	t.Setenv("SECLAB_ACCESS_TTL", "5m")
	t.Setenv("SECLAB_REFRESH_TTL", "48h")
	t.Setenv("SECLAB_STORE_DRIVER", "sqlite")
	t.Setenv("SECLAB_MAX_LOGIN_FAILURES", "5")

	cfg := LoadConfig()
	require.Equal(t, "pinned-secret", cfg.TokenSecret)
	require.Equal(t, 5*time.Minute, cfg.AccessTTL)
	require.Equal(t, 48*time.Hour, cfg.RefreshTTL)
	require.Equal(t, StoreDriverSQLite, cfg.StoreDriver)
	require.Equal(t, 5, cfg.MaxLoginFailures)
}

func TestLoadConfig_BareIntegerDurationIsMinutes(t *testing.T) {
	clearSeclabEnv(t)
	t.Setenv("SECLAB_ACCESS_TTL", "10")

	require.Equal(t, 10*time.Minute, LoadConfig().AccessTTL)
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			TokenSecret:        "secret",
			AccessTTL:          15 * time.Minute,
			RefreshTTL:         7 * 24 * time.Hour,
			StoreDriver:        StoreDriverMemory,
			SecurityLogFile:    "security.log",
			MaxLoginFailures:   3,
			LoginFailureWindow: 5 * time.Minute,
		}
	}
	require.NoError(t, valid().Validate())

	tests := map[string]func(*Config){
		"empty secret":            func(c *Config) { c.TokenSecret = "" },
		"zero access ttl":         func(c *Config) { c.AccessTTL = 0 },
		"negative refresh ttl":    func(c *Config) { c.RefreshTTL = -time.Hour },
		"access outlives refresh": func(c *Config) { c.AccessTTL = 30 * 24 * time.Hour },
		"unknown driver":          func(c *Config) { c.StoreDriver = "postgres" },
		"sqlite without a file":   func(c *Config) { c.StoreDriver = StoreDriverSQLite; c.DatabaseFile = "" },
		"zero failure budget":     func(c *Config) { c.MaxLoginFailures = 0 },
		"zero failure window":     func(c *Config) { c.LoginFailureWindow = 0 },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestNew(t *testing.T) {
	clearSeclabEnv(t)
	dir := t.TempDir()

	cfg := LoadConfig()
	cfg.SecurityLogFile = filepath.Join(dir, "security.log")

	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, a.Close()) })

	require.NotNil(t, a.Store)
	require.NotNil(t, a.Security)
	require.NotNil(t, a.Detector)
	require.NotNil(t, a.Sessions)
	require.NotNil(t, a.Consents)
	require.NotNil(t, a.Controller)
	require.NotNil(t, a.MFA)

	// The signer is wired with the configured secret: a full
	// register/login/authorize round trip works through the graph.
	ctx := context.Background()
	now := time.Date(2025, 4, 10, 10, 0, 0, 0, time.UTC)
	_, err = a.Sessions.Register(ctx, "alice", "Str0ngP@ss", "")
	require.NoError(t, err)
	pair, err := a.Sessions.Login(ctx, "alice", "Str0ngP@ss", "test", now)
	require.NoError(t, err)
	claims, err := a.Sessions.Authorize(ctx, pair.AccessToken, now, "")
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Username)
}

func TestNew_SQLite(t *testing.T) {
	clearSeclabEnv(t)
	dir := t.TempDir()

	cfg := LoadConfig()
	cfg.StoreDriver = StoreDriverSQLite
	cfg.DatabaseFile = filepath.Join(dir, "seclab.db")
	cfg.SecurityLogFile = filepath.Join(dir, "security.log")

	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, a.Close()) })

	// Migrations ran: the user table answers queries.
	n, err := a.Store.Users().CountUsers(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestNew_RejectsBadConfig(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}
