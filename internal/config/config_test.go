package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-session-guard/internal/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	require.Equal(t, "DEV", cfg.GetEnv())
	require.True(t, cfg.IsDev())
	require.Equal(t, "ro", cfg.GetLanguage())
	require.Equal(t, 24*time.Hour, cfg.GetSessionTimeout())
	require.Equal(t, 5, cfg.GetMaxLoginAttempts())
	require.Equal(t, 15*time.Minute, cfg.GetLockoutDuration())
	require.Equal(t, 8, cfg.GetMinPasswordLength())
	require.Equal(t, "/login", cfg.GetLoginPath())
	require.Equal(t, "/dashboard", cfg.GetLandingPath())
	require.Equal(t, config.StoreDriverSQLite, cfg.GetStoreDriver())
	require.Equal(t, "session.db", filepath.Base(cfg.GetStorePath()))
	require.Equal(t, config.GatewayModeOIDC, cfg.GetGatewayMode())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("SESSION_TIMEOUT", "2h")
	t.Setenv("MAX_LOGIN_ATTEMPTS", "3")
	t.Setenv("STORE_DRIVER", "Redis")
	t.Setenv("OIDC_SCOPES", "openid email")
	t.Setenv(config.FileEnvVar, "")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "PROD", cfg.GetEnv())
	require.False(t, cfg.IsDev())
	require.Equal(t, 2*time.Hour, cfg.GetSessionTimeout())
	require.Equal(t, 3, cfg.GetMaxLoginAttempts())
	require.Equal(t, config.StoreDriverRedis, cfg.GetStoreDriver())
	require.Equal(t, []string{"openid", "email"}, cfg.GetOIDCScopes())
}

func TestLoad_FileOverridesEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
language = "en"

[lockout]
max_attempts = 7
duration = "30m"

[gateway]
mode = "mock"
`), 0o600))

	t.Setenv("MAX_LOGIN_ATTEMPTS", "3")
	t.Setenv("LOGIN_PATH", "/intrare")
	t.Setenv(config.FileEnvVar, path)

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "en", cfg.GetLanguage())
	require.Equal(t, 7, cfg.GetMaxLoginAttempts())
	require.Equal(t, 30*time.Minute, cfg.GetLockoutDuration())
	require.Equal(t, "/intrare", cfg.GetLoginPath())
	require.Equal(t, config.GatewayModeMock, cfg.GetGatewayMode())
}

func TestLoad_BadFile(t *testing.T) {
	t.Setenv(config.FileEnvVar, filepath.Join(t.TempDir(), "missing.toml"))
	_, err := config.Load()
	require.Error(t, err)
}

func TestSanitize(t *testing.T) {
	cfg := config.Default()
	cfg.Session.Timeout = -time.Second
	cfg.Lockout.MaxAttempts = 0
	cfg.Lockout.Duration = 0
	cfg.Session.MinPasswordLength = -1
	cfg.Sanitize()

	require.Equal(t, 24*time.Hour, cfg.GetSessionTimeout())
	require.Equal(t, 5, cfg.GetMaxLoginAttempts())
	require.Equal(t, 15*time.Minute, cfg.GetLockoutDuration())
	require.Equal(t, 8, cfg.GetMinPasswordLength())
}

func TestValidate(t *testing.T) {
	t.Run("oidc requires provider settings", func(t *testing.T) {
		cfg := config.Default()
		err := cfg.Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "OIDC_ISSUER_URL")
		require.Contains(t, err.Error(), "DATABASE_URL")
	})

	t.Run("mock with memory store", func(t *testing.T) {
		cfg := config.Default()
		cfg.Gateway.Mode = config.GatewayModeMock
		cfg.Store.Driver = config.StoreDriverMemory
		require.NoError(t, cfg.Validate())
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := config.Default()
		cfg.Gateway.Mode = config.GatewayModeMock
		cfg.Store.Driver = "floppy"
		require.Error(t, cfg.Validate())
	})
}
