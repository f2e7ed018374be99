package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// FileEnvVar names an optional TOML file whose values override the environment.
const FileEnvVar = "SESSION_CONFIG_FILE"

type Config interface {
	EnvConfig
	SessionConfig
	LockoutConfig
	StoreConfig
	GatewayConfig
}

var _ Config = AppConfig{}

// AppConfig is the full configuration. Each nested struct backs one of the
// interfaces above.
type AppConfig struct {
	EnvVars
	Session SessionSettings `toml:"session"`
	Lockout LockoutSettings `toml:"lockout"`
	Store   StoreSettings   `toml:"store"`
	Gateway GatewaySettings `toml:"gateway"`
}

// Load reads .env (if present), then the environment, then the file named by
// SESSION_CONFIG_FILE, and sanitizes the result.
func Load() (AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return AppConfig{}, fmt.Errorf("[config.Load] .env file: %w", err)
		}
	}

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("[config.Load] env.Parse: %w", err)
	}

	if path := os.Getenv(FileEnvVar); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return cfg, err
		}
	}

	cfg.Sanitize()
	return cfg, nil
}

// Default returns the configuration with every value at its default.
func Default() AppConfig {
	var cfg AppConfig
	_ = env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}})
	cfg.Sanitize()
	return cfg
}

// LoadFile decodes a TOML file over cfg. Keys absent from the file keep their value.
func (c *AppConfig) LoadFile(path string) error {
	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("[AppConfig.LoadFile] %s: %w", path, err)
	}
	return nil
}

// Sanitize replaces out-of-range values with defaults.
func (c *AppConfig) Sanitize() {
	c.Env = strings.ToUpper(strings.TrimSpace(c.Env))
	if c.Env == "" {
		c.Env = "DEV"
	}
	if c.Session.Timeout <= 0 {
		c.Session.Timeout = 24 * time.Hour
	}
	if c.Session.MinPasswordLength < 1 {
		c.Session.MinPasswordLength = 8
	}
	if c.Lockout.MaxAttempts < 1 {
		c.Lockout.MaxAttempts = 5
	}
	if c.Lockout.Duration <= 0 {
		c.Lockout.Duration = 15 * time.Minute
	}
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	c.Gateway.Mode = strings.ToLower(strings.TrimSpace(c.Gateway.Mode))
	if c.Store.Path == "" {
		c.Store.Path = defaultStorePath(c.AppName)
	}
}

// Validate reports settings that cannot be used to build the session layer.
func (c AppConfig) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case StoreDriverSQLite, StoreDriverRedis, StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER %q is not one of sqlite, redis, memory", c.Store.Driver))
	}
	if c.Store.Driver == StoreDriverRedis && c.Store.RedisURL == "" {
		errs = append(errs, errors.New("REDIS_URL is required for the redis store"))
	}

	switch c.Gateway.Mode {
	case GatewayModeOIDC:
		if c.Gateway.IssuerURL == "" {
			errs = append(errs, errors.New("OIDC_ISSUER_URL is required in oidc mode"))
		}
		if c.Gateway.ClientID == "" {
			errs = append(errs, errors.New("OIDC_CLIENT_ID is required in oidc mode"))
		}
		if c.Gateway.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required in oidc mode"))
		}
	case GatewayModeMock:
	default:
		errs = append(errs, fmt.Errorf("GATEWAY_MODE %q is not one of oidc, mock", c.Gateway.Mode))
	}
	return errors.Join(errs...)
}

func defaultStorePath(appName string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	name := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(appName), " ", "-"))
	if name == "" {
		name = "sessionctl"
	}
	return filepath.Join(dir, name, "session.db")
}
