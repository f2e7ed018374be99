package config

import "time"

type SessionConfig interface {
	GetSessionTimeout() time.Duration
	GetMinPasswordLength() int
	GetLoginPath() string
	GetLandingPath() string
	GetPasswordResetRedirectURL() string
}

type LockoutConfig interface {
	GetMaxLoginAttempts() int
	GetLockoutDuration() time.Duration
}

type SessionSettings struct {
	Timeout                  time.Duration `env:"SESSION_TIMEOUT" envDefault:"24h" toml:"timeout"`
	MinPasswordLength        int           `env:"MIN_PASSWORD_LENGTH" envDefault:"8" toml:"min_password_length"`
	LoginPath                string        `env:"LOGIN_PATH" envDefault:"/login" toml:"login_path"`
	LandingPath              string        `env:"LANDING_PATH" envDefault:"/dashboard" toml:"landing_path"`
	PasswordResetRedirectURL string        `env:"PASSWORD_RESET_REDIRECT_URL" toml:"password_reset_redirect_url"`
}

type LockoutSettings struct {
	MaxAttempts int           `env:"MAX_LOGIN_ATTEMPTS" envDefault:"5" toml:"max_attempts"`
	Duration    time.Duration `env:"LOCKOUT_DURATION" envDefault:"15m" toml:"duration"`
}

func (c AppConfig) GetSessionTimeout() time.Duration {
	return c.Session.Timeout
}

func (c AppConfig) GetMinPasswordLength() int {
	return c.Session.MinPasswordLength
}

func (c AppConfig) GetLoginPath() string {
	return c.Session.LoginPath
}

func (c AppConfig) GetLandingPath() string {
	return c.Session.LandingPath
}

func (c AppConfig) GetPasswordResetRedirectURL() string {
	return c.Session.PasswordResetRedirectURL
}

func (c AppConfig) GetMaxLoginAttempts() int {
	return c.Lockout.MaxAttempts
}

func (c AppConfig) GetLockoutDuration() time.Duration {
	return c.Lockout.Duration
}
