package config

const (
	StoreDriverSQLite = "sqlite"
	StoreDriverRedis  = "redis"
	StoreDriverMemory = "memory"

	GatewayModeOIDC = "oidc"
	GatewayModeMock = "mock"
)

type StoreConfig interface {
	GetStoreDriver() string
	GetStorePath() string
	GetStoreNamespace() string
	GetRedisURL() string
}

type GatewayConfig interface {
	GetGatewayMode() string
	GetOIDCIssuerURL() string
	GetOIDCClientID() string
	GetOIDCClientSecret() string
	GetOIDCScopes() []string
	GetAccountAPIURL() string
	GetDatabaseURL() string
}

type StoreSettings struct {
	Driver    string `env:"STORE_DRIVER" envDefault:"sqlite" toml:"driver"`
	Path      string `env:"STORE_PATH" toml:"path"`
	Namespace string `env:"STORE_NAMESPACE" envDefault:"default" toml:"namespace"`
	RedisURL  string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0" toml:"redis_url"`
}

type GatewaySettings struct {
	Mode          string   `env:"GATEWAY_MODE" envDefault:"oidc" toml:"mode"`
	IssuerURL     string   `env:"OIDC_ISSUER_URL" toml:"issuer_url"`
	ClientID      string   `env:"OIDC_CLIENT_ID" toml:"client_id"`
	ClientSecret  string   `env:"OIDC_CLIENT_SECRET" toml:"client_secret"`
	Scopes        []string `env:"OIDC_SCOPES" envSeparator:" " toml:"scopes"`
	AccountAPIURL string   `env:"ACCOUNT_API_URL" toml:"account_api_url"`
	DatabaseURL   string   `env:"DATABASE_URL" toml:"database_url"`
}

func (c AppConfig) GetStoreDriver() string {
	return c.Store.Driver
}

func (c AppConfig) GetStorePath() string {
	return c.Store.Path
}

// GetStoreNamespace returns the key prefix used by the redis store.
func (c AppConfig) GetStoreNamespace() string {
	return c.Store.Namespace
}

func (c AppConfig) GetRedisURL() string {
	return c.Store.RedisURL
}

func (c AppConfig) GetGatewayMode() string {
	return c.Gateway.Mode
}

func (c AppConfig) GetOIDCIssuerURL() string {
	return c.Gateway.IssuerURL
}

func (c AppConfig) GetOIDCClientID() string {
	return c.Gateway.ClientID
}

func (c AppConfig) GetOIDCClientSecret() string {
	return c.Gateway.ClientSecret
}

func (c AppConfig) GetOIDCScopes() []string {
	return c.Gateway.Scopes
}

func (c AppConfig) GetAccountAPIURL() string {
	return c.Gateway.AccountAPIURL
}

func (c AppConfig) GetDatabaseURL() string {
	return c.Gateway.DatabaseURL
}
