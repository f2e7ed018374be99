package config

type EnvConfig interface {
	GetEnv() string
	IsDev() bool
	GetLogLevel() string
	GetAppName() string
	GetLanguage() string
}

type EnvVars struct {
	Env      string `env:"ENV" envDefault:"DEV" toml:"env"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" toml:"log_level"`
	AppName  string `env:"APP_NAME" envDefault:"sessionctl" toml:"app_name"`
	Language string `env:"LANGUAGE" envDefault:"ro" toml:"language"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetEnv() string {
	return e.Env
}

func (e EnvVars) IsDev() bool {
	return e.Env == "DEV"
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

// GetLanguage returns the BCP 47 tag user-facing messages are rendered in.
func (e EnvVars) GetLanguage() string {
	return e.Language
}
