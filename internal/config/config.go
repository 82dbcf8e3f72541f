package config

import "time"

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

var globalConfig *Config

func Global() *Config {
	return globalConfig
}

func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

type Config struct {
	Env           string `env:"ENV" env-required:"true"`
	StorageDriver string `env:"STORAGE_DRIVER" env-default:"postgres"`
	DefaultLocale string `env:"DEFAULT_LOCALE" env-default:"de"`
	FrontendURL   string `env:"FRONTEND_BASE_URL" env-default:"http://localhost:5173"`
	HTTP          HTTPConfig
	Postgres      PostgresConfig
	JWT           JWTConfig
	SMTP          SMTPConfig
}

type HTTPConfig struct {
	Host            string        `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `env:"HTTP_PORT" env-default:"8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type PostgresConfig struct {
	Host           string        `env:"POSTGRES_HOST"`
	Port           int           `env:"POSTGRES_PORT" env-default:"5432"`
	Username       string        `env:"POSTGRES_USERNAME"`
	Password       string        `env:"POSTGRES_PASSWORD"`
	Database       string        `env:"POSTGRES_DATABASE"`
	SSLMode        string        `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	ConnectTimeout time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" env-default:"10s"`
	PingTimeout    time.Duration `env:"POSTGRES_PING_TIMEOUT" env-default:"10s"`
	AutoMigrate    bool          `env:"POSTGRES_AUTO_MIGRATE" env-default:"false"`
}

type JWTConfig struct {
	Issuer          string        `env:"JWT_ISSUER" env-default:"oponion-api"`
	SigningKey      string        `env:"JWT_SIGNING_KEY" env-required:"true"`
	AccessTokenTTL  time.Duration `env:"JWT_ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL time.Duration `env:"JWT_REFRESH_TOKEN_TTL" env-default:"720h"`
}

// SMTPConfig is optional: with an empty Host invitations are only logged.
type SMTPConfig struct {
	Host     string        `env:"SMTP_HOST"`
	Port     int           `env:"SMTP_PORT" env-default:"587"`
	Username string        `env:"SMTP_USERNAME"`
	Password string        `env:"SMTP_PASSWORD"`
	From     string        `env:"SMTP_FROM" env-default:"noreply@oponion.local"`
	TLS      bool          `env:"SMTP_TLS" env-default:"true"`
	Timeout  time.Duration `env:"SMTP_TIMEOUT" env-default:"10s"`
}
