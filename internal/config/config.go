package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Identity  IdentityConfig  `yaml:"identity"`
	AI        AIConfig        `yaml:"ai"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Privacy   PrivacyConfig   `yaml:"privacy"`
	Router    RouterConfig    `yaml:"router"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// IdentityConfig holds the salt used to hash platform user identifiers.
// Raw PSIDs never reach logs or storage; only the salted hash does.
type IdentityConfig struct {
	Salt string `yaml:"salt" env:"IDENTITY_SALT" env-required:"true"`
}

// AIConfig holds the language-model provider settings.
type AIConfig struct {
	Enabled     bool          `yaml:"enabled"       env:"AI_ENABLED"       env-default:"false"`
	APIKey      string        `yaml:"api_key"       env:"AI_API_KEY"`
	Model       string        `yaml:"model"         env:"AI_MODEL"         env-default:"claude-3-5-haiku-latest"`
	Timeout     time.Duration `yaml:"timeout"       env:"AI_TIMEOUT"       env-default:"8s"`
	MaxInputLen int           `yaml:"max_input_len" env:"AI_MAX_INPUT_LEN" env-default:"2000"`
}

// RateLimitConfig holds AI call budget settings. Zero values fall back to
// the limiter defaults.
type RateLimitConfig struct {
	PerUser int `yaml:"per_user" env:"RATE_LIMIT_PER_USER" env-default:"5"`
	Global  int `yaml:"global"   env:"RATE_LIMIT_GLOBAL"   env-default:"10"`
}

// WebhookConfig holds Messenger webhook settings.
type WebhookConfig struct {
	VerifyToken string `yaml:"verify_token" env:"WEBHOOK_VERIFY_TOKEN" env-required:"true"`
}

// PrivacyConfig holds data retention settings.
type PrivacyConfig struct {
	RetentionDays int `yaml:"retention_days" env:"PRIVACY_RETENTION_DAYS" env-default:"365"`
}

// RouterConfig holds reply formatting settings.
type RouterConfig struct {
	MaxReplyLen int `yaml:"max_reply_len" env:"ROUTER_MAX_REPLY_LEN" env-default:"280"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
