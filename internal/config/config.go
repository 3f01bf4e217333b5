package config

import "time"

// Config is the root configuration for a collector instance.
type Config struct {
	Instance InstanceConfig `yaml:"instance"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Database DBConfig       `yaml:"database"`
	Telegram TelegramConfig `yaml:"telegram"`
	Poller   PollerConfig   `yaml:"poller"`
	Logging  LoggingConfig  `yaml:"logging"`
	Health   HealthConfig   `yaml:"health"`
}

// InstanceConfig identifies this collector.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// UpstreamConfig holds NSE endpoint settings. Cookie is the session cookie
// header value; it expires and must be rotated out of band.
type UpstreamConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Symbol    string        `yaml:"symbol"`
	Cookie    string        `yaml:"cookie"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
}

// DBConfig holds the Postgres connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// TelegramConfig holds the notifier channel. When Enabled is false the
// collector runs with notifications discarded.
type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// PollerConfig holds poll-loop settings. IntervalMinutes is the configured
// interval unit; the loop converts it at 45 seconds per unit (see poller).
type PollerConfig struct {
	IntervalMinutes int `yaml:"interval_minutes"`
}

// LoggingConfig holds log output settings. File enables a rotating log file
// alongside stdout.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// HealthConfig holds the health endpoint settings.
type HealthConfig struct {
	Port int `yaml:"port"`
}

// Secrets are the env-only overrides applied on top of the YAML file, so
// credential material never has to live in the config file itself.
type Secrets struct {
	Cookie           string `envconfig:"NSE_COOKIE"`
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string `envconfig:"TELEGRAM_CHAT_ID"`
	DBPassword       string `envconfig:"DB_PASSWORD"`
}
