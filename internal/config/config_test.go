package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "collector.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

const validYAML = `
instance:
  id: test-collector
upstream:
  symbol: NIFTY
  cookie: nsit=abc
database:
  host: localhost
  name: test_db
  user: testuser
  password: testpass
telegram:
  enabled: true
  bot_token: "123:abc"
  chat_id: "-100200300"
poller:
  interval_minutes: 2
`

func TestLoad(t *testing.T) {
	path := writeTempFile(t, validYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "test-collector" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "test-collector")
	}
	if cfg.Upstream.Symbol != "NIFTY" {
		t.Errorf("Upstream.Symbol = %q, want %q", cfg.Upstream.Symbol, "NIFTY")
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, "localhost")
	}
	if cfg.Poller.IntervalMinutes != 2 {
		t.Errorf("Poller.IntervalMinutes = %d, want 2", cfg.Poller.IntervalMinutes)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")

	yaml := strings.Replace(validYAML, "password: testpass", "password: ${TEST_DB_PASSWORD}", 1)
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Password != "secret123" {
		t.Errorf("Database.Password = %q, want %q", cfg.Database.Password, "secret123")
	}
}

func TestLoadAndValidate_AppliesDefaults(t *testing.T) {
	path := writeTempFile(t, validYAML)

	cfg, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}

	if cfg.Upstream.BaseURL != DefaultBaseURL {
		t.Errorf("Upstream.BaseURL = %q, want default %q", cfg.Upstream.BaseURL, DefaultBaseURL)
	}
	if cfg.Upstream.Timeout != 30*time.Second {
		t.Errorf("Upstream.Timeout = %v, want 30s", cfg.Upstream.Timeout)
	}
	if cfg.Database.Port != DefaultDBPort {
		t.Errorf("Database.Port = %d, want %d", cfg.Database.Port, DefaultDBPort)
	}
	if cfg.Database.SSLMode != "prefer" {
		t.Errorf("Database.SSLMode = %q, want prefer", cfg.Database.SSLMode)
	}
	if cfg.Health.Port != DefaultHealthPort {
		t.Errorf("Health.Port = %d, want %d", cfg.Health.Port, DefaultHealthPort)
	}
}

func TestLoadAndValidate_SecretOverlay(t *testing.T) {
	t.Setenv("NSE_COOKIE", "nsit=rotated")
	t.Setenv("TELEGRAM_BOT_TOKEN", "999:zzz")

	path := writeTempFile(t, validYAML)

	cfg, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}

	if cfg.Upstream.Cookie != "nsit=rotated" {
		t.Errorf("Upstream.Cookie = %q, want env override", cfg.Upstream.Cookie)
	}
	if cfg.Telegram.BotToken != "999:zzz" {
		t.Errorf("Telegram.BotToken = %q, want env override", cfg.Telegram.BotToken)
	}
	// Untouched fields keep their file values.
	if cfg.Telegram.ChatID != "-100200300" {
		t.Errorf("Telegram.ChatID = %q, want file value", cfg.Telegram.ChatID)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing instance id", func(c *Config) { c.Instance.ID = "" }, "instance.id"},
		{"missing cookie", func(c *Config) { c.Upstream.Cookie = "" }, "upstream.cookie"},
		{"missing db host", func(c *Config) { c.Database.Host = "" }, "database.host"},
		{"missing db password", func(c *Config) { c.Database.Password = "" }, "database.password"},
		{"telegram enabled without token", func(c *Config) { c.Telegram.BotToken = "" }, "telegram.bot_token"},
		{"zero interval", func(c *Config) { c.Poller.IntervalMinutes = 0 }, "interval_minutes"},
		{"bad health port", func(c *Config) { c.Health.Port = 70000 }, "health.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempFile(t, validYAML)
			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			cfg.applyDefaults()
			tt.mutate(cfg)

			err = cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestValidate_TelegramDisabledNeedsNoCredentials(t *testing.T) {
	path := writeTempFile(t, validYAML)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg.applyDefaults()
	cfg.Telegram = TelegramConfig{Enabled: false}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil with telegram disabled", err)
	}
}
