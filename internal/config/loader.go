package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand ${VAR} environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	return &cfg, nil
}

// LoadAndValidate loads config, overlays env secrets, applies defaults, and
// validates.
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.applySecrets(); err != nil {
		return nil, fmt.Errorf("read env secrets: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// applySecrets overrides credential fields from the environment when set.
// Env wins over the file so deployments can rotate secrets without editing
// config.
func (c *Config) applySecrets() error {
	var sec Secrets
	if err := envconfig.Process("", &sec); err != nil {
		return err
	}

	if sec.Cookie != "" {
		c.Upstream.Cookie = sec.Cookie
	}
	if sec.TelegramBotToken != "" {
		c.Telegram.BotToken = sec.TelegramBotToken
	}
	if sec.TelegramChatID != "" {
		c.Telegram.ChatID = sec.TelegramChatID
	}
	if sec.DBPassword != "" {
		c.Database.Password = sec.DBPassword
	}

	return nil
}
