// Package config loads runtime settings for the painel binaries from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every setting read from PAINEL_* environment variables.
type Config struct {
	DataDir      string        `env:"DATA_DIR" envDefault:"./data"`
	Backend      string        `env:"BACKEND" envDefault:"file"`
	HTTPPort     string        `env:"HTTP_PORT" envDefault:"7002"`
	Heartbeat    time.Duration `env:"HEARTBEAT" envDefault:"5s"`
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"500ms"`
	KeyPrefix    string        `env:"KEY_PREFIX" envDefault:"painelSucena"`
	VaultKey     string        `env:"VAULT_KEY"`
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`
	User         string        `env:"USER_NAME"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "PAINEL_"}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that the environment parser cannot.
func (c Config) Validate() error {
	switch c.Backend {
	case "memory", "file", "sqlite":
	default:
		return fmt.Errorf("unknown backend %q: must be memory, file or sqlite", c.Backend)
	}
	if c.Heartbeat <= 0 {
		return fmt.Errorf("heartbeat must be positive, got %s", c.Heartbeat)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.VaultKey != "" && len(c.VaultKey) != 32 {
		return fmt.Errorf("vault key must be 32 bytes, got %d", len(c.VaultKey))
	}
	if c.KeyPrefix == "" {
		return fmt.Errorf("key prefix is required")
	}
	return nil
}
