// Package config loads chat-server configuration: built-in defaults, an
// optional YAML file, then environment overrides, in that order.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProviderConfig holds the upstream LLM settings.
type ProviderConfig struct {
	APIKey      string  `yaml:"api_key"`
	APIBase     string  `yaml:"api_base"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
}

// Config is the chat-server configuration.
type Config struct {
	Addr     string         `yaml:"addr"`
	RedisURL string         `yaml:"redis_url"`
	NATSURL  string         `yaml:"nats_url"`
	Provider ProviderConfig `yaml:"provider"`
}

// DefaultConfig returns the built-in defaults. Redis and NATS default to
// empty, meaning the server runs without persistence and broadcast.
func DefaultConfig() Config {
	return Config{
		Addr: ":8080",
		Provider: ProviderConfig{
			Model: "gpt-4",
		},
	}
}

// Load builds the configuration. A missing file at path is not an error;
// env vars always win.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	cfg.Addr = getEnv("ADDR", cfg.Addr)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.NATSURL = getEnv("NATS_URL", cfg.NATSURL)
	cfg.Provider.APIKey = getEnv("OPENAI_API_KEY", cfg.Provider.APIKey)
	cfg.Provider.APIBase = getEnv("OPENAI_API_BASE", cfg.Provider.APIBase)
	cfg.Provider.Model = getEnv("MODEL", cfg.Provider.Model)

	if cfg.Provider.APIKey == "" {
		return nil, fmt.Errorf("provider API key is required (set OPENAI_API_KEY or provider.api_key)")
	}
	return &cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
