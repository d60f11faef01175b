package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsAndEnvOverride(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "key-from-env")
	t.Setenv("ADDR", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("NATS_URL", "")
	t.Setenv("OPENAI_API_BASE", "")
	t.Setenv("MODEL", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.Provider.Model != "gpt-4" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Provider.APIKey != "key-from-env" {
		t.Fatalf("env key not applied: %+v", cfg.Provider)
	}
}

func TestLoadYAMLFileAndPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
addr: ":9090"
redis_url: "redis://localhost:6379"
provider:
  api_key: key-from-file
  model: gpt-4o-mini
  temperature: 0.2
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ADDR", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("NATS_URL", "")
	t.Setenv("OPENAI_API_BASE", "")
	t.Setenv("MODEL", "gpt-5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.RedisURL != "redis://localhost:6379" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Provider.APIKey != "key-from-file" {
		t.Fatalf("file key not applied: %+v", cfg.Provider)
	}
	// Env beats file.
	if cfg.Provider.Model != "gpt-5" {
		t.Fatalf("env did not override file model: %q", cfg.Provider.Model)
	}
	if cfg.Provider.Temperature != 0.2 {
		t.Fatalf("temperature = %v", cfg.Provider.Temperature)
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error when no API key is configured")
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "key")
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
}
