package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")

	c, err := Load(cfgFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.DefaultModel != "openai/gpt-4o-mini" {
		t.Errorf("default_model = %q", c.DefaultModel)
	}
	if c.MaxTokens != 2000 || c.Temperature != 0.3 {
		t.Errorf("max_tokens=%d temperature=%v", c.MaxTokens, c.Temperature)
	}
	if c.ProblematicRegionFactor != 1.2 || c.ComplexIssueFactor != 1.1 {
		t.Errorf("factors = %v / %v", c.ProblematicRegionFactor, c.ComplexIssueFactor)
	}
	if c.DataFile != "service_requests.json" {
		t.Errorf("data_file = %q", c.DataFile)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SVCTRACK_API_KEY", "sk-or-v1-from-env")
	t.Setenv("SVCTRACK_POSTGRES_DSN", "postgres://env/db")
	t.Setenv("SVCTRACK_MAX_TOKENS", "777")
	t.Setenv("OPENROUTER_API_KEY", "")

	c, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.APIKey != "sk-or-v1-from-env" {
		t.Errorf("api_key = %q, want env value", c.APIKey)
	}
	if c.PostgresDSN != "postgres://env/db" {
		t.Errorf("postgres_dsn = %q, want env value", c.PostgresDSN)
	}
	if c.MaxTokens != 777 {
		t.Errorf("max_tokens = %d, want 777", c.MaxTokens)
	}
}

func TestLoadOpenRouterKeyFallback(t *testing.T) {
	t.Setenv("SVCTRACK_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "sk-or-v1-shared")

	c, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.APIKey != "sk-or-v1-shared" {
		t.Errorf("api_key = %q, want OPENROUTER_API_KEY fallback", c.APIKey)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	t.Setenv("SVCTRACK_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")

	in := &Global{
		APIKey:       "sk-or-v1-saved",
		DefaultModel: "anthropic/claude-3-haiku",
		MaxTokens:    512,
		DataFile:     "custom.json",
	}
	if err := Save(in, cfgFile); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(cfgFile); err != nil {
		t.Fatalf("config file: %v", err)
	}

	c, err := Load(cfgFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.APIKey != "sk-or-v1-saved" || c.DefaultModel != "anthropic/claude-3-haiku" {
		t.Errorf("round trip lost values: %+v", c)
	}
	if c.MaxTokens != 512 || c.DataFile != "custom.json" {
		t.Errorf("round trip lost values: %+v", c)
	}
}
