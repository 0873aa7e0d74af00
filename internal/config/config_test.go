package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.PokeAPI.BaseURL != "https://pokeapi.co/api/v2" {
		t.Errorf("BaseURL = %q", cfg.PokeAPI.BaseURL)
	}
	if cfg.PokeAPI.Limit != 150 {
		t.Errorf("Limit = %d, want 150", cfg.PokeAPI.Limit)
	}
	if cfg.PokeAPI.RequestTimeout != 10*time.Second {
		t.Errorf("RequestTimeout = %v, want 10s", cfg.PokeAPI.RequestTimeout)
	}
	if cfg.PokeAPI.MaxConcurrency != 0 {
		t.Errorf("MaxConcurrency = %d, want 0", cfg.PokeAPI.MaxConcurrency)
	}
	if cfg.PokeAPI.UserAgent != "pokedex-client/0.1.0" {
		t.Errorf("UserAgent = %q", cfg.PokeAPI.UserAgent)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if cfg.CacheEnabled() {
		t.Error("cache should be disabled by default")
	}
	if cfg.Cache.TTL != 24*time.Hour {
		t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("POKEDEX_LIMIT", "20")
	t.Setenv("POKEDEX_MAX_CONCURRENCY", "8")
	t.Setenv("POKEDEX_REQUEST_TIMEOUT", "2s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.PokeAPI.Limit != 20 {
		t.Errorf("Limit = %d, want 20", cfg.PokeAPI.Limit)
	}
	if cfg.PokeAPI.MaxConcurrency != 8 {
		t.Errorf("MaxConcurrency = %d, want 8", cfg.PokeAPI.MaxConcurrency)
	}
	if cfg.PokeAPI.RequestTimeout != 2*time.Second {
		t.Errorf("RequestTimeout = %v, want 2s", cfg.PokeAPI.RequestTimeout)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if !cfg.CacheEnabled() {
		t.Error("cache should be enabled when REDIS_ADDR is set")
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pokedex.yaml")
	content := `
pokeapi:
  baseURL: http://localhost:9000/api/v2
  limit: 5
log:
  level: info
  pretty: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.PokeAPI.BaseURL != "http://localhost:9000/api/v2" {
		t.Errorf("BaseURL = %q", cfg.PokeAPI.BaseURL)
	}
	if cfg.PokeAPI.Limit != 5 {
		t.Errorf("Limit = %d, want 5", cfg.PokeAPI.Limit)
	}
	if !cfg.Log.Pretty || cfg.Log.Level != "info" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	// Unset keys fall back to env-default
	if cfg.PokeAPI.RequestTimeout != 10*time.Second {
		t.Errorf("RequestTimeout = %v, want 10s", cfg.PokeAPI.RequestTimeout)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"zero limit", map[string]string{"POKEDEX_LIMIT": "0"}, "limit must be >= 1"},
		{"negative concurrency", map[string]string{"POKEDEX_MAX_CONCURRENCY": "-1"}, "max concurrency must be >= 0"},
		{"zero timeout", map[string]string{"POKEDEX_REQUEST_TIMEOUT": "0s"}, "request timeout must be > 0"},
		{"bad duration", map[string]string{"POKEDEX_REQUEST_TIMEOUT": "soon"}, "could not read config"},
		{"cache without ttl", map[string]string{"REDIS_ADDR": "localhost:6379", "CACHE_TTL": "0s"}, "cache ttl must be > 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load("")
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_EmptyBaseURL(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg.PokeAPI.BaseURL = " "

	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "base url is required") {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestUsage(t *testing.T) {
	usage := Usage()
	for _, name := range []string{"POKEDEX_LIMIT", "REDIS_ADDR", "LOG_LEVEL"} {
		if !strings.Contains(usage, name) {
			t.Errorf("Usage() missing %s", name)
		}
	}
}
