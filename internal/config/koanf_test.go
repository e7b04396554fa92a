// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if !cfg.Cache.Persistent || cfg.Cache.Path != "/data/weather-cache" {
		t.Errorf("cache defaults = %+v", cfg.Cache)
	}
	if cfg.Cache.SweepInterval != time.Hour {
		t.Errorf("Cache.SweepInterval = %v, want 1h", cfg.Cache.SweepInterval)
	}
	if cfg.Cache.Breaker.ConsecutiveFailures != 5 {
		t.Errorf("Cache.Breaker.ConsecutiveFailures = %d, want 5", cfg.Cache.Breaker.ConsecutiveFailures)
	}
	if cfg.Retry.MaxAttempts != 3 || cfg.Retry.BaseDelay != time.Second || cfg.Retry.MaxDelay != 30*time.Second {
		t.Errorf("retry defaults = %+v", cfg.Retry)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(cfg, defaultConfig()) {
		t.Errorf("loaded config differs from defaults:\n got %+v\nwant %+v", cfg, defaultConfig())
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  level: debug
cache:
  path: /var/lib/weather
  sweep_interval: 15m
  breaker:
    consecutive_failures: 3
retry:
  max_attempts: 5
server:
  port: 9090
  cors_origins:
    - http://localhost:5173
    - https://weather.example.com
`)

	cfg, err := load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	if cfg.Cache.Path != "/var/lib/weather" || cfg.Cache.SweepInterval != 15*time.Minute {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Cache.Breaker.ConsecutiveFailures != 3 || cfg.Cache.Breaker.Timeout != 30*time.Second {
		t.Errorf("breaker = %+v", cfg.Cache.Breaker)
	}
	if cfg.Retry.MaxAttempts != 5 {
		t.Errorf("Retry.MaxAttempts = %d", cfg.Retry.MaxAttempts)
	}
	want := []string{"http://localhost:5173", "https://weather.example.com"}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
	if cfg.Provider.BaseURL != "https://archive-api.open-meteo.com" {
		t.Errorf("unset provider fields should keep defaults, got %q", cfg.Provider.BaseURL)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: 9090\ncache:\n  persistent: true\n")
	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("CACHE_PERSISTENT", "false")
	t.Setenv("RETRY_BASE_DELAY", "250ms")
	t.Setenv("WEATHER_API_KEY", "secret")
	t.Setenv("CORS_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("UNRELATED_SETTING", "ignored")

	cfg, err := load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Cache.Persistent {
		t.Error("CACHE_PERSISTENT=false should disable the persistent tier")
	}
	if cfg.Retry.BaseDelay != 250*time.Millisecond {
		t.Errorf("Retry.BaseDelay = %v", cfg.Retry.BaseDelay)
	}
	if cfg.Provider.APIKey != "secret" {
		t.Errorf("Provider.APIKey = %q", cfg.Provider.APIKey)
	}
	if want := []string{"http://a.example", "http://b.example"}; !reflect.DeepEqual(cfg.Server.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	path := writeConfigFile(t, "server: [unterminated")
	if _, err := load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	t.Setenv("RETRY_MAX_ATTEMPTS", "0")

	_, err := load("")
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %v", err)
	}
	if cfgErr.Field != "retry.max_attempts" {
		t.Errorf("Field = %q", cfgErr.Field)
	}
}

func TestFindConfigFile(t *testing.T) {
	path := writeConfigFile(t, "logging:\n  level: warn\n")
	t.Setenv(ConfigPathEnvVar, path)
	if got := findConfigFile(); got != path {
		t.Errorf("findConfigFile() = %q, want %q", got, path)
	}

	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Chdir(t.TempDir())
	if got := findConfigFile(); got != "" {
		t.Errorf("findConfigFile() = %q, want empty", got)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"LOG_LEVEL", "logging.level"},
		{"CACHE_PATH", "cache.path"},
		{"CACHE_BREAKER_FAILURES", "cache.breaker.consecutive_failures"},
		{"WEATHER_API_URL", "provider.base_url"},
		{"HTTP_PORT", "server.port"},
		{"SUPERVISOR_FAILURE_BACKOFF", "supervisor.failure_backoff"},
		{"PATH", ""},
		{"HOME", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.key); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
