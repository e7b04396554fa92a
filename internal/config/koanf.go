// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/weather-dashboard/config.yaml",
	"/etc/weather-dashboard/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Cache: CacheConfig{
			Persistent:           true,
			Path:                 "/data/weather-cache",
			Compression:          true,
			SweepInterval:        time.Hour,
			SweepBatchSize:       500,
			PersistentEntryBytes: 1024,
			MemoryShards:         16,
			CloseTimeout:         30 * time.Second,
			Breaker: BreakerConfig{
				ConsecutiveFailures: 5,
				MaxRequests:         1,
				Interval:            time.Minute,
				Timeout:             30 * time.Second,
			},
		},
		Retry: RetryConfig{
			MaxAttempts:    3,
			BaseDelay:      time.Second,
			MaxDelay:       30 * time.Second,
			JitterFraction: 0.1,
		},
		Provider: ProviderConfig{
			BaseURL:       "https://archive-api.open-meteo.com",
			Timeout:       30 * time.Second,
			RatePerSecond: 5,
			Burst:         10,
			IncludeHourly: true,
		},
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               8080,
			ReadTimeout:        15 * time.Second,
			WriteTimeout:       2 * time.Minute,
			ShutdownTimeout:    10 * time.Second,
			CORSOrigins:        []string{"*"},
			RateLimitPerMinute: 120,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5.0,
			FailureDecay:     30.0,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// Load returns the layered, validated configuration.
func Load() (*Config, error) {
	return load(findConfigFile())
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when set by env.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names to koanf paths.
var envMappings = map[string]string{
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"cache_persistent":             "cache.persistent",
	"cache_path":                   "cache.path",
	"cache_in_memory":              "cache.in_memory",
	"cache_sync_writes":            "cache.sync_writes",
	"cache_compression":            "cache.compression",
	"cache_sweep_interval":         "cache.sweep_interval",
	"cache_sweep_batch_size":       "cache.sweep_batch_size",
	"cache_persistent_entry_bytes": "cache.persistent_entry_bytes",
	"cache_memory_shards":          "cache.memory_shards",
	"cache_close_timeout":          "cache.close_timeout",
	"cache_breaker_failures":       "cache.breaker.consecutive_failures",
	"cache_breaker_max_requests":   "cache.breaker.max_requests",
	"cache_breaker_interval":       "cache.breaker.interval",
	"cache_breaker_timeout":        "cache.breaker.timeout",

	"retry_max_attempts":    "retry.max_attempts",
	"retry_base_delay":      "retry.base_delay",
	"retry_max_delay":       "retry.max_delay",
	"retry_jitter_fraction": "retry.jitter_fraction",

	"weather_api_url":            "provider.base_url",
	"weather_api_key":            "provider.api_key",
	"weather_api_timeout":        "provider.timeout",
	"weather_api_rate_limit":     "provider.rate_per_second",
	"weather_api_burst":          "provider.burst",
	"weather_api_include_hourly": "provider.include_hourly",

	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"cors_origins":          "server.cors_origins",
	"rate_limit_per_minute": "server.rate_limit_per_minute",

	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
}

// envTransformFunc maps an environment variable to its koanf path. Unmapped
// variables return "" and are skipped.
//
// Examples:
//   - CACHE_PATH -> cache.path
//   - WEATHER_API_KEY -> provider.api_key
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
