// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package config

import (
	"time"
)

// Config holds all server configuration. It is immutable after Load and safe
// for concurrent reads.
type Config struct {
	Logging    LoggingConfig    `koanf:"logging"`
	Cache      CacheConfig      `koanf:"cache"`
	Retry      RetryConfig      `koanf:"retry"`
	Provider   ProviderConfig   `koanf:"provider"`
	Server     ServerConfig     `koanf:"server"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// CacheConfig holds the two-tier cache settings.
//
// Environment Variables:
//   - CACHE_PERSISTENT: enable the BadgerDB tier (default: true)
//   - CACHE_PATH: BadgerDB directory (default: /data/weather-cache)
//   - CACHE_SWEEP_INTERVAL: time between expiry sweeps (default: 1h)
type CacheConfig struct {
	Persistent bool   `koanf:"persistent"`
	Path       string `koanf:"path"`

	// InMemory runs Badger without disk, for tests and ephemeral deployments.
	InMemory    bool `koanf:"in_memory"`
	SyncWrites  bool `koanf:"sync_writes"`
	Compression bool `koanf:"compression"`

	SweepInterval        time.Duration `koanf:"sweep_interval"`
	SweepBatchSize       int           `koanf:"sweep_batch_size"`
	PersistentEntryBytes int64         `koanf:"persistent_entry_bytes"`
	MemoryShards         int           `koanf:"memory_shards"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig holds circuit breaker settings for the persistent tier.
type BreakerConfig struct {
	// ConsecutiveFailures trips the breaker. Default: 5
	ConsecutiveFailures uint32 `koanf:"consecutive_failures"`

	// MaxRequests allowed through while half-open. Default: 1
	MaxRequests uint32 `koanf:"max_requests"`

	// Interval clears closed-state counts. Default: 1m
	Interval time.Duration `koanf:"interval"`

	// Timeout is how long the breaker stays open. Default: 30s
	Timeout time.Duration `koanf:"timeout"`
}

// RetryConfig holds the backoff policy for upstream calls.
type RetryConfig struct {
	MaxAttempts    int           `koanf:"max_attempts"`
	BaseDelay      time.Duration `koanf:"base_delay"`
	MaxDelay       time.Duration `koanf:"max_delay"`
	JitterFraction float64       `koanf:"jitter_fraction"`
}

// ProviderConfig holds the historical weather archive settings.
type ProviderConfig struct {
	BaseURL       string        `koanf:"base_url"`
	APIKey        string        `koanf:"api_key"`
	Timeout       time.Duration `koanf:"timeout"`
	RatePerSecond float64       `koanf:"rate_per_second"`
	Burst         int           `koanf:"burst"`
	IncludeHourly bool          `koanf:"include_hourly"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`

	// RateLimitPerMinute limits weather reads per client IP. 0 disables it.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute"`
}

// SupervisorConfig holds suture supervisor settings.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}
