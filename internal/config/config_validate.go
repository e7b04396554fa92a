// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package config

import (
	"fmt"
	"net/url"
	"time"
)

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s %s", e.Field, e.Message)
}

func fieldError(field, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Field: field, Message: fmt.Sprintf(format, args...)}
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks every section and returns the first *ConfigError.
func (c *Config) Validate() error {
	for _, validate := range []func() error{
		c.validateLogging,
		c.validateCache,
		c.validateRetry,
		c.validateProvider,
		c.validateServer,
		c.validateSupervisor,
	} {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fieldError("logging.level", "must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fieldError("logging.format", "must be one of: json, console")
	}
	return nil
}

func (c *Config) validateCache() error {
	cc := c.Cache
	if cc.Persistent && !cc.InMemory && cc.Path == "" {
		return fieldError("cache.path", "is required when the persistent tier is enabled")
	}
	if cc.SweepInterval < time.Second {
		return fieldError("cache.sweep_interval", "must be at least 1s, got %s", cc.SweepInterval)
	}
	if cc.SweepBatchSize < 1 {
		return fieldError("cache.sweep_batch_size", "must be positive, got %d", cc.SweepBatchSize)
	}
	if cc.PersistentEntryBytes < 1 {
		return fieldError("cache.persistent_entry_bytes", "must be positive, got %d", cc.PersistentEntryBytes)
	}
	if cc.MemoryShards < 1 || cc.MemoryShards > 1024 {
		return fieldError("cache.memory_shards", "must be between 1 and 1024, got %d", cc.MemoryShards)
	}
	if cc.CloseTimeout <= 0 {
		return fieldError("cache.close_timeout", "must be positive")
	}
	if cc.Breaker.ConsecutiveFailures < 1 {
		return fieldError("cache.breaker.consecutive_failures", "must be at least 1")
	}
	if cc.Breaker.MaxRequests < 1 {
		return fieldError("cache.breaker.max_requests", "must be at least 1")
	}
	if cc.Breaker.Timeout <= 0 {
		return fieldError("cache.breaker.timeout", "must be positive")
	}
	return nil
}

func (c *Config) validateRetry() error {
	r := c.Retry
	if r.MaxAttempts < 1 || r.MaxAttempts > 10 {
		return fieldError("retry.max_attempts", "must be between 1 and 10, got %d", r.MaxAttempts)
	}
	if r.BaseDelay <= 0 {
		return fieldError("retry.base_delay", "must be positive")
	}
	if r.MaxDelay < r.BaseDelay {
		return fieldError("retry.max_delay", "must be at least retry.base_delay (%s)", r.BaseDelay)
	}
	if r.JitterFraction < 0 || r.JitterFraction > 1 {
		return fieldError("retry.jitter_fraction", "must be between 0 and 1, got %g", r.JitterFraction)
	}
	return nil
}

func (c *Config) validateProvider() error {
	p := c.Provider
	u, err := url.Parse(p.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fieldError("provider.base_url", "must be an absolute http(s) URL, got %q", p.BaseURL)
	}
	if p.Timeout <= 0 {
		return fieldError("provider.timeout", "must be positive")
	}
	if p.RatePerSecond < 0 {
		return fieldError("provider.rate_per_second", "must not be negative")
	}
	if p.RatePerSecond > 0 && p.Burst < 1 {
		return fieldError("provider.burst", "must be at least 1 when rate limiting is enabled")
	}
	return nil
}

func (c *Config) validateServer() error {
	s := c.Server
	if s.Port < 1 || s.Port > 65535 {
		return fieldError("server.port", "must be between 1 and 65535, got %d", s.Port)
	}
	if s.ShutdownTimeout <= 0 {
		return fieldError("server.shutdown_timeout", "must be positive")
	}
	if s.RateLimitPerMinute < 0 {
		return fieldError("server.rate_limit_per_minute", "must not be negative")
	}
	return nil
}

func (c *Config) validateSupervisor() error {
	s := c.Supervisor
	if s.FailureThreshold <= 0 {
		return fieldError("supervisor.failure_threshold", "must be positive")
	}
	if s.FailureBackoff <= 0 {
		return fieldError("supervisor.failure_backoff", "must be positive")
	}
	if s.ShutdownTimeout <= 0 {
		return fieldError("supervisor.shutdown_timeout", "must be positive")
	}
	return nil
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
