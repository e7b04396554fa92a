// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package main

import (
	"time"

	"github.com/kamaleshsk123/Weather-Dashboard/internal/api"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/cache"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/config"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/kvstore"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/logging"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/provider"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/retry"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/supervisor"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/weathercache"
)

func cacheOptions(cfg config.CacheConfig) weathercache.Options {
	opts := weathercache.DefaultOptions()
	opts.Persistent = cfg.Persistent

	store := kvstore.DefaultConfig()
	store.Path = cfg.Path
	store.InMemory = cfg.InMemory
	store.SyncWrites = cfg.SyncWrites
	store.Compression = cfg.Compression
	store.CloseTimeout = cfg.CloseTimeout
	opts.KVStore = store

	breaker := cache.DefaultBreakerConfig()
	breaker.ConsecutiveFailures = cfg.Breaker.ConsecutiveFailures
	breaker.MaxRequests = cfg.Breaker.MaxRequests
	breaker.Interval = cfg.Breaker.Interval
	breaker.Timeout = cfg.Breaker.Timeout
	opts.Breaker = breaker

	opts.MemoryShards = cfg.MemoryShards
	opts.SweepBatchSize = cfg.SweepBatchSize
	opts.PersistentEntryBytes = cfg.PersistentEntryBytes
	return opts
}

func retryPolicy(cfg config.RetryConfig) *retry.Policy {
	p := retry.DefaultPolicy()
	p.MaxAttempts = cfg.MaxAttempts
	p.BaseDelay = cfg.BaseDelay
	p.MaxDelay = cfg.MaxDelay
	p.JitterFraction = cfg.JitterFraction
	return p
}

func providerConfig(cfg config.ProviderConfig, policy *retry.Policy) provider.Config {
	pc := provider.DefaultConfig()
	pc.BaseURL = cfg.BaseURL
	pc.APIKey = cfg.APIKey
	pc.Timeout = cfg.Timeout
	pc.RatePerSecond = cfg.RatePerSecond
	pc.Burst = cfg.Burst
	pc.IncludeHourly = cfg.IncludeHourly
	pc.Retry = policy
	return pc
}

// fetchTimeout bounds a shared fetch: every attempt may time out and every
// wait between attempts may reach the capped, jittered delay.
func fetchTimeout(cfg *config.Config) time.Duration {
	attempts := time.Duration(cfg.Retry.MaxAttempts)
	maxWait := time.Duration(float64(cfg.Retry.MaxDelay) * (1 + cfg.Retry.JitterFraction))
	return attempts*cfg.Provider.Timeout + (attempts-1)*maxWait
}

func treeConfig(cfg config.SupervisorConfig) supervisor.TreeConfig {
	return supervisor.TreeConfig{
		FailureThreshold: cfg.FailureThreshold,
		FailureDecay:     cfg.FailureDecay,
		FailureBackoff:   cfg.FailureBackoff,
		ShutdownTimeout:  cfg.ShutdownTimeout,
	}
}

func middlewareConfig(cfg config.ServerConfig) *api.ChiMiddlewareConfig {
	mc := api.DefaultChiMiddlewareConfig()
	mc.CORSAllowedOrigins = cfg.CORSOrigins
	mc.RateLimitRequests = cfg.RateLimitPerMinute
	mc.RateLimitWindow = time.Minute
	mc.RateLimitDisabled = cfg.RateLimitPerMinute <= 0
	return mc
}

// cacheReady returns the init-service callback. It skips startSweeper when the
// manager is already gone, which happens if shutdown closed the provider first.
func cacheReady(source weathercache.ManagerSource, startSweeper func()) func() {
	return func() {
		m, ok := source.Current()
		if !ok {
			logging.Warn().Msg("Weather cache closed before ready callback, sweeper not started")
			return
		}
		logging.Info().Bool("persistent", m.Persistent()).Msg("Weather cache ready")
		startSweeper()
	}
}
