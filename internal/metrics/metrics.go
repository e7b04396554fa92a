// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the historical-weather cache:
// - Cache tier hits, misses and write failures
// - Expiry sweeps
// - Cached-fetch orchestration (fallbacks, collapsed fetches)
// - Retry engine attempts
// - Circuit breaker around the persistent tier
// - BadgerDB operation latency
// - Upstream provider requests

var (
	// Cache Metrics
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_cache_lookups_total",
			Help: "Total number of cache lookups by kind, tier and result",
		},
		[]string{"kind", "tier", "result"}, // tier: "memory", "persistent"; result: "hit", "miss", "expired"
	)

	CacheWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_cache_writes_total",
			Help: "Total number of cache writes by kind and result",
		},
		[]string{"kind", "result"}, // "ok", "persistent_failed"
	)

	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "weather_cache_entries",
			Help: "Live cache entries by kind and tier at the last stats collection",
		},
		[]string{"kind", "tier"},
	)

	CacheEstimatedBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "weather_cache_estimated_bytes",
			Help: "Estimated cache size in bytes by kind and tier (persistent tier is a heuristic)",
		},
		[]string{"kind", "tier"},
	)

	// Sweep Metrics
	CacheSweepRemoved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_cache_sweep_removed_total",
			Help: "Total number of expired entries removed by sweeps",
		},
		[]string{"kind", "tier"},
	)

	CacheSweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "weather_cache_sweep_duration_seconds",
			Help:    "Duration of full expiry sweeps in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CacheSweepErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weather_cache_sweep_errors_total",
			Help: "Total number of failed expiry sweeps",
		},
	)

	// Orchestrator Metrics
	FetchFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_fetch_fallbacks_total",
			Help: "Total number of fetches that bypassed the cache",
		},
		[]string{"kind", "reason"}, // "uninitialized", "get_failed"
	)

	FetchSharedResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_fetch_shared_total",
			Help: "Total number of cache misses served by a concurrent in-flight fetch",
		},
		[]string{"kind"},
	)

	FetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_fetch_errors_total",
			Help: "Total number of fetch failures surfaced to callers by classified code",
		},
		[]string{"kind", "code"},
	)

	// Retry Metrics
	RetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_retry_attempts_total",
			Help: "Total number of retries scheduled by classified error code",
		},
		[]string{"code"},
	)

	RetryOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_retry_outcomes_total",
			Help: "Total number of retried operations by outcome",
		},
		[]string{"outcome"}, // "success", "exhausted", "permanent", "canceled"
	)

	RetryDelaySeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "weather_retry_delay_seconds",
			Help:    "Delay before each retry attempt in seconds",
			Buckets: []float64{0.5, 1, 2, 4, 8, 16, 33, 60},
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total requests through circuit breaker by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Persistent Store Metrics
	KVStoreOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kvstore_operation_duration_seconds",
			Help:    "Duration of BadgerDB cache operations in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
		[]string{"operation"},
	)

	KVStoreOpErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kvstore_operation_errors_total",
			Help: "Total number of failed BadgerDB cache operations",
		},
		[]string{"operation"},
	)

	KVStoreSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kvstore_size_bytes",
			Help: "BadgerDB LSM plus value log size in bytes",
		},
	)

	// Provider Metrics
	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weather_provider_request_duration_seconds",
			Help:    "Duration of upstream weather API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "status"},
	)

	// API Metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// RecordCacheLookup records a lookup result on one tier.
func RecordCacheLookup(kind, tier, result string) {
	CacheLookups.WithLabelValues(kind, tier, result).Inc()
}

// RecordCacheWrite records a cache write; a non-nil err means the persistent write failed.
func RecordCacheWrite(kind string, err error) {
	if err != nil {
		CacheWrites.WithLabelValues(kind, "persistent_failed").Inc()
		return
	}
	CacheWrites.WithLabelValues(kind, "ok").Inc()
}

// UpdateCacheSize publishes the entry counts and byte estimates of one kind.
func UpdateCacheSize(kind string, memoryEntries, persistentEntries int, memoryBytes, persistentBytes int64) {
	CacheEntries.WithLabelValues(kind, "memory").Set(float64(memoryEntries))
	CacheEntries.WithLabelValues(kind, "persistent").Set(float64(persistentEntries))
	CacheEstimatedBytes.WithLabelValues(kind, "memory").Set(float64(memoryBytes))
	CacheEstimatedBytes.WithLabelValues(kind, "persistent").Set(float64(persistentBytes))
}

// RecordSweep records the entries one sweep removed from each tier.
func RecordSweep(kind string, memoryRemoved, persistentRemoved int) {
	if memoryRemoved > 0 {
		CacheSweepRemoved.WithLabelValues(kind, "memory").Add(float64(memoryRemoved))
	}
	if persistentRemoved > 0 {
		CacheSweepRemoved.WithLabelValues(kind, "persistent").Add(float64(persistentRemoved))
	}
}

// RecordSweepRun records the duration and outcome of a full sweep.
func RecordSweepRun(duration time.Duration, err error) {
	CacheSweepDuration.Observe(duration.Seconds())
	if err != nil {
		CacheSweepErrors.Inc()
	}
}

// RecordFetchFallback records a fetch that bypassed the cache.
func RecordFetchFallback(kind, reason string) {
	FetchFallbacks.WithLabelValues(kind, reason).Inc()
}

// RecordFetchShared records a miss that was served by another caller's fetch.
func RecordFetchShared(kind string) {
	FetchSharedResults.WithLabelValues(kind).Inc()
}

// RecordFetchError records a fetch failure returned to the caller.
func RecordFetchError(kind, code string) {
	FetchErrors.WithLabelValues(kind, code).Inc()
}

// RecordRetry records a scheduled retry and its delay.
func RecordRetry(code string, delay time.Duration) {
	RetryAttempts.WithLabelValues(code).Inc()
	RetryDelaySeconds.Observe(delay.Seconds())
}

// RecordRetryOutcome records how a retried operation ended.
func RecordRetryOutcome(outcome string) {
	RetryOutcomes.WithLabelValues(outcome).Inc()
}

// RecordKVStoreOp records the latency and outcome of a persistent store operation.
func RecordKVStoreOp(operation string, duration time.Duration, err error) {
	KVStoreOpDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		KVStoreOpErrors.WithLabelValues(operation).Inc()
	}
}

// UpdateKVStoreSize publishes the on-disk size of the persistent store.
func UpdateKVStoreSize(bytes int64) {
	KVStoreSizeBytes.Set(float64(bytes))
}

// RecordProviderRequest records an upstream request. status is "error" on transport failure.
func RecordProviderRequest(endpoint, status string, duration time.Duration) {
	ProviderRequestDuration.WithLabelValues(endpoint, status).Observe(duration.Seconds())
}

// RecordAPIRequest records an API request.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}
