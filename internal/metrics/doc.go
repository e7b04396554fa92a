// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

/*
Package metrics provides Prometheus metrics for the historical-weather cache.

All collectors are registered on the default registry through promauto and
exposed by the API router at /metrics.

# Available Metrics

Cache Metrics:
  - weather_cache_lookups_total: Lookups (counter)
    Labels: kind (historical, analytics), tier (memory, persistent), result (hit, miss, expired)
  - weather_cache_writes_total: Writes (counter)
    Labels: kind, result (ok, persistent_failed)
  - weather_cache_entries: Live entries per tier (gauge)
  - weather_cache_estimated_bytes: Estimated size per tier (gauge)

Sweep Metrics:
  - weather_cache_sweep_removed_total: Expired entries removed (counter)
  - weather_cache_sweep_duration_seconds: Sweep latency (histogram)
  - weather_cache_sweep_errors_total: Failed sweeps (counter)

Fetch Metrics:
  - weather_fetch_fallbacks_total: Fetches that bypassed the cache (counter)
    Labels: kind, reason (uninitialized, get_failed)
  - weather_fetch_shared_total: Misses served by an in-flight fetch (counter)
  - weather_fetch_errors_total: Failures returned to callers (counter)
    Labels: kind, code

Retry Metrics:
  - weather_retry_attempts_total: Scheduled retries by error code (counter)
  - weather_retry_outcomes_total: Outcomes (counter)
    Labels: outcome (success, exhausted, permanent, canceled)
  - weather_retry_delay_seconds: Backoff delays (histogram)

Circuit Breaker Metrics:
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
  - circuit_breaker_requests_total: Requests by result (counter)
  - circuit_breaker_transitions_total: State transitions (counter)

Store, Provider and API Metrics:
  - kvstore_operation_duration_seconds, kvstore_operation_errors_total, kvstore_size_bytes
  - weather_provider_request_duration_seconds (endpoint, status)
  - api_request_duration_seconds (method, route, status)

# Usage

	metrics.RecordCacheLookup("historical", "memory", "hit")
	metrics.RecordRetry("SERVICE_UNAVAILABLE", 2*time.Second)

Route labels are chi route patterns, never raw paths.
*/
package metrics
