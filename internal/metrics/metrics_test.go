// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordCacheLookup(t *testing.T) {
	tests := []struct {
		kind, tier, result string
	}{
		{"historical", "memory", "hit"},
		{"historical", "persistent", "miss"},
		{"analytics", "persistent", "expired"},
	}

	for _, tt := range tests {
		t.Run(tt.kind+"/"+tt.tier+"/"+tt.result, func(t *testing.T) {
			counter := CacheLookups.WithLabelValues(tt.kind, tt.tier, tt.result)
			before := testutil.ToFloat64(counter)
			RecordCacheLookup(tt.kind, tt.tier, tt.result)
			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Errorf("expected +1, got %v", got)
			}
		})
	}
}

func TestRecordCacheWrite(t *testing.T) {
	ok := CacheWrites.WithLabelValues("test-kind", "ok")
	failed := CacheWrites.WithLabelValues("test-kind", "persistent_failed")

	RecordCacheWrite("test-kind", nil)
	RecordCacheWrite("test-kind", errors.New("badger down"))
	RecordCacheWrite("test-kind", nil)

	if got := testutil.ToFloat64(ok); got != 2 {
		t.Errorf("ok writes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(failed); got != 1 {
		t.Errorf("failed writes = %v, want 1", got)
	}
}

func TestUpdateCacheSize(t *testing.T) {
	UpdateCacheSize("size-kind", 3, 5, 300, 5120)

	tests := []struct {
		gauge prometheus.Gauge
		want  float64
	}{
		{CacheEntries.WithLabelValues("size-kind", "memory"), 3},
		{CacheEntries.WithLabelValues("size-kind", "persistent"), 5},
		{CacheEstimatedBytes.WithLabelValues("size-kind", "memory"), 300},
		{CacheEstimatedBytes.WithLabelValues("size-kind", "persistent"), 5120},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(tt.gauge); got != tt.want {
			t.Errorf("gauge = %v, want %v", got, tt.want)
		}
	}
}

func TestRecordSweep_SkipsZero(t *testing.T) {
	RecordSweep("sweep-kind", 4, 0)

	if got := testutil.ToFloat64(CacheSweepRemoved.WithLabelValues("sweep-kind", "memory")); got != 4 {
		t.Errorf("memory removed = %v, want 4", got)
	}

	// Zero removals do not create a series.
	before := testutil.CollectAndCount(CacheSweepRemoved)
	RecordSweep("sweep-kind-empty", 0, 0)
	if after := testutil.CollectAndCount(CacheSweepRemoved); after != before {
		t.Errorf("series count changed from %d to %d", before, after)
	}
}

func TestRecordSweepRun(t *testing.T) {
	before := testutil.ToFloat64(CacheSweepErrors)
	RecordSweepRun(10*time.Millisecond, nil)
	RecordSweepRun(20*time.Millisecond, errors.New("closed"))

	if got := testutil.ToFloat64(CacheSweepErrors) - before; got != 1 {
		t.Errorf("sweep errors = %v, want 1", got)
	}
}

func TestFetchMetrics(t *testing.T) {
	RecordFetchFallback("historical", "uninitialized")
	RecordFetchShared("historical")
	RecordFetchError("historical", "API_LIMIT")

	if testutil.ToFloat64(FetchFallbacks.WithLabelValues("historical", "uninitialized")) < 1 {
		t.Error("fallback not recorded")
	}
	if testutil.ToFloat64(FetchSharedResults.WithLabelValues("historical")) < 1 {
		t.Error("shared fetch not recorded")
	}
	if testutil.ToFloat64(FetchErrors.WithLabelValues("historical", "API_LIMIT")) < 1 {
		t.Error("fetch error not recorded")
	}
}

func TestRetryMetrics(t *testing.T) {
	counter := RetryAttempts.WithLabelValues("NETWORK_ERROR")
	before := testutil.ToFloat64(counter)

	RecordRetry("NETWORK_ERROR", time.Second)
	RecordRetry("NETWORK_ERROR", 2*time.Second)
	RecordRetryOutcome("exhausted")

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("retries = %v, want 2", got)
	}
	if testutil.ToFloat64(RetryOutcomes.WithLabelValues("exhausted")) < 1 {
		t.Error("outcome not recorded")
	}
}

func TestRecordKVStoreOp(t *testing.T) {
	errCounter := KVStoreOpErrors.WithLabelValues("test-op")
	RecordKVStoreOp("test-op", time.Millisecond, nil)
	RecordKVStoreOp("test-op", time.Millisecond, errors.New("txn too big"))

	if got := testutil.ToFloat64(errCounter); got != 1 {
		t.Errorf("kvstore errors = %v, want 1", got)
	}

	UpdateKVStoreSize(4096)
	if got := testutil.ToFloat64(KVStoreSizeBytes); got != 4096 {
		t.Errorf("kvstore size = %v, want 4096", got)
	}
}

func TestCircuitBreakerMetrics(t *testing.T) {
	name := "test-breaker"
	CircuitBreakerState.WithLabelValues(name).Set(2)
	CircuitBreakerTransitions.WithLabelValues(name, "closed", "open").Inc()
	CircuitBreakerRequests.WithLabelValues(name, "rejected").Inc()

	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues(name)); got != 2 {
		t.Errorf("state = %v, want 2", got)
	}
}

func TestMetricsRegistration(t *testing.T) {
	collectors := []prometheus.Collector{
		CacheLookups,
		CacheWrites,
		CacheEntries,
		CacheEstimatedBytes,
		CacheSweepRemoved,
		CacheSweepDuration,
		CacheSweepErrors,
		FetchFallbacks,
		FetchSharedResults,
		FetchErrors,
		RetryAttempts,
		RetryOutcomes,
		RetryDelaySeconds,
		CircuitBreakerState,
		CircuitBreakerRequests,
		CircuitBreakerTransitions,
		KVStoreOpDuration,
		KVStoreOpErrors,
		KVStoreSizeBytes,
		ProviderRequestDuration,
		APIRequestDuration,
	}

	for _, c := range collectors {
		ch := make(chan *prometheus.Desc, 10)
		c.Describe(ch)
		close(ch)

		count := 0
		for range ch {
			count++
		}
		if count == 0 {
			t.Errorf("collector %T has no descriptors", c)
		}
	}
}

func TestMetricGathering(t *testing.T) {
	RecordProviderRequest("archive", "200", 40*time.Millisecond)
	RecordAPIRequest("GET", "/api/v1/weather/historical", "200", time.Millisecond)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, p := range problems {
		t.Logf("lint: %s: %s", p.Metric, p.Text)
	}
}

func BenchmarkRecordCacheLookup(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordCacheLookup("historical", "memory", "hit")
	}
}

func BenchmarkRecordAPIRequest(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordAPIRequest("GET", "/api/v1/weather/historical", "200", 25*time.Millisecond)
	}
}
