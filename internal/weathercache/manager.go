// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package weathercache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kamaleshsk123/Weather-Dashboard/internal/cache"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/kvstore"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/logging"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/models"
)

const (
	// HistoricalTTL is the lifetime of a historical record.
	HistoricalTTL = 24 * time.Hour

	// AnalyticsTTL is the lifetime of an analytics result.
	AnalyticsTTL = 6 * time.Hour

	// TableHistorical and TableAnalytics name the persistent tables.
	TableHistorical = "historical"
	TableAnalytics  = "analytics"
)

// ErrClosed is returned by Manager operations after Close.
var ErrClosed = errors.New("weathercache: manager is closed")

// PersistentStore is the durable tier a Manager can run on.
// *kvstore.BadgerStore satisfies it.
type PersistentStore interface {
	cache.Backend
	RunGC() error
	Size() int64
	Close() error
}

// Options configures a Manager.
type Options struct {
	// Persistent enables the BadgerDB tier in Open.
	Persistent bool

	// KVStore configures BadgerDB when Persistent is set.
	KVStore kvstore.Config

	// Breaker configures the circuit breaker around the persistent tier.
	Breaker cache.BreakerConfig

	MemoryShards         int
	SweepBatchSize       int
	PersistentEntryBytes int64

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns memory-plus-disk options with default store settings.
func DefaultOptions() Options {
	return Options{
		Persistent:           true,
		KVStore:              kvstore.DefaultConfig(),
		Breaker:              cache.DefaultBreakerConfig(),
		MemoryShards:         cache.DefaultShards,
		SweepBatchSize:       cache.DefaultSweepBatchSize,
		PersistentEntryBytes: cache.DefaultPersistentEntryBytes,
	}
}

// Stats merges both stores with the manager counters.
type Stats struct {
	Historical cache.Stats `json:"historical"`
	Analytics  cache.Stats `json:"analytics"`

	// Count is the live entries across both kinds.
	Count int `json:"count"`

	Hits          int64   `json:"hits"`
	Misses        int64   `json:"misses"`
	Writes        int64   `json:"writes"`
	WriteFailures int64   `json:"write_failures"`
	HitRate       float64 `json:"hit_rate"`

	Persistent          bool   `json:"persistent"`
	BreakerState        string `json:"breaker_state,omitempty"`
	PersistentSizeBytes int64  `json:"persistent_size_bytes,omitempty"`
}

// SweepReport summarizes one ClearExpired run.
type SweepReport struct {
	Historical cache.SweepResult `json:"historical"`
	Analytics  cache.SweepResult `json:"analytics"`
	Duration   time.Duration     `json:"duration"`
}

// Removed returns the total entries removed from both tiers.
func (r SweepReport) Removed() int {
	return r.Historical.MemoryRemoved + r.Historical.PersistentRemoved +
		r.Analytics.MemoryRemoved + r.Analytics.PersistentRemoved
}

// Manager is the domain façade over the historical and analytics stores.
type Manager struct {
	historical *cache.Store[models.HistoricalWeather]
	analytics  *cache.Store[models.AnalyticsResult]

	store   PersistentStore
	breaker *cache.BreakerBackend

	hits, misses, writes, writeFailures atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// Open builds a Manager from opts. When the persistent tier is enabled but
// BadgerDB cannot be opened, it logs one warning and runs memory-only.
func Open(ctx context.Context, opts Options) (*Manager, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !opts.Persistent {
		logging.Info().Msg("Weather cache running memory-only (persistence disabled)")
		return NewManager(nil, opts), nil
	}

	store, err := kvstore.Open(opts.KVStore)
	if err != nil {
		logging.Warn().Err(err).Str("path", opts.KVStore.Path).
			Msg("Persistent cache unavailable, continuing memory-only")
		return NewManager(nil, opts), nil
	}
	return NewManager(store, opts), nil
}

// NewManager builds a Manager over store. A nil store means memory-only.
func NewManager(store PersistentStore, opts Options) *Manager {
	m := &Manager{store: store}

	var backend cache.Backend
	if store != nil {
		m.breaker = cache.NewBreakerBackend(store, opts.Breaker)
		backend = m.breaker
	}

	cfg := func(table string) cache.Config {
		return cache.Config{
			Table:                table,
			Shards:               opts.MemoryShards,
			SweepBatchSize:       opts.SweepBatchSize,
			PersistentEntryBytes: opts.PersistentEntryBytes,
			Now:                  opts.Now,
		}
	}
	m.historical = cache.New[models.HistoricalWeather](cfg(TableHistorical), backend)
	m.analytics = cache.New[models.AnalyticsResult](cfg(TableAnalytics), backend)
	return m
}

// Persistent reports whether the manager has a durable tier.
func (m *Manager) Persistent() bool {
	return m.store != nil
}

func (m *Manager) acquire() error {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return ErrClosed
	}
	return nil
}

func (m *Manager) release() {
	m.mu.RUnlock()
}

func (m *Manager) recordLookup(hit bool) {
	if hit {
		m.hits.Add(1)
	} else {
		m.misses.Add(1)
	}
}

func (m *Manager) recordWrite(err error) {
	m.writes.Add(1)
	if err != nil {
		m.writeFailures.Add(1)
	}
}

// GetHistorical returns the cached record for the coordinates and day.
func (m *Manager) GetHistorical(ctx context.Context, lat, lon float64, date time.Time) (models.HistoricalWeather, bool, error) {
	var zero models.HistoricalWeather
	key, err := HistoricalKey(lat, lon, date)
	if err != nil {
		return zero, false, err
	}
	if err := m.acquire(); err != nil {
		return zero, false, err
	}
	defer m.release()

	v, ok, err := m.historical.Get(ctx, key)
	if err != nil {
		return zero, false, err
	}
	m.recordLookup(ok)
	return v, ok, nil
}

// SetHistorical caches record for HistoricalTTL. A persistent write failure
// is returned; the record is still served from memory.
func (m *Manager) SetHistorical(ctx context.Context, lat, lon float64, date time.Time, record models.HistoricalWeather) error {
	key, err := HistoricalKey(lat, lon, date)
	if err != nil {
		return err
	}
	if err := m.acquire(); err != nil {
		return err
	}
	defer m.release()

	err = m.historical.Set(ctx, key, record, HistoricalTTL)
	m.recordWrite(err)
	return err
}

// RemoveHistorical drops the record for the coordinates and day.
func (m *Manager) RemoveHistorical(ctx context.Context, lat, lon float64, date time.Time) error {
	key, err := HistoricalKey(lat, lon, date)
	if err != nil {
		return err
	}
	if err := m.acquire(); err != nil {
		return err
	}
	defer m.release()
	return m.historical.Delete(ctx, key)
}

// GetAnalytics returns the cached analysis.
func (m *Manager) GetAnalytics(ctx context.Context, locationID string, kind models.AnalysisKind, r models.TimeRange) (models.AnalyticsResult, bool, error) {
	var zero models.AnalyticsResult
	key, err := AnalyticsKey(locationID, kind, r)
	if err != nil {
		return zero, false, err
	}
	if err := m.acquire(); err != nil {
		return zero, false, err
	}
	defer m.release()

	v, ok, err := m.analytics.Get(ctx, key)
	if err != nil {
		return zero, false, err
	}
	m.recordLookup(ok)
	return v, ok, nil
}

// SetAnalytics caches result for AnalyticsTTL.
func (m *Manager) SetAnalytics(ctx context.Context, locationID string, kind models.AnalysisKind, r models.TimeRange, result models.AnalyticsResult) error {
	key, err := AnalyticsKey(locationID, kind, r)
	if err != nil {
		return err
	}
	if err := m.acquire(); err != nil {
		return err
	}
	defer m.release()

	err = m.analytics.Set(ctx, key, result, AnalyticsTTL)
	m.recordWrite(err)
	return err
}

// RemoveAnalytics drops the cached analysis.
func (m *Manager) RemoveAnalytics(ctx context.Context, locationID string, kind models.AnalysisKind, r models.TimeRange) error {
	key, err := AnalyticsKey(locationID, kind, r)
	if err != nil {
		return err
	}
	if err := m.acquire(); err != nil {
		return err
	}
	defer m.release()
	return m.analytics.Delete(ctx, key)
}

// ClearExpired sweeps both stores. Both are attempted even if one fails.
func (m *Manager) ClearExpired(ctx context.Context) (SweepReport, error) {
	if err := m.acquire(); err != nil {
		return SweepReport{}, err
	}
	defer m.release()

	start := time.Now()
	var report SweepReport
	var herr, aerr error
	report.Historical, herr = m.historical.SweepExpired(ctx)
	report.Analytics, aerr = m.analytics.SweepExpired(ctx)
	report.Duration = time.Since(start)
	return report, errors.Join(herr, aerr)
}

// ClearAll empties both stores and resets the counters.
func (m *Manager) ClearAll(ctx context.Context) error {
	if err := m.acquire(); err != nil {
		return err
	}
	defer m.release()

	err := errors.Join(m.historical.Clear(ctx), m.analytics.Clear(ctx))
	m.hits.Store(0)
	m.misses.Store(0)
	m.writes.Store(0)
	m.writeFailures.Store(0)
	return err
}

// Stats reports both stores, the counters and the persistence mode.
func (m *Manager) Stats(ctx context.Context) (Stats, error) {
	if err := m.acquire(); err != nil {
		return Stats{}, err
	}
	defer m.release()

	hs, err := m.historical.Stats(ctx)
	if err != nil {
		return Stats{}, err
	}
	as, err := m.analytics.Stats(ctx)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{
		Historical:    hs,
		Analytics:     as,
		Count:         hs.Count + as.Count,
		Hits:          m.hits.Load(),
		Misses:        m.misses.Load(),
		Writes:        m.writes.Load(),
		WriteFailures: m.writeFailures.Load(),
		Persistent:    m.Persistent(),
	}
	if total := st.Hits + st.Misses; total > 0 {
		st.HitRate = float64(st.Hits) / float64(total) * 100
	}
	if m.breaker != nil {
		st.BreakerState = m.breaker.State().String()
	}
	if m.store != nil {
		st.PersistentSizeBytes = m.store.Size()
	}
	return st, nil
}

// RunGC reclaims persistent space. It is a no-op when memory-only.
func (m *Manager) RunGC() error {
	if err := m.acquire(); err != nil {
		return err
	}
	defer m.release()
	if m.store == nil {
		return nil
	}
	return m.store.RunGC()
}

// Close releases the persistent tier. It waits for in-flight operations and
// is safe to call more than once.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	if m.store == nil {
		return nil
	}
	if err := m.store.Close(); err != nil {
		return fmt.Errorf("close persistent cache: %w", err)
	}
	return nil
}
