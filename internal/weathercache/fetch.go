// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package weathercache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kamaleshsk123/Weather-Dashboard/internal/logging"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/metrics"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/models"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/weathererr"
)

// DefaultFetchTimeout bounds a shared upstream fetch.
const DefaultFetchTimeout = 2 * time.Minute

// FetchFunc produces a value on a cache miss.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Fetcher implements cache-aside reads over a ManagerSource.
// Concurrent misses for one key share a single fetch, which is cancelled once
// every waiting caller has gone.
type Fetcher struct {
	source  ManagerSource
	group   singleflight.Group
	timeout time.Duration

	mu      sync.Mutex
	flights map[string]*flight
}

// flight is the shared context of one singleflight key.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// NewFetcher returns a Fetcher reading through source.
func NewFetcher(source ManagerSource) *Fetcher {
	return &Fetcher{
		source:  source,
		timeout: DefaultFetchTimeout,
		flights: make(map[string]*flight),
	}
}

// join registers a waiter on key, creating the shared context if needed.
func (f *Fetcher) join(ctx context.Context, key string) *flight {
	f.mu.Lock()
	defer f.mu.Unlock()

	fl, ok := f.flights[key]
	if !ok {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
		fl = &flight{ctx: fctx, cancel: cancel}
		f.flights[key] = fl
	}
	fl.waiters++
	return fl
}

// leave drops a waiter. The last one out cancels the fetch and forgets the
// key so a later caller starts fresh.
func (f *Fetcher) leave(key string, fl *flight) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fl.waiters--
	if fl.waiters > 0 {
		return
	}
	fl.cancel()
	if f.flights[key] == fl {
		delete(f.flights, key)
		f.group.Forget(key)
	}
}

// SetFetchTimeout changes the bound on a shared fetch.
func (f *Fetcher) SetFetchTimeout(d time.Duration) {
	if d > 0 {
		f.timeout = d
	}
}

// FetchHistorical returns the cached record or fetches and caches it.
func (f *Fetcher) FetchHistorical(ctx context.Context, lat, lon float64, date time.Time, fetch FetchFunc[models.HistoricalWeather]) (models.HistoricalWeather, error) {
	return fetchWithCache(ctx, f, cachedKind[models.HistoricalWeather]{
		name: TableHistorical,
		key:  func() (string, error) { return HistoricalKey(lat, lon, date) },
		get: func(ctx context.Context, m *Manager) (models.HistoricalWeather, bool, error) {
			return m.GetHistorical(ctx, lat, lon, date)
		},
		set: func(ctx context.Context, m *Manager, v models.HistoricalWeather) error {
			return m.SetHistorical(ctx, lat, lon, date, v)
		},
	}, fetch)
}

// FetchAnalytics returns the cached analysis or computes and caches it.
func (f *Fetcher) FetchAnalytics(ctx context.Context, locationID string, kind models.AnalysisKind, r models.TimeRange, compute FetchFunc[models.AnalyticsResult]) (models.AnalyticsResult, error) {
	return fetchWithCache(ctx, f, cachedKind[models.AnalyticsResult]{
		name: TableAnalytics,
		key:  func() (string, error) { return AnalyticsKey(locationID, kind, r) },
		get: func(ctx context.Context, m *Manager) (models.AnalyticsResult, bool, error) {
			return m.GetAnalytics(ctx, locationID, kind, r)
		},
		set: func(ctx context.Context, m *Manager, v models.AnalyticsResult) error {
			return m.SetAnalytics(ctx, locationID, kind, r, v)
		},
	}, compute)
}

type cachedKind[T any] struct {
	name string
	key  func() (string, error)
	get  func(ctx context.Context, m *Manager) (T, bool, error)
	set  func(ctx context.Context, m *Manager, v T) error
}

func fetchWithCache[T any](ctx context.Context, f *Fetcher, k cachedKind[T], fetch FetchFunc[T]) (T, error) {
	var zero T
	key, err := k.key()
	if err != nil {
		return zero, err
	}

	m, ok := f.source.Current()
	if !ok {
		metrics.RecordFetchFallback(k.name, "uninitialized")
		return fetchDirect(ctx, k.name, fetch)
	}

	v, hit, err := k.get(ctx, m)
	switch {
	case err != nil:
		logging.Ctx(ctx).Warn().Err(err).Str("kind", k.name).Str("key", key).
			Msg("Cache read failed, fetching directly")
		metrics.RecordFetchFallback(k.name, "get_failed")
		return fetchDirect(ctx, k.name, fetch)
	case hit:
		return v, nil
	}

	flightKey := k.name + ":" + key
	fl := f.join(ctx, flightKey)
	defer f.leave(flightKey, fl)

	ch := f.group.DoChan(flightKey, func() (interface{}, error) {
		v, err := fetch(fl.ctx)
		if err != nil {
			return nil, err
		}
		// The write completes even if every caller has left.
		if serr := k.set(context.WithoutCancel(fl.ctx), m, v); serr != nil {
			logging.Ctx(ctx).Warn().Err(serr).Str("kind", k.name).Str("key", key).
				Msg("Failed to cache fetched value")
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Shared {
			metrics.RecordFetchShared(k.name)
		}
		if res.Err != nil {
			return zero, classifyFetchError(k.name, res.Err)
		}
		v, _ := res.Val.(T)
		return v, nil
	}
}

func fetchDirect[T any](ctx context.Context, kind string, fetch FetchFunc[T]) (T, error) {
	v, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, classifyFetchError(kind, err)
	}
	return v, nil
}

func classifyFetchError(kind string, err error) error {
	classified := weathererr.Classify(err, 0)
	metrics.RecordFetchError(kind, string(classified.Code))
	return classified
}
