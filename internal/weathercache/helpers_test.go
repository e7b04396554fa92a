// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package weathercache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kamaleshsk123/Weather-Dashboard/internal/kvstore"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/models"
)

var errStoreDown = errors.New("store down")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// failingStore is a PersistentStore whose reads and writes can be made to fail.
type failingStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	failGet  bool
	failPut  bool
	gcRuns   atomic.Int32
	closes   atomic.Int32
	putCalls atomic.Int32
}

func newFailingStore() *failingStore {
	return &failingStore{data: make(map[string][]byte)}
}

func (s *failingStore) Get(_ context.Context, table, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet {
		return nil, false, errStoreDown
	}
	v, ok := s.data[table+"/"+key]
	return v, ok, nil
}

func (s *failingStore) Put(_ context.Context, table, key string, value []byte, _ time.Time) error {
	s.putCalls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut {
		return errStoreDown
	}
	s.data[table+"/"+key] = value
	return nil
}

func (s *failingStore) Delete(_ context.Context, table, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, table+"/"+key)
	return nil
}

func (s *failingStore) DeleteExpired(context.Context, string, time.Time, int) (int, error) {
	return 0, nil
}

func (s *failingStore) Clear(context.Context, string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string][]byte)
	return nil
}

func (s *failingStore) Count(context.Context, string, time.Time) (int, error) {
	return 0, nil
}

func (s *failingStore) RunGC() error {
	s.gcRuns.Add(1)
	return nil
}

func (s *failingStore) Size() int64 { return 0 }

func (s *failingStore) Close() error {
	s.closes.Add(1)
	return nil
}

// testOptions returns memory-only options on clock.
func testOptions(clock *fakeClock) Options {
	opts := DefaultOptions()
	opts.Persistent = false
	opts.Now = clock.Now
	return opts
}

func newBadgerManager(t *testing.T, clock *fakeClock) *Manager {
	t.Helper()
	store, err := kvstore.Open(kvstore.InMemoryConfig())
	if err != nil {
		t.Fatalf("open kvstore: %v", err)
	}
	m := NewManager(store, testOptions(clock))
	t.Cleanup(func() { _ = m.Close() })
	return m
}

// readyProvider returns a Provider that has already initialized m.
func readyProvider(t *testing.T, m *Manager) *Provider {
	t.Helper()
	p := NewProvider(func(context.Context) (*Manager, error) { return m, nil })
	if _, err := p.Get(context.Background()); err != nil {
		t.Fatal(err)
	}
	return p
}

var london = struct{ lat, lon float64 }{51.5074, -0.1278}

func testDay() time.Time {
	return time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
}

func sampleRecord() models.HistoricalWeather {
	tmax, tmin, rain := 9.4, 3.1, 2.5
	code := 61
	return models.HistoricalWeather{
		Latitude:  london.lat,
		Longitude: london.lon,
		Timezone:  "GMT",
		Date:      "2024-01-15",
		Daily: models.DailyObservation{
			WeatherCode:      &code,
			TemperatureMax:   &tmax,
			TemperatureMin:   &tmin,
			PrecipitationSum: &rain,
			Sunrise:          "2024-01-15T08:00",
			Sunset:           "2024-01-15T16:21",
		},
		Units:     map[string]string{"temperature_max": "°C"},
		Source:    "open-meteo",
		FetchedAt: time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
	}
}
