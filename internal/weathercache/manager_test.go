// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package weathercache

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/kamaleshsk123/Weather-Dashboard/internal/kvstore"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/models"
)

func TestManager_HistoricalRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		manager func(t *testing.T, clock *fakeClock) *Manager
	}{
		{"memory only", func(_ *testing.T, clock *fakeClock) *Manager { return NewManager(nil, testOptions(clock)) }},
		{"badger", newBadgerManager},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			m := tt.manager(t, newFakeClock())
			want := sampleRecord()

			if err := m.SetHistorical(ctx, london.lat, london.lon, testDay(), want); err != nil {
				t.Fatal(err)
			}
			got, ok, err := m.GetHistorical(ctx, london.lat, london.lon, testDay())
			if err != nil || !ok {
				t.Fatalf("GetHistorical = %v, %v", ok, err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
			}

			// Nearby coordinates share the key.
			if _, ok, _ := m.GetHistorical(ctx, london.lat+0.00003, london.lon-0.00002, testDay().Add(12*time.Hour)); !ok {
				t.Error("coordinates within rounding should hit")
			}

			if err := m.RemoveHistorical(ctx, london.lat, london.lon, testDay()); err != nil {
				t.Fatal(err)
			}
			if _, ok, _ := m.GetHistorical(ctx, london.lat, london.lon, testDay()); ok {
				t.Error("removed record served")
			}
		})
	}
}

func TestManager_PersistentRoundTripAcrossRestart(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	opts := testOptions(clock)
	opts.Persistent = true
	opts.KVStore = kvstore.DefaultConfig()
	opts.KVStore.Path = t.TempDir()

	m, err := Open(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !m.Persistent() {
		t.Fatal("expected persistent manager")
	}
	want := sampleRecord()
	if err := m.SetHistorical(ctx, london.lat, london.lon, testDay(), want); err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}

	m, err = Open(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	got, ok, err := m.GetHistorical(ctx, london.lat, london.lon, testDay())
	if err != nil || !ok {
		t.Fatalf("record lost across restart: %v, %v", ok, err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestManager_OpenFallsBackToMemory(t *testing.T) {
	opts := testOptions(newFakeClock())
	opts.Persistent = true
	opts.KVStore = kvstore.DefaultConfig()
	opts.KVStore.Path = ""

	m, err := Open(context.Background(), opts)
	if err != nil {
		t.Fatalf("open should not fail: %v", err)
	}
	defer m.Close()
	if m.Persistent() {
		t.Error("expected memory-only fallback")
	}
	if err := m.SetHistorical(context.Background(), 1, 2, testDay(), sampleRecord()); err != nil {
		t.Errorf("memory-only set failed: %v", err)
	}
}

func TestManager_ExpiredNeverServed(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	m := newBadgerManager(t, clock)

	if err := m.SetHistorical(ctx, 1, 2, testDay(), sampleRecord()); err != nil {
		t.Fatal(err)
	}
	result := models.AnalyticsResult{LocationID: "home", Kind: models.AnalysisTrends, Range: models.Range7Days}
	if err := m.SetAnalytics(ctx, "home", models.AnalysisTrends, models.Range7Days, result); err != nil {
		t.Fatal(err)
	}

	clock.Advance(AnalyticsTTL)
	if _, ok, _ := m.GetAnalytics(ctx, "home", models.AnalysisTrends, models.Range7Days); ok {
		t.Error("analytics served at its expiry")
	}
	if _, ok, _ := m.GetHistorical(ctx, 1, 2, testDay()); !ok {
		t.Error("historical should outlive analytics")
	}

	clock.Advance(HistoricalTTL)
	report, err := m.ClearExpired(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if report.Historical.MemoryRemoved != 1 || report.Historical.PersistentRemoved != 1 {
		t.Errorf("historical sweep = %+v", report.Historical)
	}
	if _, ok, _ := m.GetHistorical(ctx, 1, 2, testDay()); ok {
		t.Error("expired historical record served")
	}

	st, err := m.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Historical.Count != 0 || st.Analytics.Count != 0 {
		t.Errorf("stats after sweep = %+v", st)
	}
}

func TestManager_ClearAllIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := newBadgerManager(t, newFakeClock())

	_ = m.SetHistorical(ctx, 1, 2, testDay(), sampleRecord())
	_, _, _ = m.GetHistorical(ctx, 1, 2, testDay())
	_, _, _ = m.GetHistorical(ctx, 3, 4, testDay())

	st, err := m.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Hits != 1 || st.Misses != 1 || st.Writes != 1 || st.HitRate != 50 {
		t.Errorf("counters before clear = %+v", st)
	}
	if st.Count != st.Historical.Count+st.Analytics.Count || st.Count != 1 {
		t.Errorf("merged count = %d, historical %d analytics %d", st.Count, st.Historical.Count, st.Analytics.Count)
	}
	if !st.Persistent || st.BreakerState != "closed" {
		t.Errorf("persistence fields = %v %q", st.Persistent, st.BreakerState)
	}

	for i := 0; i < 2; i++ {
		if err := m.ClearAll(ctx); err != nil {
			t.Fatal(err)
		}
		st, err := m.Stats(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if st.Count != 0 || st.Historical.Count != 0 || st.Analytics.Count != 0 {
			t.Errorf("clear #%d left entries: %+v", i+1, st)
		}
		if st.Hits != 0 || st.Misses != 0 || st.Writes != 0 || st.WriteFailures != 0 {
			t.Errorf("clear #%d left counters: %+v", i+1, st)
		}
	}
}

func TestManager_SetFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	store := newFailingStore()
	store.failPut = true
	m := NewManager(store, testOptions(newFakeClock()))

	if err := m.SetHistorical(ctx, 1, 2, testDay(), sampleRecord()); !errors.Is(err, errStoreDown) {
		t.Fatalf("SetHistorical = %v, want store error", err)
	}
	if _, ok, err := m.GetHistorical(ctx, 1, 2, testDay()); !ok || err != nil {
		t.Errorf("memory should serve the value: %v, %v", ok, err)
	}

	st, _ := m.Stats(ctx)
	if st.WriteFailures != 1 {
		t.Errorf("write failures = %d", st.WriteFailures)
	}
}

func TestManager_InvalidInputs(t *testing.T) {
	ctx := context.Background()
	m := NewManager(nil, testOptions(newFakeClock()))

	if _, _, err := m.GetHistorical(ctx, 95, 0, testDay()); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("GetHistorical(95) = %v", err)
	}
	if err := m.SetAnalytics(ctx, "", models.AnalysisTrends, models.Range7Days, models.AnalyticsResult{}); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("SetAnalytics(empty location) = %v", err)
	}
}

func TestManager_Close(t *testing.T) {
	ctx := context.Background()
	store := newFailingStore()
	m := NewManager(store, testOptions(newFakeClock()))

	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second Close = %v", err)
	}
	if n := store.closes.Load(); n != 1 {
		t.Errorf("store closed %d times, want 1", n)
	}

	if _, _, err := m.GetHistorical(ctx, 1, 2, testDay()); !errors.Is(err, ErrClosed) {
		t.Errorf("GetHistorical after Close = %v", err)
	}
	if err := m.SetHistorical(ctx, 1, 2, testDay(), sampleRecord()); !errors.Is(err, ErrClosed) {
		t.Errorf("SetHistorical after Close = %v", err)
	}
	if _, err := m.ClearExpired(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("ClearExpired after Close = %v", err)
	}
	if _, err := m.Stats(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("Stats after Close = %v", err)
	}
}
