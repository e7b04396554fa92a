// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestStore_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		backend func() Backend
	}{
		{"memory only", func() Backend { return nil }},
		{"with backend", func() Backend { return newMapBackend() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			clock := newFakeClock()
			s := newTestStore(clock, tt.backend())

			want := testPayload{Name: "london", Value: 12.5}
			if err := s.Set(ctx, "k", want, time.Hour); err != nil {
				t.Fatalf("Set: %v", err)
			}
			got, ok, err := s.Get(ctx, "k")
			if err != nil || !ok {
				t.Fatalf("Get = %v, %v, %v", got, ok, err)
			}
			if got != want {
				t.Errorf("Get = %+v, want %+v", got, want)
			}

			e, _, _ := s.GetEntry(ctx, "k")
			if !e.ExpiresAt.Equal(clock.Now().Add(time.Hour)) || !e.CreatedAt.Equal(clock.Now()) {
				t.Errorf("unexpected lifetime %v..%v", e.CreatedAt, e.ExpiresAt)
			}
		})
	}
}

func TestStore_SetRejectsNonPositiveTTL(t *testing.T) {
	s := newTestStore(newFakeClock(), nil)
	for _, ttl := range []time.Duration{0, -time.Second} {
		if err := s.Set(context.Background(), "k", testPayload{}, ttl); !errors.Is(err, ErrInvalidTTL) {
			t.Errorf("Set(ttl=%v) = %v, want ErrInvalidTTL", ttl, err)
		}
	}
	if _, ok, _ := s.Get(context.Background(), "k"); ok {
		t.Error("rejected Set must not store anything")
	}
}

func TestStore_ExpiredNeverServed(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	backend := newMapBackend()
	s := newTestStore(clock, backend)

	if err := s.Set(ctx, "k", testPayload{Name: "x"}, time.Minute); err != nil {
		t.Fatal(err)
	}

	clock.Advance(time.Minute)
	if _, ok, err := s.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("expired entry served: ok=%v err=%v", ok, err)
	}

	// Lazy removal from both tiers.
	if _, ok := s.mem.Get("k"); ok {
		t.Error("expired entry should be removed from memory")
	}
	if _, ok := backend.raw("test", "k"); ok {
		t.Error("expired entry should be removed from the backend")
	}
}

func TestStore_PersistentHitPromotesToMemory(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	backend := newMapBackend()

	writer := newTestStore(clock, backend)
	if err := writer.Set(ctx, "k", testPayload{Name: "durable"}, time.Hour); err != nil {
		t.Fatal(err)
	}

	// A second store over the same backend models a process restart.
	reader := newTestStore(clock, backend)
	got, ok, err := reader.Get(ctx, "k")
	if err != nil || !ok || got.Name != "durable" {
		t.Fatalf("Get = %+v, %v, %v", got, ok, err)
	}
	if _, ok := reader.mem.Get("k"); !ok {
		t.Error("durable hit should be promoted into memory")
	}
}

func TestStore_CorruptPersistentEntryIsDropped(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	backend := newMapBackend()
	backend.putRaw("test", "k", []byte("{not json"), clock.Now().Add(time.Hour))

	s := newTestStore(clock, backend)
	if _, ok, err := s.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("corrupt entry: ok=%v err=%v", ok, err)
	}
	if _, ok := backend.raw("test", "k"); ok {
		t.Error("corrupt entry should be deleted")
	}
}

func TestStore_ExpiredPersistentEntryIsDropped(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	backend := newMapBackend()

	e := Entry[testPayload]{ID: "k", CreatedAt: clock.Now().Add(-2 * time.Hour), ExpiresAt: clock.Now().Add(-time.Hour)}
	raw, err := json.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}
	backend.putRaw("test", "k", raw, e.ExpiresAt)

	s := newTestStore(clock, backend)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatal("expired durable entry served")
	}
	if _, ok := backend.raw("test", "k"); ok {
		t.Error("expired durable entry should be deleted")
	}
}

func TestStore_PersistentWriteFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	backend := newMapBackend()
	backend.setFailPut(true)
	s := newTestStore(newFakeClock(), backend)

	err := s.Set(ctx, "k", testPayload{Name: "kept"}, time.Hour)
	if !errors.Is(err, errBackendDown) {
		t.Fatalf("Set error = %v, want wrapped backend error", err)
	}

	got, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || got.Name != "kept" {
		t.Fatalf("memory should still serve the value: %+v, %v, %v", got, ok, err)
	}
}

func TestStore_PersistentReadFailure(t *testing.T) {
	ctx := context.Background()
	backend := newMapBackend()
	backend.failGet = true
	s := newTestStore(newFakeClock(), backend)

	if _, _, err := s.Get(ctx, "missing"); !errors.Is(err, errBackendDown) {
		t.Errorf("expected backend error on memory miss, got %v", err)
	}

	if err := s.Set(ctx, "k", testPayload{Name: "m"}, time.Hour); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := s.Get(ctx, "k"); !ok || err != nil {
		t.Errorf("memory hit must not touch the backend: ok=%v err=%v", ok, err)
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	backend := newMapBackend()
	s := newTestStore(newFakeClock(), backend)

	if err := s.Delete(ctx, "absent"); err != nil {
		t.Errorf("deleting an absent key should be a no-op, got %v", err)
	}

	if err := s.Set(ctx, "k", testPayload{}, time.Hour); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("deleted entry served")
	}
	if _, ok := backend.raw("test", "k"); ok {
		t.Error("entry should be removed from the backend")
	}
}

func TestStore_SweepExpiredInBatches(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	backend := newMapBackend()
	s := newTestStore(clock, backend)

	for i := 0; i < 5; i++ {
		if err := s.Set(ctx, fmt.Sprintf("short%d", i), testPayload{}, time.Minute); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Set(ctx, "long", testPayload{}, time.Hour); err != nil {
		t.Fatal(err)
	}

	clock.Advance(2 * time.Minute)
	res, err := s.SweepExpired(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.MemoryRemoved != 5 || res.PersistentRemoved != 5 {
		t.Errorf("sweep result = %+v, want 5/5", res)
	}
	// Batch size 2: batches of 2, 2 and 1.
	if backend.deleteExpiredCalls != 3 {
		t.Errorf("expected 3 batches, got %d", backend.deleteExpiredCalls)
	}

	if _, ok, _ := s.Get(ctx, "long"); !ok {
		t.Error("live entry removed by sweep")
	}

	res, err = s.SweepExpired(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res != (SweepResult{}) {
		t.Errorf("second sweep should remove nothing, got %+v", res)
	}
}

func TestStore_SweepStopsOnCanceledContext(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore(clock, newMapBackend())
	if err := s.Set(context.Background(), "k", testPayload{}, time.Minute); err != nil {
		t.Fatal(err)
	}
	clock.Advance(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := s.SweepExpired(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.MemoryRemoved != 1 {
		t.Errorf("memory sweep should still run, got %+v", res)
	}
}

func TestStore_ClearAndStats(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	backend := newMapBackend()
	s := newTestStore(clock, backend)

	for i := 0; i < 3; i++ {
		if err := s.Set(ctx, fmt.Sprintf("k%d", i), testPayload{Name: "x"}, time.Hour); err != nil {
			t.Fatal(err)
		}
	}
	// Durable-only entry, as after a restart.
	e := Entry[testPayload]{ID: "old", CreatedAt: clock.Now(), ExpiresAt: clock.Now().Add(time.Hour)}
	raw, _ := json.Marshal(e)
	backend.putRaw("test", "old", raw, e.ExpiresAt)

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.MemoryEntries != 3 || st.PersistentEntries != 4 || st.Count != 4 {
		t.Errorf("stats = %+v", st)
	}
	if !st.PersistentAvailable {
		t.Error("persistent tier should be reported available")
	}
	if st.EstimatedPersistentBytes != 4*DefaultPersistentEntryBytes {
		t.Errorf("persistent bytes = %d", st.EstimatedPersistentBytes)
	}
	if st.EstimatedMemoryBytes <= 0 {
		t.Error("memory bytes should be positive")
	}

	for i := 0; i < 2; i++ {
		if err := s.Clear(ctx); err != nil {
			t.Fatal(err)
		}
		st, err = s.Stats(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if st.Count != 0 || st.MemoryEntries != 0 || st.PersistentEntries != 0 {
			t.Errorf("stats after Clear #%d = %+v", i+1, st)
		}
	}
}

func TestStore_MemoryOnlyStats(t *testing.T) {
	s := newTestStore(newFakeClock(), nil)
	if s.Persistent() {
		t.Error("nil backend should be memory-only")
	}
	_ = s.Set(context.Background(), "k", testPayload{}, time.Hour)

	st, err := s.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.Count != 1 || st.PersistentAvailable || st.EstimatedPersistentBytes != 0 {
		t.Errorf("stats = %+v", st)
	}
}
