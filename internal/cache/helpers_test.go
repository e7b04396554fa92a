// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package cache

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var errBackendDown = errors.New("backend down")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
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

type storedValue struct {
	value     []byte
	expiresAt time.Time
}

// mapBackend is an in-process Backend with failure injection.
type mapBackend struct {
	mu     sync.Mutex
	tables map[string]map[string]storedValue

	failGet, failPut, failDelete bool
	deleteExpiredCalls           int
}

func newMapBackend() *mapBackend {
	return &mapBackend{tables: make(map[string]map[string]storedValue)}
}

func (b *mapBackend) table(name string) map[string]storedValue {
	t, ok := b.tables[name]
	if !ok {
		t = make(map[string]storedValue)
		b.tables[name] = t
	}
	return t
}

func (b *mapBackend) Get(_ context.Context, table, key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failGet {
		return nil, false, errBackendDown
	}
	v, ok := b.table(table)[key]
	return v.value, ok, nil
}

func (b *mapBackend) Put(_ context.Context, table, key string, value []byte, expiresAt time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failPut {
		return errBackendDown
	}
	b.table(table)[key] = storedValue{value: append([]byte(nil), value...), expiresAt: expiresAt}
	return nil
}

func (b *mapBackend) Delete(_ context.Context, table, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failDelete {
		return errBackendDown
	}
	delete(b.table(table), key)
	return nil
}

func (b *mapBackend) DeleteExpired(_ context.Context, table string, now time.Time, limit int) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleteExpiredCalls++

	t := b.table(table)
	var expired []string
	for k, v := range t {
		if !now.Before(v.expiresAt) {
			expired = append(expired, k)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return t[expired[i]].expiresAt.Before(t[expired[j]].expiresAt) })
	if len(expired) > limit {
		expired = expired[:limit]
	}
	for _, k := range expired {
		delete(t, k)
	}
	return len(expired), nil
}

func (b *mapBackend) Clear(_ context.Context, table string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.tables, table)
	return nil
}

func (b *mapBackend) Count(_ context.Context, table string, now time.Time) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, v := range b.table(table) {
		if now.Before(v.expiresAt) {
			n++
		}
	}
	return n, nil
}

func (b *mapBackend) raw(table, key string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.table(table)[key]
	return v.value, ok
}

func (b *mapBackend) putRaw(table, key string, value []byte, expiresAt time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.table(table)[key] = storedValue{value: value, expiresAt: expiresAt}
}

func (b *mapBackend) setFailPut(v bool) {
	b.mu.Lock()
	b.failPut = v
	b.mu.Unlock()
}

type testPayload struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func newTestStore(clock *fakeClock, backend Backend) *Store[testPayload] {
	cfg := Config{Table: "test", Shards: 4, SweepBatchSize: 2, Now: clock.Now}
	return New[testPayload](cfg, backend)
}
