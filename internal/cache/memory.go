// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package cache

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// DefaultShards is the shard count used when none is configured.
const DefaultShards = 16

type shard[T any] struct {
	mu    sync.RWMutex
	items map[string]Entry[T]
}

// MemoryTier is a sharded map of entries. Each shard has its own lock, so
// operations on keys in different shards do not contend.
type MemoryTier[T any] struct {
	shards []*shard[T]
}

// NewMemoryTier creates a tier with n shards (DefaultShards when n <= 0).
func NewMemoryTier[T any](n int) *MemoryTier[T] {
	if n <= 0 {
		n = DefaultShards
	}
	m := &MemoryTier[T]{shards: make([]*shard[T], n)}
	for i := range m.shards {
		m.shards[i] = &shard[T]{items: make(map[string]Entry[T])}
	}
	return m
}

func (m *MemoryTier[T]) shardFor(key string) *shard[T] {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return m.shards[h.Sum32()%uint32(len(m.shards))]
}

// Get returns the entry for key, expired or not.
func (m *MemoryTier[T]) Get(key string) (Entry[T], bool) {
	s := m.shardFor(key)
	s.mu.RLock()
	e, ok := s.items[key]
	s.mu.RUnlock()
	return e, ok
}

// Set stores e, replacing any previous entry. Concurrent sets are last-write-wins.
func (m *MemoryTier[T]) Set(e Entry[T]) {
	s := m.shardFor(e.ID)
	s.mu.Lock()
	s.items[e.ID] = e
	s.mu.Unlock()
}

// Promote stores e unless a newer live entry is already present.
func (m *MemoryTier[T]) Promote(e Entry[T], now time.Time) {
	s := m.shardFor(e.ID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.items[e.ID]; ok && !cur.Expired(now) && !cur.CreatedAt.Before(e.CreatedAt) {
		return
	}
	s.items[e.ID] = e
}

// Delete removes key. It reports whether an entry was present.
func (m *MemoryTier[T]) Delete(key string) bool {
	s := m.shardFor(key)
	s.mu.Lock()
	_, ok := s.items[key]
	delete(s.items, key)
	s.mu.Unlock()
	return ok
}

// DeleteExpired removes key only if its current entry is expired at now, so a
// fresh concurrent Set survives.
func (m *MemoryTier[T]) DeleteExpired(key string, now time.Time) bool {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.items[key]; ok && e.Expired(now) {
		delete(s.items, key)
		return true
	}
	return false
}

// SweepExpired removes every entry expired at now, one shard at a time.
func (m *MemoryTier[T]) SweepExpired(now time.Time) int {
	removed := 0
	for _, s := range m.shards {
		s.mu.Lock()
		for k, e := range s.items {
			if e.Expired(now) {
				delete(s.items, k)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// Clear removes every entry.
func (m *MemoryTier[T]) Clear() {
	for _, s := range m.shards {
		s.mu.Lock()
		s.items = make(map[string]Entry[T])
		s.mu.Unlock()
	}
}

// Live returns the number of live entries and their total JSON size in bytes.
func (m *MemoryTier[T]) Live(now time.Time) (count int, bytes int64) {
	for _, s := range m.shards {
		s.mu.RLock()
		for _, e := range s.items {
			if e.Expired(now) {
				continue
			}
			count++
			if b, err := json.Marshal(e); err == nil {
				bytes += int64(len(b))
			}
		}
		s.mu.RUnlock()
	}
	return count, bytes
}
