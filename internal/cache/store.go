// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/kamaleshsk123/Weather-Dashboard/internal/logging"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/metrics"
)

const (
	// DefaultSweepBatchSize is the number of persistent entries removed per
	// sweep transaction.
	DefaultSweepBatchSize = 500

	// DefaultPersistentEntryBytes is the assumed size of one persistent entry
	// when estimating persistent bytes.
	DefaultPersistentEntryBytes = 1024
)

const (
	tierMemory     = "memory"
	tierPersistent = "persistent"
)

// Config configures a Store.
type Config struct {
	// Table names the backend table and labels metrics.
	Table string

	// Shards is the memory tier shard count.
	Shards int

	// SweepBatchSize bounds each persistent sweep transaction.
	SweepBatchSize int

	// PersistentEntryBytes is the per-entry size used for the persistent estimate.
	PersistentEntryBytes int64

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

// Stats is a point-in-time view of a Store.
type Stats struct {
	Count                    int   `json:"count"`
	MemoryEntries            int   `json:"memory_entries"`
	PersistentEntries        int   `json:"persistent_entries"`
	EstimatedMemoryBytes     int64 `json:"estimated_memory_bytes"`
	EstimatedPersistentBytes int64 `json:"estimated_persistent_bytes"`

	// PersistentAvailable is false when the store is memory-only or the
	// persistent tier was unreachable while collecting.
	PersistentAvailable bool `json:"persistent_available"`
}

// SweepResult reports the entries removed by one sweep.
type SweepResult struct {
	MemoryRemoved     int `json:"memory_removed"`
	PersistentRemoved int `json:"persistent_removed"`
}

// Store is a two-tier TTL cache for payloads of type T.
type Store[T any] struct {
	cfg     Config
	mem     *MemoryTier[T]
	backend Backend
}

// New creates a Store. A nil backend makes it memory-only.
func New[T any](cfg Config, backend Backend) *Store[T] {
	if cfg.SweepBatchSize <= 0 {
		cfg.SweepBatchSize = DefaultSweepBatchSize
	}
	if cfg.PersistentEntryBytes <= 0 {
		cfg.PersistentEntryBytes = DefaultPersistentEntryBytes
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Store[T]{
		cfg:     cfg,
		mem:     NewMemoryTier[T](cfg.Shards),
		backend: backend,
	}
}

// Table returns the configured table name.
func (s *Store[T]) Table() string {
	return s.cfg.Table
}

// Persistent reports whether the store has a backend.
func (s *Store[T]) Persistent() bool {
	return s.backend != nil
}

// Get returns the live payload for key.
func (s *Store[T]) Get(ctx context.Context, key string) (T, bool, error) {
	e, ok, err := s.GetEntry(ctx, key)
	return e.Payload, ok, err
}

// GetEntry returns the live entry for key. Memory is checked first, then the
// backend; a live durable hit is promoted into memory. Expired or corrupt
// entries are deleted and reported as misses. A backend failure is returned
// only when memory had no live entry.
func (s *Store[T]) GetEntry(ctx context.Context, key string) (Entry[T], bool, error) {
	var zero Entry[T]
	now := s.cfg.Now()

	if e, ok := s.mem.Get(key); ok {
		if !e.Expired(now) {
			metrics.RecordCacheLookup(s.cfg.Table, tierMemory, "hit")
			return e, true, nil
		}
		s.mem.DeleteExpired(key, now)
		metrics.RecordCacheLookup(s.cfg.Table, tierMemory, "expired")
	} else {
		metrics.RecordCacheLookup(s.cfg.Table, tierMemory, "miss")
	}

	if s.backend == nil {
		return zero, false, nil
	}

	raw, found, err := s.backend.Get(ctx, s.cfg.Table, key)
	if errors.Is(err, ErrPersistentUnavailable) {
		metrics.RecordCacheLookup(s.cfg.Table, tierPersistent, "skipped")
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("cache: get %s/%s: %w", s.cfg.Table, key, err)
	}
	if !found {
		metrics.RecordCacheLookup(s.cfg.Table, tierPersistent, "miss")
		return zero, false, nil
	}

	var e Entry[T]
	if err := json.Unmarshal(raw, &e); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("table", s.cfg.Table).Str("key", key).
			Msg("Dropping undecodable persistent cache entry")
		s.deletePersistent(ctx, key)
		metrics.RecordCacheLookup(s.cfg.Table, tierPersistent, "corrupt")
		return zero, false, nil
	}
	if e.Expired(now) {
		s.deletePersistent(ctx, key)
		metrics.RecordCacheLookup(s.cfg.Table, tierPersistent, "expired")
		return zero, false, nil
	}

	s.mem.Promote(e, now)
	metrics.RecordCacheLookup(s.cfg.Table, tierPersistent, "hit")
	return e, true, nil
}

func (s *Store[T]) deletePersistent(ctx context.Context, key string) {
	if err := s.backend.Delete(ctx, s.cfg.Table, key); err != nil && !errors.Is(err, ErrPersistentUnavailable) {
		logging.Ctx(ctx).Debug().Err(err).Str("table", s.cfg.Table).Str("key", key).
			Msg("Failed to delete stale persistent cache entry")
	}
}

// Set stores payload under key for ttl. Memory is always updated; a failed
// persistent write is returned while memory keeps the value.
func (s *Store[T]) Set(ctx context.Context, key string, payload T, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	now := s.cfg.Now()
	e := Entry[T]{ID: key, Payload: payload, CreatedAt: now, ExpiresAt: now.Add(ttl)}
	s.mem.Set(e)

	if s.backend == nil {
		metrics.RecordCacheWrite(s.cfg.Table, nil)
		return nil
	}

	raw, err := json.Marshal(e)
	if err != nil {
		metrics.RecordCacheWrite(s.cfg.Table, err)
		return fmt.Errorf("cache: encode %s/%s: %w", s.cfg.Table, key, err)
	}
	err = s.backend.Put(ctx, s.cfg.Table, key, raw, e.ExpiresAt)
	metrics.RecordCacheWrite(s.cfg.Table, err)
	if err != nil {
		return fmt.Errorf("cache: persist %s/%s: %w", s.cfg.Table, key, err)
	}
	return nil
}

// Delete removes key from both tiers. Absent keys are a no-op.
func (s *Store[T]) Delete(ctx context.Context, key string) error {
	s.mem.Delete(key)
	if s.backend == nil {
		return nil
	}
	if err := s.backend.Delete(ctx, s.cfg.Table, key); err != nil {
		return fmt.Errorf("cache: delete %s/%s: %w", s.cfg.Table, key, err)
	}
	return nil
}

// SweepExpired removes entries expired at the current time from both tiers.
// The persistent tier is swept in batches of SweepBatchSize, stopping early
// if ctx is done.
func (s *Store[T]) SweepExpired(ctx context.Context) (SweepResult, error) {
	now := s.cfg.Now()
	res := SweepResult{MemoryRemoved: s.mem.SweepExpired(now)}

	if s.backend != nil {
		for {
			if err := ctx.Err(); err != nil {
				metrics.RecordSweep(s.cfg.Table, res.MemoryRemoved, res.PersistentRemoved)
				return res, err
			}
			n, err := s.backend.DeleteExpired(ctx, s.cfg.Table, now, s.cfg.SweepBatchSize)
			res.PersistentRemoved += n
			if err != nil {
				metrics.RecordSweep(s.cfg.Table, res.MemoryRemoved, res.PersistentRemoved)
				return res, fmt.Errorf("cache: sweep %s: %w", s.cfg.Table, err)
			}
			if n < s.cfg.SweepBatchSize {
				break
			}
		}
	}

	metrics.RecordSweep(s.cfg.Table, res.MemoryRemoved, res.PersistentRemoved)
	return res, nil
}

// Clear empties both tiers.
func (s *Store[T]) Clear(ctx context.Context) error {
	s.mem.Clear()
	if s.backend == nil {
		return nil
	}
	if err := s.backend.Clear(ctx, s.cfg.Table); err != nil {
		return fmt.Errorf("cache: clear %s: %w", s.cfg.Table, err)
	}
	return nil
}

// Stats collects live entry counts and size estimates. An unavailable
// persistent tier is reported through PersistentAvailable, not as an error.
func (s *Store[T]) Stats(ctx context.Context) (Stats, error) {
	now := s.cfg.Now()
	var st Stats
	st.MemoryEntries, st.EstimatedMemoryBytes = s.mem.Live(now)

	if s.backend != nil {
		n, err := s.backend.Count(ctx, s.cfg.Table, now)
		switch {
		case errors.Is(err, ErrPersistentUnavailable):
		case err != nil:
			return st, fmt.Errorf("cache: count %s: %w", s.cfg.Table, err)
		default:
			st.PersistentAvailable = true
			st.PersistentEntries = n
			st.EstimatedPersistentBytes = int64(n) * s.cfg.PersistentEntryBytes
		}
	}

	st.Count = max(st.MemoryEntries, st.PersistentEntries)
	metrics.UpdateCacheSize(s.cfg.Table, st.MemoryEntries, st.PersistentEntries,
		st.EstimatedMemoryBytes, st.EstimatedPersistentBytes)
	return st, nil
}
