// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

/*
Package cache provides a generic two-tier TTL cache.

A Store keeps a sharded in-memory tier in front of an optional persistent
Backend. Reads check memory first, then the backend, promoting live durable
hits into memory. Writes go to memory first and then through to the backend,
so memory is never staler than durable.

# Tiers

  - MemoryTier: FNV-hashed shards, each guarded by its own sync.RWMutex
  - Backend: raw bytes per table with an expiry index (see internal/kvstore)

A nil Backend runs the Store memory-only. NewBreakerBackend wraps a Backend in
a sony/gobreaker circuit breaker; while the circuit is open, reads degrade to
memory-only and writes fail with ErrPersistentUnavailable.

# Expiry

An entry is live while now < ExpiresAt. Expired entries are never returned:
Get removes them lazily and SweepExpired removes them in bulk, shard by shard
in memory and batch by batch in the backend, without holding a lock across a
full scan.

# Usage

	store := cache.New[models.HistoricalWeather](cache.Config{Table: "historical"}, backend)
	if err := store.Set(ctx, key, record, 24*time.Hour); err != nil {
	    // memory holds the value; the persistent write failed
	}
	record, ok, err := store.Get(ctx, key)

# Statistics

Stats reports live entries per tier. The memory byte figure is the exact JSON
size of live entries; the persistent figure is PersistentEntries multiplied by
Config.PersistentEntryBytes and is only an approximation.
*/
package cache
