// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package cache

import (
	"context"
	"time"
)

// Backend is a durable byte store partitioned into tables. Implementations
// must keep an expiry index so that DeleteExpired and Count do not scan
// live data.
type Backend interface {
	// Get returns the stored value and true, or false when key is absent.
	// Expiry is not checked; the caller decodes and validates the value.
	Get(ctx context.Context, table, key string) ([]byte, bool, error)

	// Put stores value under key, replacing any previous value and its
	// index position.
	Put(ctx context.Context, table, key string, value []byte, expiresAt time.Time) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, table, key string) error

	// DeleteExpired removes at most limit entries whose expiry is at or
	// before now, in ascending expiry order, and returns how many it removed.
	DeleteExpired(ctx context.Context, table string, now time.Time, limit int) (int, error)

	// Clear removes every entry of table.
	Clear(ctx context.Context, table string) error

	// Count returns the number of entries of table live at now.
	Count(ctx context.Context, table string, now time.Time) (int, error)
}
