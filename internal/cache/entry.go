// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package cache

import (
	"errors"
	"time"
)

var (
	// ErrInvalidTTL is returned by Set for a non-positive TTL.
	ErrInvalidTTL = errors.New("cache: ttl must be positive")

	// ErrPersistentUnavailable is returned when the persistent tier is
	// short-circuited by its breaker.
	ErrPersistentUnavailable = errors.New("cache: persistent tier unavailable")
)

// Entry is a cached payload with its lifetime. Entries are replaced wholesale,
// never mutated in place.
type Entry[T any] struct {
	ID        string    `json:"id"`
	Payload   T         `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the entry is no longer live at now.
func (e Entry[T]) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}
