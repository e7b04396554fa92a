// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

/*
Package weathercache is the domain layer over the two-tier cache.

  - Manager: historical and analytics stores with normalized keys, counters
    and an optional BadgerDB tier
  - Provider: process-wide lifecycle of the Manager (guarded init, non-blocking
    Current, idempotent Close)
  - Fetcher: cache-aside reads that collapse concurrent misses per key and
    fail open when the cache is not ready or misbehaving
  - Sweeper: periodic removal of expired entries plus value log GC

# Keys

Historical records are keyed by coordinates rounded to four decimals and the
calendar day of the date in its own location:

	51.5074,-0.1278@2024-01-15

Analytics results are keyed by location, kind and range:

	home|trends|30d

# Failure Model

Explicit Set calls report persistent write failures. The Fetcher logs and
swallows them, since the value is already in memory and returned to the
caller. A Manager that cannot open BadgerDB runs memory-only for its
lifetime after one warning.
*/
package weathercache
