// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

/*
Package kvstore provides the BadgerDB-backed persistent tier of the weather
cache. BadgerStore implements cache.Backend.

# Key Layout

	t/<table>/k/<key>                       value envelope (expiry + payload)
	t/<table>/x/<expiry, 8 bytes BE>/<key>  empty; expiry index
	m/schema_version                        decimal schema version

The expiry index is ordered by expiry time, so DeleteExpired and Count seek
straight to the boundary instead of decoding values. Every data key and its
index key are written and removed in the same transaction. Badger native TTL
is set on both as a storage backstop.

# Schema

Open reads m/schema_version. A missing version is stamped with SchemaVersion.
An older version discards every table (cache data is regenerable) and is
re-stamped. A newer version fails with ErrSchemaTooNew.

# Lifecycle

Each operation holds a read lock for its duration; Close takes the write lock,
so it waits for in-flight operations. Close is idempotent and bounded by
Config.CloseTimeout. Operations after Close return ErrStoreClosed.
*/
package kvstore
