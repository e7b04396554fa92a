// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

/*
Package models defines the payloads cached by the weather subsystem and the
API response envelope.

Cached payloads:

  - HistoricalWeather: one calendar day of observations for a coordinate pair
  - AnalyticsResult: a derived analysis (trends, patterns, statistics) for a
    saved location over a named time range

API models:

  - APIResponse: standard response wrapper with Metadata and APIError

All types are JSON-serializable with stable snake_case field names; the cache
persists them as JSON, so renaming a tag invalidates stored entries.
*/
package models
