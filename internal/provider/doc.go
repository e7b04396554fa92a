// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

/*
Package provider fetches historical weather from an Open-Meteo compatible
archive endpoint.

Client.FetchDay validates the requested date, waits on a token-bucket rate
limiter, and runs the request under the retry engine. Every failure leaves the
client classified as a *weathererr.Error:

  - future dates and dates before the archive floor: DATE_VALIDATION_ERROR
  - non-2xx responses: classified by status, honoring Retry-After on 429
  - an out-of-range reason from the archive: DATA_UNAVAILABLE with the
    available range parsed from the message
  - an empty daily series: DATA_UNAVAILABLE
  - transport failures: NETWORK_ERROR

Usage:

	client := provider.New(provider.DefaultConfig())
	day, err := client.FetchDay(ctx, 51.5074, -0.1278, date)

The client is safe for concurrent use.
*/
package provider
