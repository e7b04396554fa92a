// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

/*
Package middleware provides HTTP middleware shared by the API router.

  - RequestID: wraps chi's RequestID and seeds the logging context with
    request_id and correlation_id, echoing X-Request-ID to the client
  - PrometheusMetrics: records api_request_duration_seconds labeled by the
    chi route pattern, so path parameters do not blow up cardinality

All middleware has the chi signature func(http.Handler) http.Handler.
*/
package middleware
