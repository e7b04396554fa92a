// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package models

import (
	"time"
)

// APIResponse is the envelope of every HTTP response.
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"date": "2026-03-01", "daily": {...}},
//	  "metadata": {"timestamp": "2026-03-02T12:00:00Z", "query_time_ms": 3}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "DATA_UNAVAILABLE",
//	    "message": "No historical weather data exists for this location and date.",
//	    "actions": ["Try a more recent date", "Verify the location"]
//	  },
//	  "metadata": {"timestamp": "2026-03-02T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

// APIError describes a failed request. Actions are the suggested next steps
// shown to the user.
type APIError struct {
	Code    string                 `json:"code"`
	Title   string                 `json:"title,omitempty"`
	Message string                 `json:"message"`
	Actions []string               `json:"actions,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is the body of the health endpoint.
type HealthStatus struct {
	Status     string  `json:"status"`
	CacheReady bool    `json:"cache_ready"`
	Persistent bool    `json:"persistent"`
	Uptime     float64 `json:"uptime_seconds"`
}
