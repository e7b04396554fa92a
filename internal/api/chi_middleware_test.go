// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDefaultChiMiddlewareConfig(t *testing.T) {
	cfg := DefaultChiMiddlewareConfig()
	if cfg.RateLimitRequests != 120 || cfg.RateLimitWindow != time.Minute {
		t.Errorf("rate limit = %d per %v", cfg.RateLimitRequests, cfg.RateLimitWindow)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Errorf("origins = %v", cfg.CORSAllowedOrigins)
	}
}

func TestRateLimit_WeatherRoute(t *testing.T) {
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitRequests = 2
	env := newTestEnv(t, true, cfg)

	for i := 0; i < 2; i++ {
		if rec := env.do(t, http.MethodGet, londonQuery); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
	}

	rec := env.do(t, http.MethodGet, londonQuery)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if body := decode(t, rec); body.Error.Code != CodeRateLimited {
		t.Errorf("code = %s", body.Error.Code)
	}

	// Only the weather route is limited.
	if rec := env.do(t, http.MethodGet, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitRequests = 1
	cfg.RateLimitDisabled = true
	env := newTestEnv(t, true, cfg)

	for i := 0; i < 3; i++ {
		if rec := env.do(t, http.MethodGet, londonQuery); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
	}
}

func TestCORS_Preflight(t *testing.T) {
	cfg := DefaultChiMiddlewareConfig()
	cfg.CORSAllowedOrigins = []string{"https://dashboard.example.com"}
	env := newTestEnv(t, true, cfg)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cache/stats", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://dashboard.example.com" {
		t.Errorf("Allow-Origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected Allow-Origin %q for a foreign origin", got)
	}
}
