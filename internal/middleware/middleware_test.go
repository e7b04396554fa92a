// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kamaleshsk123/Weather-Dashboard/internal/logging"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/metrics"
)

func TestRequestID(t *testing.T) {
	var seenLogging, seenChi string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenLogging = logging.RequestIDFromContext(r.Context())
		seenChi = chimiddleware.GetReqID(r.Context())
		if logging.CorrelationIDFromContext(r.Context()) == "" {
			t.Error("expected a correlation ID")
		}
	}))

	t.Run("keeps incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "req-from-proxy")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if seenLogging != "req-from-proxy" || seenChi != "req-from-proxy" {
			t.Errorf("ids = %q / %q", seenLogging, seenChi)
		}
		if got := rec.Header().Get(RequestIDHeader); got != "req-from-proxy" {
			t.Errorf("response header = %q", got)
		}
	})

	t.Run("generates id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if len(seenLogging) != 36 {
			t.Errorf("expected a UUID, got %q", seenLogging)
		}
		if seenChi != seenLogging {
			t.Errorf("chi id %q differs from logging id %q", seenChi, seenLogging)
		}
		if rec.Header().Get(RequestIDHeader) != seenLogging {
			t.Error("response header should carry the generated id")
		}
	})
}

func TestGetRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if GetRequestID(req.Context()) != "" {
		t.Error("expected empty id without middleware")
	}

	var got string
	RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetRequestID(r.Context())
	})).ServeHTTP(httptest.NewRecorder(), req)
	if got == "" {
		t.Error("expected id inside middleware")
	}
}

func TestPrometheusMetrics_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/api/v1/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	metrics.APIRequestDuration.WithLabelValues(http.MethodGet, "/api/v1/items/{id}", "418")
	before := testutil.CollectAndCount(metrics.APIRequestDuration)

	for _, path := range []string{"/api/v1/items/1", "/api/v1/items/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	// Both requests share one series.
	if after := testutil.CollectAndCount(metrics.APIRequestDuration); after != before {
		t.Errorf("series count changed from %d to %d", before, after)
	}
}

func TestPrometheusMetrics_DefaultStatus(t *testing.T) {
	handler := PrometheusMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	before := testutil.CollectAndCount(metrics.APIRequestDuration)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/nowhere", nil))

	if after := testutil.CollectAndCount(metrics.APIRequestDuration); after != before+1 {
		t.Errorf("expected one new unmatched series, got %d -> %d", before, after)
	}
}
