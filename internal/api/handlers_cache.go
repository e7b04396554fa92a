// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/kamaleshsk123/Weather-Dashboard/internal/logging"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/models"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/weathercache"
)

// CacheStatsResponse is the body of GET /api/v1/cache/stats.
type CacheStatsResponse struct {
	Cache   weathercache.Stats        `json:"cache"`
	Sweeper weathercache.SweeperStats `json:"sweeper"`
}

// CacheClearResponse is the body of DELETE /api/v1/cache.
type CacheClearResponse struct {
	Cleared bool `json:"cleared"`
}

func (h *Handler) readyManager(w http.ResponseWriter, r *http.Request) (*weathercache.Manager, bool) {
	m, ok := h.source.Current()
	if !ok {
		respondError(w, r, http.StatusServiceUnavailable, CodeCacheNotReady,
			"The cache is still initializing", nil)
	}
	return m, ok
}

func respondCacheError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, weathercache.ErrNotReady):
		respondError(w, r, http.StatusServiceUnavailable, CodeCacheNotReady,
			"The cache is still initializing", nil)
	case errors.Is(err, weathercache.ErrClosed):
		respondError(w, r, http.StatusServiceUnavailable, CodeCacheNotReady,
			"The cache is shutting down", err)
	default:
		respondError(w, r, http.StatusInternalServerError, CodeInternal,
			"Cache operation failed", err)
	}
}

// CacheStats reports entry counts, hit rate and sweeper history.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	m, ok := h.readyManager(w, r)
	if !ok {
		return
	}

	stats, err := m.Stats(r.Context())
	if err != nil {
		respondCacheError(w, r, err)
		return
	}

	resp := CacheStatsResponse{Cache: stats}
	if h.sweeper != nil {
		resp.Sweeper = h.sweeper.Stats()
	}
	respondSuccess(w, r, start, resp)
}

// CacheSweep removes expired entries now.
func (h *Handler) CacheSweep(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var (
		report weathercache.SweepReport
		err    error
	)
	if h.sweeper != nil {
		report, err = h.sweeper.RunNow(r.Context())
	} else if m, ok := h.readyManager(w, r); ok {
		report, err = m.ClearExpired(r.Context())
	} else {
		return
	}
	if err != nil {
		respondCacheError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().Int("removed", report.Removed()).Msg("Manual cache sweep completed")
	respondSuccess(w, r, start, report)
}

// CacheClear drops every entry from both tiers.
func (h *Handler) CacheClear(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	m, ok := h.readyManager(w, r)
	if !ok {
		return
	}

	if err := m.ClearAll(r.Context()); err != nil {
		respondCacheError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().Msg("Cache cleared")
	respondSuccess(w, r, start, CacheClearResponse{Cleared: true})
}

// Health reports liveness. It answers 200 while the cache initializes so the
// process is not restarted during a slow Badger open.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatus{
		Status: "initializing",
		Uptime: time.Since(h.startTime).Seconds(),
	}
	if m, ok := h.source.Current(); ok {
		status.Status = "ok"
		status.CacheReady = true
		status.Persistent = m.Persistent()
	}
	respondSuccess(w, r, time.Time{}, status)
}
