// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package api

import (
	"context"
	"time"

	"github.com/kamaleshsk123/Weather-Dashboard/internal/models"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/weathercache"
)

// WeatherFetcher loads one day of weather from upstream.
type WeatherFetcher interface {
	FetchDay(ctx context.Context, lat, lon float64, date time.Time) (models.HistoricalWeather, error)
}

// SweepRunner runs expiry sweeps on demand and reports past ones.
type SweepRunner interface {
	RunNow(ctx context.Context) (weathercache.SweepReport, error)
	Stats() weathercache.SweeperStats
}

// Handler serves the API endpoints.
type Handler struct {
	source  weathercache.ManagerSource
	fetcher *weathercache.Fetcher
	weather WeatherFetcher
	sweeper SweepRunner

	startTime time.Time
}

// NewHandler creates a Handler. The cache may still be initializing; source
// is consulted on every request.
func NewHandler(source weathercache.ManagerSource, fetcher *weathercache.Fetcher, weather WeatherFetcher, sweeper SweepRunner) *Handler {
	return &Handler{
		source:    source,
		fetcher:   fetcher,
		weather:   weather,
		sweeper:   sweeper,
		startTime: time.Now(),
	}
}
