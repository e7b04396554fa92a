// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/kamaleshsk123/Weather-Dashboard/internal/models"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/validation"
)

// HistoricalWeatherRequest holds the query of GET /api/v1/weather/historical.
type HistoricalWeatherRequest struct {
	Latitude  string `validate:"required,latitude"`
	Longitude string `validate:"required,longitude"`
	Date      string `validate:"required,isodate"`
}

// Past days do not change once archived.
const historicalCacheControl = "public, max-age=3600"

// HistoricalWeather returns one day of weather, served from the cache when present.
func (h *Handler) HistoricalWeather(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()

	req := HistoricalWeatherRequest{
		Latitude:  q.Get("lat"),
		Longitude: q.Get("lon"),
		Date:      q.Get("date"),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	// Validated above, so parsing cannot fail.
	lat, _ := strconv.ParseFloat(req.Latitude, 64)
	lon, _ := strconv.ParseFloat(req.Longitude, 64)
	date, _ := time.Parse(validation.DateLayout, req.Date)

	record, err := h.fetcher.FetchHistorical(r.Context(), lat, lon, date,
		func(ctx context.Context) (models.HistoricalWeather, error) {
			return h.weather.FetchDay(ctx, lat, lon, date)
		})
	if err != nil {
		respondWeatherError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", historicalCacheControl)
	respondSuccess(w, r, start, record)
}
