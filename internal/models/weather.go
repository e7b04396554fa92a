// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package models

import (
	"time"
)

// HistoricalWeather is one calendar day of observed weather at a location.
type HistoricalWeather struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation,omitempty"`
	Timezone  string  `json:"timezone,omitempty"`

	// Date is the calendar day in YYYY-MM-DD form.
	Date string `json:"date"`

	Daily  DailyObservation    `json:"daily"`
	Hourly []HourlyObservation `json:"hourly,omitempty"`

	// Units maps each observation field to its unit, as reported upstream.
	Units map[string]string `json:"units,omitempty"`

	Source    string    `json:"source,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

// DailyObservation aggregates a single day. Pointer fields are nil when the
// upstream has no value for that variable.
type DailyObservation struct {
	WeatherCode           *int     `json:"weather_code,omitempty"`
	TemperatureMax        *float64 `json:"temperature_max,omitempty"`
	TemperatureMin        *float64 `json:"temperature_min,omitempty"`
	TemperatureMean       *float64 `json:"temperature_mean,omitempty"`
	PrecipitationSum      *float64 `json:"precipitation_sum,omitempty"`
	RainSum               *float64 `json:"rain_sum,omitempty"`
	SnowfallSum           *float64 `json:"snowfall_sum,omitempty"`
	WindSpeedMax          *float64 `json:"wind_speed_max,omitempty"`
	WindGustsMax          *float64 `json:"wind_gusts_max,omitempty"`
	WindDirectionDominant *float64 `json:"wind_direction_dominant,omitempty"`
	Sunrise               string   `json:"sunrise,omitempty"`
	Sunset                string   `json:"sunset,omitempty"`
}

// HourlyObservation is one hourly sample within the day.
type HourlyObservation struct {
	Time             string   `json:"time"`
	Temperature      *float64 `json:"temperature,omitempty"`
	RelativeHumidity *float64 `json:"relative_humidity,omitempty"`
	Precipitation    *float64 `json:"precipitation,omitempty"`
	WindSpeed        *float64 `json:"wind_speed,omitempty"`
	WeatherCode      *int     `json:"weather_code,omitempty"`
}

// AnalysisKind names a derived analysis over historical data.
type AnalysisKind string

const (
	AnalysisTrends     AnalysisKind = "trends"
	AnalysisPatterns   AnalysisKind = "patterns"
	AnalysisStatistics AnalysisKind = "statistics"
)

// AnalysisKinds lists every supported kind.
var AnalysisKinds = []AnalysisKind{AnalysisTrends, AnalysisPatterns, AnalysisStatistics}

// Valid reports whether k is a supported analysis kind.
func (k AnalysisKind) Valid() bool {
	switch k {
	case AnalysisTrends, AnalysisPatterns, AnalysisStatistics:
		return true
	}
	return false
}

// TimeRange names the window an analysis covers.
type TimeRange string

const (
	Range7Days  TimeRange = "7d"
	Range30Days TimeRange = "30d"
	Range90Days TimeRange = "90d"
	Range1Year  TimeRange = "1y"
	RangeCustom TimeRange = "custom"
)

// TimeRanges lists every supported range.
var TimeRanges = []TimeRange{Range7Days, Range30Days, Range90Days, Range1Year, RangeCustom}

// Valid reports whether r is a supported time range.
func (r TimeRange) Valid() bool {
	switch r {
	case Range7Days, Range30Days, Range90Days, Range1Year, RangeCustom:
		return true
	}
	return false
}

// Days returns the length of the range in days, or 0 for RangeCustom.
func (r TimeRange) Days() int {
	switch r {
	case Range7Days:
		return 7
	case Range30Days:
		return 30
	case Range90Days:
		return 90
	case Range1Year:
		return 365
	default:
		return 0
	}
}

// AnalyticsResult is a cached analysis for a saved location.
type AnalyticsResult struct {
	LocationID  string       `json:"location_id"`
	Kind        AnalysisKind `json:"kind"`
	Range       TimeRange    `json:"range"`
	GeneratedAt time.Time    `json:"generated_at"`

	// Summary holds scalar results such as mean_temperature or rainy_days.
	Summary map[string]float64 `json:"summary,omitempty"`

	// Series holds per-day or per-bucket values for charting.
	Series []SeriesPoint `json:"series,omitempty"`
}

// SeriesPoint is one labeled value within an analysis series.
type SeriesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}
