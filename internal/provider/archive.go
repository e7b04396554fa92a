// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package provider

import (
	"time"

	"github.com/kamaleshsk123/Weather-Dashboard/internal/models"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/weathererr"
)

// archiveResponse is the subset of the archive payload the cache needs.
type archiveResponse struct {
	Latitude   float64           `json:"latitude"`
	Longitude  float64           `json:"longitude"`
	Elevation  float64           `json:"elevation"`
	Timezone   string            `json:"timezone"`
	DailyUnits map[string]string `json:"daily_units"`
	Daily      archiveDaily      `json:"daily"`
	Hourly     *archiveHourly    `json:"hourly"`
}

type archiveDaily struct {
	Time                     []string   `json:"time"`
	WeatherCode              []*int     `json:"weather_code"`
	Temperature2mMax         []*float64 `json:"temperature_2m_max"`
	Temperature2mMin         []*float64 `json:"temperature_2m_min"`
	Temperature2mMean        []*float64 `json:"temperature_2m_mean"`
	PrecipitationSum         []*float64 `json:"precipitation_sum"`
	RainSum                  []*float64 `json:"rain_sum"`
	SnowfallSum              []*float64 `json:"snowfall_sum"`
	WindSpeed10mMax          []*float64 `json:"wind_speed_10m_max"`
	WindGusts10mMax          []*float64 `json:"wind_gusts_10m_max"`
	WindDirection10mDominant []*float64 `json:"wind_direction_10m_dominant"`
	Sunrise                  []string   `json:"sunrise"`
	Sunset                   []string   `json:"sunset"`
}

type archiveHourly struct {
	Time               []string   `json:"time"`
	Temperature2m      []*float64 `json:"temperature_2m"`
	RelativeHumidity2m []*float64 `json:"relative_humidity_2m"`
	Precipitation      []*float64 `json:"precipitation"`
	WindSpeed10m       []*float64 `json:"wind_speed_10m"`
	WeatherCode        []*int     `json:"weather_code"`
}

type archiveError struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// toModel converts the first daily row. A response with no daily row, or
// whose row has no observed values, means the archive has nothing for date.
func (r archiveResponse) toModel(date time.Time, fetchedAt time.Time) (models.HistoricalWeather, error) {
	day := date.Format(time.DateOnly)
	if len(r.Daily.Time) == 0 || !r.Daily.hasObservations(0) {
		return models.HistoricalWeather{}, weathererr.NewDataUnavailable("no historical weather data for "+day, nil)
	}

	d := r.Daily
	out := models.HistoricalWeather{
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Elevation: r.Elevation,
		Timezone:  r.Timezone,
		Date:      d.Time[0],
		Daily: models.DailyObservation{
			WeatherCode:           at(d.WeatherCode, 0),
			TemperatureMax:        at(d.Temperature2mMax, 0),
			TemperatureMin:        at(d.Temperature2mMin, 0),
			TemperatureMean:       at(d.Temperature2mMean, 0),
			PrecipitationSum:      at(d.PrecipitationSum, 0),
			RainSum:               at(d.RainSum, 0),
			SnowfallSum:           at(d.SnowfallSum, 0),
			WindSpeedMax:          at(d.WindSpeed10mMax, 0),
			WindGustsMax:          at(d.WindGusts10mMax, 0),
			WindDirectionDominant: at(d.WindDirection10mDominant, 0),
			Sunrise:               str(d.Sunrise, 0),
			Sunset:                str(d.Sunset, 0),
		},
		Units:     r.DailyUnits,
		Source:    sourceName,
		FetchedAt: fetchedAt.UTC(),
	}

	if h := r.Hourly; h != nil {
		out.Hourly = make([]models.HourlyObservation, 0, len(h.Time))
		for i, ts := range h.Time {
			out.Hourly = append(out.Hourly, models.HourlyObservation{
				Time:             ts,
				Temperature:      at(h.Temperature2m, i),
				RelativeHumidity: at(h.RelativeHumidity2m, i),
				Precipitation:    at(h.Precipitation, i),
				WindSpeed:        at(h.WindSpeed10m, i),
				WeatherCode:      at(h.WeatherCode, i),
			})
		}
	}
	return out, nil
}

func (d archiveDaily) hasObservations(i int) bool {
	return at(d.WeatherCode, i) != nil ||
		at(d.Temperature2mMax, i) != nil ||
		at(d.Temperature2mMin, i) != nil ||
		at(d.PrecipitationSum, i) != nil
}

func at[T any](s []*T, i int) *T {
	if i < len(s) {
		return s[i]
	}
	return nil
}

func str(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return ""
}
