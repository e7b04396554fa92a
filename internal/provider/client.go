// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/kamaleshsk123/Weather-Dashboard/internal/logging"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/metrics"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/models"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/retry"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/weathererr"
)

const (
	// DefaultBaseURL is the public Open-Meteo archive host.
	DefaultBaseURL = "https://archive-api.open-meteo.com"

	archivePath = "/v1/archive"
	sourceName  = "open-meteo"

	// maxErrorBodySize bounds how much of an error body is read.
	maxErrorBodySize = 64 * 1024
)

// ArchiveFloor is the earliest date the archive serves.
var ArchiveFloor = time.Date(1940, 1, 1, 0, 0, 0, 0, time.UTC)

var dailyVariables = []string{
	"weather_code",
	"temperature_2m_max",
	"temperature_2m_min",
	"temperature_2m_mean",
	"precipitation_sum",
	"rain_sum",
	"snowfall_sum",
	"wind_speed_10m_max",
	"wind_gusts_10m_max",
	"wind_direction_10m_dominant",
	"sunrise",
	"sunset",
}

var hourlyVariables = []string{
	"temperature_2m",
	"relative_humidity_2m",
	"precipitation",
	"wind_speed_10m",
	"weather_code",
}

// rangeReason matches the archive's "out of allowed range from A to B" reason.
var rangeReason = regexp.MustCompile(`from (\d{4}-\d{2}-\d{2}) to (\d{4}-\d{2}-\d{2})`)

// Config configures a Client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration

	// RatePerSecond and Burst configure the limiter. RatePerSecond <= 0
	// disables limiting.
	RatePerSecond float64
	Burst         int

	// IncludeHourly requests the hourly series as well as the daily one.
	IncludeHourly bool

	Retry *retry.Policy

	HTTPClient *http.Client
	Now        func() time.Time
}

// DefaultConfig returns the public archive with conservative limits.
func DefaultConfig() Config {
	return Config{
		BaseURL:       DefaultBaseURL,
		Timeout:       30 * time.Second,
		RatePerSecond: 5,
		Burst:         10,
		IncludeHourly: true,
		Retry:         retry.DefaultPolicy(),
	}
}

// Client fetches historical weather days.
type Client struct {
	baseURL       string
	apiKey        string
	includeHourly bool
	httpClient    *http.Client
	limiter       *rate.Limiter
	policy        *retry.Policy
	now           func() time.Time
}

// New creates a Client. Zero fields of cfg take their defaults.
func New(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Retry == nil {
		cfg.Retry = def.Retry
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		includeHourly: cfg.IncludeHourly,
		httpClient:    cfg.HTTPClient,
		limiter:       limiter,
		policy:        cfg.Retry,
		now:           cfg.Now,
	}
}

// ValidateDate rejects future dates and dates before ArchiveFloor. The
// calendar day is taken in date's own location.
func (c *Client) ValidateDate(date time.Time) error {
	if date.IsZero() {
		return weathererr.NewDateValidation("a date is required")
	}
	day := calendarDay(date)
	if day.Before(ArchiveFloor) {
		return weathererr.NewDateValidation(fmt.Sprintf("historical data starts at %s", ArchiveFloor.Format(time.DateOnly)))
	}
	if day.After(calendarDay(c.now().In(date.Location()))) {
		return weathererr.NewDateValidation("historical data cannot be requested for a future date")
	}
	return nil
}

// FetchDay returns the observations for one calendar day at lat, lon.
func (c *Client) FetchDay(ctx context.Context, lat, lon float64, date time.Time) (models.HistoricalWeather, error) {
	if err := c.ValidateDate(date); err != nil {
		return models.HistoricalWeather{}, err
	}
	return retry.Do(ctx, c.policy, func(ctx context.Context) (models.HistoricalWeather, error) {
		return c.fetchOnce(ctx, lat, lon, date)
	})
}

func (c *Client) fetchOnce(ctx context.Context, lat, lon float64, date time.Time) (models.HistoricalWeather, error) {
	var zero models.HistoricalWeather
	if err := c.limiter.Wait(ctx); err != nil {
		return zero, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+archivePath, http.NoBody)
	if err != nil {
		return zero, fmt.Errorf("create request: %w", err)
	}
	req.URL.RawQuery = c.query(lat, lon, date).Encode()
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordProviderRequest(archivePath, "error", time.Since(start))
		return zero, weathererr.NewNetwork("historical weather request failed", err)
	}
	defer resp.Body.Close()
	metrics.RecordProviderRequest(archivePath, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return zero, c.responseError(ctx, resp)
	}

	var body archiveResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return zero, weathererr.NewService(weathererr.CodeAPIError, resp.StatusCode, "malformed archive response", err)
	}
	return body.toModel(date, c.now())
}

func (c *Client) query(lat, lon float64, date time.Time) url.Values {
	day := date.Format(time.DateOnly)
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("start_date", day)
	q.Set("end_date", day)
	q.Set("daily", strings.Join(dailyVariables, ","))
	if c.includeHourly {
		q.Set("hourly", strings.Join(hourlyVariables, ","))
	}
	q.Set("timezone", "auto")
	if c.apiKey != "" {
		q.Set("apikey", c.apiKey)
	}
	return q
}

// responseError classifies a non-2xx response. A 400 whose reason names the
// allowed range is reported as missing data for that range.
func (c *Client) responseError(ctx context.Context, resp *http.Response) error {
	classified := weathererr.FromResponse(resp)

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	var apiErr archiveError
	if len(raw) > 0 && json.Unmarshal(raw, &apiErr) == nil && apiErr.Reason != "" {
		if resp.StatusCode == http.StatusBadRequest {
			if available := parseAvailableRange(apiErr.Reason); available != nil {
				return weathererr.NewDataUnavailable(apiErr.Reason, available)
			}
		}
		classified.Message = apiErr.Reason
	}

	logging.Ctx(ctx).Debug().
		Int("status", resp.StatusCode).
		Str("code", string(classified.Code)).
		Msg("Archive request rejected")
	return classified
}

func parseAvailableRange(reason string) *weathererr.DateRange {
	m := rangeReason.FindStringSubmatch(reason)
	if m == nil {
		return nil
	}
	start, err := time.Parse(time.DateOnly, m[1])
	if err != nil {
		return nil
	}
	end, err := time.Parse(time.DateOnly, m[2])
	if err != nil {
		return nil
	}
	return &weathererr.DateRange{Start: start, End: end}
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
