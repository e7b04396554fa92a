// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package weathercache

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/kamaleshsk123/Weather-Dashboard/internal/models"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/validation"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/weathererr"
)

// ErrInvalidKey is wrapped by key construction failures for coordinates and
// analytics identifiers. Invalid dates are reported as weathererr date
// validation errors instead.
var ErrInvalidKey = errors.New("weathercache: invalid cache key")

type coordinates struct {
	Latitude  float64 `validate:"latitude"`
	Longitude float64 `validate:"longitude"`
}

type analyticsIdentity struct {
	LocationID string `validate:"required,max=128,excludes=0x7C"`
	Kind       string `validate:"required,analysis_kind"`
	Range      string `validate:"required,time_range"`
}

// round4 rounds to four decimals and folds negative zero into zero.
func round4(x float64) float64 {
	r := math.Round(x*1e4) / 1e4
	if r == 0 {
		return 0
	}
	return r
}

// HistoricalKey returns the cache key for a coordinate pair and calendar day.
// The day is taken in date's own location.
func HistoricalKey(lat, lon float64, date time.Time) (string, error) {
	if date.IsZero() {
		return "", weathererr.NewDateValidation("date is required")
	}
	if verr := validation.ValidateStruct(&coordinates{Latitude: lat, Longitude: lon}); verr != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidKey, verr.Error())
	}
	return fmt.Sprintf("%.4f,%.4f@%s", round4(lat), round4(lon), date.Format(validation.DateLayout)), nil
}

// AnalyticsKey returns the cache key for an analysis of a saved location.
func AnalyticsKey(locationID string, kind models.AnalysisKind, r models.TimeRange) (string, error) {
	id := analyticsIdentity{LocationID: locationID, Kind: string(kind), Range: string(r)}
	if verr := validation.ValidateStruct(&id); verr != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidKey, verr.Error())
	}
	return locationID + "|" + string(kind) + "|" + string(r), nil
}

// isInputError reports whether err came from key construction.
func isInputError(err error) bool {
	if errors.Is(err, ErrInvalidKey) {
		return true
	}
	var werr *weathererr.Error
	return errors.As(err, &werr) && werr.Kind == weathererr.KindDateValidation
}
