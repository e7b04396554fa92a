// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package api

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/kamaleshsk123/Weather-Dashboard/internal/logging"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/middleware"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/models"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/validation"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/weathercache"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/weathererr"
)

// API error codes that do not come from weathererr.
const (
	CodeCacheNotReady = "CACHE_NOT_READY"
	CodeRateLimited   = "RATE_LIMITED"
	CodeNotFound      = "NOT_FOUND"
	CodeMethod        = "METHOD_NOT_ALLOWED"
	CodeInternal      = "INTERNAL_ERROR"
)

// sanitizeLogValue escapes control characters so request data cannot forge log lines.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func newMetadata(r *http.Request, start time.Time) models.Metadata {
	md := models.Metadata{
		Timestamp: time.Now().UTC(),
		RequestID: middleware.GetRequestID(r.Context()),
	}
	if !start.IsZero() {
		md.QueryTimeMS = time.Since(start).Milliseconds()
	}
	return md
}

// respondJSON sends a JSON response with an ETag over the body.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", generateETag(data))
	if w.Header().Get("Cache-Control") == "" {
		w.Header().Set("Cache-Control", "no-store")
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// generateETag returns a weak validator derived from the FNV-1a hash of data.
func generateETag(data []byte) string {
	h := fnv.New32a()
	_, _ = h.Write(data)
	return `W/"` + strconv.FormatUint(uint64(h.Sum32()), 16) + `"`
}

func respondSuccess(w http.ResponseWriter, r *http.Request, start time.Time, data interface{}) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: newMetadata(r, start),
	})
}

// respondError sends an error envelope. err is logged, never sent.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	respondAPIError(w, r, status, &models.APIError{Code: code, Message: message}, err)
}

func respondAPIError(w http.ResponseWriter, r *http.Request, status int, apiErr *models.APIError, err error) {
	if err != nil {
		event := logging.Ctx(r.Context()).Warn()
		if status >= http.StatusInternalServerError {
			event = logging.Ctx(r.Context()).Error()
		}
		event.Str("code", sanitizeLogValue(apiErr.Code)).
			Str("path", sanitizeLogValue(r.URL.Path)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Metadata: newMetadata(r, time.Time{}),
		Error:    apiErr,
	})
}

// respondWeatherError renders a fetch failure with its guidance.
func respondWeatherError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, weathercache.ErrInvalidKey) {
		respondError(w, r, http.StatusBadRequest, validation.CodeValidation,
			"Latitude, longitude or date is invalid", err)
		return
	}

	classified := weathererr.Classify(err, 0)
	guidance := weathererr.Guidance(classified)
	status := statusForError(classified)

	apiErr := &models.APIError{
		Code:    string(guidance.Code),
		Title:   guidance.Title,
		Message: guidance.Message,
		Actions: guidance.Actions,
	}

	switch {
	case classified.Kind == weathererr.KindAPILimit && classified.RetryAfter > 0:
		secs := int(math.Ceil(classified.RetryAfter.Seconds()))
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		apiErr.Details = map[string]interface{}{"retry_after_seconds": secs}
	case classified.AvailableRange != nil:
		apiErr.Details = map[string]interface{}{
			"available_start": classified.AvailableRange.Start.Format(time.DateOnly),
			"available_end":   classified.AvailableRange.End.Format(time.DateOnly),
		}
	}

	respondAPIError(w, r, status, apiErr, err)
}

// statusForError maps a classified failure onto the status returned to the
// dashboard. Upstream credential and protocol errors are the server's
// problem, so they surface as 502.
func statusForError(e *weathererr.Error) int {
	switch e.Kind {
	case weathererr.KindDateValidation:
		return http.StatusBadRequest
	case weathererr.KindDataUnavailable:
		return http.StatusNotFound
	case weathererr.KindAPILimit:
		return http.StatusTooManyRequests
	case weathererr.KindNetwork:
		return http.StatusBadGateway
	}

	switch e.Code {
	case weathererr.CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case weathererr.CodeInvalidAPIKey, weathererr.CodeAccessForbidden, weathererr.CodeAPIError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// validateRequest validates a struct, returning nil or the VALIDATION_ERROR envelope.
func validateRequest(v interface{}) *models.APIError {
	if verr := validation.ValidateStruct(v); verr != nil {
		return verr.ToAPIError()
	}
	return nil
}
