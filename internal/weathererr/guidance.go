// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package weathererr

import (
	"fmt"
	"math"
)

// UserGuidance is the human-readable rendering of a classified error.
type UserGuidance struct {
	Code    Code     `json:"code"`
	Title   string   `json:"title"`
	Message string   `json:"message"`
	Actions []string `json:"actions"`
}

var guidanceByCode = map[Code]UserGuidance{
	CodeDateValidation: {
		Title:   "Invalid date",
		Message: "The requested date is outside the supported range.",
		Actions: []string{"Choose a date in the past", "Choose a date after 1940-01-01"},
	},
	CodeAPILimit: {
		Title:   "Too many requests",
		Message: "The weather service is limiting requests right now.",
		Actions: []string{"Wait a moment and try again", "Reduce how often data is refreshed"},
	},
	CodeDataUnavailable: {
		Title:   "No data available",
		Message: "No historical weather data exists for this location and date.",
		Actions: []string{"Try a more recent date", "Verify the location"},
	},
	CodeNetwork: {
		Title:   "Connection problem",
		Message: "The weather service could not be reached.",
		Actions: []string{"Check your internet connection", "Try again in a few moments"},
	},
	CodeInvalidAPIKey: {
		Title:   "Invalid API key",
		Message: "The weather service rejected the configured API key.",
		Actions: []string{"Verify the API key in the configuration", "Contact the administrator"},
	},
	CodeAccessForbidden: {
		Title:   "Access denied",
		Message: "The configured account is not allowed to access this data.",
		Actions: []string{"Check the plan of the weather API account", "Contact the administrator"},
	},
	CodeServiceUnavailable: {
		Title:   "Service unavailable",
		Message: "The weather service is temporarily unavailable.",
		Actions: []string{"Try again in a few minutes"},
	},
	CodeAPIError: {
		Title:   "Weather service error",
		Message: "The weather service returned an unexpected response.",
		Actions: []string{"Try again later", "Report the problem if it persists"},
	},
}

var fallbackGuidance = UserGuidance{
	Code:    CodeUnknown,
	Title:   "Something went wrong",
	Message: "An unexpected error occurred while loading weather data.",
	Actions: []string{"Refresh the page", "Try again later"},
}

// Guidance returns the message and suggested actions for err.
// It is total: unrecognized codes and nil get the generic fallback.
func Guidance(err error) UserGuidance {
	if err == nil {
		return cloneGuidance(fallbackGuidance)
	}
	classified := Classify(err, 0)
	g, ok := guidanceByCode[classified.Code]
	if !ok {
		return cloneGuidance(fallbackGuidance)
	}
	g = cloneGuidance(g)
	g.Code = classified.Code

	switch {
	case classified.Kind == KindAPILimit && classified.RetryAfter > 0:
		secs := int(math.Ceil(classified.RetryAfter.Seconds()))
		g.Actions = append([]string{fmt.Sprintf("Try again in %d seconds", secs)}, g.Actions...)
	case classified.Kind == KindDataUnavailable && classified.AvailableRange != nil:
		g.Actions = append(g.Actions, "Pick a date within "+classified.AvailableRange.String())
	}
	return g
}

func cloneGuidance(g UserGuidance) UserGuidance {
	g.Actions = append([]string(nil), g.Actions...)
	return g
}
