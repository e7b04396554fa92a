// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

// Package weathererr defines the failure taxonomy for historical-weather lookups.
//
// Every raw failure caught at a boundary (the provider client, the retry engine,
// the cached-fetch orchestrator) is classified exactly once into an *Error.
// An *Error is a tagged variant: Kind selects the variant, Code is the
// machine-readable identifier, and the kind-specific payload lives in
// StatusCode, RetryAfter and AvailableRange.
//
//	werr := weathererr.Classify(err, resp.StatusCode)
//	if werr.Retryable() {
//	    // back off and try again
//	}
package weathererr

import (
	"fmt"
	"time"
)

// Kind is the variant tag of a classified error.
type Kind uint8

const (
	// KindService is the catch-all for upstream and unknown failures.
	KindService Kind = iota
	// KindDateValidation means the caller asked for an out-of-policy date.
	KindDateValidation
	// KindAPILimit means the upstream rate limit was hit.
	KindAPILimit
	// KindDataUnavailable means no data exists for the coordinates and date.
	KindDataUnavailable
	// KindNetwork means the transport failed before a status was received.
	KindNetwork
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindDateValidation:
		return "date_validation"
	case KindAPILimit:
		return "api_limit"
	case KindDataUnavailable:
		return "data_unavailable"
	case KindNetwork:
		return "network"
	default:
		return "service"
	}
}

// Code is the machine-readable error identifier.
type Code string

const (
	CodeDateValidation     Code = "DATE_VALIDATION_ERROR"
	CodeAPILimit           Code = "API_LIMIT_ERROR"
	CodeDataUnavailable    Code = "DATA_UNAVAILABLE"
	CodeNetwork            Code = "NETWORK_ERROR"
	CodeInvalidAPIKey      Code = "INVALID_API_KEY"
	CodeAccessForbidden    Code = "ACCESS_FORBIDDEN"
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"
	CodeAPIError           Code = "API_ERROR"
	CodeUnknown            Code = "UNKNOWN_ERROR"
)

// DateRange is the span of dates the upstream actually has data for.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// String formats the range as calendar dates.
func (r DateRange) String() string {
	return r.Start.Format(time.DateOnly) + ".." + r.End.Format(time.DateOnly)
}

// Error is a classified failure.
type Error struct {
	Kind    Kind
	Code    Code
	Message string

	// StatusCode is the upstream HTTP status, zero when none was received.
	StatusCode int

	// RetryAfter is the upstream back-off hint for KindAPILimit, zero if absent.
	RetryAfter time.Duration

	// AvailableRange is set for KindDataUnavailable when the upstream reports it.
	AvailableRange *DateRange

	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Retryable reports whether the failure is transient.
func (e *Error) Retryable() bool {
	switch e.Code {
	case CodeNetwork, CodeServiceUnavailable, CodeAPILimit:
		return true
	}
	switch e.StatusCode {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}

// NewDateValidation creates a DateValidation error.
func NewDateValidation(message string) *Error {
	return &Error{Kind: KindDateValidation, Code: CodeDateValidation, Message: message}
}

// NewAPILimit creates an APILimit error. A zero retryAfter means no hint.
func NewAPILimit(message string, retryAfter time.Duration) *Error {
	return &Error{
		Kind:       KindAPILimit,
		Code:       CodeAPILimit,
		Message:    message,
		StatusCode: 429,
		RetryAfter: retryAfter,
	}
}

// NewDataUnavailable creates a DataUnavailable error. available may be nil.
func NewDataUnavailable(message string, available *DateRange) *Error {
	return &Error{
		Kind:           KindDataUnavailable,
		Code:           CodeDataUnavailable,
		Message:        message,
		AvailableRange: available,
	}
}

// NewNetwork creates a Network error wrapping the transport failure.
func NewNetwork(message string, cause error) *Error {
	return &Error{Kind: KindNetwork, Code: CodeNetwork, Message: message, Cause: cause}
}

// NewService creates a Service error with the given code and optional status.
func NewService(code Code, status int, message string, cause error) *Error {
	return &Error{
		Kind:       KindService,
		Code:       code,
		Message:    message,
		StatusCode: status,
		Cause:      cause,
	}
}
