// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package weathererr

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// StatusCoder is implemented by raw errors that carry an HTTP-like status.
type StatusCoder interface {
	StatusCode() int
}

// RetryAfterHinter is implemented by raw errors that carry an upstream back-off hint.
type RetryAfterHinter interface {
	RetryAfter() time.Duration
}

// Classify maps any failure to exactly one classified *Error.
//
// An error that is already classified is returned unchanged. Otherwise the
// status argument (or a StatusCoder found in the chain) decides the variant,
// and a raw failure with no status is a transport failure if it looks like one.
// Classify(nil, 0) returns nil.
func Classify(err error, status int) *Error {
	if err == nil && status == 0 {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	if status == 0 {
		var sc StatusCoder
		if errors.As(err, &sc) {
			status = sc.StatusCode()
		}
	}

	if status != 0 {
		var retryAfter time.Duration
		var hinter RetryAfterHinter
		if errors.As(err, &hinter) {
			retryAfter = hinter.RetryAfter()
		}
		return classifyStatus(status, retryAfter, err)
	}

	if errors.Is(err, context.Canceled) {
		return NewService(CodeUnknown, 0, "request canceled", err)
	}
	if isTransportFailure(err) {
		return NewNetwork("network request failed", err)
	}
	return NewService(CodeUnknown, 0, "unexpected failure", err)
}

// FromResponse classifies a non-2xx HTTP response, honoring Retry-After.
// It does not read or close the body.
func FromResponse(resp *http.Response) *Error {
	if resp == nil {
		return NewService(CodeUnknown, 0, "no response received", nil)
	}
	var retryAfter time.Duration
	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter = ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
	}
	return classifyStatus(resp.StatusCode, retryAfter, nil)
}

// ParseRetryAfter parses a Retry-After header value (RFC 9110 delta-seconds or
// HTTP-date). It returns zero for an empty, malformed or past value.
func ParseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds <= 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d.Round(time.Second)
		}
	}
	return 0
}

// IsRetryable reports whether err, once classified, is worth another attempt.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return Classify(err, 0).Retryable()
}

// CodeOf returns the classified code of err, or an empty Code for nil.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	return Classify(err, 0).Code
}

func classifyStatus(status int, retryAfter time.Duration, cause error) *Error {
	text := http.StatusText(status)
	if text == "" {
		text = "unexpected status"
	}

	switch status {
	case http.StatusUnauthorized:
		return NewService(CodeInvalidAPIKey, status, "weather API rejected the API key", cause)
	case http.StatusForbidden:
		return NewService(CodeAccessForbidden, status, "access to the weather API is forbidden", cause)
	case http.StatusNotFound:
		e := NewDataUnavailable("no weather data for the requested location and date", nil)
		e.StatusCode = status
		e.Cause = cause
		return e
	case http.StatusTooManyRequests:
		e := NewAPILimit("weather API rate limit exceeded", retryAfter)
		e.Cause = cause
		return e
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return NewService(CodeServiceUnavailable, status, "weather service is temporarily unavailable", cause)
	default:
		return NewService(CodeAPIError, status, "weather API error: "+text, cause)
	}
}

func isTransportFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
