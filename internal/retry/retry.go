// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

// Package retry wraps fallible operations with bounded, classification-driven
// retries, exponential backoff and additive jitter.
//
// Every failure is classified with weathererr.Classify. Non-retryable failures
// return immediately; retryable ones are retried after
// min(BaseDelay*2^(attempt-1), MaxDelay) plus up to JitterFraction of random
// jitter, or after the upstream Retry-After hint when one is present.
//
//	data, err := retry.WithRetry(ctx, func(ctx context.Context) (Day, error) {
//	    return client.FetchDay(ctx, lat, lon, date)
//	}, 3)
package retry

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/kamaleshsk123/Weather-Dashboard/internal/logging"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/metrics"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/weathererr"
)

const (
	// DefaultMaxAttempts is the total number of attempts, including the first.
	DefaultMaxAttempts = 3

	// DefaultBaseDelay is the delay before the second attempt.
	DefaultBaseDelay = time.Second

	// DefaultMaxDelay caps the exponential delay, before jitter.
	DefaultMaxDelay = 30 * time.Second

	// DefaultJitterFraction is the maximum jitter added on top of the delay.
	DefaultJitterFraction = 0.1
)

// SleepFunc waits for d or until ctx is done, returning ctx.Err() in the latter case.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy defines the retry behavior for an operation.
// A Policy is safe for concurrent use.
type Policy struct {
	// MaxAttempts is the total number of attempts. Values <= 0 mean DefaultMaxAttempts.
	MaxAttempts int

	// BaseDelay is the initial backoff duration.
	BaseDelay time.Duration

	// MaxDelay is the maximum backoff duration before jitter.
	MaxDelay time.Duration

	// JitterFraction is the random jitter fraction (0.0-1.0), only ever added.
	JitterFraction float64

	// OnRetry is called before each wait, after the engine's own logging.
	OnRetry func(attempt int, delay time.Duration, err *weathererr.Error)

	sleep SleepFunc
	rng   *rand.Rand
	rngMu sync.Mutex
}

// DefaultPolicy returns production defaults: 3 attempts, 1s base, 30s cap, 10% jitter.
func DefaultPolicy() *Policy {
	return NewPolicyWithSeed(0)
}

// NewPolicyWithSeed creates a default Policy with a specific random seed.
// When seed is 0 a time-based seed is used; a non-zero seed gives
// deterministic jitter in tests.
func NewPolicyWithSeed(seed int64) *Policy {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Policy{
		MaxAttempts:    DefaultMaxAttempts,
		BaseDelay:      DefaultBaseDelay,
		MaxDelay:       DefaultMaxDelay,
		JitterFraction: DefaultJitterFraction,
		//nolint:gosec // G404: Using weak random for non-cryptographic jitter in backoff timing
		rng: rand.New(rand.NewSource(seed)),
	}
}

// SetSleep replaces the wait function. Intended for tests.
func (p *Policy) SetSleep(fn SleepFunc) {
	p.sleep = fn
}

// Delay computes the wait before the next attempt after the given 1-indexed
// attempt failed with classified.
func (p *Policy) Delay(attempt int, classified *weathererr.Error) time.Duration {
	if classified != nil && classified.Kind == weathererr.KindAPILimit && classified.RetryAfter > 0 {
		return classified.RetryAfter
	}
	if attempt < 1 {
		attempt = 1
	}

	base := p.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}
	maxDelay := p.MaxDelay
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}

	backoff := float64(base) * math.Pow(2, float64(attempt-1))
	if backoff > float64(maxDelay) {
		backoff = float64(maxDelay)
	}

	if p.JitterFraction > 0 {
		p.rngMu.Lock()
		if p.rng == nil {
			//nolint:gosec // G404: Using weak random for non-cryptographic jitter in backoff timing
			p.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		backoff += backoff * p.JitterFraction * p.rng.Float64() // 0 to +jitter
		p.rngMu.Unlock()
	}

	return time.Duration(backoff)
}

func (p *Policy) attempts() int {
	if p.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return p.MaxAttempts
}

func (p *Policy) wait(ctx context.Context, d time.Duration) error {
	if p.sleep != nil {
		return p.sleep(ctx, d)
	}
	return Sleep(ctx, d)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs op under policy p. It returns op's result on success, the final
// classified error when attempts are exhausted or the failure is permanent,
// or ctx.Err() if the caller gives up while waiting.
func Do[T any](ctx context.Context, p *Policy, op func(ctx context.Context) (T, error)) (T, error) {
	if p == nil {
		p = DefaultPolicy()
	}
	maxAttempts := p.attempts()

	var zero T
	for attempt := 1; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			if attempt > 1 {
				metrics.RecordRetryOutcome("success")
			}
			return result, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			metrics.RecordRetryOutcome("canceled")
			return zero, ctxErr
		}

		classified := weathererr.Classify(err, 0)
		if !classified.Retryable() {
			metrics.RecordRetryOutcome("permanent")
			logging.Ctx(ctx).Debug().
				Str("code", string(classified.Code)).
				Int("attempt", attempt).
				Msg("Permanent failure, not retrying")
			return zero, classified
		}

		if attempt >= maxAttempts {
			metrics.RecordRetryOutcome("exhausted")
			logging.Ctx(ctx).Warn().
				Err(classified).
				Int("attempts", attempt).
				Msg("Retry attempts exhausted")
			return zero, classified
		}

		delay := p.Delay(attempt, classified)
		metrics.RecordRetry(string(classified.Code), delay)
		logging.Ctx(ctx).Warn().
			Str("code", string(classified.Code)).
			Int("attempt", attempt).
			Int("max_attempts", maxAttempts).
			Dur("retry_delay", delay).
			Msg("Retryable failure, backing off")
		if p.OnRetry != nil {
			p.OnRetry(attempt, delay, classified)
		}

		if err := p.wait(ctx, delay); err != nil {
			metrics.RecordRetryOutcome("canceled")
			return zero, err
		}
	}
}

// WithRetry runs op with the default backoff and the given attempt budget.
// maxAttempts <= 0 means DefaultMaxAttempts.
func WithRetry[T any](ctx context.Context, op func(ctx context.Context) (T, error), maxAttempts int) (T, error) {
	p := DefaultPolicy()
	p.MaxAttempts = maxAttempts
	return Do(ctx, p, op)
}
