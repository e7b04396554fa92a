// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package cache

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/kamaleshsk123/Weather-Dashboard/internal/logging"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/metrics"
)

// BreakerConfig tunes the circuit breaker around a Backend.
type BreakerConfig struct {
	Name string

	// ConsecutiveFailures opens the circuit after this many failures in a row.
	ConsecutiveFailures uint32

	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32

	// Interval resets the failure counts while closed. Zero never resets.
	Interval time.Duration

	// Timeout is how long the circuit stays open before going half-open.
	Timeout time.Duration
}

// DefaultBreakerConfig returns the settings used for the weather cache.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:                "weather-cache-persistent",
		ConsecutiveFailures: 5,
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
	}
}

// BreakerBackend guards a Backend with a circuit breaker. Rejected calls
// return ErrPersistentUnavailable.
type BreakerBackend struct {
	next Backend
	cb   *gobreaker.CircuitBreaker[any]
	name string
}

var _ Backend = (*BreakerBackend)(nil)

// NewBreakerBackend wraps next. Zero fields of cfg take DefaultBreakerConfig values.
func NewBreakerBackend(next Backend, cfg BreakerConfig) *BreakerBackend {
	def := DefaultBreakerConfig()
	if cfg.Name == "" {
		cfg.Name = def.Name
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = def.ConsecutiveFailures
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = def.MaxRequests
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0)

	threshold := cfg.ConsecutiveFailures
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= threshold
			if trip {
				logging.Warn().Str("breaker", cfg.Name).Uint32("consecutive_failures", counts.ConsecutiveFailures).
					Msg("Opening circuit on persistent cache tier")
			}
			return trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
		// A caller giving up is not a backend fault.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &BreakerBackend{next: next, cb: cb, name: cfg.Name}
}

// State returns the current breaker state.
func (b *BreakerBackend) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerBackend) execute(fn func() (any, error)) (any, error) {
	result, err := b.cb.Execute(fn)
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		return nil, ErrPersistentUnavailable
	case err != nil:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return result, nil
}

type getResult struct {
	value []byte
	found bool
}

func (b *BreakerBackend) Get(ctx context.Context, table, key string) ([]byte, bool, error) {
	res, err := b.execute(func() (any, error) {
		v, ok, err := b.next.Get(ctx, table, key)
		return getResult{value: v, found: ok}, err
	})
	if err != nil {
		return nil, false, err
	}
	r, _ := res.(getResult)
	return r.value, r.found, nil
}

func (b *BreakerBackend) Put(ctx context.Context, table, key string, value []byte, expiresAt time.Time) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.next.Put(ctx, table, key, value, expiresAt)
	})
	return err
}

func (b *BreakerBackend) Delete(ctx context.Context, table, key string) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.next.Delete(ctx, table, key)
	})
	return err
}

func (b *BreakerBackend) DeleteExpired(ctx context.Context, table string, now time.Time, limit int) (int, error) {
	res, err := b.execute(func() (any, error) {
		return b.next.DeleteExpired(ctx, table, now, limit)
	})
	if err != nil {
		return 0, err
	}
	n, _ := res.(int)
	return n, nil
}

func (b *BreakerBackend) Clear(ctx context.Context, table string) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.next.Clear(ctx, table)
	})
	return err
}

func (b *BreakerBackend) Count(ctx context.Context, table string, now time.Time) (int, error) {
	res, err := b.execute(func() (any, error) {
		return b.next.Count(ctx, table, now)
	})
	if err != nil {
		return 0, err
	}
	n, _ := res.(int)
	return n, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
