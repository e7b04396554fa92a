// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package weathercache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kamaleshsk123/Weather-Dashboard/internal/logging"
	"github.com/kamaleshsk123/Weather-Dashboard/internal/metrics"
)

// DefaultSweepInterval is the time between expiry sweeps.
const DefaultSweepInterval = time.Hour

// ErrNotReady is returned by RunNow before the Manager is initialized.
var ErrNotReady = errors.New("weathercache: manager not ready")

// Sweeper periodically removes expired entries and reclaims persistent space.
type Sweeper struct {
	source   ManagerSource
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	running bool

	statsMu sync.Mutex
	stats   SweeperStats
}

// SweeperStats describes past sweeps.
type SweeperStats struct {
	Runs       int64       `json:"runs"`
	Failures   int64       `json:"failures"`
	LastRun    time.Time   `json:"last_run"`
	LastReport SweepReport `json:"last_report"`
	LastError  string      `json:"last_error,omitempty"`
}

// NewSweeper creates a Sweeper. A non-positive interval means DefaultSweepInterval.
func NewSweeper(source ManagerSource, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{source: source, interval: interval}
}

// Start runs one sweep immediately and then one per interval until Stop or
// ctx is done. Starting a running Sweeper is a no-op.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.wg.Add(1)
	s.mu.Unlock()

	go s.run(runCtx)

	logging.Info().Dur("interval", s.interval).Msg("Cache sweeper started")
	return nil
}

// Stop halts the loop and waits for an in-progress sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.wg.Wait()
	s.running = false
	s.mu.Unlock()
	logging.Info().Msg("Cache sweeper stopped")
}

// IsRunning reports whether the loop is active.
func (s *Sweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	_, _ = s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = s.sweep(ctx)
		}
	}
}

// RunNow sweeps immediately, independent of the loop.
func (s *Sweeper) RunNow(ctx context.Context) (SweepReport, error) {
	return s.sweep(ctx)
}

func (s *Sweeper) sweep(ctx context.Context) (SweepReport, error) {
	m, ok := s.source.Current()
	if !ok {
		logging.Debug().Msg("Cache sweep skipped, manager not ready")
		return SweepReport{}, ErrNotReady
	}

	start := time.Now()
	report, err := m.ClearExpired(ctx)
	if err == nil && m.Persistent() {
		if gcErr := m.RunGC(); gcErr != nil {
			logging.Warn().Err(gcErr).Msg("Persistent cache GC failed")
		}
	}
	duration := time.Since(start)
	metrics.RecordSweepRun(duration, err)

	s.statsMu.Lock()
	s.stats.Runs++
	s.stats.LastRun = start
	s.stats.LastReport = report
	s.stats.LastError = ""
	if err != nil {
		s.stats.Failures++
		s.stats.LastError = err.Error()
	}
	s.statsMu.Unlock()

	if err != nil {
		logging.Error().Err(err).Msg("Cache sweep failed")
		return report, err
	}
	if removed := report.Removed(); removed > 0 {
		logging.Info().
			Int("removed", removed).
			Int("historical_memory", report.Historical.MemoryRemoved).
			Int("historical_persistent", report.Historical.PersistentRemoved).
			Int("analytics_memory", report.Analytics.MemoryRemoved).
			Int("analytics_persistent", report.Analytics.PersistentRemoved).
			Dur("duration", duration).
			Msg("Cache sweep removed expired entries")
	}
	return report, nil
}

// Stats returns a snapshot of past sweeps.
func (s *Sweeper) Stats() SweeperStats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.stats
}
