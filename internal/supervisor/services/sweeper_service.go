// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package services

import (
	"context"
	"fmt"
)

// StartStopper is the Start/Stop lifecycle of a background loop.
//
// Satisfied by *weathercache.Sweeper.
type StartStopper interface {
	Start(ctx context.Context) error
	Stop()
	IsRunning() bool
}

// SweeperService runs the cache expiry sweeper under supervision.
//
//	sweeper := weathercache.NewSweeper(provider, cfg.Cache.SweepInterval)
//	tree.AddCacheService(services.NewSweeperService(sweeper))
type SweeperService struct {
	sweeper StartStopper
	name    string
}

// NewSweeperService wraps sweeper.
func NewSweeperService(sweeper StartStopper) *SweeperService {
	return &SweeperService{sweeper: sweeper, name: "cache-sweeper"}
}

// Serve starts the sweeper, waits for ctx, then stops it. Stop waits for an
// in-progress sweep.
func (s *SweeperService) Serve(ctx context.Context) error {
	if err := s.sweeper.Start(ctx); err != nil {
		return fmt.Errorf("cache sweeper start failed: %w", err)
	}
	<-ctx.Done()
	s.sweeper.Stop()
	return ctx.Err()
}

func (s *SweeperService) String() string {
	return s.name
}
