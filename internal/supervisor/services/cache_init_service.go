// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/thejerf/suture/v4"

	"github.com/kamaleshsk123/Weather-Dashboard/internal/logging"
)

// InitFunc initializes a component. It is retried until it succeeds.
type InitFunc func(ctx context.Context) error

// CacheInitService opens the cache in the background. Until it succeeds,
// readers keep fetching directly.
//
// A failed attempt is returned to suture, which retries with backoff. After
// the first success onReady runs once and the service exits for good.
type CacheInitService struct {
	init    InitFunc
	onReady func()
	once    sync.Once
	name    string
}

// NewCacheInitService creates the service. onReady may be nil.
func NewCacheInitService(init InitFunc, onReady func()) *CacheInitService {
	return &CacheInitService{init: init, onReady: onReady, name: "cache-init"}
}

// Serve runs one initialization attempt.
func (s *CacheInitService) Serve(ctx context.Context) error {
	if err := s.init(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logging.Warn().Err(err).Msg("Cache initialization failed, will retry")
		return fmt.Errorf("cache init: %w", err)
	}

	s.once.Do(func() {
		logging.Info().Msg("Cache ready")
		if s.onReady != nil {
			s.onReady()
		}
	})
	return suture.ErrDoNotRestart
}

func (s *CacheInitService) String() string {
	return s.name
}
