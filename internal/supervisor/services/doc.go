// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

/*
Package services adapts server components to suture's Serve pattern.

	type Service interface {
	    Serve(ctx context.Context) error
	}

Available services:

  - CacheInitService: runs the cache initializer until it succeeds, calls the
    ready hook once, then tells suture not to restart it
  - SweeperService: wraps weathercache.Sweeper (Start/Stop lifecycle)
  - HTTPServerService: wraps *http.Server with graceful shutdown

Every service implements fmt.Stringer so supervisor events name it.
*/
package services
