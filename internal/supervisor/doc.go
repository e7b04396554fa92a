// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

/*
Package supervisor provides process supervision using suture v4.

The tree separates the cache from the API so a failing sweeper or a stuck
cache initialization never takes the HTTP server down:

	RootSupervisor ("weather-dashboard")
	├── CacheSupervisor ("cache-layer")
	│   ├── CacheInitService (opens the two-tier cache, then exits)
	│   └── SweeperService (added once the cache is ready)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with suture's backoff. Supervisor events are
logged through sutureslog, which feeds the zerolog-backed slog adapter from
internal/logging.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddCacheService(services.NewCacheInitService(provider.Get, onReady))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("Supervisor stopped")
	}

See the services subpackage for the service wrappers.
*/
package supervisor
