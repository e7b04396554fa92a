// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

/*
Package main is the entry point for the Weather Dashboard server.

The server answers historical weather queries for the dashboard, reading
through a two-tier cache (sharded memory over BadgerDB) in front of the
Open-Meteo archive API.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("weather-dashboard")
	├── CacheSupervisor ("cache-layer")
	│   ├── cache-init (opens BadgerDB, then exits)
	│   └── cache-sweeper (added once the cache is ready)
	└── APISupervisor ("api-layer")
	    └── http-server

Startup order:

 1. Configuration: Koanf v2 with defaults, an optional YAML file and environment variables
 2. Logging: zerolog initialized from the logging section
 3. Provider client: rate limited, retried Open-Meteo archive client
 4. Cache: initialized in the background; reads fall back to direct fetches until ready
 5. Supervisor tree: cache layer and API layer
 6. Signals: SIGINT and SIGTERM cancel the tree

On exit the cache is closed, which flushes and closes BadgerDB.

# Configuration

Layered, highest priority wins:
  - Environment variables (LOG_LEVEL, CACHE_PATH, WEATHER_API_KEY, HTTP_PORT, ...)
  - Config file (CONFIG_PATH, config.yaml, /etc/weather-dashboard/config.yaml)
  - Built-in defaults

# Example Usage

	export CACHE_PATH=/var/lib/weather-dashboard/cache
	export LOG_LEVEL=debug
	./weather-dashboard

	curl 'http://localhost:8080/api/v1/weather/historical?lat=51.5074&lon=-0.1278&date=2024-01-15'
*/
package main
