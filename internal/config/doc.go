// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

/*
Package config loads the server configuration.

Configuration is layered with koanf, later layers overriding earlier ones:

 1. Defaults: built into defaultConfig
 2. Config file: an optional YAML file
 3. Environment variables: override any setting

The config file is the one named by CONFIG_PATH, or else the first of
DefaultConfigPaths that exists.

Example config.yaml:

	logging:
	  level: debug
	cache:
	  persistent: true
	  path: /data/weather-cache
	  sweep_interval: 30m
	  breaker:
	    consecutive_failures: 5
	    timeout: 30s
	retry:
	  max_attempts: 4
	provider:
	  rate_per_second: 2
	server:
	  port: 8080
	  cors_origins: [http://localhost:5173]

Environment variables use explicit names (see envTransformFunc), for example
CACHE_PATH, CACHE_PERSISTENT, RETRY_MAX_ATTEMPTS, WEATHER_API_URL, HTTP_PORT
and CORS_ORIGINS. Unknown variables are ignored.

Load validates the result; a *ConfigError names the offending field.
*/
package config
