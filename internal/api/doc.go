// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

/*
Package api provides the HTTP surface of the historical-weather cache.

# Endpoints

	GET    /healthz                      liveness, cache readiness and persistence mode
	GET    /metrics                      Prometheus metrics
	GET    /api/v1/weather/historical    one day of weather (?lat=&lon=&date=YYYY-MM-DD)
	GET    /api/v1/cache/stats           cache and sweeper statistics
	POST   /api/v1/cache/sweep           run an expiry sweep now
	DELETE /api/v1/cache                 clear both cache tiers

Every response uses the models.APIResponse envelope. Weather failures carry
the classified error code with the user guidance title, message and actions:

	{
	  "status": "error",
	  "error": {
	    "code": "API_LIMIT_ERROR",
	    "title": "Too many requests",
	    "message": "The weather service is limiting requests right now.",
	    "actions": ["Try again in 7 seconds", "Wait a moment and try again"]
	  },
	  "metadata": {"timestamp": "2026-03-02T12:00:00Z", "request_id": "..."}
	}

# Middleware

The router applies, in order: request ID with logging context, chi RealIP,
chi Recoverer, Prometheus request metrics and go-chi/cors. The weather read
path is additionally rate limited per client IP with go-chi/httprate.

# Cache Readiness

The cache initializes in the background. Until it is ready the weather
endpoint still answers by fetching upstream directly, while the cache
endpoints respond 503 CACHE_NOT_READY.
*/
package api
