// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

// Package logging provides centralized zerolog-based structured logging.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Str("path", path).Msg("Cache store opened")
//	logging.Error().Err(err).Msg("Sweep failed")
//
//	// Context-aware logging (correlation_id, request_id)
//	logging.Ctx(ctx).Warn().Err(err).Msg("Cache write failed")
//
// # Configuration
//
// Environment Variables (read by internal/config):
//
//	LOG_LEVEL   - trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - json, console (default: json)
//	LOG_CALLER  - true, false (default: false)
//
// # Supervisor Integration
//
// suture's event hook requires *slog.Logger; NewSlogLogger bridges slog
// records into zerolog:
//
//	handler := &sutureslog.Handler{Logger: logging.NewSlogLogger()}
//	spec := suture.Spec{EventHook: handler.MustHook()}
//
// Always terminate event chains with .Msg() or .Send(); an unterminated
// chain is never written.
package logging
