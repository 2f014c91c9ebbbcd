// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package logging provides zerolog-based structured logging for Curator.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Int("items", n).Msg("catalog loaded")
//
// Pipeline stages take a component logger:
//
//	logger := logging.WithComponent("scorer")
//
// and every run carries a run ID in its context:
//
//	ctx = logging.ContextWithRunID(ctx, logging.GenerateRunID())
//	logging.Ctx(ctx).Info().Msg("run started")
//
// # Adapters
//
//   - SlogHandler: slog.Handler for sutureslog
//   - WatermillLogger: watermill.LoggerAdapter for the notification bus
//
// # Configuration
//
//	LOG_LEVEL   - trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - json, console (default: json)
//	LOG_CALLER  - true, false (default: false)
package logging
