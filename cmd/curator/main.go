// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package main is the entry point for curator.
//
// Curator ranks a content catalog from engagement events with a hybrid of
// implicit ALS and a cold-start regression, then selects diverse carousels
// per topic cluster and writes the results as JSON artifacts.
//
// # Commands
//
//	curator run     execute one pipeline run and exit (batch job)
//	curator serve   run the pipeline on a schedule and serve the artifacts
//
// A failed run exits non-zero and leaves the previous artifacts in place.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (CATALOG_DIR, EVENTS_SOURCE, OUTPUT_DIR, ...)
//   - Config file (config.yaml or CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// Both commands stop on SIGINT and SIGTERM. A run in progress is canceled
// and publishes nothing.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/curator/internal/config"
	"github.com/tomtom215/curator/internal/logging"
)

const usage = `usage: curator <command>

commands:
  run     execute one ranking run and exit
  serve   run the scheduler and HTTP API
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var cmd func(context.Context, *config.Config) error
	switch os.Args[1] {
	case "run":
		cmd = runOnce
	case "serve":
		cmd = serve
	case "help", "-h", "--help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd(ctx, cfg); err != nil {
		logging.Error().Err(err).Str("command", os.Args[1]).Msg("Command failed")
		stop()
		os.Exit(1)
	}
}
