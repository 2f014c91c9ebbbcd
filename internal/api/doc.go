// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

/*
Package api provides the read-only HTTP API over the latest ranking artifacts.

The API never computes rankings. It serves an immutable artifact.Snapshot
that is swapped atomically whenever a run completes, so every response
reflects exactly one run.

Endpoints:

	GET /healthz                       engine and snapshot status
	GET /metrics                       Prometheus metrics
	GET /api/v1/rankings               ?type=&limit=&cold_start=
	GET /api/v1/rankings/{id}          one entry with its cluster
	GET /api/v1/carousels              all clusters with their carousels
	GET /api/v1/carousels/{id}         one carousel with ranked entries
	GET /api/v1/trending               top items with observed engagement

Responses use a common envelope:

	{"success": true, "data": ..., "meta": {"run_id": "...", "timestamp": "..."}}

Every /api/v1 response carries a weak ETag derived from the snapshot, and a
matching If-None-Match returns 304 Not Modified.

Middleware Stack:

  - RequestID: X-Request-ID propagation
  - RealIP and Recoverer from chi
  - CORS via go-chi/cors
  - Rate limiting via go-chi/httprate (per client IP)
  - PrometheusMetrics: request count and latency by route pattern

Usage Example:

	srv := api.NewServer(api.Config{ArtifactDir: "out"}, engine.Status, logger)
	if err := srv.Reload(); err != nil && !errors.Is(err, artifact.ErrNoRankings) {
	    return err
	}
	httpServer := &http.Server{Addr: ":8086", Handler: srv.Handler()}
*/
package api
