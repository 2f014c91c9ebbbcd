// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

/*
Package middleware provides HTTP middleware for the read-only ranking API.

Key Components:

  - RequestID: UUID request IDs in the X-Request-ID header, propagated to
    the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge labeled by
    chi route pattern

Both use the chi signature func(http.Handler) http.Handler:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

Route patterns are only known after chi has matched the request, so
PrometheusMetrics reads the pattern after the handler returns. Requests that
match no route are labeled "unmatched".
*/
package middleware
