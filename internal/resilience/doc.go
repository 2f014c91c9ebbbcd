// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package resilience wraps the pipeline's external calls (event-store
// queries, embedding and chat completions) with a circuit breaker and a
// rate-limited exponential-backoff retry loop.
//
// Circuit breaker configuration mirrors the other outbound clients:
//   - Max 3 requests in half-open state
//   - 1 minute measurement window
//   - 2 minute timeout before attempting recovery
//   - Opens after a 60% failure rate with at least 10 requests
//
// State is exported through circuit_breaker_state (0 closed,
// 1 half-open, 2 open) and the request/transition counters in the metrics
// package.
package resilience
