// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

/*
Package metrics provides Prometheus instrumentation for the ranking pipeline
and the read-only API.

Collectors are registered with promauto on the default registry. Pipeline
code calls the Record* and Set* helpers rather than touching collectors
directly.

# Export

In serve mode the API exposes /metrics. A batch run (curator run) has no
listener, so it writes a node-exporter textfile when output.metrics_textfile
is set:

	metrics.WriteTextfile("/var/lib/node_exporter/curator.prom")

# Available Metrics

Pipeline:
  - curator_pipeline_runs_total{result}
  - curator_pipeline_run_duration_seconds
  - curator_stage_duration_seconds{stage}
  - curator_stage_errors_total{stage}: stages that fell back instead of failing

Engagement:
  - engagement_rows_consumed_total{kind}
  - engagement_rows_dropped_total{kind}: rows whose key matched no catalog item
  - curator_engagement_coverage_ratio

Ranking:
  - curator_ranked_items{cohort}
  - curator_als_skipped_total, curator_als_factors
  - curator_regression_eval{metric}: rmse, mae, r2, auc
  - curator_cold_discount_violation

Carousels:
  - curator_carousel_ild (histogram)
  - curator_carousel_flags_total{flag}: redundant, incoherent

Resilience:
  - circuit_breaker_state{name}, circuit_breaker_requests_total{name,result}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}
*/
package metrics
