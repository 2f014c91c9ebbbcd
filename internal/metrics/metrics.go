// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline Metrics
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_pipeline_runs_total",
			Help: "Total number of pipeline runs by result",
		},
		[]string{"result"}, // "success", "failure", "skipped"
	)

	PipelineRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "curator_pipeline_run_duration_seconds",
			Help:    "Duration of a full pipeline run in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
	)

	PipelineLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "curator_pipeline_last_success_timestamp",
			Help: "Unix timestamp of the last successful pipeline run",
		},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "curator_stage_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 300},
		},
		[]string{"stage"},
	)

	StageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_stage_errors_total",
			Help: "Total number of recovered stage failures",
		},
		[]string{"stage"},
	)

	// Catalog and Engagement Metrics
	CatalogItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "curator_catalog_items",
			Help: "Number of catalog items by content type",
		},
		[]string{"type"},
	)

	CatalogItemsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_catalog_items_rejected_total",
			Help: "Catalog records rejected at ingestion",
		},
		[]string{"reason"}, // "invalid", "duplicate"
	)

	EngagementRowsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_engagement_rows_consumed_total",
			Help: "Engagement rows joined to a catalog item",
		},
		[]string{"kind"},
	)

	EngagementRowsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_engagement_rows_dropped_total",
			Help: "Engagement rows dropped because their key matched no catalog item",
		},
		[]string{"kind"},
	)

	EngagementCoverage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "curator_engagement_coverage_ratio",
			Help: "Fraction of catalog items with any interaction",
		},
	)

	// Ranking Metrics
	RankedItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "curator_ranked_items",
			Help: "Number of ranked items by cohort",
		},
		[]string{"cohort"}, // "observed", "cold_start"
	)

	ALSSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "curator_als_skipped_total",
			Help: "Runs where collaborative filtering was skipped for insufficient data",
		},
	)

	ALSFactors = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "curator_als_factors",
			Help: "Latent factor count of the last trained ALS model",
		},
	)

	RegressionEval = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "curator_regression_eval",
			Help: "Hold-out evaluation of the cold-start regression",
		},
		[]string{"metric"}, // "rmse", "mae", "r2", "auc"
	)

	ColdStartFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_cold_start_fallbacks_total",
			Help: "Cold-start predictions replaced by the type-average fallback",
		},
		[]string{"reason"},
	)

	ColdDiscountViolation = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "curator_cold_discount_violation",
			Help: "1 when the best cold-start score exceeds the worst observed score",
		},
	)

	// Carousel Metrics
	CarouselILD = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "curator_carousel_ild",
			Help:    "Intra-list diversity of selected carousels",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	CarouselFlags = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_carousel_flags_total",
			Help: "Carousels flagged by the diversity audit",
		},
		[]string{"flag"}, // "redundant", "incoherent"
	)

	Clusters = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "curator_clusters",
			Help: "Number of clusters after consolidation by group",
		},
		[]string{"group"},
	)

	// Embedding Provider Metrics
	EmbeddingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_embedding_requests_total",
			Help: "Embedding API requests by result",
		},
		[]string{"result"},
	)

	EmbeddingCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "curator_embedding_cache_hits_total",
			Help: "Embedding cache hits",
		},
	)

	EmbeddingCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "curator_embedding_cache_misses_total",
			Help: "Embedding cache misses",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Notification Metrics
	NotificationsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_notifications_published_total",
			Help: "Run notifications published by result",
		},
		[]string{"result"},
	)

	ArtifactReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_artifact_reloads_total",
			Help: "API artifact snapshot reloads by result",
		},
		[]string{"result"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)
)

// RecordStage records the duration of a pipeline stage and counts err when
// the stage fell back instead of failing the run.
func RecordStage(stage string, duration time.Duration, err error) {
	StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
	if err != nil {
		StageErrors.WithLabelValues(stage).Inc()
	}
}

// RecordPipelineRun records a full pipeline run.
func RecordPipelineRun(duration time.Duration, err error) {
	PipelineRunDuration.Observe(duration.Seconds())
	if err != nil {
		PipelineRunsTotal.WithLabelValues("failure").Inc()
		return
	}
	PipelineRunsTotal.WithLabelValues("success").Inc()
	PipelineLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordPipelineSkipped counts a run skipped because another was in progress.
func RecordPipelineSkipped() {
	PipelineRunsTotal.WithLabelValues("skipped").Inc()
}

// SetCatalogSize replaces the per-type catalog gauges.
func SetCatalogSize(byType map[string]int) {
	CatalogItems.Reset()
	for t, n := range byType {
		CatalogItems.WithLabelValues(t).Set(float64(n))
	}
}

// RecordCatalogRejected counts rejected catalog records.
func RecordCatalogRejected(reason string, n int) {
	if n > 0 {
		CatalogItemsRejected.WithLabelValues(reason).Add(float64(n))
	}
}

// RecordEngagementRows records consumed and dropped rows for one signal kind.
func RecordEngagementRows(kind string, consumed, dropped int) {
	if consumed > 0 {
		EngagementRowsConsumed.WithLabelValues(kind).Add(float64(consumed))
	}
	if dropped > 0 {
		EngagementRowsDropped.WithLabelValues(kind).Add(float64(dropped))
	}
}

// SetEngagementCoverage sets the fraction of items with any interaction.
func SetEngagementCoverage(ratio float64) {
	EngagementCoverage.Set(ratio)
}

// SetRankedItems records the observed and cold-start cohort sizes.
func SetRankedItems(observed, cold int) {
	RankedItems.WithLabelValues("observed").Set(float64(observed))
	RankedItems.WithLabelValues("cold_start").Set(float64(cold))
}

// RecordALS records an ALS outcome. factors is ignored when skipped.
func RecordALS(skipped bool, factors int) {
	if skipped {
		ALSSkipped.Inc()
		return
	}
	ALSFactors.Set(float64(factors))
}

// SetRegressionEval records hold-out metrics of the cold-start model.
func SetRegressionEval(rmse, mae, r2, auc float64) {
	RegressionEval.WithLabelValues("rmse").Set(rmse)
	RegressionEval.WithLabelValues("mae").Set(mae)
	RegressionEval.WithLabelValues("r2").Set(r2)
	RegressionEval.WithLabelValues("auc").Set(auc)
}

// RecordColdStartFallback counts a cold-start fallback.
func RecordColdStartFallback(reason string) {
	ColdStartFallbacks.WithLabelValues(reason).Inc()
}

// SetColdDiscountViolation sets the discount guarantee gauge.
func SetColdDiscountViolation(violated bool) {
	if violated {
		ColdDiscountViolation.Set(1)
		return
	}
	ColdDiscountViolation.Set(0)
}

// RecordCarousel records the diversity audit of one carousel.
func RecordCarousel(ild float64, flag string) {
	CarouselILD.Observe(ild)
	if flag != "" {
		CarouselFlags.WithLabelValues(flag).Inc()
	}
}

// SetClusterCounts replaces the per-group cluster gauges.
func SetClusterCounts(byGroup map[string]int) {
	Clusters.Reset()
	for g, n := range byGroup {
		Clusters.WithLabelValues(g).Set(float64(n))
	}
}

// RecordEmbeddingRequest counts an embedding API call.
func RecordEmbeddingRequest(err error) {
	if err != nil {
		EmbeddingRequests.WithLabelValues("failure").Inc()
		return
	}
	EmbeddingRequests.WithLabelValues("success").Inc()
}

// RecordEmbeddingCache records a cache lookup.
func RecordEmbeddingCache(hit bool) {
	if hit {
		EmbeddingCacheHits.Inc()
	} else {
		EmbeddingCacheMisses.Inc()
	}
}

// RecordNotification counts a published notification.
func RecordNotification(err error) {
	if err != nil {
		NotificationsPublished.WithLabelValues("failure").Inc()
		return
	}
	NotificationsPublished.WithLabelValues("success").Inc()
}

// RecordArtifactReload counts an API snapshot reload.
func RecordArtifactReload(err error) {
	if err != nil {
		ArtifactReloads.WithLabelValues("failure").Inc()
		return
	}
	ArtifactReloads.WithLabelValues("success").Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// WriteTextfile writes every registered collector to path in the
// node-exporter textfile format. Batch runs use it in place of /metrics.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
