// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/tomtom215/curator/internal/metrics"
)

func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if out.Counter != nil {
		return out.Counter.GetValue()
	}
	return out.Gauge.GetValue()
}

func newMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/api/v1/rankings/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "missing" {
			w.WriteHeader(http.StatusNotFound)
			w.WriteHeader(http.StatusOK)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func TestPrometheusMetrics(t *testing.T) {
	router := newMetricsRouter()

	tests := []struct {
		name    string
		path    string
		pattern string
		status  string
	}{
		{"matched route uses pattern", "/api/v1/rankings/paper-x", "/api/v1/rankings/{id}", "200"},
		{"first status wins", "/api/v1/rankings/missing", "/api/v1/rankings/{id}", "404"},
		{"unmatched route", "/nope", unmatchedRoute, "404"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, tt.pattern, tt.status)
			before := value(t, counter)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if got := value(t, counter) - before; got != 1 {
				t.Errorf("requests{%s,%s} delta = %v, want 1", tt.pattern, tt.status, got)
			}
		})
	}
}

func TestPrometheusMetrics_ActiveRequestsBalanced(t *testing.T) {
	router := newMetricsRouter()
	before := value(t, metrics.APIActiveRequests)

	var during float64
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		during = value(t, metrics.APIActiveRequests)
		w.WriteHeader(http.StatusNoContent)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	if during != before+1 {
		t.Errorf("in-flight during request = %v, want %v", during, before+1)
	}
	if after := value(t, metrics.APIActiveRequests); after != before {
		t.Errorf("in-flight after requests = %v, want %v", after, before)
	}
}
