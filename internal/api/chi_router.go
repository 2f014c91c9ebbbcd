// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/curator/internal/middleware"
)

// Handler returns the chi router serving all endpoints.
func (s *Server) Handler() http.Handler {
	mw := NewChiMiddleware(&ChiMiddlewareConfig{
		CORSAllowedOrigins: s.config.CORSOrigins,
		CORSAllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type", "If-None-Match", "X-Request-ID"},
		CORSExposedHeaders: []string{"ETag", "X-Request-ID"},
		CORSMaxAge:         86400,
		RateLimitRequests:  s.config.RateLimitRequests,
		RateLimitWindow:    s.config.RateLimitWindow,
		RateLimitDisabled:  s.config.RateLimitDisabled,
	})

	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	// ========================
	// Operational Endpoints
	// ========================
	r.Get("/healthz", s.Health)
	r.Handle("/metrics", promhttp.Handler())

	// ========================
	// Ranking Endpoints
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.RateLimit())
		r.Use(chimiddleware.SetHeader("Cache-Control", "public, max-age=60"))
		r.Use(s.requireSnapshot)

		r.Get("/rankings", s.Rankings)
		r.Get("/rankings/{id}", s.Ranking)
		r.Get("/carousels", s.Carousels)
		r.Get("/carousels/{id}", s.Carousel)
		r.Get("/trending", s.Trending)
	})

	return r
}
