// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package engagement

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/curator/internal/logging"
	"github.com/tomtom215/curator/internal/resilience"
)

// ErrSourceUnavailable is returned when the event store could not be read
// after all retries or while its circuit breaker is open.
var ErrSourceUnavailable = errors.New("engagement source unavailable")

// ResilientConfig tunes ResilientSource.
type ResilientConfig struct {
	// Attempts is the number of load attempts per Load call.
	Attempts int

	// Delay is the initial backoff, doubled after each failure.
	Delay time.Duration

	// Timeout bounds a single attempt.
	Timeout time.Duration

	// RatePerSecond paces attempts. Zero disables pacing.
	RatePerSecond float64

	// Breaker settings; the zero value uses resilience defaults.
	Breaker resilience.BreakerSettings
}

// ResilientSource retries a Source with exponential backoff behind a circuit
// breaker. Event-store queries are the pipeline's only retry point besides
// embedding calls.
type ResilientSource struct {
	inner   Source
	cfg     ResilientConfig
	cb      *gobreaker.CircuitBreaker[*Rows]
	limiter *rate.Limiter
}

// NewResilientSource wraps inner.
func NewResilientSource(inner Source, cfg ResilientConfig) *ResilientSource {
	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}
	return &ResilientSource{
		inner:   inner,
		cfg:     cfg,
		cb:      resilience.NewBreaker[*Rows]("event-store", cfg.Breaker),
		limiter: limiter,
	}
}

// Name implements Source.
func (s *ResilientSource) Name() string {
	return s.inner.Name()
}

// Load implements Source.
func (s *ResilientSource) Load(ctx context.Context) (*Rows, error) {
	var rows *Rows
	attempt := 0
	err := resilience.Retry(ctx, resilience.RetryPolicy{
		Attempts:       s.cfg.Attempts,
		Delay:          s.cfg.Delay,
		AttemptTimeout: s.cfg.Timeout,
		Limiter:        s.limiter,
	}, func(ctx context.Context) error {
		attempt++
		r, err := resilience.Execute(s.cb, func() (*Rows, error) {
			return s.inner.Load(ctx)
		})
		if err != nil {
			logging.Ctx(ctx).Warn().
				Err(err).
				Str("source", s.inner.Name()).
				Int("attempt", attempt).
				Msg("Engagement load attempt failed")
			if resilience.IsRejected(err) {
				return resilience.Permanent(err)
			}
			return err
		}
		rows = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, s.inner.Name(), err)
	}
	return rows, nil
}

// Close closes the wrapped source when it holds resources.
func (s *ResilientSource) Close() error {
	if c, ok := s.inner.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
