// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// ErrPermanent marks an error that must not be retried.
var ErrPermanent = errors.New("permanent failure")

// Permanent wraps err so Retry returns it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// RetryPolicy controls Retry.
type RetryPolicy struct {
	// Attempts is the total number of tries (minimum 1).
	Attempts int

	// Delay is the wait after the first failure; it doubles on each retry.
	Delay time.Duration

	// MaxDelay caps the backoff. Zero means no cap.
	MaxDelay time.Duration

	// AttemptTimeout bounds each try. Zero means no per-attempt deadline.
	AttemptTimeout time.Duration

	// Limiter paces attempts. Nil means unlimited.
	Limiter *rate.Limiter
}

// Retry calls fn until it succeeds, returns a permanent error, the attempts
// are exhausted or ctx is cancelled. The last error is returned.
func Retry(ctx context.Context, p RetryPolicy, fn func(ctx context.Context) error) error {
	attempts := max(1, p.Attempts)
	delay := p.Delay

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if p.Limiter != nil {
			if err := p.Limiter.Wait(ctx); err != nil {
				return errors.Join(lastErr, err)
			}
		}

		lastErr = runAttempt(ctx, p.AttemptTimeout, fn)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, ErrPermanent) || ctx.Err() != nil {
			return lastErr
		}

		if attempt < attempts-1 && delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return errors.Join(lastErr, ctx.Err())
			}
			delay *= 2
			if p.MaxDelay > 0 && delay > p.MaxDelay {
				delay = p.MaxDelay
			}
		}
	}
	return fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

func runAttempt(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(attemptCtx)
}
