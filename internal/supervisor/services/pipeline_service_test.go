// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/curator/internal/recommend"
)

// mockRunner is a PipelineRunner for testing.
type mockRunner struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *mockRunner) Run(_ context.Context) (*recommend.RunResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &recommend.RunResult{RunID: "run"}, nil
}

func (m *mockRunner) getCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestPipelineService_String(t *testing.T) {
	s := NewPipelineService(&mockRunner{}, PipelineServiceConfig{}, zerolog.Nop())
	if got := s.String(); got != "pipeline-scheduler" {
		t.Errorf("String() = %q, want %q", got, "pipeline-scheduler")
	}
	if s.config.Interval != 24*time.Hour {
		t.Errorf("default Interval = %v, want 24h", s.config.Interval)
	}
}

func TestPipelineService_RunOnStartup(t *testing.T) {
	runner := &mockRunner{}
	var mu sync.Mutex
	var succeeded []string
	s := NewPipelineService(runner, PipelineServiceConfig{
		RunOnStartup: true,
		Interval:     time.Hour,
		OnSuccess: func(res *recommend.RunResult) {
			mu.Lock()
			succeeded = append(succeeded, res.RunID)
			mu.Unlock()
		},
	}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := s.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() error = %v, want context.DeadlineExceeded", err)
	}
	if runner.getCalls() != 1 {
		t.Errorf("runs = %d, want 1", runner.getCalls())
	}
	mu.Lock()
	defer mu.Unlock()
	if len(succeeded) != 1 {
		t.Errorf("OnSuccess calls = %d, want 1", len(succeeded))
	}
}

func TestPipelineService_Ticker(t *testing.T) {
	runner := &mockRunner{}
	s := NewPipelineService(runner, PipelineServiceConfig{Interval: 20 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	_ = s.Serve(ctx)

	if runner.getCalls() < 2 {
		t.Errorf("runs = %d, want at least 2 scheduled runs", runner.getCalls())
	}
}

func TestPipelineService_FailuresDoNotStopService(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"run failure", errors.New("catalog: missing")},
		{"run in progress", recommend.ErrRunInProgress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockRunner{err: tt.err}
			called := false
			s := NewPipelineService(runner, PipelineServiceConfig{
				RunOnStartup: true,
				Interval:     20 * time.Millisecond,
				OnSuccess:    func(*recommend.RunResult) { called = true },
			}, zerolog.Nop())

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			if err := s.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("Serve() error = %v, want context.DeadlineExceeded", err)
			}
			if runner.getCalls() < 2 {
				t.Errorf("runs = %d, want retries on schedule", runner.getCalls())
			}
			if called {
				t.Error("OnSuccess called for a failed run")
			}
		})
	}
}
