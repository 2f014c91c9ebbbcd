// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

func TestSlogHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSlogHandler(zerolog.New(&buf)))

	logger.With("service", "pipeline").
		WithGroup("run").
		Info("service restarted", "attempt", 2, "backoff", 15*time.Second)

	out := buf.String()
	for _, want := range []string{
		`"service":"pipeline"`,
		`"run.attempt":2`,
		`"message":"service restarted"`,
		`"level":"info"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestSlogHandlerLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelInfo, `"level":"info"`},
		{slog.LevelWarn, `"level":"warn"`},
		{slog.LevelError, `"level":"error"`},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(NewSlogHandler(zerolog.New(&buf).Level(zerolog.TraceLevel)))
			logger.Log(context.Background(), tt.level, "x")
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output = %s, want %s", buf.String(), tt.want)
			}
		})
	}
}

func TestSlogToZerologLevel(t *testing.T) {
	t.Parallel()

	if got := slogToZerologLevel(slog.LevelWarn); got != zerolog.WarnLevel {
		t.Errorf("slogToZerologLevel(warn) = %v, want warn", got)
	}
	if got := slogToZerologLevel(slog.Level(-8)); got != zerolog.TraceLevel {
		t.Errorf("slogToZerologLevel(-8) = %v, want trace", got)
	}
}

func TestWatermillLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	wl := NewWatermillLogger(zerolog.New(&buf)).With(watermill.LogFields{"topic": "curator.run.completed"})
	wl.Error("publish failed", errors.New("nats down"), watermill.LogFields{"attempt": 1})

	out := buf.String()
	for _, want := range []string{`"topic":"curator.run.completed"`, `"attempt":1`, `"error":"nats down"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}
