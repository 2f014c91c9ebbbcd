// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestRunIDRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if got := RunIDFromContext(ctx); got != "" {
		t.Errorf("RunIDFromContext(empty) = %q, want empty", got)
	}

	id := GenerateRunID()
	if len(id) != 36 {
		t.Errorf("GenerateRunID() length = %d, want 36", len(id))
	}

	ctx = ContextWithRunID(ctx, id)
	if got := RunIDFromContext(ctx); got != id {
		t.Errorf("RunIDFromContext() = %q, want %q", got, id)
	}
}

func TestCtxAddsContextFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), NewTestLogger(&buf))
	ctx = ContextWithRunID(ctx, "run-123")
	ctx = ContextWithRequestID(ctx, "req-9")

	Ctx(ctx).Info().Msg("stage complete")

	out := buf.String()
	for _, want := range []string{`"run_id":"run-123"`, `"request_id":"req-9"`, "stage complete"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestLoggerFromContextFallsBackToGlobal(t *testing.T) {
	t.Parallel()

	l := LoggerFromContext(context.Background())
	if l.GetLevel() != Logger().GetLevel() {
		t.Errorf("LoggerFromContext() level = %v, want global %v", l.GetLevel(), Logger().GetLevel())
	}
}
