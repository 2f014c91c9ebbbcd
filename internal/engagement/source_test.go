// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package engagement

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/curator/internal/resilience"
)

func writeTable(t *testing.T, dir, table, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, table+".json"), []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", table, err)
	}
}

func TestJSONSource(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, TableClicks, `[{"name": "DoWhy", "section": "packages", "click_count": 7}]`)
	writeTable(t, dir, TableDwell, `[{"name": "DoWhy", "session_id": "s1", "dwell_ms": 1200, "viewable_seconds": 3.5}]`)
	writeTable(t, dir, TableSearchClicks, `[{"query_session": "q1", "results": [{"id": "package-dowhy", "position": 1}]}]`)
	writeTable(t, dir, TableSessions, `[{"session_id": "d1", "tier": "deep", "sequence": ["package-dowhy", "/paper/x"]}]`)

	src := NewJSONSource(dir)
	rows, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(rows.Clicks) != 1 || rows.Clicks[0].Count != 7 || rows.Clicks[0].Section != "packages" {
		t.Errorf("Clicks = %+v", rows.Clicks)
	}
	if len(rows.Dwell) != 1 || rows.Dwell[0].ViewableSeconds != 3.5 {
		t.Errorf("Dwell = %+v", rows.Dwell)
	}
	if len(rows.SearchClicks) != 1 || rows.SearchClicks[0].Results[0].ID != "package-dowhy" {
		t.Errorf("SearchClicks = %+v", rows.SearchClicks)
	}
	if len(rows.Sessions) != 1 || len(rows.Sessions[0].Sequence) != 2 {
		t.Errorf("Sessions = %+v", rows.Sessions)
	}
	if len(rows.Impressions) != 0 || len(rows.CoOccurrence) != 0 {
		t.Error("missing tables must load as empty")
	}
	if rows.Empty() {
		t.Error("Empty() = true, want false")
	}
}

func TestJSONSourceErrors(t *testing.T) {
	_, err := NewJSONSource(filepath.Join(t.TempDir(), "absent")).Load(context.Background())
	if err == nil {
		t.Error("Load() on a missing directory should fail")
	}

	dir := t.TempDir()
	writeTable(t, dir, TableImpressions, `{broken`)
	_, err = NewJSONSource(dir).Load(context.Background())
	if !errors.Is(err, resilience.ErrPermanent) {
		t.Errorf("Load() on malformed table error = %v, want permanent", err)
	}
}

func TestSQLSourceSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	stmts := []string{
		`CREATE TABLE content_clicks (name TEXT, section TEXT, click_count INTEGER)`,
		`INSERT INTO content_clicks VALUES ('DoWhy', 'packages', 3), ('DoWhy', 'packages', 4), (NULL, NULL, 9)`,
		`CREATE TABLE content_dwell (name TEXT, section TEXT, session_id TEXT, dwell_ms INTEGER, viewable_seconds REAL)`,
		`INSERT INTO content_dwell VALUES ('DoWhy', 'packages', 's1', 1000, 2.0), ('DoWhy', 'packages', 's1', 500, NULL)`,
		`CREATE TABLE scroll_milestones (path TEXT, milestone INTEGER)`,
		`INSERT INTO scroll_milestones VALUES ('/package/dowhy', 90), ('/package/dowhy', 90), ('/package/dowhy', 50)`,
		`CREATE TABLE search_clicks (query_session TEXT, results TEXT)`,
		`INSERT INTO search_clicks VALUES ('q1', '[{"id":"package-dowhy","position":2}]')`,
		`CREATE TABLE session_engagement (session_id TEXT, tier TEXT, sequence TEXT)`,
		`INSERT INTO session_engagement VALUES ('d1', 'deep', '["package-dowhy"]')`,
		`CREATE TABLE frustration_events (path TEXT, event_type TEXT)`,
		`INSERT INTO frustration_events VALUES ('/package/dowhy', 'rage_click')`,
		`CREATE TABLE co_occurrence (item_a TEXT, item_b TEXT, coview_count INTEGER, coclick_count INTEGER)`,
		`INSERT INTO co_occurrence VALUES ('DoWhy', 'Other', 2, NULL)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("Exec(%q) error = %v", stmt, err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	src, err := NewSource(BackendSQLite, path)
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}
	sqlSrc, ok := src.(*SQLSource)
	if !ok {
		t.Fatalf("NewSource(sqlite) = %T, want *SQLSource", src)
	}
	defer func() { _ = sqlSrc.Close() }()

	rows, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(rows.Clicks) != 1 || rows.Clicks[0].Count != 7 {
		t.Errorf("Clicks = %+v, want one row summing to 7", rows.Clicks)
	}
	if len(rows.Dwell) != 1 || rows.Dwell[0].DwellMs != 1500 || rows.Dwell[0].ViewableSeconds != 2 {
		t.Errorf("Dwell = %+v", rows.Dwell)
	}
	if len(rows.Scroll) != 2 || rows.Scroll[1].Milestone != 90 || rows.Scroll[1].Count != 2 {
		t.Errorf("Scroll = %+v", rows.Scroll)
	}
	if len(rows.SearchClicks) != 1 || rows.SearchClicks[0].Results[0].Position != 2 {
		t.Errorf("SearchClicks = %+v", rows.SearchClicks)
	}
	if len(rows.Sessions) != 1 || rows.Sessions[0].Sequence[0] != "package-dowhy" {
		t.Errorf("Sessions = %+v", rows.Sessions)
	}
	if len(rows.Frustration) != 1 || rows.Frustration[0].Count != 1 {
		t.Errorf("Frustration = %+v", rows.Frustration)
	}
	if len(rows.CoOccurrence) != 1 || rows.CoOccurrence[0].CoView != 2 || rows.CoOccurrence[0].CoClick != 0 {
		t.Errorf("CoOccurrence = %+v", rows.CoOccurrence)
	}
	if len(rows.Impressions) != 0 {
		t.Errorf("Impressions = %+v, want empty for a missing table", rows.Impressions)
	}
}

func TestNewSourceUnknownBackend(t *testing.T) {
	if _, err := NewSource("mongodb", "x"); err == nil {
		t.Error("NewSource(mongodb) should fail")
	}
	if _, err := NewSource(BackendSQLite, filepath.Join(t.TempDir(), "missing.db")); err == nil {
		t.Error("NewSource(sqlite) on a missing file should fail")
	}
}

// flakySource fails a fixed number of times before succeeding.
type flakySource struct {
	failures int32
	calls    atomic.Int32
	err      error
}

func (f *flakySource) Name() string { return "flaky" }

func (f *flakySource) Load(context.Context) (*Rows, error) {
	n := f.calls.Add(1)
	if n <= f.failures {
		return nil, f.err
	}
	return &Rows{Clicks: []ClickRow{{Name: "DoWhy", Count: 1}}}, nil
}

func TestResilientSourceRetries(t *testing.T) {
	inner := &flakySource{failures: 2, err: errors.New("connection reset")}
	src := NewResilientSource(inner, ResilientConfig{Attempts: 3, Delay: time.Millisecond})

	rows, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(rows.Clicks) != 1 {
		t.Errorf("Clicks = %+v, want 1 row", rows.Clicks)
	}
	if got := inner.calls.Load(); got != 3 {
		t.Errorf("inner calls = %d, want 3", got)
	}
	if src.Name() != "flaky" {
		t.Errorf("Name() = %q, want flaky", src.Name())
	}
	if err := src.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestResilientSourceGivesUp(t *testing.T) {
	inner := &flakySource{failures: 100, err: errors.New("timeout")}
	src := NewResilientSource(inner, ResilientConfig{Attempts: 2, Delay: time.Millisecond})

	_, err := src.Load(context.Background())
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("Load() error = %v, want ErrSourceUnavailable", err)
	}
	if got := inner.calls.Load(); got != 2 {
		t.Errorf("inner calls = %d, want 2", got)
	}
}

func TestResilientSourcePermanent(t *testing.T) {
	inner := &flakySource{failures: 100, err: resilience.Permanent(errors.New("bad schema"))}
	src := NewResilientSource(inner, ResilientConfig{Attempts: 5, Delay: time.Millisecond})

	if _, err := src.Load(context.Background()); !errors.Is(err, resilience.ErrPermanent) {
		t.Errorf("Load() error = %v, want permanent", err)
	}
	if got := inner.calls.Load(); got != 1 {
		t.Errorf("inner calls = %d, want 1", got)
	}
}
