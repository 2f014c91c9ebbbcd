// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package engagement

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/tomtom215/curator/internal/resilience"
)

// Source backends accepted by NewSource.
const (
	BackendJSON   = "json"
	BackendDuckDB = "duckdb"
	BackendSQLite = "sqlite"
)

// NewSource opens the configured event backend. SQL sources hold a database
// handle; callers close them through io.Closer.
func NewSource(backend, path string) (Source, error) {
	switch backend {
	case BackendJSON:
		return NewJSONSource(path), nil
	case BackendSQLite:
		db, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return NewSQLSource(db, "sqlite:"+path), nil
	case BackendDuckDB:
		db, err := OpenDuckDB(path)
		if err != nil {
			return nil, err
		}
		return NewSQLSource(db, "duckdb:"+path), nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", backend)
	}
}

// OpenSQLite opens an event store exported from the edge database.
func OpenSQLite(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("sqlite event store: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite event store: %w", err)
	}
	return db, nil
}

// OpenDuckDB opens a DuckDB event store. A database file is opened read-only.
// A directory is exposed through an in-memory database with one view per
// table over <table>.parquet or <table>.csv.
func OpenDuckDB(path string) (*sql.DB, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("duckdb event store: %w", err)
	}

	// Disable auto-install/auto-load to prevent hangs in restricted network environments
	if !info.IsDir() {
		connStr := fmt.Sprintf("%s?access_mode=read_only&autoinstall_known_extensions=false&autoload_known_extensions=false", path)
		db, err := sql.Open("duckdb", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open duckdb event store: %w", err)
		}
		return db, nil
	}

	db, err := sql.Open("duckdb", ":memory:?autoinstall_known_extensions=false&autoload_known_extensions=false")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory duckdb: %w", err)
	}
	// Views live in the single in-memory database of one connection.
	db.SetMaxOpenConns(1)

	for _, table := range sqlTables {
		reader := tableReader(path, table)
		if reader == "" {
			continue
		}
		stmt := fmt.Sprintf("CREATE VIEW %s AS SELECT * FROM %s", table, reader)
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create view %s: %w", table, err)
		}
	}
	return db, nil
}

var sqlTables = []string{
	TableClicks, TableImpressions, TableDwell, TableScroll,
	TableSearchClicks, TableSessions, TableFrustration, TableCoOccurrence,
}

func tableReader(dir, table string) string {
	for _, f := range []struct{ ext, fn string }{
		{".parquet", "read_parquet"},
		{".csv", "read_csv_auto"},
	} {
		p := filepath.Join(dir, table+f.ext)
		if _, err := os.Stat(p); err == nil {
			return fmt.Sprintf("%s('%s')", f.fn, strings.ReplaceAll(p, "'", "''"))
		}
	}
	return ""
}

// SQLSource reads the event tables through database/sql. Counts are summed
// per key so both raw event logs and pre-aggregated exports work.
type SQLSource struct {
	db   *sql.DB
	name string
}

// NewSQLSource wraps an open database.
func NewSQLSource(db *sql.DB, name string) *SQLSource {
	return &SQLSource{db: db, name: name}
}

// Name implements Source.
func (s *SQLSource) Name() string {
	return s.name
}

// Close closes the underlying database.
func (s *SQLSource) Close() error {
	return s.db.Close()
}

// Load implements Source.
func (s *SQLSource) Load(ctx context.Context) (*Rows, error) {
	rows := &Rows{}
	loaders := []func(context.Context, *Rows) error{
		s.loadClicks,
		s.loadImpressions,
		s.loadDwell,
		s.loadScroll,
		s.loadSearchClicks,
		s.loadSessions,
		s.loadFrustration,
		s.loadCoOccurrence,
	}
	for _, load := range loaders {
		if err := load(ctx, rows); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func (s *SQLSource) loadClicks(ctx context.Context, out *Rows) error {
	q := sq.Select("name", "COALESCE(section, '')", "CAST(SUM(click_count) AS BIGINT)").
		From(TableClicks).
		Where(sq.NotEq{"name": nil}).
		GroupBy("name", "section").
		OrderBy("name", "section")
	return s.query(ctx, TableClicks, q, func(r *sql.Rows) error {
		var row ClickRow
		if err := r.Scan(&row.Name, &row.Section, &row.Count); err != nil {
			return err
		}
		out.Clicks = append(out.Clicks, row)
		return nil
	})
}

func (s *SQLSource) loadImpressions(ctx context.Context, out *Rows) error {
	q := sq.Select("name", "COALESCE(section, '')", "CAST(SUM(impression_count) AS BIGINT)").
		From(TableImpressions).
		Where(sq.NotEq{"name": nil}).
		GroupBy("name", "section").
		OrderBy("name", "section")
	return s.query(ctx, TableImpressions, q, func(r *sql.Rows) error {
		var row ImpressionRow
		if err := r.Scan(&row.Name, &row.Section, &row.Count); err != nil {
			return err
		}
		out.Impressions = append(out.Impressions, row)
		return nil
	})
}

func (s *SQLSource) loadDwell(ctx context.Context, out *Rows) error {
	q := sq.Select(
		"name",
		"COALESCE(section, '')",
		"COALESCE(session_id, '')",
		"CAST(SUM(dwell_ms) AS BIGINT)",
		"CAST(SUM(COALESCE(viewable_seconds, 0)) AS DOUBLE)",
	).
		From(TableDwell).
		Where(sq.NotEq{"name": nil}).
		GroupBy("name", "section", "session_id").
		OrderBy("name", "section", "session_id")
	return s.query(ctx, TableDwell, q, func(r *sql.Rows) error {
		var row DwellRow
		if err := r.Scan(&row.Name, &row.Section, &row.SessionID, &row.DwellMs, &row.ViewableSeconds); err != nil {
			return err
		}
		out.Dwell = append(out.Dwell, row)
		return nil
	})
}

func (s *SQLSource) loadScroll(ctx context.Context, out *Rows) error {
	q := sq.Select("path", "milestone", "COUNT(*)").
		From(TableScroll).
		Where(sq.NotEq{"path": nil}).
		GroupBy("path", "milestone").
		OrderBy("path", "milestone")
	return s.query(ctx, TableScroll, q, func(r *sql.Rows) error {
		var row ScrollRow
		if err := r.Scan(&row.Path, &row.Milestone, &row.Count); err != nil {
			return err
		}
		out.Scroll = append(out.Scroll, row)
		return nil
	})
}

func (s *SQLSource) loadSearchClicks(ctx context.Context, out *Rows) error {
	q := sq.Select("COALESCE(query_session, '')", "CAST(results AS VARCHAR)").
		From(TableSearchClicks).
		Where(sq.NotEq{"results": nil}).
		OrderBy("query_session")
	return s.query(ctx, TableSearchClicks, q, func(r *sql.Rows) error {
		var (
			row     SearchClickRow
			payload string
		)
		if err := r.Scan(&row.QuerySession, &payload); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(payload), &row.Results); err != nil {
			return fmt.Errorf("decode results of %s: %w", row.QuerySession, err)
		}
		out.SearchClicks = append(out.SearchClicks, row)
		return nil
	})
}

func (s *SQLSource) loadSessions(ctx context.Context, out *Rows) error {
	q := sq.Select("COALESCE(session_id, '')", "COALESCE(tier, '')", "CAST(sequence AS VARCHAR)").
		From(TableSessions).
		Where(sq.NotEq{"sequence": nil}).
		OrderBy("session_id")
	return s.query(ctx, TableSessions, q, func(r *sql.Rows) error {
		var (
			row     SessionRow
			payload string
		)
		if err := r.Scan(&row.SessionID, &row.Tier, &payload); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(payload), &row.Sequence); err != nil {
			return fmt.Errorf("decode sequence of %s: %w", row.SessionID, err)
		}
		out.Sessions = append(out.Sessions, row)
		return nil
	})
}

func (s *SQLSource) loadFrustration(ctx context.Context, out *Rows) error {
	q := sq.Select("path", "event_type", "COUNT(*)").
		From(TableFrustration).
		Where(sq.NotEq{"path": nil}).
		GroupBy("path", "event_type").
		OrderBy("path", "event_type")
	return s.query(ctx, TableFrustration, q, func(r *sql.Rows) error {
		var row FrustrationRow
		if err := r.Scan(&row.Path, &row.EventType, &row.Count); err != nil {
			return err
		}
		out.Frustration = append(out.Frustration, row)
		return nil
	})
}

func (s *SQLSource) loadCoOccurrence(ctx context.Context, out *Rows) error {
	q := sq.Select(
		"item_a",
		"item_b",
		"CAST(SUM(COALESCE(coview_count, 0)) AS BIGINT)",
		"CAST(SUM(COALESCE(coclick_count, 0)) AS BIGINT)",
	).
		From(TableCoOccurrence).
		Where(sq.And{sq.NotEq{"item_a": nil}, sq.NotEq{"item_b": nil}}).
		GroupBy("item_a", "item_b").
		OrderBy("item_a", "item_b")
	return s.query(ctx, TableCoOccurrence, q, func(r *sql.Rows) error {
		var row CoOccurrenceRow
		if err := r.Scan(&row.ItemA, &row.ItemB, &row.CoView, &row.CoClick); err != nil {
			return err
		}
		out.CoOccurrence = append(out.CoOccurrence, row)
		return nil
	})
}

// query runs b and calls scan for each row. A missing table yields no rows.
func (s *SQLSource) query(ctx context.Context, table string, b sq.SelectBuilder, scan func(*sql.Rows) error) error {
	query, args, err := b.ToSql()
	if err != nil {
		return resilience.Permanent(fmt.Errorf("build %s query: %w", table, err))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		if isMissingTable(err) {
			return nil
		}
		return fmt.Errorf("query %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("scan %s: %w", table, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate %s: %w", table, err)
	}
	return nil
}

func isMissingTable(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such table") ||
		(strings.Contains(msg, "table with name") && strings.Contains(msg, "does not exist"))
}
