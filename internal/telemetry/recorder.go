// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS traces (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	started_at  INTEGER NOT NULL,
	duration_ms REAL NOT NULL,
	ok          INTEGER NOT NULL,
	error       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_traces_name ON traces(name);
CREATE INDEX IF NOT EXISTS idx_traces_started ON traces(started_at);
`

// DefaultRetention is how many traces Prune keeps.
const DefaultRetention = 5000

// Span is one recorded call.
type Span struct {
	ID         string  `db:"id" json:"id"`
	Name       string  `db:"name" json:"name"`
	StartedAt  int64   `db:"started_at" json:"started_at"`
	DurationMS float64 `db:"duration_ms" json:"duration_ms"`
	OK         bool    `db:"ok" json:"ok"`
	Error      string  `db:"error" json:"error,omitempty"`
}

// Started returns the start time.
func (s Span) Started() time.Time {
	return time.UnixMilli(s.StartedAt)
}

// Stat aggregates spans sharing a name.
type Stat struct {
	Name     string        `json:"name"`
	Count    int           `json:"count"`
	Failures int           `json:"failures"`
	Avg      time.Duration `json:"avg"`
	P95      time.Duration `json:"p95"`
	Last     time.Time     `json:"last"`
}

// =============================================================================
// RECORDER
// =============================================================================

// Recorder measures named operations and stores them in SQLite. A nil
// *Recorder is valid and runs operations without recording them.
type Recorder struct {
	db  *sqlx.DB
	mu  sync.Mutex
	now func() time.Time
}

// Open opens (creating if needed) the trace database at path.
func Open(path string) (*Recorder, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, errors.Wrap(err, "create trace directory")
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open trace database")
	}
	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA synchronous=NORMAL"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "set pragma")
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initialize schema")
	}

	return &Recorder{db: db, now: time.Now}, nil
}

// Close closes the database.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	return r.db.Close()
}

// Trace runs fn and records its duration and outcome under name. fn's
// error is returned unchanged; recording failures are dropped.
func (r *Recorder) Trace(ctx context.Context, name string, fn func(context.Context) error) error {
	if r == nil {
		return fn(ctx)
	}

	start := r.now()
	err := fn(ctx)
	span := Span{
		ID:         uuid.NewString(),
		Name:       name,
		StartedAt:  start.UnixMilli(),
		DurationMS: float64(r.now().Sub(start).Microseconds()) / 1000,
		OK:         err == nil,
	}
	if err != nil {
		span.Error = err.Error()
	}
	_ = r.Record(span)
	return err
}

// Record stores a finished span.
func (r *Recorder) Record(s Span) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.NamedExec(`INSERT INTO traces (id, name, started_at, duration_ms, ok, error)
		VALUES (:id, :name, :started_at, :duration_ms, :ok, :error)`, s)
	return errors.Wrap(err, "insert trace")
}

// Recent returns up to limit spans, newest first.
func (r *Recorder) Recent(limit int) ([]Span, error) {
	if limit <= 0 {
		limit = 50
	}
	var spans []Span
	err := r.db.Select(&spans, `SELECT id, name, started_at, duration_ms, ok, error
		FROM traces ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	return spans, errors.Wrap(err, "query traces")
}

// Stats aggregates every recorded span per name, sorted by name.
func (r *Recorder) Stats() ([]Stat, error) {
	var spans []Span
	if err := r.db.Select(&spans, `SELECT id, name, started_at, duration_ms, ok, error
		FROM traces ORDER BY name, duration_ms`); err != nil {
		return nil, errors.Wrap(err, "query traces")
	}

	var stats []Stat
	for i := 0; i < len(spans); {
		j := i
		for j < len(spans) && spans[j].Name == spans[i].Name {
			j++
		}
		stats = append(stats, aggregate(spans[i:j]))
		i = j
	}
	sort.Slice(stats, func(a, b int) bool { return stats[a].Name < stats[b].Name })
	return stats, nil
}

// aggregate expects spans sorted by duration.
func aggregate(spans []Span) Stat {
	st := Stat{Name: spans[0].Name, Count: len(spans)}
	var total float64
	var last int64
	for _, s := range spans {
		total += s.DurationMS
		if !s.OK {
			st.Failures++
		}
		if s.StartedAt > last {
			last = s.StartedAt
		}
	}
	idx := (len(spans)*95+99)/100 - 1
	st.Avg = ms(total / float64(len(spans)))
	st.P95 = ms(spans[idx].DurationMS)
	st.Last = time.UnixMilli(last)
	return st
}

func ms(v float64) time.Duration {
	return time.Duration(v * float64(time.Millisecond))
}

// Prune deletes all but the newest keep spans.
func (r *Recorder) Prune(keep int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.Exec(`DELETE FROM traces WHERE id NOT IN (
		SELECT id FROM traces ORDER BY started_at DESC, rowid DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, errors.Wrap(err, "prune traces")
	}
	return res.RowsAffected()
}
