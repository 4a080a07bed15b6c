// Package store keeps a local history of crosswalk builds in SQLite so
// `crosswalk status` can answer what was built, when, and how well it
// covered the canonical sector list.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// BuildLog records crosswalk build runs.
type BuildLog struct {
	db *sql.DB
}

// NewBuildLog opens the build-log database at the given path and
// configures WAL mode.
func NewBuildLog(dsn string) (*BuildLog, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "store: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "store: exec %s", pragma)
		}
	}
	return &BuildLog{db: db}, nil
}

const buildLogMigration = `
CREATE TABLE IF NOT EXISTS builds (
	id           TEXT PRIMARY KEY,
	status       TEXT NOT NULL DEFAULT 'running',
	weight_on    TEXT NOT NULL,
	output       TEXT NOT NULL,
	bridge_rows  INTEGER NOT NULL DEFAULT 0,
	totals_rows  INTEGER NOT NULL DEFAULT 0,
	expected     INTEGER NOT NULL DEFAULT 0,
	covered      INTEGER NOT NULL DEFAULT 0,
	fallback     INTEGER NOT NULL DEFAULT 0,
	error        TEXT,
	started_at   DATETIME NOT NULL,
	completed_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_builds_status ON builds(status);
CREATE INDEX IF NOT EXISTS idx_builds_started_at ON builds(started_at);
`

func (l *BuildLog) Migrate(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, buildLogMigration)
	return eris.Wrap(err, "store: migrate")
}

func (l *BuildLog) Close() error {
	return l.db.Close()
}

// BuildEntry is one recorded build run.
type BuildEntry struct {
	ID          string
	Status      string
	WeightOn    string
	Output      string
	BridgeRows  int64
	TotalsRows  int64
	Expected    int
	Covered     int
	Fallback    int
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time
}

// BuildResult holds the outcome of a successful build, passed to Complete.
type BuildResult struct {
	BridgeRows int64
	TotalsRows int64
	Expected   int
	Covered    int
	Fallback   int
}

// Start records the beginning of a build run and returns its id.
func (l *BuildLog) Start(ctx context.Context, weightOn, output string) (string, error) {
	id := uuid.New().String()
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO builds (id, status, weight_on, output, started_at) VALUES (?, 'running', ?, ?, ?)`,
		id, weightOn, output, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "store: start build")
	}
	return id, nil
}

// Complete marks a build run as successfully completed.
func (l *BuildLog) Complete(ctx context.Context, id string, result BuildResult) error {
	res, err := l.db.ExecContext(ctx,
		`UPDATE builds
		 SET status = 'complete', completed_at = ?, bridge_rows = ?, totals_rows = ?,
		     expected = ?, covered = ?, fallback = ?
		 WHERE id = ?`,
		time.Now().UTC(), result.BridgeRows, result.TotalsRows,
		result.Expected, result.Covered, result.Fallback, id,
	)
	if err != nil {
		return eris.Wrapf(err, "store: complete build %s", id)
	}
	return checkRowsAffected(res, id)
}

// Fail marks a build run as failed with an error message.
func (l *BuildLog) Fail(ctx context.Context, id string, errMsg string) error {
	res, err := l.db.ExecContext(ctx,
		`UPDATE builds SET status = 'failed', completed_at = ?, error = ? WHERE id = ?`,
		time.Now().UTC(), errMsg, id,
	)
	if err != nil {
		return eris.Wrapf(err, "store: fail build %s", id)
	}
	return checkRowsAffected(res, id)
}

// Recent returns the most recent build runs, newest first.
func (l *BuildLog) Recent(ctx context.Context, limit int) ([]BuildEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, status, weight_on, output, bridge_rows, totals_rows,
		        expected, covered, fallback, error, started_at, completed_at
		 FROM builds ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "store: list builds")
	}
	defer rows.Close()

	var entries []BuildEntry
	for rows.Next() {
		var e BuildEntry
		var errStr sql.NullString
		var completedAt sql.NullTime
		if err := rows.Scan(&e.ID, &e.Status, &e.WeightOn, &e.Output,
			&e.BridgeRows, &e.TotalsRows, &e.Expected, &e.Covered, &e.Fallback,
			&errStr, &e.StartedAt, &completedAt); err != nil {
			return nil, eris.Wrap(err, "store: scan build")
		}
		if errStr.Valid {
			e.Error = errStr.String
		}
		if completedAt.Valid {
			t := completedAt.Time
			e.CompletedAt = &t
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "store: list builds iterate")
}

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "store: rows affected")
	}
	if n == 0 {
		return eris.Errorf("store: build not found: %s", id)
	}
	return nil
}
