package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/bottomtick/factsboard/internal/tickers"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS tickers (
	ticker TEXT PRIMARY KEY,
	cik    TEXT NOT NULL,
	title  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	kind        TEXT NOT NULL,
	status      TEXT NOT NULL,
	processed   INTEGER NOT NULL DEFAULT 0,
	errors      INTEGER NOT NULL DEFAULT 0,
	error       TEXT NOT NULL DEFAULT '',
	started_at  DATETIME NOT NULL,
	finished_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tickers_cik ON tickers(cik);
CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) LoadDirectory(ctx context.Context) (tickers.Directory, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ticker, cik, title FROM tickers`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load directory")
	}
	defer rows.Close()

	d := tickers.Directory{}
	for rows.Next() {
		var e tickers.Entry
		if err := rows.Scan(&e.Ticker, &e.CIK, &e.Title); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan ticker")
		}
		d.Add(e)
	}
	return d, eris.Wrap(rows.Err(), "sqlite: load directory iterate")
}

// ReplaceDirectory swaps the whole table in one transaction.
func (s *SQLiteStore) ReplaceDirectory(ctx context.Context, d tickers.Directory) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM tickers`); err != nil {
		return eris.Wrap(err, "sqlite: clear tickers")
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tickers (ticker, cik, title) VALUES (?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert ticker")
	}
	defer stmt.Close()

	for _, e := range d.Entries() {
		if _, err := stmt.ExecContext(ctx, e.Ticker, e.CIK, e.Title); err != nil {
			return eris.Wrapf(err, "sqlite: insert ticker %s", e.Ticker)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit")
}

func (s *SQLiteStore) RecordRun(ctx context.Context, r *Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, status, processed, errors, error, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET status = excluded.status, processed = excluded.processed,
		 errors = excluded.errors, error = excluded.error, finished_at = excluded.finished_at`,
		r.ID, string(r.Kind), string(r.Status), r.Processed, r.Errors, r.Error, r.StartedAt, r.FinishedAt,
	)
	return eris.Wrapf(err, "sqlite: record run %s", r.ID)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	query := `SELECT id, kind, status, processed, errors, error, started_at, finished_at FROM runs WHERE 1=1`
	var args []any

	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(filter.Kind))
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, filter.limit())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*Run, error) {
	var r Run
	var kind, status string
	err := row.Scan(&r.ID, &kind, &status, &r.Processed, &r.Errors, &r.Error, &r.StartedAt, &r.FinishedAt)
	if err != nil {
		return nil, eris.Wrap(err, "scan run")
	}
	r.Kind = RunKind(kind)
	r.Status = RunStatus(status)
	return &r, nil
}
