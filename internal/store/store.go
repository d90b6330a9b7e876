// Package store persists the ticker directory and the log of update and
// processing runs.
package store

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/bottomtick/factsboard/internal/config"
	"github.com/bottomtick/factsboard/internal/tickers"
)

// RunKind identifies what a run did.
type RunKind string

const (
	RunKindTickerUpdate RunKind = "ticker_update"
	RunKindFetch        RunKind = "fetch"
	RunKindProcess      RunKind = "process"
)

// RunStatus is the outcome of a run.
type RunStatus string

const (
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run records one ticker update or batch job.
type Run struct {
	ID         string    `json:"id"`
	Kind       RunKind   `json:"kind"`
	Status     RunStatus `json:"status"`
	Processed  int       `json:"processed"`
	Errors     int       `json:"errors"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewRun starts a run of the given kind.
func NewRun(kind RunKind) *Run {
	return &Run{
		ID:        uuid.New().String(),
		Kind:      kind,
		StartedAt: time.Now().UTC(),
	}
}

// Finish stamps the outcome. A non-nil err marks the run failed.
func (r *Run) Finish(processed, errs int, err error) {
	r.Processed = processed
	r.Errors = errs
	r.Status = RunStatusComplete
	if err != nil {
		r.Status = RunStatusFailed
		r.Error = err.Error()
	}
	r.FinishedAt = time.Now().UTC()
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Kind   RunKind   `json:"kind,omitempty"`
	Status RunStatus `json:"status,omitempty"`
	Limit  int       `json:"limit,omitempty"`
}

// DefaultRunLimit caps ListRuns when no limit is given.
const DefaultRunLimit = 100

func (f RunFilter) limit() int {
	if f.Limit <= 0 {
		return DefaultRunLimit
	}
	return f.Limit
}

func (f RunFilter) match(r Run) bool {
	if f.Kind != "" && r.Kind != f.Kind {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return true
}

// Store defines the persistence interface for the ticker directory and run log.
type Store interface {
	// Directory
	LoadDirectory(ctx context.Context) (tickers.Directory, error)
	ReplaceDirectory(ctx context.Context, d tickers.Directory) error

	// Runs
	RecordRun(ctx context.Context, r *Run) error
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates the store selected by cfg.Driver and migrates it.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case config.DriverFile, "":
		s = NewFile(cfg.Path)
	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, eris.Wrapf(err, "store: create %s", dir)
			}
		}
		s, err = NewSQLite(cfg.Path)
	case config.DriverPostgres:
		s, err = NewPostgres(ctx, cfg.DatabaseURL, &PoolConfig{MaxConns: cfg.MaxConns, MinConns: cfg.MinConns})
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Migrate(ctx); err != nil {
		s.Close() //nolint:errcheck
		return nil, err
	}
	return s, nil
}
