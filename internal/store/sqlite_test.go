package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bottomtick/factsboard/internal/tickers"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_Migrate_Idempotent(t *testing.T) {
	s := newTestSQLite(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestSQLiteStore_Directory(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	d, err := s.LoadDirectory(ctx)
	require.NoError(t, err)
	assert.Empty(t, d)

	require.NoError(t, s.ReplaceDirectory(ctx, sampleDirectory()))
	d, err = s.LoadDirectory(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleDirectory(), d)

	e, ok := d.Lookup("msft")
	require.True(t, ok)
	assert.Equal(t, "0000789019", e.CIK)

	// Replacement drops entries absent from the new directory.
	small := tickers.Directory{}
	small.Add(tickers.Entry{Ticker: "TSLA", CIK: "1318605", Title: "Tesla, Inc."})
	require.NoError(t, s.ReplaceDirectory(ctx, small))
	d, err = s.LoadDirectory(ctx)
	require.NoError(t, err)
	assert.Equal(t, small, d)
}

func TestSQLiteStore_Runs(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	ok := NewRun(RunKindProcess)
	ok.Finish(40, 1, nil)
	require.NoError(t, s.RecordRun(ctx, ok))

	failed := NewRun(RunKindTickerUpdate)
	failed.StartedAt = ok.StartedAt.Add(time.Second)
	failed.Finish(0, 0, errors.New("upstream status 503"))
	require.NoError(t, s.RecordRun(ctx, failed))

	runs, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, failed.ID, runs[0].ID)
	assert.Equal(t, RunStatusFailed, runs[0].Status)
	assert.Equal(t, "upstream status 503", runs[0].Error)
	assert.WithinDuration(t, failed.StartedAt, runs[0].StartedAt, time.Millisecond)

	runs, err = s.ListRuns(ctx, RunFilter{Kind: RunKindProcess})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 40, runs[0].Processed)
	assert.Equal(t, 1, runs[0].Errors)

	runs, err = s.ListRuns(ctx, RunFilter{Status: RunStatusComplete, Limit: 10})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, ok.ID, runs[0].ID)
}

func TestSQLiteStore_RecordRun_Upsert(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	r := NewRun(RunKindFetch)
	r.Finish(1, 0, nil)
	require.NoError(t, s.RecordRun(ctx, r))
	r.Finish(3, 1, nil)
	require.NoError(t, s.RecordRun(ctx, r))

	runs, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 3, runs[0].Processed)
}
