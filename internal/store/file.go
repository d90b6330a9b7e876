package store

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/bottomtick/factsboard/internal/tickers"
)

// FileStore keeps the directory as a JSON file and appends runs to a JSON
// lines file beside it.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFile creates a FileStore for the directory file at path.
func NewFile(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) runsPath() string {
	return s.path + ".runs.jsonl"
}

// Migrate creates the parent directory.
func (s *FileStore) Migrate(_ context.Context) error {
	return eris.Wrap(os.MkdirAll(filepath.Dir(s.path), 0o755), "file: migrate")
}

// Close is a no-op; the file store holds no open handles.
func (s *FileStore) Close() error { return nil }

// LoadDirectory reads the directory file. A missing file is an empty directory.
func (s *FileStore) LoadDirectory(_ context.Context) (tickers.Directory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return tickers.Directory{}, nil
		}
		return nil, eris.Wrap(err, "file: open directory")
	}
	defer f.Close() //nolint:errcheck

	return tickers.Decode(f)
}

// ReplaceDirectory writes the directory to a temp file and renames it over
// the old one, so readers never see a partial file.
func (s *FileStore) ReplaceDirectory(_ context.Context, d tickers.Directory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return eris.Wrap(err, "file: create temp")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if err := d.Encode(tmp); err != nil {
		tmp.Close() //nolint:errcheck
		return err
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "file: close temp")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return eris.Wrap(err, "file: rename directory")
	}
	return nil
}

// RecordRun appends a run.
func (s *FileStore) RecordRun(_ context.Context, r *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, err := json.Marshal(r)
	if err != nil {
		return eris.Wrap(err, "file: marshal run")
	}

	f, err := os.OpenFile(s.runsPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return eris.Wrap(err, "file: open runs")
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close() //nolint:errcheck
		return eris.Wrap(err, "file: append run")
	}
	return eris.Wrap(f.Close(), "file: close runs")
}

// ListRuns returns matching runs, newest first.
func (s *FileStore) ListRuns(_ context.Context, filter RunFilter) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.runsPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "file: open runs")
	}
	defer f.Close() //nolint:errcheck

	var runs []Run
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var r Run
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			return nil, eris.Wrap(err, "file: decode run")
		}
		if filter.match(r) {
			runs = append(runs, r)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrap(err, "file: read runs")
	}

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })
	if len(runs) > filter.limit() {
		runs = runs[:filter.limit()]
	}
	return runs, nil
}
