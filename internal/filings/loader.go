// Package filings reads raw company facts documents from local storage.
package filings

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bottomtick/factsboard/internal/xbrl"
)

// ErrNotFound is returned when no document exists for a CIK.
var ErrNotFound = eris.New("filings: document not found")

// DefaultTimeout bounds a single document read.
const DefaultTimeout = 10 * time.Second

// Loader loads the raw facts document for a company.
type Loader interface {
	Load(ctx context.Context, cik string) (*xbrl.CompanyFacts, error)
}

// DirLoader reads CIK{cik}.json files from a directory.
type DirLoader struct {
	dir     string
	timeout time.Duration
}

// NewDirLoader creates a loader rooted at dir. A non-positive timeout
// selects DefaultTimeout.
func NewDirLoader(dir string, timeout time.Duration) *DirLoader {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &DirLoader{dir: dir, timeout: timeout}
}

// Dir returns the root directory.
func (l *DirLoader) Dir() string { return l.dir }

// FileName returns the document file name for a CIK.
func FileName(cik string) string {
	return "CIK" + xbrl.PadCIK(cik) + ".json"
}

// Path returns the document path for a CIK.
func (l *DirLoader) Path(cik string) string {
	return filepath.Join(l.dir, FileName(cik))
}

type loadResult struct {
	doc *xbrl.CompanyFacts
	err error
}

// Load reads and parses the document for cik. A missing file yields
// ErrNotFound; a read that outlives the timeout yields the context error.
func (l *DirLoader) Load(ctx context.Context, cik string) (*xbrl.CompanyFacts, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	path := l.Path(cik)
	done := make(chan loadResult, 1)
	go func() {
		doc, err := readDocument(path)
		done <- loadResult{doc: doc, err: err}
	}()

	select {
	case <-ctx.Done():
		zap.L().Warn("filings: load timed out", zap.String("path", path), zap.Duration("timeout", l.timeout))
		return nil, eris.Wrapf(ctx.Err(), "filings: load %s", path)
	case r := <-done:
		return r.doc, r.err
	}
}

func readDocument(path string) (*xbrl.CompanyFacts, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, eris.Wrapf(ErrNotFound, "filings: open %s", path)
		}
		return nil, eris.Wrapf(err, "filings: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	doc, err := xbrl.ParseCompanyFacts(f)
	if err != nil {
		return nil, eris.Wrapf(err, "filings: parse %s", path)
	}
	return doc, nil
}

// List returns the CIKs of every document in the directory, sorted.
func (l *DirLoader) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, eris.Wrapf(err, "filings: list %s", l.dir)
	}

	ciks := make([]string, 0, len(entries))
	for _, e := range entries {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "filings: list")
		}
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "CIK") || !strings.HasSuffix(name, ".json") {
			continue
		}
		ciks = append(ciks, strings.TrimSuffix(strings.TrimPrefix(name, "CIK"), ".json"))
	}
	sort.Strings(ciks)
	return ciks, nil
}
