// Package batch runs offline jobs over the companyfacts corpus: extracting
// compact per-company documents and downloading raw documents from SEC.
package batch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bottomtick/factsboard/internal/facts"
	"github.com/bottomtick/factsboard/internal/filings"
)

// DefaultConcurrency is used when Options.Concurrency is not positive.
const DefaultConcurrency = 4

// Options configures a Processor.
type Options struct {
	Concurrency int
	Policy      facts.Policy
	DEIKeys     []string
	Now         func() time.Time
}

// Result counts the outcome of a run.
type Result struct {
	Processed int64
	Skipped   int64
	Errors    int64
}

// Processor compacts raw documents into OutDir.
type Processor struct {
	loader *filings.DirLoader
	outDir string
	opts   Options
}

// NewProcessor creates a processor reading through loader and writing to outDir.
func NewProcessor(loader *filings.DirLoader, outDir string, opts Options) *Processor {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Processor{loader: loader, outDir: outDir, opts: opts}
}

// Run processes the given CIKs, or every document in the loader's directory
// when ciks is empty. A failing document is counted and logged; it never
// stops the others. Only cancellation of ctx returns an error.
func (p *Processor) Run(ctx context.Context, ciks []string) (Result, error) {
	if len(ciks) == 0 {
		var err error
		if ciks, err = p.loader.List(ctx); err != nil {
			return Result{}, err
		}
	}
	if err := os.MkdirAll(p.outDir, 0o755); err != nil {
		return Result{}, eris.Wrapf(err, "batch: create %s", p.outDir)
	}

	zap.L().Info("batch: processing corpus",
		zap.Int("documents", len(ciks)),
		zap.Int("concurrency", p.opts.Concurrency),
		zap.String("out", p.outDir),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)

	var processed, skipped, failed atomic.Int64

	for _, cik := range ciks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			log := zap.L().With(zap.String("cik", cik))

			wrote, err := p.processOne(gctx, cik)
			switch {
			case err != nil:
				failed.Add(1)
				log.Error("batch: process failed", zap.Error(err))
			case !wrote:
				skipped.Add(1)
				log.Debug("batch: no selected metrics")
			default:
				processed.Add(1)
			}
			return nil
		})
	}

	werr := g.Wait()
	res := Result{Processed: processed.Load(), Skipped: skipped.Load(), Errors: failed.Load()}
	if werr == nil {
		werr = ctx.Err()
	}
	if werr != nil {
		return res, eris.Wrap(werr, "batch: process")
	}

	zap.L().Info("batch: complete",
		zap.Int64("processed", res.Processed),
		zap.Int64("skipped", res.Skipped),
		zap.Int64("errors", res.Errors),
	)
	return res, nil
}

func (p *Processor) processOne(ctx context.Context, cik string) (bool, error) {
	doc, err := p.loader.Load(ctx, cik)
	if err != nil {
		return false, err
	}

	out := facts.Compact(doc, p.opts.Policy, p.opts.DEIKeys, p.opts.Now())
	if len(out.Facts.USGAAP) == 0 {
		return false, nil
	}

	return true, writeJSON(filepath.Join(p.outDir, filings.FileName(cik)), out)
}

// writeJSON writes v to a temp file beside path and renames it into place.
func writeJSON(path string, v any) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return eris.Wrap(err, "batch: create temp")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if err := json.NewEncoder(tmp).Encode(v); err != nil {
		tmp.Close() //nolint:errcheck
		return eris.Wrapf(err, "batch: encode %s", path)
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "batch: close temp")
	}
	return eris.Wrapf(os.Rename(tmp.Name(), path), "batch: rename %s", path)
}
