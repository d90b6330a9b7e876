package batch

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bottomtick/factsboard/internal/fetcher"
	"github.com/bottomtick/factsboard/internal/filings"
)

// DefaultFactsURL is SEC's companyfacts endpoint.
const DefaultFactsURL = "https://data.sec.gov/api/xbrl/companyfacts"

// Downloader saves companyfacts documents into a loader's directory.
type Downloader struct {
	fetcher     fetcher.Fetcher
	loader      *filings.DirLoader
	baseURL     string
	concurrency int
}

// NewDownloader creates a downloader. An empty baseURL selects
// DefaultFactsURL.
func NewDownloader(f fetcher.Fetcher, loader *filings.DirLoader, baseURL string, concurrency int) *Downloader {
	if baseURL == "" {
		baseURL = DefaultFactsURL
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Downloader{
		fetcher:     f,
		loader:      loader,
		baseURL:     strings.TrimRight(baseURL, "/"),
		concurrency: concurrency,
	}
}

// URL returns the companyfacts URL for a CIK.
func (d *Downloader) URL(cik string) string {
	return fmt.Sprintf("%s/%s", d.baseURL, filings.FileName(cik))
}

// Run downloads each CIK. Failures are counted and logged per company.
func (d *Downloader) Run(ctx context.Context, ciks []string) (Result, error) {
	if err := os.MkdirAll(d.loader.Dir(), 0o755); err != nil {
		return Result{}, eris.Wrapf(err, "batch: create %s", d.loader.Dir())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	var done, failed atomic.Int64
	for _, cik := range ciks {
		g.Go(func() error {
			url := d.URL(cik)
			n, err := d.fetcher.DownloadToFile(gctx, url, d.loader.Path(cik))
			if err != nil {
				failed.Add(1)
				zap.L().Error("batch: download failed", zap.String("cik", cik), zap.String("url", url), zap.Error(err))
				return nil
			}
			done.Add(1)
			zap.L().Info("batch: downloaded", zap.String("cik", cik), zap.Int64("bytes", n))
			return nil
		})
	}

	werr := g.Wait()
	res := Result{Processed: done.Load(), Errors: failed.Load()}
	if werr == nil {
		werr = ctx.Err()
	}
	if werr != nil {
		return res, eris.Wrap(werr, "batch: download")
	}
	return res, nil
}
