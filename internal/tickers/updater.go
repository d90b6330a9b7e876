package tickers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bottomtick/factsboard/internal/fetcher"
	"github.com/bottomtick/factsboard/internal/xbrl"
)

// DefaultURL is SEC's published ticker file.
const DefaultURL = "https://www.sec.gov/files/company_tickers.json"

// UpstreamError reports a failed fetch of the ticker file.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return "tickers: upstream: " + e.Message
	}
	return fmt.Sprintf("tickers: upstream status %d: %s", e.Status, e.Message)
}

// Saver persists a complete directory.
type Saver interface {
	ReplaceDirectory(ctx context.Context, d Directory) error
}

// Updater refreshes the directory from SEC.
type Updater struct {
	fetcher fetcher.Fetcher
	saver   Saver
	url     string
}

// NewUpdater creates an updater. An empty url selects DefaultURL.
func NewUpdater(f fetcher.Fetcher, s Saver, url string) *Updater {
	if url == "" {
		url = DefaultURL
	}
	return &Updater{fetcher: f, saver: s, url: url}
}

// secRow is one record of company_tickers.json, which is keyed "0", "1", ...
type secRow struct {
	CIK    xbrl.CIK `json:"cik_str"`
	Ticker string   `json:"ticker"`
	Title  string   `json:"title"`
}

// Update downloads the ticker file, transforms it and replaces the stored
// directory. On any fetch or decode failure the stored directory is not
// touched and an *UpstreamError is returned.
func (u *Updater) Update(ctx context.Context) (Directory, error) {
	log := zap.L().With(zap.String("url", u.url))

	rows, err := fetcher.FetchJSON[map[string]secRow](ctx, u.fetcher, u.url)
	if err != nil {
		var se *fetcher.StatusError
		if errors.As(err, &se) {
			log.Error("tickers: upstream rejected request", zap.Int("status", se.StatusCode))
			return nil, &UpstreamError{Status: se.StatusCode, Message: se.Text()}
		}
		log.Error("tickers: fetch failed", zap.Error(err))
		return nil, &UpstreamError{Message: err.Error()}
	}

	dir := transform(*rows)
	if len(dir) == 0 {
		return nil, &UpstreamError{Message: "ticker file contained no entries"}
	}

	if err := u.saver.ReplaceDirectory(ctx, dir); err != nil {
		return nil, eris.Wrap(err, "tickers: save directory")
	}

	log.Info("tickers: directory updated", zap.Int("count", len(dir)))
	return dir, nil
}

// transform converts SEC rows into a directory. Rows are applied in index
// order so a ticker listed twice keeps its last record.
func transform(rows map[string]secRow) Directory {
	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA != nil || errB != nil {
			return keys[i] < keys[j]
		}
		return a < b
	})

	dir := make(Directory, len(rows))
	for _, k := range keys {
		r := rows[k]
		dir.Add(Entry{Ticker: r.Ticker, CIK: string(r.CIK), Title: r.Title})
	}
	return dir
}
