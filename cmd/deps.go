package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bottomtick/factsboard/internal/config"
	"github.com/bottomtick/factsboard/internal/fetcher"
	"github.com/bottomtick/factsboard/internal/filings"
	"github.com/bottomtick/factsboard/internal/store"
	"github.com/bottomtick/factsboard/internal/xbrl"
)

func newFetcher(c *config.Config) fetcher.Fetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent: c.SEC.UserAgent,
		Timeout:   time.Duration(c.SEC.TimeoutSecs) * time.Second,

		BreakerThreshold: c.SEC.BreakerThreshold,
		BreakerCooldown:  time.Duration(c.SEC.BreakerCooldownSecs) * time.Second,
	})
}

func newLoader(c *config.Config) *filings.DirLoader {
	return filings.NewDirLoader(c.Data.FactsDir, time.Duration(c.Data.LoadTimeoutSecs)*time.Second)
}

func openStore(ctx context.Context, c *config.Config) (store.Store, error) {
	return store.Open(ctx, c.Store)
}

func loadLists(c *config.Config) (xbrl.Lists, error) {
	return xbrl.LoadLists(c.Metrics.ListsFile)
}

// recordRun stores a finished run. Failing to record never fails the command.
func recordRun(ctx context.Context, st store.Store, run *store.Run) {
	if err := st.RecordRun(ctx, run); err != nil {
		zap.L().Warn("record run failed", zap.String("run_id", run.ID), zap.Error(err))
	}
}
