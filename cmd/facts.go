package main

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/bottomtick/factsboard/internal/batch"
	"github.com/bottomtick/factsboard/internal/store"
	"github.com/bottomtick/factsboard/internal/tickers"
)

var factsCmd = &cobra.Command{
	Use:   "facts",
	Short: "Manage the local companyfacts corpus",
}

// -- facts fetch --

var factsFetchCmd = &cobra.Command{
	Use:   "fetch CIK|SYMBOL...",
	Short: "Download companyfacts documents from data.sec.gov",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		ciks, err := resolveCIKs(ctx, st, args)
		if err != nil {
			return err
		}

		concurrency, _ := cmd.Flags().GetInt("concurrency")
		d := batch.NewDownloader(newFetcher(cfg), newLoader(cfg), cfg.SEC.FactsURL, concurrency)

		run := store.NewRun(store.RunKindFetch)
		res, err := d.Run(ctx, ciks)
		run.Finish(int(res.Processed), int(res.Errors), err)
		recordRun(ctx, st, run)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Downloaded %d of %d documents into %s\n", res.Processed, len(ciks), cfg.Data.FactsDir)
		if res.Errors > 0 {
			return eris.Errorf("facts fetch: %d downloads failed", res.Errors)
		}
		return nil
	},
}

var cikPattern = regexp.MustCompile(`^(?i:CIK)?\d{1,10}$`)

// resolveCIKs accepts CIKs as given and resolves anything else as a ticker.
// The directory is only loaded when a ticker is present.
func resolveCIKs(ctx context.Context, st store.Store, args []string) ([]string, error) {
	var dir tickers.Directory
	out := make([]string, 0, len(args))
	for _, a := range args {
		if cikPattern.MatchString(a) {
			out = append(out, a)
			continue
		}
		if dir == nil {
			var err error
			if dir, err = st.LoadDirectory(ctx); err != nil {
				return nil, eris.Wrap(err, "facts fetch: load directory")
			}
		}
		e, err := dir.Get(a)
		if err != nil {
			return nil, err
		}
		out = append(out, e.CIK)
	}
	return out, nil
}

func init() {
	factsFetchCmd.Flags().Int("concurrency", 2, "parallel downloads (SEC allows 10 requests per second)")
	factsCmd.AddCommand(factsFetchCmd)
	rootCmd.AddCommand(factsCmd)
}
