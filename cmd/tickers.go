package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/bottomtick/factsboard/internal/store"
	"github.com/bottomtick/factsboard/internal/tickers"
)

var tickersCmd = &cobra.Command{
	Use:   "tickers",
	Short: "Manage the ticker to CIK directory",
}

// -- tickers update --

var tickersUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Refresh the directory from SEC's company_tickers.json",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run := store.NewRun(store.RunKindTickerUpdate)
		dir, err := tickers.NewUpdater(newFetcher(cfg), st, cfg.SEC.TickersURL).Update(ctx)
		run.Finish(len(dir), 0, err)
		recordRun(ctx, st, run)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Updated %d tickers\n", len(dir))
		return nil
	},
}

// -- tickers lookup --

var tickersLookupCmd = &cobra.Command{
	Use:   "lookup SYMBOL...",
	Short: "Resolve tickers to CIKs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		dir, err := st.LoadDirectory(ctx)
		if err != nil {
			return eris.Wrap(err, "tickers lookup")
		}
		return lookupTickers(os.Stdout, dir, args)
	},
}

func lookupTickers(out io.Writer, dir tickers.Directory, symbols []string) error {
	var missing int
	for _, s := range symbols {
		ticker, _ := tickers.ParseSymbol(s)
		e, ok := dir.Lookup(ticker)
		if !ok {
			missing++
			fmt.Fprintf(out, "%s\tnot found\n", ticker)
			continue
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", e.Ticker, e.CIK, e.Title)
	}
	if missing > 0 {
		return eris.Errorf("tickers lookup: %d of %d symbols not found", missing, len(symbols))
	}
	return nil
}

func init() {
	tickersCmd.AddCommand(tickersUpdateCmd)
	tickersCmd.AddCommand(tickersLookupCmd)
	rootCmd.AddCommand(tickersCmd)
}
