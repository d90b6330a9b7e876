package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bottomtick/factsboard/internal/facts"
	"github.com/bottomtick/factsboard/internal/filings"
	"github.com/bottomtick/factsboard/internal/render"
	"github.com/bottomtick/factsboard/internal/tickers"
	"github.com/bottomtick/factsboard/internal/xbrl"
)

// viewOptions holds the view command's flags.
type viewOptions struct {
	View    string
	Window  int
	Columns int
	XLSX    string
	JSON    bool
}

var viewCmd = &cobra.Command{
	Use:   "view SYMBOL[.suffix]",
	Short: "Print a company's normalized metrics",
	Long:  "Looks up a ticker, loads its companyfacts document and prints the selected view. Suffixes .d .q .i .b .c .cf .ch select a view as in the HTTP API.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		dir, err := st.LoadDirectory(ctx)
		if err != nil {
			return eris.Wrap(err, "view: load directory")
		}
		lists, err := loadLists(cfg)
		if err != nil {
			return err
		}

		opts := viewOptions{}
		opts.View, _ = cmd.Flags().GetString("view")
		opts.Window, _ = cmd.Flags().GetInt("window")
		opts.Columns, _ = cmd.Flags().GetInt("columns")
		opts.XLSX, _ = cmd.Flags().GetString("xlsx")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		if opts.Window == 0 {
			opts.Window = cfg.Trend.ShortTermWindow
		}

		return runView(ctx, os.Stdout, dir, newLoader(cfg), lists, args[0], opts)
	},
}

func runView(ctx context.Context, out io.Writer, dir tickers.Directory, loader filings.Loader, lists xbrl.Lists, symbol string, opts viewOptions) error {
	ticker, view := tickers.ParseSymbol(symbol)
	if opts.View != "" {
		view = facts.ParseView(opts.View)
	}

	entry, err := dir.Get(ticker)
	if err != nil {
		return err
	}

	doc, err := loader.Load(ctx, entry.CIK)
	if err != nil {
		if errors.Is(err, filings.ErrNotFound) {
			return eris.Errorf("view: no companyfacts document for %s (CIK %s); run `factsboard facts fetch %s`", entry.Ticker, entry.CIK, entry.CIK)
		}
		return err
	}

	v := facts.BuildView(doc, view, facts.Options{Window: opts.Window, Lists: lists, Now: time.Now()})
	zap.L().Debug("view built",
		zap.String("ticker", entry.Ticker),
		zap.String("view", string(v.Type)),
		zap.Int("metrics", len(v.Metrics)),
	)

	if opts.XLSX != "" {
		if err := render.WriteXLSX(opts.XLSX, fmt.Sprintf("%s %s", entry.Ticker, v.Type), v); err != nil {
			return err
		}
		zap.L().Info("xlsx written", zap.String("path", opts.XLSX))
	}

	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(v), "view: encode json")
	}

	if _, err := fmt.Fprintf(out, "%s  %s  CIK %s  view: %s\n", entry.Ticker, doc.EntityName, entry.CIK, v.Type); err != nil {
		return eris.Wrap(err, "view: write header")
	}
	if len(v.Metrics) == 0 {
		_, err := fmt.Fprintln(out, "No metrics reported for this view.")
		return eris.Wrap(err, "view: write")
	}
	if err := render.Table(out, v, opts.Columns); err != nil {
		return err
	}
	if v.Type == facts.ViewForward {
		return render.ForwardTable(out, v.Forward)
	}
	return nil
}

func init() {
	viewCmd.Flags().String("view", "", "view type (default, detailed, quarterly, income, balance, cashflow, charts, forward)")
	viewCmd.Flags().Int("window", 0, "short-term trend window in quarters, 1-6 (default from config)")
	viewCmd.Flags().Int("columns", render.DefaultColumns, "number of recent periods to show")
	viewCmd.Flags().String("xlsx", "", "also export the view to this .xlsx file")
	viewCmd.Flags().Bool("json", false, "print the view as JSON")
	rootCmd.AddCommand(viewCmd)
}
