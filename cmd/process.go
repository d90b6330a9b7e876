package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bottomtick/factsboard/internal/batch"
	"github.com/bottomtick/factsboard/internal/facts"
	"github.com/bottomtick/factsboard/internal/store"
)

var processCmd = &cobra.Command{
	Use:   "process [CIK...]",
	Short: "Extract compact metric documents from the companyfacts corpus",
	Long:  "Reads every CIK*.json in the facts directory (or only the given CIKs) and writes a compacted document per company with deduplicated metric series and the latest DEI values.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		lists, err := loadLists(cfg)
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = cfg.Data.ProcessedDir
		}
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		if concurrency <= 0 {
			concurrency = cfg.Batch.Concurrency
		}
		policy := facts.Named(lists.Batch)
		if all, _ := cmd.Flags().GetBool("all"); all {
			policy = facts.All()
		}

		p := batch.NewProcessor(newLoader(cfg), out, batch.Options{
			Concurrency: concurrency,
			Policy:      policy,
			DEIKeys:     lists.DEI,
		})

		run := store.NewRun(store.RunKindProcess)
		res, err := p.Run(ctx, args)
		run.Finish(int(res.Processed), int(res.Errors), err)
		recordRun(ctx, st, run)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Processed %d, skipped %d, errors %d\n", res.Processed, res.Skipped, res.Errors)
		return nil
	},
}

func init() {
	processCmd.Flags().String("out", "", "output directory (default from config)")
	processCmd.Flags().Int("concurrency", 0, "parallel workers (default from config)")
	processCmd.Flags().Bool("all", false, "keep every us-gaap concept instead of the batch list")
	rootCmd.AddCommand(processCmd)
}
