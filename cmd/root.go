package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bottomtick/factsboard/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "factsboard",
	Short: "SEC company facts normalization and query service",
	Long:  "Downloads SEC EDGAR companyfacts documents, normalizes them into quarterly metric series with trend classification, and serves them by ticker.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
