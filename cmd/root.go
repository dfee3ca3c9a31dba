package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/credit-engine/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "credit-engine",
	Short: "Credit scoring engine and API",
	Long:  "Computes creditworthiness scores (300-850) and loan decisions from financial profiles, with a trained-model path, a deterministic rule-based fallback, and human-readable insights.",
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
