package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warp/incentive-engine/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "incentive",
	Short: "Restaurant incentive and bonus engine",
	Long:  "Scores employees against weighted goal pillars, applies adjustment factors and computes capped bonus payouts. Serves the engine over HTTP or runs it on state files.",
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
