package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/basestation-calc/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "basestation-calc",
	Short: "Base station count calculator for urban districts",
	Long:  "Computes how many base stations each district needs from station coverage areas, handover values and district geometry. Runs as an HTTP API or one-shot against a request file.",
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
