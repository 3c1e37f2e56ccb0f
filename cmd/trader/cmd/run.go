package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/signaltrader/config"
	"github.com/rustyeddy/signaltrader/internal/app"
	"github.com/rustyeddy/signaltrader/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the agent from a config file",
	Long: `Run the trading agent using settings from a configuration file.

The config selects the tick feed, the warm-up bar source, the broker,
the decision mode and the journal. Secrets such as OANDA_TOKEN are read
from the environment or a .env file.

Example:
  trader run -f trader.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	_ = runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	if err := config.LoadEnv(envFiles...); err != nil {
		return fmt.Errorf("load env: %w", err)
	}

	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	defer a.Close()

	log.Info("agent starting",
		zap.String("config", runConfigPath),
		zap.String("instrument", cfg.Agent.Instrument),
		zap.String("mode", cfg.Agent.Mode),
		zap.String("entry", cfg.Agent.Entry),
		zap.String("feed", cfg.Feed.Type),
		zap.String("broker", cfg.Broker.Type))

	if err := a.Run(ctx); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	log.Info("agent stopped")
	return nil
}
