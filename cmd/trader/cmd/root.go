package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "trader",
	Short: "A daily signal trading agent",
	Long: `Trader watches a tick stream for one instrument, derives moving average,
slope, MACD, RSI and estrangement signals, and makes at most one trading
decision per calendar day.

Modes:
  collect - trade every day and record each closed trade with its signals
  test    - trade every day, record nothing
  trade   - trade only when the prediction service answers "up"`,
	SilenceUsage: true,
}

var envFiles []string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env", []string{".env"}, "dotenv files to load before reading config")
}
