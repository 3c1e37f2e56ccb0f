package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Overridden at build time with
// -ldflags "-X github.com/rustyeddy/signaltrader/cmd/trader/cmd.version=..."
var (
	version = "0.1.0-dev"
	commit  = "unknown"
)

func versionString() string {
	return fmt.Sprintf("signaltrader %s (commit %s, %s %s/%s)",
		version, commit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the signaltrader build version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), versionString())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = version
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}
