package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// CLI flags shared by every subcommand
	logLevel string // Log verbosity level

	// CLI flags for commands producing a table directory
	outPath string // Output directory for the rewritten table
	binary  bool   // Write scalarList bodies in binary
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "tabulate",
	Short: "Inspect, convert, and compose structured-grid tabulation directories",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}
