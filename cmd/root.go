// Package cmd defines the CLI commands for the carrierscan executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "carrierscan",
		Short: "Batch scanner for public carrier registration records",
		Long: `carrierscan walks a list of numeric carrier identifiers, fetches each
carrier's public registration snapshot, filters out ineligible records, and
writes the surviving carriers to CSV.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is built-in defaults plus CARRIERSCAN_* env)")
	cmd.AddCommand(newScanCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
