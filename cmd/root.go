// Package cmd defines and implements the CLI commands for the
// linkcheck executable.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linkcheck",
		Short: "Validates that every dataset record maps to a reachable link.",
		Long: `linkcheck builds the canonical URL for every record in a dataset and
probes it over HTTP under bounded concurrency and request rate,
following redirects and falling back from HEAD to GET where an origin
rejects HEAD. The run fails if any record resolves to an unreachable
or broken link.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional)")
	cmd.AddCommand(newCheckCmd())

	return cmd
}

// Execute is the main entry point. The process exits with status 1
// when any link is invalid, the dataset is empty, or the run fails
// before completion.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
