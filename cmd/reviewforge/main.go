// Package main provides the reviewforge CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reviewforge/reviewforge/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	rootCmd := &cobra.Command{
		Use:   "reviewforge",
		Short: "reviewforge runs third-party static analyzers and tracks review jobs",
		Long: `reviewforge is a local code-review engine: it runs static analyzer
drivers over a project directory, normalizes their output into issues, and
exposes each run as a controllable job (pending/running/paused/cancelled/
completed/failed).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "path to a reviewforge config file")

	rootCmd.AddCommand(
		newRunCommand(),
		newCreateCommand(),
		newStatusCommand(),
		newPauseCommand(),
		newResumeCommand(),
		newCancelCommand(),
		newResultCommand(),
		newExportCommand(),
		newMCPCommand(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "reviewforge %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
