package main

import (
	"github.com/spf13/cobra"

	"github.com/reviewforge/reviewforge/pkg/mcp"
	"github.com/reviewforge/reviewforge/pkg/observability"
)

func newMCPCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start an MCP server exposing review jobs as tools over stdio",
		Long: `Start a Model Context Protocol server on stdio transport, exposing:
  - review_create: start a review job
  - review_status: poll a job's state and progress
  - review_pause / review_resume / review_cancel: control a job
  - review_result: get a terminal job's full result

Unlike the single-shot CLI subcommands, this process stays alive for the
life of the connection, so one Registry instance serves every tool call.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			cfg.MCP.Debug = cfg.MCP.Debug || debug

			reg, providers, err := buildRegistry(cfg, observability.ModeMCP)
			if err != nil {
				return err
			}
			defer shutdownProviders(cmd, providers)

			red, err := observability.NewREDMetrics(providers.Meter)
			if err != nil {
				return err
			}

			srv := mcp.NewServer(mcp.ServerDeps{
				Registry: reg,
				Logger:   providers.Logger,
				Metrics:  red,
				Tracer:   providers.Tracer,
			})

			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug tracing")

	return cmd
}
