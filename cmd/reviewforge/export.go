package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/reviewforge/reviewforge/internal/issue"
	"github.com/reviewforge/reviewforge/pkg/chart"
	"github.com/reviewforge/reviewforge/pkg/export/lsp"
	"github.com/reviewforge/reviewforge/pkg/observability"
)

func newExportCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export <job-id>",
		Short: "Export a terminal job's result as an HTML chart or LSP diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			reg, providers, err := buildRegistry(cfg, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer shutdownProviders(cmd, providers)

			res, err := reg.Result(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			switch format {
			case "chart":
				return chart.RenderHTML(cmd.OutOrStdout(), res.Summary)
			case "lsp":
				return exportLSP(cmd.OutOrStdout(), res.Issues)
			default:
				return fmt.Errorf("unknown export format %q (want chart or lsp)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "chart", "export format: chart or lsp")

	return cmd
}

func exportLSP(w io.Writer, issues []issue.Issue) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(lsp.ByFile(issues))
}
