package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reviewforge/reviewforge/internal/issue"
	"github.com/reviewforge/reviewforge/internal/job"
	"github.com/reviewforge/reviewforge/pkg/observability"
)

func newCreateCommand() *cobra.Command {
	var (
		files      []string
		analyzers  []string
		categories []string
	)

	cmd := &cobra.Command{
		Use:   "create <project-root>",
		Short: "Create a review job and return its id immediately",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if err := applyAnalysisFlags(cmd, cfg); err != nil {
				return err
			}

			reg, providers, err := buildRegistry(cfg, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer shutdownProviders(cmd, providers)

			cats, err := resolveCategories(categories, cfg.Analysis.Categories)
			if err != nil {
				return err
			}

			id, err := reg.Create(cmd.Context(), job.Input{
				ProjectRoot: args[0],
				Files:       files,
				Analyzers:   analyzers,
				Categories:  cats,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), id)

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&files, "files", nil, "project-relative files to review (required)")
	cmd.Flags().StringSliceVar(&analyzers, "analyzers", []string{"eslint", "bandit", "pattern"}, "analyzers to run")
	cmd.Flags().StringSliceVar(&categories, "categories", nil, "issue categories to keep (default: config default)")
	registerAnalysisFlags(cmd)

	return cmd
}

func resolveCategories(flagValues, configDefault []string) ([]issue.Category, error) {
	names := flagValues
	if len(names) == 0 {
		names = configDefault
	}

	if len(names) == 0 {
		return issue.Categories(), nil
	}

	out := make([]issue.Category, 0, len(names))

	for _, n := range names {
		c := issue.Category(n)
		if !c.Valid() {
			return nil, fmt.Errorf("unknown category %q", n)
		}

		out = append(out, c)
	}

	return out, nil
}

