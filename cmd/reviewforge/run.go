package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/reviewforge/reviewforge/internal/job"
	"github.com/reviewforge/reviewforge/pkg/observability"
	"github.com/reviewforge/reviewforge/pkg/render"
)

// pollInterval is how often "run" checks a job's status while waiting for
// it to reach a terminal state.
const pollInterval = 250 * time.Millisecond

func newRunCommand() *cobra.Command {
	var (
		files      []string
		analyzers  []string
		categories []string
	)

	cmd := &cobra.Command{
		Use:   "run <project-root>",
		Short: "Create a review job and block until it reaches a terminal state",
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

			ctx := cmd.Context()

			id, err := reg.Create(ctx, job.Input{
				ProjectRoot: args[0],
				Files:       files,
				Analyzers:   analyzers,
				Categories:  cats,
			})
			if err != nil {
				return err
			}

			if err := waitTerminal(ctx, reg, id); err != nil {
				return err
			}

			res, err := reg.Result(ctx, id)
			if err != nil {
				return err
			}

			render.Result(cmd.OutOrStdout(), res)
			render.IssueTable(cmd.OutOrStdout(), res.Issues)

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&files, "files", nil, "project-relative files to review (required)")
	cmd.Flags().StringSliceVar(&analyzers, "analyzers", []string{"eslint", "bandit", "pattern"}, "analyzers to run")
	cmd.Flags().StringSliceVar(&categories, "categories", nil, "issue categories to keep (default: config default)")
	registerAnalysisFlags(cmd)

	return cmd
}

// statusRegistry is the subset of *registry.Registry waitTerminal needs.
type statusRegistry interface {
	Status(ctx context.Context, id string) (job.Snapshot, error)
}

func waitTerminal(ctx context.Context, reg statusRegistry, id string) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		snap, err := reg.Status(ctx, id)
		if err != nil {
			return err
		}

		if snap.State.Terminal() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
