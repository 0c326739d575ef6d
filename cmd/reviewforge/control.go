package main

import (
	"github.com/spf13/cobra"

	"github.com/reviewforge/reviewforge/pkg/observability"
	"github.com/reviewforge/reviewforge/pkg/render"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show a review job's current state and progress",
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

			snap, err := reg.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			render.Status(cmd.OutOrStdout(), snap)

			return nil
		},
	}
}

func newPauseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pause <job-id>",
		Short: "Pause a running review job",
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

			return reg.Pause(cmd.Context(), args[0])
		},
	}
}

func newResumeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resume <job-id>",
		Short: "Resume a paused review job",
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

			return reg.Resume(cmd.Context(), args[0])
		},
	}
}

func newCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Cancel a review job that has not reached a terminal state",
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

			return reg.Cancel(cmd.Context(), args[0])
		},
	}
}

func newResultCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "result <job-id>",
		Short: "Show a terminal review job's summary and full issue list",
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

			render.Result(cmd.OutOrStdout(), res)
			render.IssueTable(cmd.OutOrStdout(), res.Issues)

			return nil
		},
	}
}
