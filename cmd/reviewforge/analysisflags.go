package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/reviewforge/reviewforge/pkg/config"
	"github.com/reviewforge/reviewforge/pkg/pipeline"
)

// registerAnalysisFlags adds one local flag per pipeline.AnalysisOptions
// entry to cmd (skipping "categories", which create/run already register
// with their own --help text and issue.Category validation), so --help
// documents the same Flag/Description/Default the executor's dispatch
// policy is actually built from.
func registerAnalysisFlags(cmd *cobra.Command) {
	for _, opt := range pipeline.AnalysisOptions() {
		if opt.Name == "categories" {
			continue
		}

		switch opt.Type {
		case pipeline.IntConfigurationOption:
			cmd.Flags().Int(opt.Flag, opt.Default.(int), opt.Description)
		case pipeline.DurationConfigurationOption:
			d, _ := time.ParseDuration(opt.Default.(string))
			cmd.Flags().Duration(opt.Flag, d, opt.Description)
		case pipeline.PathConfigurationOption:
			cmd.Flags().String(opt.Flag, opt.Default.(string), opt.Description)
		case pipeline.StringsConfigurationOption, pipeline.StringConfigurationOption, pipeline.BoolConfigurationOption:
			// Unused by the current AnalysisOptions set (besides categories,
			// skipped above); nothing to register.
		}
	}
}

// applyAnalysisFlags overlays any analysis flag the caller explicitly set on
// cmd onto cfg, so a flag takes precedence over the config file/env value it
// was registered alongside.
func applyAnalysisFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	intOverrides := []struct {
		flag string
		dst  *int
	}{
		{"concurrency", &cfg.Analysis.Concurrency},
		{"batch-size", &cfg.Analysis.BatchSize},
	}

	for _, o := range intOverrides {
		if !flags.Changed(o.flag) {
			continue
		}

		v, err := flags.GetInt(o.flag)
		if err != nil {
			return fmt.Errorf("--%s: %w", o.flag, err)
		}

		*o.dst = v
	}

	durationOverrides := []struct {
		flag string
		dst  *time.Duration
	}{
		{"driver-timeout", &cfg.Analysis.DriverTimeout},
		{"cancel-grace", &cfg.Analysis.CancelGrace},
	}

	for _, o := range durationOverrides {
		if !flags.Changed(o.flag) {
			continue
		}

		v, err := flags.GetDuration(o.flag)
		if err != nil {
			return fmt.Errorf("--%s: %w", o.flag, err)
		}

		*o.dst = v
	}

	if flags.Changed("descriptor-dir") {
		v, err := flags.GetString("descriptor-dir")
		if err != nil {
			return fmt.Errorf("--descriptor-dir: %w", err)
		}

		cfg.Drivers.DescriptorDir = v
	}

	return nil
}
