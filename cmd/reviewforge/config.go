package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/reviewforge/reviewforge/internal/registry"
	"github.com/reviewforge/reviewforge/pkg/config"
	"github.com/reviewforge/reviewforge/pkg/observability"
)

// loadConfig reads the --config flag off cmd's root, falling back to
// reviewforge.yaml / env vars / defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Root().PersistentFlags().GetString("config")

	return config.LoadConfig(path)
}

// buildRegistry wires config, observability, cache, and the driver set into
// a ready-to-use Registry. mode tags the observability config so CLI and
// MCP runs are distinguishable in traces.
func buildRegistry(cfg *config.Config, mode observability.AppMode) (*registry.Registry, observability.Providers, error) {
	obsCfg := observability.DefaultConfig()
	obsCfg.Mode = mode
	obsCfg.OTLPEndpoint = cfg.MCP.OTLPEndpoint
	obsCfg.LogLevel = logLevel(cfg.Logging.Level)
	obsCfg.LogJSON = cfg.Logging.Format != "text"
	obsCfg.DebugTrace = cfg.MCP.Debug

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, observability.Providers{}, err
	}

	metrics, err := observability.NewAnalysisMetrics(providers.Meter)
	if err != nil {
		return nil, providers, err
	}

	exec, resultCache := buildExecutor(cfg, metrics)

	if resultCache != nil {
		if err := observability.RegisterCacheMetrics(providers.Meter, resultCache); err != nil {
			return nil, providers, err
		}
	}

	// Runtime goroutine/thread gauges help explain the executor's
	// per-analyzer-chain concurrency (internal/executor's bounded worker
	// goroutines) when read alongside the RED and analysis metrics above.
	if _, err := observability.NewSchedulerMetrics(providers.Meter); err != nil {
		return nil, providers, err
	}

	reg := registry.New(exec)

	return reg, providers, nil
}

// shutdownProviders flushes telemetry, logging (not failing) any error to
// the command's stderr.
func shutdownProviders(cmd *cobra.Command, providers observability.Providers) {
	if err := providers.Shutdown(cmd.Context()); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "observability shutdown: %v\n", err)
	}
}

func logLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}

	return l
}
