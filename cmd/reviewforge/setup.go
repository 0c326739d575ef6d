package main

import (
	"time"

	"github.com/reviewforge/reviewforge/internal/analyzer"
	"github.com/reviewforge/reviewforge/internal/analyzer/banditdriver"
	"github.com/reviewforge/reviewforge/internal/analyzer/descriptorpack"
	"github.com/reviewforge/reviewforge/internal/analyzer/eslintdriver"
	"github.com/reviewforge/reviewforge/internal/analyzer/patterndriver"
	"github.com/reviewforge/reviewforge/internal/executor"
	"github.com/reviewforge/reviewforge/pkg/cache"
	"github.com/reviewforge/reviewforge/pkg/config"
	"github.com/reviewforge/reviewforge/pkg/observability"
)

// builtinDrivers returns the three mandatory analyzer drivers plus any
// descriptor-pack drivers loaded from cfg.Drivers.DescriptorDir, every one
// of them stamped with cfg.Analysis.DriverTimeout/CancelGrace so the
// subprocess deadline the executor is configured with is the deadline each
// driver actually applies.
func builtinDrivers(cfg *config.Config) (map[string]analyzer.Descriptor, map[string]analyzer.Driver, []error) {
	descriptors := make(map[string]analyzer.Descriptor)
	drivers := make(map[string]analyzer.Driver)

	register := func(d analyzer.Descriptor, drv analyzer.Driver) {
		descriptors[d.Name] = d
		drivers[d.Name] = drv
	}

	eslint := eslintdriver.New()
	if bin := cfg.Drivers.Binaries[eslintdriver.Name].BinaryPath; bin != "" {
		eslint.BinaryPath = bin
	}
	eslint.Timeout = cfg.Analysis.DriverTimeout
	eslint.Grace = cfg.Analysis.CancelGrace
	register(eslintdriver.Descriptor(), eslint)

	bandit := banditdriver.New()
	if bin := cfg.Drivers.Binaries[banditdriver.Name].BinaryPath; bin != "" {
		bandit.BinaryPath = bin
	}
	bandit.Timeout = cfg.Analysis.DriverTimeout
	bandit.Grace = cfg.Analysis.CancelGrace
	register(banditdriver.Descriptor(), bandit)

	register(patterndriver.Descriptor(), patterndriver.New())

	var loadErrs []error

	if cfg.Drivers.DescriptorDir != "" {
		packs, errs := loadDescriptorPacks(cfg.Drivers.DescriptorDir, cfg.Analysis.DriverTimeout, cfg.Analysis.CancelGrace)
		loadErrs = errs

		for _, pack := range packs {
			register(pack.Descriptor(), pack)
		}
	}

	return descriptors, drivers, loadErrs
}

// loadDescriptorPacks reads every *.yaml/*.yml file in dir as a descriptor
// pack document, stamping each resulting driver with timeout/grace.
func loadDescriptorPacks(dir string, timeout, grace time.Duration) ([]*descriptorpack.Driver, []error) {
	entries, err := readDirYAML(dir)
	if err != nil {
		return nil, []error{err}
	}

	var (
		drivers []*descriptorpack.Driver
		errs    []error
	)

	for _, raw := range entries {
		doc, err := descriptorpack.Parse(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		drv := descriptorpack.NewDriver(doc)
		drv.Timeout = timeout
		drv.Grace = grace

		drivers = append(drivers, drv)
	}

	return drivers, errs
}

// buildExecutor wires the observability and cache adapters into a new
// Executor, per cfg's analysis/cache knobs. It also returns the underlying
// *cache.ResultCache (nil when caching is disabled) so the caller can
// register its hit/miss counters for OTel export.
func buildExecutor(cfg *config.Config, metrics *observability.AnalysisMetrics) (*executor.Executor, *cache.ResultCache) {
	descriptors, drivers, _ := builtinDrivers(cfg)

	opts := executor.Options{
		Concurrency: cfg.Analysis.Concurrency,
		BatchSize:   cfg.Analysis.BatchSize,
	}

	if metrics != nil {
		opts.Metrics = observability.NewExecutorMetricsAdapter(metrics)
	}

	var resultCache *cache.ResultCache

	if cfg.Cache.Enabled {
		maxSize, err := parseCacheSize(cfg.Cache.MaxSize)
		if err == nil {
			resultCache = cache.New(maxSize, cfg.Cache.TTL)
			opts.Cache = cache.NewExecutorAdapter(resultCache)
		}
	}

	return executor.New(descriptors, drivers, opts), resultCache
}
