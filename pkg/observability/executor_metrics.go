package observability

import (
	"context"

	"github.com/reviewforge/reviewforge/internal/executor"
)

// ExecutorMetricsAdapter adapts an *AnalysisMetrics to satisfy
// internal/executor.Metrics: the two packages' AnalysisStats types are
// structurally identical but distinct Go types (observability has no
// dependency on executor's), so RecordRun needs this one-line conversion.
type ExecutorMetricsAdapter struct {
	metrics *AnalysisMetrics
}

// NewExecutorMetricsAdapter wraps metrics for use as an executor.Metrics.
func NewExecutorMetricsAdapter(metrics *AnalysisMetrics) *ExecutorMetricsAdapter {
	return &ExecutorMetricsAdapter{metrics: metrics}
}

// RecordRun implements executor.Metrics.
func (a *ExecutorMetricsAdapter) RecordRun(ctx context.Context, stats executor.AnalysisStats) {
	a.metrics.RecordRun(ctx, AnalysisStats{
		State:         stats.State,
		WorkUnits:     stats.WorkUnits,
		UnitDurations: stats.UnitDurations,
		CacheHits:     stats.CacheHits,
		CacheMisses:   stats.CacheMisses,
	})
}
