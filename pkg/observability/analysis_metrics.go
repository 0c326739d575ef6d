package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricJobsTotal        = "reviewforge.jobs.total"
	metricWorkUnitsTotal   = "reviewforge.work_units.total"
	metricUnitDuration     = "reviewforge.work_unit.duration.seconds"
	metricCacheHitsTotal   = "reviewforge.cache.hits.total"
	metricCacheMissesTotal = "reviewforge.cache.misses.total"

	attrState    = "state"
	attrAnalyzer = "analyzer"
)

// AnalysisMetrics holds OTel instruments for job-run metrics: how many jobs
// finish in each terminal state, how many work units they process, how long
// each unit takes, and how the analyzer-result cache is performing.
type AnalysisMetrics struct {
	jobsTotal      metric.Int64Counter
	workUnitsTotal metric.Int64Counter
	unitDuration   metric.Float64Histogram
	cacheHits      metric.Int64Counter
	cacheMisses    metric.Int64Counter
}

// AnalysisStats holds the statistics for a single job run, decoupled from
// job/executor types so this package has no dependency on them.
type AnalysisStats struct {
	State         string
	WorkUnits     int64
	UnitDurations []time.Duration
	CacheHits     int64
	CacheMisses   int64
}

// NewAnalysisMetrics creates job-run metric instruments from the given meter.
func NewAnalysisMetrics(mt metric.Meter) (*AnalysisMetrics, error) {
	b := newMetricBuilder(mt)

	am := &AnalysisMetrics{
		jobsTotal:      b.counter(metricJobsTotal, "Jobs reaching a terminal state, by final state", "{job}"),
		workUnitsTotal: b.counter(metricWorkUnitsTotal, "(file, analyzer) work units completed", "{unit}"),
		unitDuration:   b.histogram(metricUnitDuration, "Per-work-unit processing duration in seconds", "s", durationBucketBoundaries...),
		cacheHits:      b.counter(metricCacheHitsTotal, "Analyzer-result cache hits", "{hit}"),
		cacheMisses:    b.counter(metricCacheMissesTotal, "Analyzer-result cache misses", "{miss}"),
	}

	if b.err != nil {
		return nil, b.err
	}

	return am, nil
}

// RecordRun records statistics for a job that has reached a terminal state.
// Safe to call on a nil receiver (no-op).
func (am *AnalysisMetrics) RecordRun(ctx context.Context, stats AnalysisStats) {
	if am == nil {
		return
	}

	am.jobsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrState, stats.State)))
	am.workUnitsTotal.Add(ctx, stats.WorkUnits)

	for _, d := range stats.UnitDurations {
		am.unitDuration.Record(ctx, d.Seconds())
	}

	am.cacheHits.Add(ctx, stats.CacheHits)
	am.cacheMisses.Add(ctx, stats.CacheMisses)
}

// RecordUnit records one work unit's duration as it completes, tagged by the
// analyzer that produced it, for streaming observability ahead of job
// completion. Safe to call on a nil receiver.
func (am *AnalysisMetrics) RecordUnit(ctx context.Context, analyzerName string, d time.Duration) {
	if am == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrAnalyzer, analyzerName))
	am.workUnitsTotal.Add(ctx, 1, attrs)
	am.unitDuration.Record(ctx, d.Seconds(), attrs)
}
