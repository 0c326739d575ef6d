package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/reviewforge/reviewforge/pkg/observability"
)

func setupAnalysisMeter(t *testing.T) (*observability.AnalysisMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("test")

	am, err := observability.NewAnalysisMetrics(meter)
	require.NoError(t, err)

	return am, reader
}

func TestNewAnalysisMetrics(t *testing.T) {
	t.Parallel()

	am, _ := setupAnalysisMeter(t)
	assert.NotNil(t, am)
}

func TestAnalysisMetrics_RecordRun(t *testing.T) {
	t.Parallel()

	am, reader := setupAnalysisMeter(t)
	ctx := context.Background()

	am.RecordRun(ctx, observability.AnalysisStats{
		State:         "completed",
		WorkUnits:     100,
		UnitDurations: []time.Duration{time.Second, 2 * time.Second, 3 * time.Second},
		CacheHits:     50,
		CacheMisses:   10,
	})

	rm := collectMetrics(t, reader)

	jobs := findMetric(rm, "reviewforge.jobs.total")
	require.NotNil(t, jobs, "jobs counter should exist")

	units := findMetric(rm, "reviewforge.work_units.total")
	require.NotNil(t, units, "work units counter should exist")

	unitDur := findMetric(rm, "reviewforge.work_unit.duration.seconds")
	require.NotNil(t, unitDur, "work unit duration histogram should exist")

	hist, ok := unitDur.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "expected Histogram data type")
	require.NotEmpty(t, hist.DataPoints)
	assert.Equal(t, uint64(3), hist.DataPoints[0].Count, "should have 3 duration recordings")

	cacheHits := findMetric(rm, "reviewforge.cache.hits.total")
	require.NotNil(t, cacheHits, "cache hits counter should exist")

	cacheMisses := findMetric(rm, "reviewforge.cache.misses.total")
	require.NotNil(t, cacheMisses, "cache misses counter should exist")
}

func TestAnalysisMetrics_RecordUnit(t *testing.T) {
	t.Parallel()

	am, reader := setupAnalysisMeter(t)
	ctx := context.Background()

	am.RecordUnit(ctx, "eslint", 250*time.Millisecond)
	am.RecordUnit(ctx, "bandit", 500*time.Millisecond)

	rm := collectMetrics(t, reader)

	units := findMetric(rm, "reviewforge.work_units.total")
	require.NotNil(t, units)

	sum, ok := units.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 2, "one data point per analyzer attribute")
}

func TestAnalysisMetrics_RecordRun_NilReceiver(t *testing.T) {
	t.Parallel()

	var am *observability.AnalysisMetrics

	// Should not panic.
	am.RecordRun(context.Background(), observability.AnalysisStats{
		State:     "failed",
		WorkUnits: 10,
	})
}

func TestAnalysisMetrics_RecordUnit_NilReceiver(t *testing.T) {
	t.Parallel()

	var am *observability.AnalysisMetrics

	// Should not panic.
	am.RecordUnit(context.Background(), "eslint", time.Second)
}
