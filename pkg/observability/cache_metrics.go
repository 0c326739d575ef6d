package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

const (
	metricCacheHits   = "reviewforge.cache.hits"
	metricCacheMisses = "reviewforge.cache.misses"
)

// CacheStatsProvider exposes the hit/miss counters of reviewforge's analyzer
// result cache (pkg/cache.ResultCache) for OTel export. A nil provider
// disables registration entirely.
type CacheStatsProvider interface {
	CacheHits() int64
	CacheMisses() int64
}

// RegisterCacheMetrics registers observable gauges reporting the result
// cache's hit/miss counters. cache may be nil, in which case registration
// is skipped (the executor was built without a Cache option).
func RegisterCacheMetrics(mt metric.Meter, cache CacheStatsProvider) error {
	if cache == nil {
		return nil
	}

	_, err := mt.Int64ObservableGauge(metricCacheHits,
		metric.WithDescription("Analyzer result cache hit count"),
		metric.WithUnit("{hit}"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(cache.CacheHits())

			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", metricCacheHits, err)
	}

	_, err = mt.Int64ObservableGauge(metricCacheMisses,
		metric.WithDescription("Analyzer result cache miss count"),
		metric.WithUnit("{miss}"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(cache.CacheMisses())

			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", metricCacheMisses, err)
	}

	return nil
}
