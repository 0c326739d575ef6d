package observability_test

import (
	"testing"

	"github.com/reviewforge/reviewforge/pkg/observability"

	"github.com/stretchr/testify/require"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
)

type stubCacheStats struct {
	hits, misses int64
}

func (s stubCacheStats) CacheHits() int64   { return s.hits }
func (s stubCacheStats) CacheMisses() int64 { return s.misses }

func TestRegisterCacheMetrics_NilProviderSkipsRegistration(t *testing.T) {
	t.Parallel()

	mt := noopmetric.NewMeterProvider().Meter("test")

	require.NoError(t, observability.RegisterCacheMetrics(mt, nil))
}

func TestRegisterCacheMetrics_RegistersGauges(t *testing.T) {
	t.Parallel()

	mt := noopmetric.NewMeterProvider().Meter("test")

	require.NoError(t, observability.RegisterCacheMetrics(mt, stubCacheStats{hits: 3, misses: 1}))
}
