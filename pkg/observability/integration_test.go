package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/reviewforge/reviewforge/pkg/observability"
)

func TestEndToEnd_TraceExported(t *testing.T) {
	t.Parallel()
	// Set up an in-memory span exporter to capture spans.
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	tracer := tp.Tracer("reviewforge")

	// Simulate a pipeline: root span with child phase spans.
	ctx, rootSpan := tracer.Start(context.Background(), "reviewforge.run")

	_, initSpan := tracer.Start(ctx, "reviewforge.init")
	initSpan.End()

	_, analysisSpan := tracer.Start(ctx, "reviewforge.analysis")
	analysisSpan.End()

	_, reportSpan := tracer.Start(ctx, "reviewforge.report")
	reportSpan.End()

	rootSpan.End()

	// Verify spans were captured.
	spans := exporter.GetSpans()
	require.Len(t, spans, 4)

	// All child spans should share the root's trace ID.
	rootTraceID := spans[3].SpanContext.TraceID()
	for _, span := range spans[:3] {
		assert.Equal(t, rootTraceID, span.SpanContext.TraceID(),
			"child span %q should share root trace ID", span.Name)
	}

	// Verify span names.
	spanNames := make([]string, len(spans))
	for i, span := range spans {
		spanNames[i] = span.Name
	}

	assert.Contains(t, spanNames, "reviewforge.run")
	assert.Contains(t, spanNames, "reviewforge.init")
	assert.Contains(t, spanNames, "reviewforge.analysis")
	assert.Contains(t, spanNames, "reviewforge.report")

	// Verify parent-child relationship: init/analysis/report have root as parent.
	rootSpanID := spans[3].SpanContext.SpanID()
	for _, span := range spans[:3] {
		assert.Equal(t, rootSpanID, span.Parent.SpanID(),
			"child span %q should have root as parent", span.Name)
	}
}

func TestEndToEnd_MetricsExported(t *testing.T) {
	t.Parallel()
	// Set up an in-memory metric reader.
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("reviewforge")

	red, err := observability.NewREDMetrics(meter)
	require.NoError(t, err)

	ctx := context.Background()

	// Simulate a CLI run recording.
	red.RecordRequest(ctx, "cli.run", "ok", time.Second)

	// Simulate a streaming chunk recording.
	red.RecordRequest(ctx, "streaming.chunk", "ok", time.Millisecond*500)

	// Simulate an error.
	red.RecordRequest(ctx, "cli.run", "error", time.Second*2)

	// Collect metrics.
	var rm metricdata.ResourceMetrics

	err = reader.Collect(ctx, &rm)
	require.NoError(t, err)

	// Verify request counter exists and has recordings.
	reqTotal := findMetric(rm, "reviewforge.requests.total")
	require.NotNil(t, reqTotal, "reviewforge.requests.total metric not found")

	// Verify duration histogram exists.
	reqDuration := findMetric(rm, "reviewforge.request.duration.seconds")
	require.NotNil(t, reqDuration, "reviewforge.request.duration.seconds metric not found")

	// Verify error counter exists.
	errTotal := findMetric(rm, "reviewforge.errors.total")
	require.NotNil(t, errTotal, "reviewforge.errors.total metric not found")
}
