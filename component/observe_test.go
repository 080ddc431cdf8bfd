package component

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jonwraymond/compose/cache"
	"github.com/jonwraymond/compose/observe"
)

func counterTotal(rm metricdata.ResourceMetrics, name string) int64 {
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestWithObserver_RecordsRendersAndCache(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := observe.NewMetrics(mp.Meter("test"))
	require.NoError(t, err)
	mw := observe.NewMiddleware(observe.NewTracer(tp.Tracer("test")), metrics, nil)

	greeter := New("Greeter",
		WithNamespace("site"),
		WithObserver(mw),
		WithRegistry(cache.NewRegistry()),
		WithRender(func(_ context.Context, in *Instance) (any, error) {
			if in.String("name") == "missing" {
				return nil, Halt(NotFound())
			}
			return "Hi " + in.String("name"), nil
		}),
	)
	ctx := context.Background()

	_, err = greeter.Cached(ctx, Props{"name": "A"}, nil)
	require.NoError(t, err)
	_, err = greeter.Cached(ctx, Props{"name": "A"}, nil)
	require.NoError(t, err)
	_, _, err = Boundary(ctx, func(ctx context.Context) (any, error) {
		return greeter.Call(ctx, Props{"name": "missing"}, nil)
	})
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	assert.Equal(t, int64(2), counterTotal(rm, "component.render.total"), "the cache hit does not render")
	assert.Equal(t, int64(1), counterTotal(rm, "component.render.halts"))
	assert.Equal(t, int64(0), counterTotal(rm, "component.render.errors"))
	assert.Equal(t, int64(2), counterTotal(rm, "component.cache.lookups"))

	ended := spans.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "component.render.site.Greeter", ended[0].Name())
}
