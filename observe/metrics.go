package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records render and cache metrics.
//
// RecordLookup and RecordEviction match cache.Recorder, so a Metrics value
// can be handed to cache.WithRecorder directly.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordRender records one render with its duration and outcome.
	RecordRender(ctx context.Context, meta ComponentMeta, duration time.Duration, err error)

	// RecordLookup records a memo lookup against the named store.
	RecordLookup(ctx context.Context, store string, hit bool)

	// RecordEviction records one entry evicted from the named store.
	RecordEviction(ctx context.Context, store string)
}

type metricsImpl struct {
	totalCount    metric.Int64Counter
	errorCount    metric.Int64Counter
	haltCount     metric.Int64Counter
	durationHist  metric.Float64Histogram
	lookupCount   metric.Int64Counter
	evictionCount metric.Int64Counter
}

// NewMetrics creates the render and cache instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	return newMetrics(meter)
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"component.render.total",
		metric.WithDescription("Total number of component renders"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"component.render.errors",
		metric.WithDescription("Total number of failed component renders"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	haltCount, err := meter.Int64Counter(
		"component.render.halts",
		metric.WithDescription("Total number of renders that halted with a terminal response"),
		metric.WithUnit("{halt}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"component.render.duration_ms",
		metric.WithDescription("Component render duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	lookupCount, err := meter.Int64Counter(
		"component.cache.lookups",
		metric.WithDescription("Memoized component cache lookups"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	evictionCount, err := meter.Int64Counter(
		"component.cache.evictions",
		metric.WithDescription("Entries evicted from component cache stores"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:    totalCount,
		errorCount:    errorCount,
		haltCount:     haltCount,
		durationHist:  durationHist,
		lookupCount:   lookupCount,
		evictionCount: evictionCount,
	}, nil
}

func (m *metricsImpl) RecordRender(ctx context.Context, meta ComponentMeta, duration time.Duration, err error) {
	attrs := append(meta.attributes(), attribute.Bool("component.memoized", meta.Memoized))
	opt := metric.WithAttributes(attrs...)

	m.totalCount.Add(ctx, 1, opt)
	switch {
	case err == nil:
	case IsHalt(err):
		m.haltCount.Add(ctx, 1, opt)
	default:
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

func (m *metricsImpl) RecordLookup(ctx context.Context, store string, hit bool) {
	m.lookupCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache.store", store),
		attribute.Bool("hit", hit),
	))
}

func (m *metricsImpl) RecordEviction(ctx context.Context, store string) {
	m.evictionCount.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.store", store)))
}

type noopMetrics struct{}

func (m *noopMetrics) RecordRender(context.Context, ComponentMeta, time.Duration, error) {}
func (m *noopMetrics) RecordLookup(context.Context, string, bool)                        {}
func (m *noopMetrics) RecordEviction(context.Context, string)                            {}
