package observe

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// RenderFunc is the signature Middleware wraps: one render of one component
// with its props as input.
type RenderFunc func(ctx context.Context, meta ComponentMeta, input any) (any, error)

// Middleware wraps component renders with tracing, metrics, and logging.
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe RenderFunc.
//   - Context: the span context is passed to the wrapped function.
//   - Errors: errors are recorded and propagated unchanged. Panics are
//     recorded and re-raised so an enclosing boundary still sees them.
//   - Ownership: input and output values are passed through untouched.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware. Nil arguments select no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = &noopMetrics{}
	}
	if logger == nil {
		logger = &noopLogger{}
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Metrics returns the metrics recorder, usable as a cache.Recorder.
func (m *Middleware) Metrics() Metrics {
	return m.metrics
}

// Logger returns the middleware logger.
func (m *Middleware) Logger() Logger {
	return m.logger
}

// Wrap wraps a RenderFunc with tracing, metrics, and logging.
func (m *Middleware) Wrap(fn RenderFunc) RenderFunc {
	return func(ctx context.Context, meta ComponentMeta, input any) (result any, err error) {
		ctx, span := m.tracer.StartSpan(ctx, meta)
		start := time.Now()

		done := false
		defer func() {
			if done {
				return
			}
			r := recover()
			if r == nil {
				// runtime.Goexit
				m.tracer.EndSpan(span, nil)
				return
			}
			m.finish(ctx, span, meta, start, panicError(r))
			panic(r)
		}()

		result, err = fn(ctx, meta, input)
		done = true
		m.finish(ctx, span, meta, start, err)
		return result, err
	}
}

func (m *Middleware) finish(ctx context.Context, span trace.Span, meta ComponentMeta, start time.Time, err error) {
	duration := time.Since(start)
	m.tracer.EndSpan(span, err)
	m.metrics.RecordRender(ctx, meta, duration, err)

	logger := m.logger.WithComponent(meta)
	fields := []Field{
		{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000},
	}
	switch {
	case err == nil:
		logger.Debug(ctx, "component rendered", fields...)
	case IsHalt(err):
		fields = append(fields, Field{Key: "component.halted", Value: true})
		logger.Info(ctx, "component render halted", fields...)
	default:
		fields = append(fields, Field{Key: "error", Value: err.Error()})
		logger.Error(ctx, "component render failed", fields...)
	}
}

// panicError converts a recovered value to an error, keeping error values
// intact so halts raised by panic are still recognised.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
