package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// ComponentMeta describes a component class for telemetry purposes.
type ComponentMeta struct {
	ID        string   // Fully qualified ID (namespace.name or just name)
	Namespace string   // Grouping such as a page or package (optional)
	Name      string   // Class name (required)
	Version   string   // Class version (optional)
	Memoized  bool     // Rendered through the class cache
	Tags      []string // Free-form tags (optional)
}

// SpanName returns the deterministic span name for this component.
// Format: component.render.<namespace>.<name> or component.render.<name>
func (m ComponentMeta) SpanName() string {
	if m.Namespace != "" {
		return "component.render." + m.Namespace + "." + m.Name
	}
	return "component.render." + m.Name
}

// ComponentID returns the fully qualified component identifier.
func (m ComponentMeta) ComponentID() string {
	if m.ID != "" {
		return m.ID
	}
	if m.Namespace != "" {
		return m.Namespace + "." + m.Name
	}
	return m.Name
}

// Validate reports whether the metadata is usable.
func (m ComponentMeta) Validate() error {
	if m.Name == "" {
		return ErrMissingComponentName
	}
	return nil
}

// fields lists the log fields every component-scoped logger carries.
func (m ComponentMeta) fields() []Field {
	fields := []Field{
		{Key: "component.id", Value: m.ComponentID()},
		{Key: "component.name", Value: m.Name},
	}
	if m.Namespace != "" {
		fields = append(fields, Field{Key: "component.namespace", Value: m.Namespace})
	}
	if m.Version != "" {
		fields = append(fields, Field{Key: "component.version", Value: m.Version})
	}
	if m.Memoized {
		fields = append(fields, Field{Key: "component.memoized", Value: true})
	}
	return fields
}

func (m ComponentMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("component.id", m.ComponentID()),
		attribute.String("component.name", m.Name),
	}
	if m.Namespace != "" {
		attrs = append(attrs, attribute.String("component.namespace", m.Namespace))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with component span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for one render.
	StartSpan(ctx context.Context, meta ComponentMeta) (context.Context, trace.Span)

	// EndSpan ends the span. Halts end Ok with component.halted=true; other
	// errors set the Error status.
	EndSpan(span trace.Span, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	if t == nil {
		return newNoopTracer()
	}
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta ComponentMeta) (context.Context, trace.Span) {
	attrs := append(meta.attributes(),
		attribute.Bool("component.memoized", meta.Memoized),
		attribute.Bool("component.error", false),
		attribute.Bool("component.halted", false),
	)
	if meta.Version != "" {
		attrs = append(attrs, attribute.String("component.version", meta.Version))
	}
	if len(meta.Tags) > 0 {
		attrs = append(attrs, attribute.StringSlice("component.tags", meta.Tags))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "")
	case IsHalt(err):
		span.SetAttributes(attribute.Bool("component.halted", true))
		span.SetStatus(codes.Ok, "")
	default:
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("component.error", true))
		span.RecordError(err)
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta ComponentMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
