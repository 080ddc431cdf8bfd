package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecordingTracer() (Tracer, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return NewTracer(tp.Tracer("test")), recorder
}

func spanAttrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestComponentMeta_SpanNameAndID(t *testing.T) {
	tests := []struct {
		name     string
		meta     ComponentMeta
		wantSpan string
		wantID   string
	}{
		{"name only", ComponentMeta{Name: "Greeter"}, "component.render.Greeter", "Greeter"},
		{"namespaced", ComponentMeta{Namespace: "blog", Name: "Post"}, "component.render.blog.Post", "blog.Post"},
		{"explicit id", ComponentMeta{ID: "custom", Namespace: "blog", Name: "Post"}, "component.render.blog.Post", "custom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.meta.SpanName(); got != tt.wantSpan {
				t.Errorf("SpanName() = %q, want %q", got, tt.wantSpan)
			}
			if got := tt.meta.ComponentID(); got != tt.wantID {
				t.Errorf("ComponentID() = %q, want %q", got, tt.wantID)
			}
		})
	}
}

func TestComponentMeta_Validate(t *testing.T) {
	if err := (ComponentMeta{}).Validate(); !errors.Is(err, ErrMissingComponentName) {
		t.Errorf("Validate() = %v, want %v", err, ErrMissingComponentName)
	}
	if err := (ComponentMeta{Name: "Greeter"}).Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestTracer_SpanAttributes(t *testing.T) {
	tracer, recorder := newRecordingTracer()

	meta := ComponentMeta{
		Namespace: "blog",
		Name:      "Post",
		Version:   "1.2.0",
		Memoized:  true,
		Tags:      []string{"article"},
	}
	_, span := tracer.StartSpan(context.Background(), meta)
	tracer.EndSpan(span, nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", spans[0].Status().Code)
	}

	attrs := spanAttrs(spans[0])
	if attrs["component.id"].AsString() != "blog.Post" {
		t.Errorf("component.id = %v", attrs["component.id"].AsString())
	}
	if !attrs["component.memoized"].AsBool() {
		t.Error("component.memoized should be true")
	}
	if attrs["component.version"].AsString() != "1.2.0" {
		t.Errorf("component.version = %v", attrs["component.version"].AsString())
	}
	if got := attrs["component.tags"].AsStringSlice(); len(got) != 1 || got[0] != "article" {
		t.Errorf("component.tags = %v", got)
	}
}

func TestTracer_ErrorAndHalt(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   codes.Code
		wantError  bool
		wantHalted bool
	}{
		{"error", errors.New("render failed"), codes.Error, true, false},
		{"halt", haltErr{}, codes.Ok, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, recorder := newRecordingTracer()
			_, span := tracer.StartSpan(context.Background(), ComponentMeta{Name: "Post"})
			tracer.EndSpan(span, tt.err)

			ended := recorder.Ended()[0]
			if ended.Status().Code != tt.wantCode {
				t.Errorf("status = %v, want %v", ended.Status().Code, tt.wantCode)
			}
			attrs := spanAttrs(ended)
			if attrs["component.error"].AsBool() != tt.wantError {
				t.Errorf("component.error = %v, want %v", attrs["component.error"].AsBool(), tt.wantError)
			}
			if attrs["component.halted"].AsBool() != tt.wantHalted {
				t.Errorf("component.halted = %v, want %v", attrs["component.halted"].AsBool(), tt.wantHalted)
			}
		})
	}
}

func TestTracer_ContextPropagation(t *testing.T) {
	tracer, recorder := newRecordingTracer()

	ctx, parent := tracer.StartSpan(context.Background(), ComponentMeta{Name: "Layout"})
	_, child := tracer.StartSpan(ctx, ComponentMeta{Name: "Post"})
	tracer.EndSpan(child, nil)
	tracer.EndSpan(parent, nil)

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Parent().SpanID() != spans[1].SpanContext().SpanID() {
		t.Error("nested render span should be a child of the outer render span")
	}
}

func TestNewTracer_NilIsNoop(t *testing.T) {
	tracer := NewTracer(nil)
	_, span := tracer.StartSpan(context.Background(), ComponentMeta{Name: "noop"})
	tracer.EndSpan(span, errors.New("ignored"))
}
