package view

import (
	"context"
	"errors"
	"strings"

	"github.com/a-h/templ"

	"github.com/jonwraymond/compose/component"
)

var (
	// ErrNoTemplatePath indicates a parse call matched no template files.
	ErrNoTemplatePath = errors.New("view: no template path")

	// ErrNilEngine indicates Template was given a nil engine.
	ErrNilEngine = errors.New("view: engine is nil")
)

// Scope is the explicit context a template renders against.
type Scope struct {
	// Env is the props of the rendering instance.
	Env component.Props

	// Values are the names the class exposes. When nil, templates see Env.
	Values map[string]any

	// Yield renders the instance children. It may be nil.
	Yield func() (string, error)
}

// Data returns what templates see as dot.
func (s Scope) Data() map[string]any {
	if s.Values != nil {
		return s.Values
	}
	return map[string]any(s.Env)
}

func (s Scope) yield() (string, error) {
	if s.Yield == nil {
		return "", nil
	}
	return s.Yield()
}

// Engine renders a template against a Scope.
//
// Contract:
// - Concurrency: Render must be safe for concurrent use.
// - Errors: template and Yield errors are returned, never swallowed.
type Engine interface {
	Render(ctx context.Context, scope Scope) (string, error)
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(ctx context.Context, scope Scope) (string, error)

// Render calls f.
func (f EngineFunc) Render(ctx context.Context, scope Scope) (string, error) {
	return f(ctx, scope)
}

// ValuesFunc picks the values a template may see for one instance.
type ValuesFunc func(ctx context.Context, in *component.Instance) (map[string]any, error)

// Template returns a render step that renders engine with the instance
// props as Env, values(in) as Values, and the instance children as Yield.
func Template(engine Engine, values ValuesFunc) component.RenderFunc {
	return func(ctx context.Context, in *component.Instance) (any, error) {
		if engine == nil {
			return nil, ErrNilEngine
		}
		scope := Scope{
			Env: in.Props(),
			Yield: func() (string, error) {
				return in.YieldText(ctx)
			},
		}
		if values != nil {
			v, err := values(ctx, in)
			if err != nil {
				return nil, err
			}
			scope.Values = v
		}
		return engine.Render(ctx, scope)
	}
}

// Expose is a ValuesFunc exposing only the named props.
func Expose(keys ...string) ValuesFunc {
	return func(_ context.Context, in *component.Instance) (map[string]any, error) {
		out := make(map[string]any, len(keys))
		for _, k := range keys {
			out[k] = in.Prop(k)
		}
		return out, nil
	}
}

// Escape HTML-escapes the text form of v. It is not idempotent: escape
// each value exactly once.
func Escape(v any) string {
	return templ.EscapeString(component.Text(v))
}

// Join concatenates the text form of each part.
func Join(parts ...any) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(component.Text(p))
	}
	return b.String()
}
