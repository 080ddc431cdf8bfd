package view

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// TemplEngine renders templ components built from a Scope. The instance
// children are exposed through templ.WithChildren, so a component renders
// them with templ.GetChildren(ctx) or `{ children... }` in .templ source.
// Children render only if the component asks for them.
type TemplEngine struct {
	build func(Scope) templ.Component
}

// NewTempl returns an engine that renders build(scope).
func NewTempl(build func(Scope) templ.Component) *TemplEngine {
	return &TemplEngine{build: build}
}

// Render renders the built component to a string.
func (e *TemplEngine) Render(ctx context.Context, scope Scope) (string, error) {
	if e.build == nil {
		return "", ErrNilEngine
	}
	children := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		body, err := scope.yield()
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, body)
		return err
	})
	ctx = templ.WithChildren(ctx, children)

	var b strings.Builder
	if err := e.build(scope).Render(ctx, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Component wraps a string of trusted markup, such as a rendered component
// output, as a templ.Component.
func Component(markup string) templ.Component {
	return templ.Raw(markup)
}

var _ Engine = (*TemplEngine)(nil)
