package view

import (
	"context"
	"fmt"
	"strings"
	"text/template"
)

// TextEngine renders text/template templates without escaping. Use it for
// non-HTML output or markup that is already safe.
type TextEngine struct {
	name string
	base *template.Template
}

func textFuncs(extra map[string]any, yield func() (string, error)) template.FuncMap {
	funcs := template.FuncMap{
		"yield":    yield,
		"children": yield,
		"escape":   Escape,
	}
	for k, v := range extra {
		funcs[k] = v
	}
	return funcs
}

// NewText parses src as the template named name.
func NewText(name, src string, funcs map[string]any) (*TextEngine, error) {
	tmpl, err := template.New(name).Funcs(textFuncs(funcs, Scope{}.yield)).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("view: parse %q: %w", name, err)
	}
	return &TextEngine{name: name, base: tmpl}, nil
}

// Render executes the template against scope.
func (e *TextEngine) Render(_ context.Context, scope Scope) (string, error) {
	tmpl, err := e.base.Clone()
	if err != nil {
		return "", fmt.Errorf("view: clone %q: %w", e.name, err)
	}
	tmpl.Funcs(textFuncs(nil, scope.yield))

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, e.name, scope.Data()); err != nil {
		return "", fmt.Errorf("view: execute %q: %w", e.name, err)
	}
	return b.String(), nil
}

var _ Engine = (*TextEngine)(nil)
