package view

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
)

// HTMLEngine renders html/template templates. Values are escaped for their
// context; yield output is trusted markup and inserted as is.
//
// Templates can call:
//
//	{{ yield }}      rendered children
//	{{ escape .x }}  explicit escaping inside trusted strings
type HTMLEngine struct {
	name string
	base *template.Template
}

func htmlFuncs(extra map[string]any, yield func() (template.HTML, error)) template.FuncMap {
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

func placeholderHTML() (template.HTML, error) { return "", nil }

// NewHTML parses src as the template named name.
func NewHTML(name, src string, funcs map[string]any) (*HTMLEngine, error) {
	tmpl, err := template.New(name).Funcs(htmlFuncs(funcs, placeholderHTML)).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("view: parse %q: %w", name, err)
	}
	return &HTMLEngine{name: name, base: tmpl}, nil
}

// ParseHTMLFS parses every file matching patterns in fsys and renders the
// template called name. Each file is registered under its path, so
// templates can include one another.
func ParseHTMLFS(fsys fs.FS, name string, funcs map[string]any, patterns ...string) (*HTMLEngine, error) {
	var files []string
	for _, pattern := range patterns {
		list, err := fs.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("view: list %q: %w", pattern, err)
		}
		files = append(files, list...)
	}
	if len(files) == 0 {
		return nil, ErrNoTemplatePath
	}

	tmpl := template.New("").Funcs(htmlFuncs(funcs, placeholderHTML))
	for _, file := range files {
		contents, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("view: read %q: %w", file, err)
		}
		if _, err := tmpl.New(file).Parse(string(contents)); err != nil {
			return nil, fmt.Errorf("view: parse %q: %w", file, err)
		}
	}
	return &HTMLEngine{name: name, base: tmpl}, nil
}

// Render executes the template. The parsed base is cloned per render so
// yield can be bound to this scope.
func (e *HTMLEngine) Render(_ context.Context, scope Scope) (string, error) {
	tmpl, err := e.base.Clone()
	if err != nil {
		return "", fmt.Errorf("view: clone %q: %w", e.name, err)
	}
	tmpl.Funcs(htmlFuncs(nil, func() (template.HTML, error) {
		body, err := scope.yield()
		return template.HTML(body), err
	}))

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, e.name, scope.Data()); err != nil {
		return "", fmt.Errorf("view: execute %q: %w", e.name, err)
	}
	return b.String(), nil
}

var _ Engine = (*HTMLEngine)(nil)
