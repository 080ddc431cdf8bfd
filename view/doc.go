// Package view bridges template engines into component render steps.
//
// A template never sees the Go scope it was called from. Each render gets a
// Scope holding the instance props, the values the class chose to expose,
// and a Yield callback that renders the children on demand. Engines:
//
//   - HTMLEngine: html/template, contextual escaping on by default.
//   - TextEngine: text/template, no escaping.
//   - TemplEngine: github.com/a-h/templ components; children are available
//     through templ.GetChildren.
//
// Template turns any Engine into a component.RenderFunc.
package view
