// Package observe provides observability primitives for component rendering.
//
// It is a pure instrumentation library: no rendering, no transport, no I/O
// beyond exporter setup. The component package wraps each render with a
// Middleware, and Metrics doubles as the cache.Recorder for memoized
// classes. Halts are not failures: a render that short-circuits with a
// terminal response is recorded with component.halted=true and an Ok span.
package observe
