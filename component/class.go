package component

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/jonwraymond/compose/cache"
	"github.com/jonwraymond/compose/observe"
)

// Children is the continuation handed to a component. It receives the
// payload the component chooses to pass (usually the instance itself) and
// the calling instance, and returns nested output.
type Children func(ctx context.Context, payload any, parent *Instance) (any, error)

// RenderFunc produces a component's output.
type RenderFunc func(ctx context.Context, in *Instance) (any, error)

// Empty is the fallback returned when a missing continuation is invoked.
var Empty any

// Class is one kind of component. It is safe for concurrent use once built;
// options are applied only by New and Derive.
type Class struct {
	name string
	cfg  config

	memoOnce  sync.Once
	memoReady atomic.Bool
	memo      *cache.Memo
	memoErr   error
}

type config struct {
	render          RenderFunc
	required        []string
	defaults        Props
	validators      []func(Props) error
	status          int
	header          http.Header
	passThrough     bool
	capacity        int
	keyer           cache.Keyer
	registry        *cache.Registry
	observer        *observe.Middleware
	namespace       string
	warmConcurrency int
}

func (c config) clone() config {
	out := c
	out.required = append([]string(nil), c.required...)
	out.defaults = c.defaults.Clone()
	out.validators = append([]func(Props) error(nil), c.validators...)
	out.header = c.header.Clone()
	return out
}

// Option configures a Class.
type Option func(*config)

// WithRender sets the render step. Without one, the class renders its
// children with the instance as payload.
func WithRender(fn RenderFunc) Option {
	return func(c *config) {
		c.render = fn
	}
}

// Require marks props that must be present at construction.
func Require(keys ...string) Option {
	return func(c *config) {
		c.required = append(c.required, keys...)
	}
}

// WithDefaults sets props applied beneath the caller's props.
func WithDefaults(defaults Props) Option {
	return func(c *config) {
		c.defaults = c.defaults.Merge(defaults)
	}
}

// WithValidator adds a check run after required props are present. A
// non-nil error fails construction.
func WithValidator(fn func(Props) error) Option {
	return func(c *config) {
		if fn != nil {
			c.validators = append(c.validators, fn)
		}
	}
}

// WithStatus sets the status a boundary uses when this class is the root.
func WithStatus(status int) Option {
	return func(c *config) {
		c.status = status
	}
}

// WithHeader adds a header a boundary sends when this class is the root.
func WithHeader(key, value string) Option {
	return func(c *config) {
		if c.header == nil {
			c.header = http.Header{}
		}
		c.header.Add(key, value)
	}
}

// WithPassThrough makes a missing continuation return the instance props
// instead of Empty.
func WithPassThrough() Option {
	return func(c *config) {
		c.passThrough = true
	}
}

// WithCapacity sets the capacity of the class store. Zero selects
// cache.DefaultCapacity; a negative value makes memoized calls fail with
// cache.ErrInvalidCapacity.
func WithCapacity(n int) Option {
	return func(c *config) {
		c.capacity = n
	}
}

// WithKeyer sets how props become cache keys. Defaults to cache.DefaultKeyer.
func WithKeyer(k cache.Keyer) Option {
	return func(c *config) {
		c.keyer = k
	}
}

// WithRegistry sets the registry the class store joins. Defaults to
// cache.DefaultRegistry.
func WithRegistry(r *cache.Registry) Option {
	return func(c *config) {
		c.registry = r
	}
}

// WithObserver wraps every render in mw and reports cache activity to its
// metrics.
func WithObserver(mw *observe.Middleware) Option {
	return func(c *config) {
		c.observer = mw
	}
}

// WithNamespace groups the class in telemetry.
func WithNamespace(ns string) Option {
	return func(c *config) {
		c.namespace = ns
	}
}

// WithWarmConcurrency bounds how many inputs Warm renders at once. The
// default is 1.
func WithWarmConcurrency(n int) Option {
	return func(c *config) {
		c.warmConcurrency = n
	}
}

// New defines a component class.
func New(name string, opts ...Option) *Class {
	cfg := config{status: http.StatusOK}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Class{name: name, cfg: cfg}
}

// Derive defines a class that starts from c's configuration, applies opts
// on top, and owns its own store.
func (c *Class) Derive(name string, opts ...Option) *Class {
	cfg := c.cfg.clone()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Class{name: name, cfg: cfg}
}

// Name returns the class name.
func (c *Class) Name() string {
	return c.name
}

// Status returns the status a boundary should use for this class.
func (c *Class) Status() int {
	return c.cfg.status
}

// Header returns a copy of the headers a boundary should send for this class.
func (c *Class) Header() http.Header {
	if c.cfg.header == nil {
		return http.Header{}
	}
	return c.cfg.header.Clone()
}

// Meta returns the telemetry metadata for this class.
func (c *Class) Meta() observe.ComponentMeta {
	return observe.ComponentMeta{Namespace: c.cfg.namespace, Name: c.name}
}

// New builds an instance. Defaults are applied, then required props and
// validators are checked; failures return a *ConstructionError.
func (c *Class) New(props Props, children Children) (*Instance, error) {
	merged := c.cfg.defaults.Merge(props)

	var missing []string
	for _, key := range c.cfg.required {
		if !merged.Has(key) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &ConstructionError{Component: c.name, Missing: missing, Err: ErrMissingProp}
	}

	for _, validate := range c.cfg.validators {
		if err := validate(merged); err != nil {
			return nil, &ConstructionError{Component: c.name, Err: err}
		}
	}

	return &Instance{class: c, props: merged, children: children}, nil
}

// Call constructs an instance and renders it.
func (c *Class) Call(ctx context.Context, props Props, children Children) (any, error) {
	in, err := c.New(props, children)
	if err != nil {
		return nil, err
	}
	return c.render(ctx, in, false)
}

// Render is Call followed by Text.
func (c *Class) Render(ctx context.Context, props Props, children Children) (string, error) {
	out, err := c.Call(ctx, props, children)
	if err != nil {
		return "", err
	}
	return Text(out), nil
}

// Child returns a continuation that calls c with props and children,
// ignoring the payload. It lets a parent nest c without writing a closure.
func (c *Class) Child(props Props, children Children) Children {
	return func(ctx context.Context, _ any, _ *Instance) (any, error) {
		return c.Call(ctx, props, children)
	}
}

// CachedChild is Child using the memoized path.
func (c *Class) CachedChild(props Props, children Children) Children {
	return func(ctx context.Context, _ any, _ *Instance) (any, error) {
		return c.Cached(ctx, props, children)
	}
}

func (c *Class) render(ctx context.Context, in *Instance, memoized bool) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.cfg.observer == nil {
		return c.produce(ctx, in)
	}

	meta := c.Meta()
	meta.Memoized = memoized
	wrapped := c.cfg.observer.Wrap(func(ctx context.Context, _ observe.ComponentMeta, _ any) (any, error) {
		return c.produce(ctx, in)
	})
	return wrapped(ctx, meta, in.props)
}

func (c *Class) produce(ctx context.Context, in *Instance) (any, error) {
	if c.cfg.render != nil {
		return c.cfg.render(ctx, in)
	}
	return in.Yield(ctx)
}

func (c *Class) fallback(in *Instance) any {
	if c.cfg.passThrough {
		return in.Props()
	}
	return Empty
}
