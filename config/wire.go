package config

import (
	"context"

	"github.com/jonwraymond/compose/component"
	"github.com/jonwraymond/compose/observe"
	"github.com/jonwraymond/compose/respond"
)

// HandlerOptions converts the server settings to respond options.
func (s ServerConfig) HandlerOptions() []respond.HandlerOption {
	var opts []respond.HandlerOption
	if s.RenderTimeout > 0 {
		opts = append(opts, respond.WithTimeout(s.RenderTimeout))
	}
	if s.MaxConcurrent > 0 {
		opts = append(opts, respond.WithMaxConcurrent(s.MaxConcurrent, s.MaxWait))
	}
	return opts
}

// Decoder returns a token decoder for the configured key. Requests without
// a token decode to empty props.
func (t TokenConfig) Decoder() respond.TokenDecoder {
	return respond.TokenDecoder{
		Key:      []byte(t.Key),
		Issuer:   t.Issuer,
		Leeway:   t.Leeway,
		Optional: true,
	}
}

// ClassOptions converts the cache settings to component options.
func (c CacheConfig) ClassOptions() []component.Option {
	if c.Capacity > 0 {
		return []component.Option{component.WithCapacity(c.Capacity)}
	}
	return nil
}

// Telemetry is a running observer and the render middleware built on it.
type Telemetry struct {
	Observer   observe.Observer
	Middleware *observe.Middleware
}

// StartTelemetry builds the observer described by c.Observe. Callers own
// Shutdown.
func (c *Config) StartTelemetry(ctx context.Context) (*Telemetry, error) {
	cfg := c.Observe
	if cfg.ServiceName == "" {
		cfg.ServiceName = c.ServiceName
	}
	obs, err := observe.NewObserver(ctx, cfg)
	if err != nil {
		return nil, err
	}
	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, err
	}
	return &Telemetry{Observer: obs, Middleware: mw}, nil
}

// ClassOptions routes class renders through the middleware.
func (t *Telemetry) ClassOptions() []component.Option {
	return []component.Option{component.WithObserver(t.Middleware)}
}

// HandlerOptions sends the access log to the observer's logger.
func (t *Telemetry) HandlerOptions() []respond.HandlerOption {
	return []respond.HandlerOption{respond.WithLogger(t.Observer.Logger())}
}

// Shutdown flushes and stops the observer.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return t.Observer.Shutdown(ctx)
}
