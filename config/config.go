package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/jonwraymond/compose/observe"
)

// Prefix is prepended to every variable name.
const Prefix = "COMPOSE_"

// MinTokenKeyLength is the shortest accepted HMAC key for props tokens.
const MinTokenKeyLength = 32

// Config is the full service configuration.
type Config struct {
	ServiceName string
	Cache       CacheConfig
	Server      ServerConfig
	Token       TokenConfig
	Observe     observe.Config
}

// CacheConfig configures memo stores.
type CacheConfig struct {
	// Capacity is the default per-class capacity. Zero keeps the store
	// default.
	Capacity int

	// MinHitRatio drives the cache health check. Zero disables it.
	MinHitRatio float64
}

// ServerConfig configures the request boundary.
type ServerConfig struct {
	Addr          string
	RenderTimeout time.Duration
	MaxConcurrent int
	MaxWait       time.Duration
}

// TokenConfig configures signed props tokens. An empty Key disables them.
type TokenConfig struct {
	Key    string
	Issuer string
	Leeway time.Duration
}

// Enabled reports whether a signing key is configured.
func (t TokenConfig) Enabled() bool {
	return t.Key != ""
}

// Default returns the configuration used for unset variables.
func Default() Config {
	return Config{
		ServiceName: "compose",
		Server: ServerConfig{
			Addr:          ":8080",
			RenderTimeout: 5 * time.Second,
		},
		Observe: observe.Config{
			Tracing: observe.TracingConfig{Exporter: "none", SamplePct: 1},
			Metrics: observe.MetricsConfig{Exporter: "none"},
			Logging: observe.LoggingConfig{Enabled: true, Level: "info", Format: "json"},
		},
	}
}

// Load reads the dotenv files that exist, overlays the process environment
// and parses the result. Missing files are skipped.
func Load(files ...string) (Config, error) {
	env := map[string]string{}
	for _, f := range files {
		vals, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("config: read %s: %w", f, err)
		}
		for k, v := range vals {
			env[k] = v
		}
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return Parse(env)
}

// Parse builds a Config from env and validates it.
func Parse(env map[string]string) (Config, error) {
	p := parser{env: env}
	cfg := Default()

	p.stringVar("SERVICE_NAME", &cfg.ServiceName)
	p.stringVar("VERSION", &cfg.Observe.Version)

	p.intVar("CACHE_CAPACITY", &cfg.Cache.Capacity)
	p.floatVar("CACHE_MIN_HIT_RATIO", &cfg.Cache.MinHitRatio)

	p.stringVar("ADDR", &cfg.Server.Addr)
	p.durationVar("RENDER_TIMEOUT", &cfg.Server.RenderTimeout)
	p.intVar("MAX_CONCURRENT", &cfg.Server.MaxConcurrent)
	p.durationVar("MAX_WAIT", &cfg.Server.MaxWait)

	p.stringVar("TOKEN_KEY", &cfg.Token.Key)
	p.stringVar("TOKEN_ISSUER", &cfg.Token.Issuer)
	p.durationVar("TOKEN_LEEWAY", &cfg.Token.Leeway)

	p.boolVar("TRACING_ENABLED", &cfg.Observe.Tracing.Enabled)
	p.stringVar("TRACING_EXPORTER", &cfg.Observe.Tracing.Exporter)
	p.floatVar("TRACING_SAMPLE_PCT", &cfg.Observe.Tracing.SamplePct)
	p.boolVar("METRICS_ENABLED", &cfg.Observe.Metrics.Enabled)
	p.stringVar("METRICS_EXPORTER", &cfg.Observe.Metrics.Exporter)
	p.boolVar("LOG_ENABLED", &cfg.Observe.Logging.Enabled)
	p.stringVar("LOG_LEVEL", &cfg.Observe.Logging.Level)
	p.stringVar("LOG_FORMAT", &cfg.Observe.Logging.Format)

	if err := errors.Join(p.errs...); err != nil {
		return Config{}, err
	}
	cfg.Observe.ServiceName = cfg.ServiceName

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints and the observe settings.
func (c *Config) Validate() error {
	if c.Cache.Capacity < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidCapacity, c.Cache.Capacity)
	}
	if c.Cache.MinHitRatio < 0 || c.Cache.MinHitRatio > 1 {
		return fmt.Errorf("%w: got %f", ErrInvalidHitRatio, c.Cache.MinHitRatio)
	}
	if c.Server.MaxConcurrent < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidConcurrency, c.Server.MaxConcurrent)
	}
	if c.Token.Enabled() && len(c.Token.Key) < MinTokenKeyLength {
		return fmt.Errorf("%w: need %d bytes", ErrWeakTokenKey, MinTokenKeyLength)
	}
	obs := c.Observe
	if obs.ServiceName == "" {
		obs.ServiceName = c.ServiceName
	}
	return obs.Validate()
}

// parser reads prefixed variables, expanding references against the same
// env and collecting every error.
type parser struct {
	env  map[string]string
	errs []error
}

func (p *parser) lookup(key string) (string, bool) {
	v, ok := p.env[key]
	return v, ok
}

func (p *parser) raw(name string) (string, bool) {
	key := Prefix + name
	v, ok := p.env[key]
	if !ok {
		return "", false
	}
	out, err := ExpandStrict(v, p.lookup)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return "", false
	}
	return strings.TrimSpace(out), true
}

func (p *parser) invalid(name, v string, err error) {
	p.errs = append(p.errs, fmt.Errorf("%w: %s%s=%q: %v", ErrInvalidValue, Prefix, name, v, err))
}

func (p *parser) stringVar(name string, dst *string) {
	if v, ok := p.raw(name); ok {
		*dst = v
	}
}

func (p *parser) intVar(name string, dst *int) {
	if v, ok := p.raw(name); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			p.invalid(name, v, err)
			return
		}
		*dst = n
	}
}

func (p *parser) floatVar(name string, dst *float64) {
	if v, ok := p.raw(name); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			p.invalid(name, v, err)
			return
		}
		*dst = f
	}
}

func (p *parser) boolVar(name string, dst *bool) {
	if v, ok := p.raw(name); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			p.invalid(name, v, err)
			return
		}
		*dst = b
	}
}

func (p *parser) durationVar(name string, dst *time.Duration) {
	if v, ok := p.raw(name); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			p.invalid(name, v, err)
			return
		}
		*dst = d
	}
}
