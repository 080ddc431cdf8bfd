package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/compose/cache"
)

// CacheCheckerConfig tunes CacheChecker.
type CacheCheckerConfig struct {
	// Name is the checker name. Default: "cache"
	Name string

	// MinHitRatio marks a store degraded when its hit ratio falls below it.
	// Zero disables the check.
	MinHitRatio float64

	// MinLookups is how many lookups a store needs before its hit ratio is
	// judged. Default: 100
	MinLookups uint64
}

// CacheChecker reports on every store in a registry. Memo stores never
// fail outright, so the worst it reports is degraded.
type CacheChecker struct {
	registry *cache.Registry
	cfg      CacheCheckerConfig
}

// NewCacheChecker creates a checker over reg. A nil reg selects
// cache.DefaultRegistry.
func NewCacheChecker(reg *cache.Registry, cfg CacheCheckerConfig) *CacheChecker {
	if reg == nil {
		reg = cache.DefaultRegistry()
	}
	if cfg.Name == "" {
		cfg.Name = "cache"
	}
	if cfg.MinLookups == 0 {
		cfg.MinLookups = 100
	}
	return &CacheChecker{registry: reg, cfg: cfg}
}

func (c *CacheChecker) Name() string { return c.cfg.Name }

// Check reports per-store stats and flags stores with a poor hit ratio.
func (c *CacheChecker) Check(_ context.Context) Result {
	stores := c.registry.Stores()
	details := make(map[string]any, len(stores))
	var cold []string

	for _, s := range stores {
		st := s.Stats()
		details[s.Name()] = map[string]any{
			"len":       st.Len,
			"capacity":  st.Capacity,
			"hits":      st.Hits,
			"misses":    st.Misses,
			"evictions": st.Evictions,
			"hit_ratio": st.HitRatio(),
		}
		if c.cfg.MinHitRatio > 0 && st.Hits+st.Misses >= c.cfg.MinLookups && st.HitRatio() < c.cfg.MinHitRatio {
			cold = append(cold, s.Name())
		}
	}

	if len(cold) > 0 {
		return Degraded(fmt.Sprintf("hit ratio below %.2f: %v", c.cfg.MinHitRatio, cold)).WithDetails(details)
	}
	return Healthy(fmt.Sprintf("%d stores", len(stores))).WithDetails(details)
}
