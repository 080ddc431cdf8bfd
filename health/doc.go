// Package health reports whether the render pipeline is fit to serve.
//
// A Checker reports a Result with a Status of Healthy, Degraded or
// Unhealthy. Two checkers come with the package: CacheChecker inspects the
// memo stores in a cache.Registry, and RenderChecker renders a probe
// component through a Boundary. An Aggregator runs several checkers
// concurrently under one deadline, and the HTTP handlers expose liveness,
// readiness and a detailed JSON report.
//
//	agg := health.NewAggregator()
//	agg.Register(health.NewCacheChecker(cache.DefaultRegistry(), health.CacheCheckerConfig{}))
//	health.RegisterHandlers(mux, agg)
package health
