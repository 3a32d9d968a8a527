/*
Package metrics provides Prometheus instrumentation for the engine's
catalog, shape dictionary, transaction manager, and skiplist indexes,
plus HTTP health/readiness/liveness handlers.

Metrics are registered once at package init via prometheus.MustRegister
and exposed for scraping through Handler(). A Collector periodically
samples a vocbase, a shaper, and a transaction manager into the
package's gauges; callers that want operation-latency histograms wrap
the work in a Timer instead.

# Usage

	timer := metrics.NewTimer()
	col, err := vocbase.Create(name, catalog.Document)
	timer.ObserveDuration(metrics.CollectionCreateDuration)

	http.Handle("/metrics", metrics.Handler())
	http.Handle("/health", metrics.HealthHandler())
	http.Handle("/ready", metrics.ReadyHandler())
	http.Handle("/live", metrics.LivenessHandler())

# Readiness

GetReadiness checks a fixed set of critical components ("store",
"catalog") registered via RegisterComponent/UpdateComponent; a missing
or unhealthy critical component reports "not_ready".
*/
package metrics
