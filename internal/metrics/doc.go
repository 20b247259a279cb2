// Package metrics exposes stream engine counters as Prometheus collectors and
// optionally serves them over HTTP.
//
// Every Collector owns a private registry, so several engines (or tests) can
// live in one process without colliding on the default registerer.
package metrics
