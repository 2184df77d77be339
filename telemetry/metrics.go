package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains the service-level Prometheus metrics. ReloadTotal counts
// reloads forced through POST /config/reload; interval and file-watch reloads
// are not counted. CacheHits and CacheMisses are registered and exported but
// no component increments them.
type Metrics struct {
	ResolveTotal    *prometheus.CounterVec
	ResolveDuration *prometheus.HistogramVec
	ReloadTotal     *prometheus.CounterVec
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	AccessEvents    *prometheus.CounterVec
	CatalogNodes    prometheus.Gauge
	registry        *prometheus.Registry
}

// NewMetrics creates and registers all service metrics on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{
		ResolveTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "moniker",
				Subsystem: "resolver",
				Name:      "resolve_total",
				Help:      "Total resolve calls by outcome",
			},
			[]string{"outcome"},
		),
		ResolveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "moniker",
				Subsystem: "resolver",
				Name:      "resolve_duration_seconds",
				Help:      "Resolve latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		ReloadTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "moniker",
				Subsystem: "catalog",
				Name:      "reload_total",
				Help:      "Total catalog reloads by result",
			},
			[]string{"result"},
		),
		CacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "moniker",
				Subsystem: "cache",
				Name:      "hits_total",
				Help:      "Total resolve cache hits",
			},
		),
		CacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "moniker",
				Subsystem: "cache",
				Name:      "misses_total",
				Help:      "Total resolve cache misses",
			},
		),
		AccessEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "moniker",
				Subsystem: "telemetry",
				Name:      "access_events_total",
				Help:      "Total access events accepted",
			},
			[]string{"operation"},
		),
		CatalogNodes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "moniker",
				Subsystem: "catalog",
				Name:      "nodes",
				Help:      "Nodes in the current catalog snapshot",
			},
		),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.ResolveTotal,
		m.ResolveDuration,
		m.ReloadTotal,
		m.CacheHits,
		m.CacheMisses,
		m.AccessEvents,
		m.CatalogNodes,
	)
	return m
}

// Handler returns the HTTP handler serving the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
