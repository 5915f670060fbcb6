// Package metrics exposes registry state as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Stats mirrors keel.Stats field for field so the two packages stay
// decoupled; the boot layer adapts one to the other when wiring the
// collector.
type Stats struct {
	ID               string
	Ready            bool
	ActiveComponents int
	StoredRecords    int
	OverrideDepth    int
	CacheHits        uint64
	CacheMisses      uint64
}

var (
	// Global registry (unified registration for all collectors)
	registry = prometheus.NewRegistry()
)

// RegisterCollector registers a Collector to the package registry.
func RegisterCollector(c prometheus.Collector) error {
	return registry.Register(c)
}

// MustRegister registers Collectors in batch (panics if registration fails).
func MustRegister(cs ...prometheus.Collector) {
	registry.MustRegister(cs...)
}

// Gatherer returns the package registry for exposition handlers.
func Gatherer() prometheus.Gatherer {
	return registry
}

// registryCollector adapts a StatsProvider to the following metrics:
// - keel_registry_ready{registry} 0/1
// - keel_registry_components_active{registry}
// - keel_registry_records_stored{registry}
// - keel_registry_override_depth{registry}
// - keel_registry_query_cache_hits_total{registry}
// - keel_registry_query_cache_misses_total{registry}
type registryCollector struct {
	provider func() Stats

	readyDesc      *prometheus.Desc
	componentsDesc *prometheus.Desc
	recordsDesc    *prometheus.Desc
	overrideDesc   *prometheus.Desc
	cacheHitsDesc  *prometheus.Desc
	cacheMissDesc  *prometheus.Desc
}

// NewRegistryCollector creates a collector reading from the given provider.
// The registry's instance ID becomes the "registry" label.
func NewRegistryCollector(id string, provider func() Stats) prometheus.Collector {
	constLabels := prometheus.Labels{
		"registry": id,
	}
	return &registryCollector{
		provider: provider,
		readyDesc: prometheus.NewDesc(
			"keel_registry_ready",
			"Whether the registry has completed population (1=ready, 0=not ready)",
			nil, constLabels,
		),
		componentsDesc: prometheus.NewDesc(
			"keel_registry_components_active",
			"Number of currently installed components",
			nil, constLabels,
		),
		recordsDesc: prometheus.NewDesc(
			"keel_registry_records_stored",
			"Total records ever registered, independent of activation",
			nil, constLabels,
		),
		overrideDesc: prometheus.NewDesc(
			"keel_registry_override_depth",
			"Depth of the active-set override stack",
			nil, constLabels,
		),
		cacheHitsDesc: prometheus.NewDesc(
			"keel_registry_query_cache_hits_total",
			"Derived-query cache hits",
			nil, constLabels,
		),
		cacheMissDesc: prometheus.NewDesc(
			"keel_registry_query_cache_misses_total",
			"Derived-query cache misses",
			nil, constLabels,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *registryCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.readyDesc
	ch <- c.componentsDesc
	ch <- c.recordsDesc
	ch <- c.overrideDesc
	ch <- c.cacheHitsDesc
	ch <- c.cacheMissDesc
}

// Collect implements prometheus.Collector.
func (c *registryCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.provider()

	ready := 0.0
	if s.Ready {
		ready = 1.0
	}
	ch <- prometheus.MustNewConstMetric(c.readyDesc, prometheus.GaugeValue, ready)
	ch <- prometheus.MustNewConstMetric(c.componentsDesc, prometheus.GaugeValue, float64(s.ActiveComponents))
	ch <- prometheus.MustNewConstMetric(c.recordsDesc, prometheus.GaugeValue, float64(s.StoredRecords))
	ch <- prometheus.MustNewConstMetric(c.overrideDesc, prometheus.GaugeValue, float64(s.OverrideDepth))
	ch <- prometheus.MustNewConstMetric(c.cacheHitsDesc, prometheus.CounterValue, float64(s.CacheHits))
	ch <- prometheus.MustNewConstMetric(c.cacheMissDesc, prometheus.CounterValue, float64(s.CacheMisses))
}
