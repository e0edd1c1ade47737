package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authdemo "github.com/MalcoreHardcore698/authdemo"
	"github.com/MalcoreHardcore698/authdemo/metrics/export/internaldefs"
)

type metricsSource interface {
	MetricsSnapshot() authdemo.MetricsSnapshot
	AuditDropped() uint64
}

// Collector implements prometheus.Collector over a metrics source.
type Collector struct {
	source   metricsSource
	actions  *prometheus.Desc
	fallback *prometheus.Desc
	latency  *prometheus.Desc
	dropped  *prometheus.Desc
}

// NewCollector reads from engine.
func NewCollector(engine *authdemo.Engine) *Collector {
	return NewCollectorFromSource(engine)
}

func NewCollectorFromSource(source metricsSource) *Collector {
	return &Collector{
		source:   source,
		actions:  prometheus.NewDesc(internaldefs.ActionsName, internaldefs.ActionsHelp, []string{"op", "outcome"}, nil),
		fallback: prometheus.NewDesc(internaldefs.FallbackName, internaldefs.FallbackHelp, nil, nil),
		latency:  prometheus.NewDesc(internaldefs.LatencyName, internaldefs.LatencyHelp, nil, nil),
		dropped:  prometheus.NewDesc(internaldefs.AuditDroppedName, internaldefs.AuditDroppedHelp, nil, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.actions
	ch <- c.fallback
	ch <- c.latency
	ch <- c.dropped
}

// Collect emits nothing for counters the snapshot does not carry, so a
// disabled engine scrapes as empty.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c == nil || c.source == nil {
		return
	}
	snap := c.source.MetricsSnapshot()

	for _, def := range internaldefs.ActionDefs {
		v, ok := snap.Counters[def.ID]
		if !ok {
			continue
		}
		ch <- prometheus.MustNewConstMetric(c.actions, prometheus.CounterValue, float64(v), def.Op, def.Outcome)
	}
	if v, ok := snap.Counters[authdemo.MetricFallbackUsed]; ok {
		ch <- prometheus.MustNewConstMetric(c.fallback, prometheus.CounterValue, float64(v))
	}
	if raw, ok := snap.Histograms[authdemo.MetricActionLatency]; ok {
		cumulative := internaldefs.CumulativeBuckets(raw)
		buckets := make(map[float64]uint64, len(internaldefs.HistogramBounds))
		for i, le := range internaldefs.HistogramBounds {
			buckets[le] = cumulative[i]
		}
		// Sum is not tracked by the engine.
		ch <- prometheus.MustNewConstHistogram(c.latency, cumulative[len(cumulative)-1], 0, buckets)
	}
	ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(c.source.AuditDropped()))
}

// PrometheusExporter serves a private registry holding one Collector.
type PrometheusExporter struct {
	registry *prometheus.Registry
}

// NewPrometheusExporter registers a collector for engine on a new registry.
func NewPrometheusExporter(engine *authdemo.Engine) *PrometheusExporter {
	return NewPrometheusExporterFromSource(engine)
}

func NewPrometheusExporterFromSource(source metricsSource) *PrometheusExporter {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollectorFromSource(source))
	return &PrometheusExporter{registry: reg}
}

// Registry returns the exporter's registry so other collectors can share
// the same /metrics endpoint.
func (p *PrometheusExporter) Registry() *prometheus.Registry { return p.registry }

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusExporter) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
