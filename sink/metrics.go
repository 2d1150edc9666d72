package sink

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry      *prometheus.Registry
	records       prometheus.Counter
	parseFailures prometheus.Counter
	snapshots     prometheus.Counter
	trackedPaths  prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fieldprint_records_received_total",
			Help: "Records received over HTTP, whether or not they parsed.",
		}),
		parseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fieldprint_parse_failures_total",
			Help: "Records rejected because they were not valid JSON.",
		}),
		snapshots: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fieldprint_schema_snapshots_total",
			Help: "Schema snapshots served.",
		}),
		trackedPaths: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fieldprint_tracked_paths",
			Help: "Field paths currently tracked by the live inferrer.",
		}),
	}
	m.registry.MustRegister(m.records, m.parseFailures, m.snapshots, m.trackedPaths)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
