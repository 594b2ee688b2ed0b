package daemon

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jvmproc/internal/registry"
)

type metrics struct {
	registry  *prometheus.Registry
	passes    *prometheus.CounterVec
	degraded  *prometheus.CounterVec
	bootstrap *prometheus.CounterVec
	processes prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		// private registry, the default one adds Go runtime metrics
		registry: prometheus.NewRegistry(),
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jvmproc_discovery_passes_total",
			Help: "Discovery passes by kind (full or incremental).",
		}, []string{"kind"}),
		degraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jvmproc_probe_degraded_total",
			Help: "Probe failures absorbed into degraded records, by source.",
		}, []string{"source"}),
		bootstrap: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jvmproc_bootstrap_total",
			Help: "Management agent bootstraps by result.",
		}, []string{"result"}),
		processes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jvmproc_processes",
			Help: "JVMs in the current snapshot.",
		}),
	}
	m.registry.MustRegister(m.passes, m.degraded, m.bootstrap, m.processes)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *metrics) observeDegraded(d registry.Degraded) {
	m.degraded.WithLabelValues(string(d.Source)).Inc()
}

// bootstrapResult labels an EnsureEndpoint outcome.
func bootstrapResult(err error) string {
	if err == nil {
		return "ok"
	}
	var be *registry.BootstrapError
	if errors.As(err, &be) {
		return string(be.Step)
	}
	return "rejected"
}
