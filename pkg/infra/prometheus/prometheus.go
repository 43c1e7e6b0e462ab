package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

// SecurityMetrics are the counters and gauges the monitor updates on every
// record and every remediation.
type SecurityMetrics struct {
	EventsTotal     *prometheus.CounterVec
	BlockedAttempts prometheus.Counter
	EventLogSize    prometheus.Gauge
	MonitorState    *prometheus.GaugeVec
	ExportDropped   prometheus.Counter
}

func NewSecurityMetrics(reg prometheus.Registerer) *SecurityMetrics {
	factory := promauto.With(reg)
	return &SecurityMetrics{
		EventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustguard_security_events_total",
				Help: "Total number of security events recorded",
			},
			[]string{"type", "severity"},
		),
		BlockedAttempts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "trustguard_blocked_attempts_total",
				Help: "Number of times access was blocked by the incident responder",
			},
		),
		EventLogSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "trustguard_event_log_size",
				Help: "Number of events currently held in the event log",
			},
		),
		MonitorState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "trustguard_monitor_state",
				Help: "1 for the current monitor state, 0 otherwise",
			},
			[]string{"state"},
		),
		ExportDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "trustguard_export_dropped_total",
				Help: "Security events dropped because the export queue was full",
			},
		),
	}
}

// Initialize registers the process collectors and returns the metrics bound
// to the package registry.
func Initialize() *SecurityMetrics {
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
	return NewSecurityMetrics(registry)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
