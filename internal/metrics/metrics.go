// Package metrics exposes Prometheus collectors for the dashboard and its
// backend calls.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Backend metrics
	backendCalls    *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec

	// Business metrics
	gatingDecisions *prometheus.CounterVec
	sessionEvents   *prometheus.CounterVec
	scansTotal      *prometheus.CounterVec
	proJobsActive   prometheus.Gauge
	alertsSent      *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	r.backendCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swingdash_backend_calls_total",
			Help: "Total number of signals backend calls by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)
	r.backendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swingdash_backend_call_duration_seconds",
			Help:    "Signals backend call duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 90},
		},
		[]string{"endpoint"},
	)

	// Business metrics
	r.gatingDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swingdash_gating_decisions_total",
			Help: "Total number of entitlement checks by feature and mode",
		},
		[]string{"feature", "mode"},
	)
	r.sessionEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swingdash_session_events_total",
			Help: "Total number of session lifecycle events",
		},
		[]string{"event"},
	)
	r.scansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swingdash_scans_total",
			Help: "Total number of analysis scans by mode and status",
		},
		[]string{"mode", "status"},
	)
	r.proJobsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "swingdash_pro_jobs_active",
			Help: "Number of PRO analysis jobs in flight",
		},
	)
	r.alertsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swingdash_alerts_sent_total",
			Help: "Total number of Telegram alerts by kind and status",
		},
		[]string{"kind", "status"},
	)

	reg.MustRegister(r.backendCalls)
	reg.MustRegister(r.backendDuration)
	reg.MustRegister(r.gatingDecisions)
	reg.MustRegister(r.sessionEvents)
	reg.MustRegister(r.scansTotal)
	reg.MustRegister(r.proJobsActive)
	reg.MustRegister(r.alertsSent)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// ObserveBackendCall records one backend request. It satisfies
// backend.Observer.
func (r *Registry) ObserveBackendCall(endpoint, outcome string, d time.Duration) {
	r.backendCalls.WithLabelValues(endpoint, outcome).Inc()
	r.backendDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// RecordGating records the mode a feature rendered in.
func (r *Registry) RecordGating(feature, mode string) {
	r.gatingDecisions.WithLabelValues(feature, mode).Inc()
}

// RecordSession records a session event such as login, logout or expired.
func (r *Registry) RecordSession(event string) {
	r.sessionEvents.WithLabelValues(event).Inc()
}

// RecordScan records a LITE or PRO scan outcome.
func (r *Registry) RecordScan(mode, status string) {
	r.scansTotal.WithLabelValues(mode, status).Inc()
}

// ProJobStarted and ProJobFinished track in-flight PRO jobs.
func (r *Registry) ProJobStarted() {
	r.proJobsActive.Inc()
}

func (r *Registry) ProJobFinished() {
	r.proJobsActive.Dec()
}

// RecordAlert records a Telegram delivery.
func (r *Registry) RecordAlert(kind, status string) {
	r.alertsSent.WithLabelValues(kind, status).Inc()
}

// AlertStatus is the status label for a delivery outcome.
func AlertStatus(err error) string {
	if err != nil {
		return "failed"
	}
	return "sent"
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
