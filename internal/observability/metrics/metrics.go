package metrics

import "github.com/prometheus/client_golang/prometheus"

// ClinicMetrics exposes counters/histograms for the clinic API.
type ClinicMetrics struct {
	requestsTotal    *prometheus.CounterVec
	requestLatency   *prometheus.HistogramVec
	citasTotal       *prometheus.CounterVec
	loginsTotal      *prometheus.CounterVec
	permissionDenied *prometheus.CounterVec
}

func NewClinicMetrics(reg prometheus.Registerer) *ClinicMetrics {
	m := &ClinicMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "podoclinic",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route and status class",
		}, []string{"route", "method", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "podoclinic",
			Subsystem: "http",
			Name:      "request_latency_seconds",
			Help:      "Latency of HTTP request handling",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		citasTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "podoclinic",
			Subsystem: "citas",
			Name:      "operations_total",
			Help:      "Appointment operations by kind",
		}, []string{"operation"}),
		loginsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "podoclinic",
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by outcome",
		}, []string{"outcome"}),
		permissionDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "podoclinic",
			Subsystem: "auth",
			Name:      "permission_denied_total",
			Help:      "Requests rejected by capability checks",
		}, []string{"capability"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestLatency, m.citasTotal, m.loginsTotal, m.permissionDenied)
	return m
}

func (m *ClinicMetrics) ObserveRequest(route, method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(route, method, status).Inc()
	m.requestLatency.WithLabelValues(route).Observe(seconds)
}

func (m *ClinicMetrics) ObserveCitaOperation(operation string) {
	if m == nil {
		return
	}
	m.citasTotal.WithLabelValues(operation).Inc()
}

func (m *ClinicMetrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.loginsTotal.WithLabelValues(outcome).Inc()
}

func (m *ClinicMetrics) ObservePermissionDenied(capability string) {
	if m == nil {
		return
	}
	m.permissionDenied.WithLabelValues(capability).Inc()
}
