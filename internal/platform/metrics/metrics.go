package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/clinicadmin/clinic/internal/platform/apperr"
)

// HTTPMetrics counts and times HTTP requests by route template.
type HTTPMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestDuration)
	return m
}

func (m *HTTPMetrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, status).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(seconds)
}

// MutationMetrics counts domain writes by entity, action and outcome.
type MutationMetrics struct {
	mutationsTotal *prometheus.CounterVec
}

func NewMutationMetrics(reg prometheus.Registerer) *MutationMetrics {
	m := &MutationMetrics{
		mutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "domain",
			Name:      "mutations_total",
			Help:      "Domain mutations by entity, action and outcome",
		}, []string{"entity", "action", "outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.mutationsTotal)
	return m
}

// Observe records one mutation. The outcome label is "ok", "invalid" for
// validation failures, "not_found", or "error".
func (m *MutationMetrics) Observe(entity, action string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	switch {
	case err == nil:
	case apperr.IsValidation(err):
		outcome = "invalid"
	case errors.Is(err, apperr.ErrNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	m.mutationsTotal.WithLabelValues(entity, action, outcome).Inc()
}
