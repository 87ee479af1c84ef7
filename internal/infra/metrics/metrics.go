// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registration outcomes.
const (
	OutcomeSuccess        = "success"
	OutcomeRejected       = "rejected"
	OutcomeCompensated    = "compensated"
	OutcomePartialFailure = "partial_failure"
)

// Compensation results.
const (
	CompensationOK     = "ok"
	CompensationFailed = "failed"
)

// Metrics bundles the counters owned by the service. A fresh registry is
// created per instance so tests never trip over duplicate registration.
type Metrics struct {
	registry *prometheus.Registry

	Registrations    *prometheus.CounterVec
	Compensations    *prometheus.CounterVec
	ProviderRequests *prometheus.CounterVec
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "enroll_registrations_total",
			Help: "Registration attempts by final outcome.",
		}, []string{"outcome"}),
		Compensations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "enroll_compensations_total",
			Help: "Compensating deletes by result.",
		}, []string{"result"}),
		ProviderRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "enroll_provider_requests_total",
			Help: "Identity provider calls by operation and status.",
		}, []string{"op", "status"}),
	}
}

// Registry returns the registry backing the /metrics endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
