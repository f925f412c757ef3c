package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors the API increments. A fresh
// registry per Metrics keeps tests independent of global state.
type Metrics struct {
	registry *prometheus.Registry

	Evaluations     *prometheus.CounterVec
	HardSubmissions *prometheus.CounterVec
	GateTransitions *prometheus.CounterVec
}

// NewMetrics creates and registers the API collectors. A nil registry
// gets a private one.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: reg,
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smros_evaluations_total",
			Help: "Completed scoring evaluations by readiness tier.",
		}, []string{"tier"}),
		HardSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smros_hard_submissions_total",
			Help: "Hard gate submissions by outcome.",
		}, []string{"outcome"}),
		GateTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smros_gate_transitions_total",
			Help: "Soft gate status derivations by resulting status.",
		}, []string{"status"}),
	}
	reg.MustRegister(m.Evaluations, m.HardSubmissions, m.GateTransitions)
	return m
}

// HTTPHandler serves the /metrics endpoint for this registry.
func (m *Metrics) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
