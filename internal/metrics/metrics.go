// Package metrics exposes Prometheus counters for the credential workflow.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ericfisherdev/clipseal/internal/domain/model"
)

const namespace = "clipseal"

// Metrics groups every collector the application records to.
type Metrics struct {
	operations    *prometheus.CounterVec
	sanitizations *prometheus.CounterVec
	decoyWrites   prometheus.Counter
	inFlight      prometheus.Gauge
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Workflow operations by operation name and result code.",
			},
			[]string{"op", "result"},
		),
		sanitizations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sanitizations_total",
				Help:      "Completed clipboard sanitization runs by result.",
			},
			[]string{"result"},
		),
		decoyWrites: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decoy_writes_total",
				Help:      "Decoy strings written to the clipboard channel.",
			},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sanitizations_in_flight",
				Help:      "Sanitization runs currently writing decoys.",
			},
		),
	}

	reg.MustRegister(m.operations, m.sanitizations, m.decoyWrites, m.inFlight)
	return m
}

// ObserveOperation counts one workflow operation. Errors outside the
// taxonomy are counted as "error".
func (m *Metrics) ObserveOperation(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = model.ErrorCode(err)
		if result == "" {
			result = "error"
		}
	}
	m.operations.WithLabelValues(op, result).Inc()
}

// SanitizationStarted marks a run as in flight.
func (m *Metrics) SanitizationStarted() {
	if m == nil {
		return
	}
	m.inFlight.Inc()
}

// ObserveSanitization records a finished run and clears its in-flight mark.
func (m *Metrics) ObserveSanitization(report model.SanitizationReport) {
	if m == nil {
		return
	}
	m.inFlight.Dec()
	m.decoyWrites.Add(float64(report.Writes))

	result := "ok"
	if !report.OK() {
		result = "failed"
	}
	m.sanitizations.WithLabelValues(result).Inc()
}

// Handler serves the collectors gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
