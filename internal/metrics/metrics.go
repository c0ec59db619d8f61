// Package metrics records operation outcomes for Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "github.com/FocuswithJustin/anchorleak/core/errors"
)

// Failure reasons used as the reason label.
const (
	ReasonAnchorIdentifierLength = "anchor_identifier_length"
	ReasonECNLength              = "ecn_length"
	ReasonUnknownCorpus          = "unknown_corpus"
	ReasonMalformedEscape        = "malformed_escape"
	ReasonOther                  = "other"
)

// Metrics provides observability for operation runs. Each instance owns
// its registry, so several can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	// Runs by operation and status ("ok" or "error")
	Operations *prometheus.CounterVec

	// Validation failures by reason
	ValidationFailures *prometheus.CounterVec

	// Run latency by operation
	Duration *prometheus.HistogramVec
}

// New creates a Metrics instance with its collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "anchorleak_operations_total",
			Help: "Total operation runs by operation and status",
		}, []string{"operation", "status"}),

		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "anchorleak_validation_failures_total",
			Help: "Total rejected operation inputs by reason",
		}, []string{"reason"}),

		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "anchorleak_operation_duration_seconds",
			Help:    "Duration of operation runs",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}, []string{"operation"}),
	}
}

// Observe records one run. It satisfies plugins.Observer.
func (m *Metrics) Observe(operation string, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.Duration.WithLabelValues(operation).Observe(d.Seconds())
	if err == nil {
		m.Operations.WithLabelValues(operation, "ok").Inc()
		return
	}
	m.Operations.WithLabelValues(operation, "error").Inc()
	if errors.Is(err, apperrors.ErrInvalidInput) {
		m.ValidationFailures.WithLabelValues(Reason(err)).Inc()
	}
}

// Reason classifies err into one of the Reason* labels.
func Reason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrAnchorIdentifierLength):
		return ReasonAnchorIdentifierLength
	case errors.Is(err, apperrors.ErrECNLength):
		return ReasonECNLength
	case errors.Is(err, apperrors.ErrUnknownCorpus):
		return ReasonUnknownCorpus
	case errors.Is(err, apperrors.ErrMalformedEscape):
		return ReasonMalformedEscape
	default:
		return ReasonOther
	}
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
