// Package metrics holds the Prometheus collectors for sigcalc.
//
// Each Metrics value owns its registry, so servers built in tests do not
// collide on the global default registerer.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gkobilansky/sigcalc/internal/stats"
)

const namespace = "sigcalc"

// Sources label where a calculation request came from.
const (
	SourceAPI  = "api"
	SourceForm = "form"
)

type Metrics struct {
	registry *prometheus.Registry

	// CalculationsTotal counts completed calculations.
	// Labels: source (api, form), verdict (significant, not_significant, indeterminate)
	CalculationsTotal *prometheus.CounterVec

	// ValidationFailuresTotal counts rejected inputs.
	// Labels: source
	ValidationFailuresTotal *prometheus.CounterVec

	// RequestDuration measures HTTP handling time.
	// Labels: method, route, status
	RequestDuration *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry. Go runtime and
// process collectors are included when withRuntime is true.
func New(withRuntime bool) *Metrics {
	reg := prometheus.NewRegistry()
	if withRuntime {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		CalculationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calculations_total",
				Help:      "Completed significance calculations by source and verdict",
			},
			[]string{"source", "verdict"},
		),
		ValidationFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_failures_total",
				Help:      "Calculation requests rejected by input validation",
			},
			[]string{"source"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency by method, route and status",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"method", "route", "status"},
		),
	}
}

// RecordCalculation counts one finished calculation.
func (m *Metrics) RecordCalculation(source string, verdict stats.Verdict) {
	m.CalculationsTotal.WithLabelValues(source, string(verdict)).Inc()
}

// RecordValidationFailure counts one rejected input.
func (m *Metrics) RecordValidationFailure(source string) {
	m.ValidationFailuresTotal.WithLabelValues(source).Inc()
}

// ObserveRequest records the duration of one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for gathering in tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
