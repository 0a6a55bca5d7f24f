// Package metrics exposes Prometheus instruments for discovery and
// application runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"letraz-autoapply/pkg/models"
)

const namespace = "autoapply"

// Metrics holds the instruments of one process on a private registry
type Metrics struct {
	registry *prometheus.Registry

	PostingsYielded prometheus.Counter
	PostingsSkipped prometheus.Counter
	Applications    *prometheus.CounterVec
	ApplyDuration   prometheus.Histogram
	SearchSeen      prometheus.Gauge
	SearchMatched   prometheus.Gauge
	SearchTotal     prometheus.Gauge
	CircuitState    prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		PostingsYielded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "postings_yielded_total",
			Help:      "Postings that passed every discovery filter",
		}),
		PostingsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "postings_skipped_total",
			Help:      "Postings skipped because an application was already submitted",
		}),
		Applications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "applications_total",
			Help:      "Application attempts by outcome",
		}, []string{"outcome"}),
		ApplyDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "apply_duration_seconds",
			Help:      "Time spent driving one application",
			Buckets:   []float64{5, 10, 20, 30, 60, 120, 240, 480},
		}),
		SearchSeen: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "search_seen",
			Help:      "Result items seen by the current search",
		}),
		SearchMatched: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "search_matched",
			Help:      "Result items matched by the current search",
		}),
		SearchTotal: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "search_total",
			Help:      "Result count advertised for the current search",
		}),
		CircuitState: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_state",
			Help:      "Failure circuit: 0 closed, 1 open, 2 half-open",
		}),
	}
}

// ObserveApplication counts one attempt and its duration
func (m *Metrics) ObserveApplication(outcome models.ApplyOutcome, took time.Duration) {
	m.Applications.WithLabelValues(outcome.String()).Inc()
	m.ApplyDuration.Observe(took.Seconds())
}

// SetSearch mirrors the discovery counters
func (m *Metrics) SetSearch(s models.SearchStats) {
	m.SearchSeen.Set(float64(s.Seen))
	m.SearchMatched.Set(float64(s.Matched))
	m.SearchTotal.Set(float64(s.Total))
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
