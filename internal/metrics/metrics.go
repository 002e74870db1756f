// Package metrics exposes Prometheus instrumentation for context
// propagation and event delivery.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Context kinds for ContextsCreated.
const (
	KindRoot   = "root"
	KindChild  = "child"
	KindRemote = "remote"
)

// Parse outcomes for HeadersParsed.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	ContextsCreated *prometheus.CounterVec
	HeadersParsed   *prometheus.CounterVec
	BaggageBytes    prometheus.Histogram
	EventsEmitted   prometheus.Counter
	EventsDropped   prometheus.Counter
	SinkErrors      prometheus.Counter
}

// New creates a metrics collector registered on reg. Tests pass a fresh
// prometheus.NewRegistry to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ContextsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ossa_contexts_created_total",
				Help: "Trace contexts created, by kind (root, child, remote)",
			},
			[]string{"kind"},
		),
		HeadersParsed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ossa_baggage_headers_parsed_total",
				Help: "Incoming baggage headers parsed, by outcome",
			},
			[]string{"outcome"},
		),
		BaggageBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ossa_baggage_header_bytes",
				Help:    "Encoded baggage header size in bytes",
				Buckets: []float64{64, 256, 1024, 2048, 4096, 8192},
			},
		),
		EventsEmitted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ossa_events_emitted_total",
				Help: "CloudEvents accepted by the emitter",
			},
		),
		EventsDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ossa_events_dropped_total",
				Help: "CloudEvents dropped because the emitter buffer was full",
			},
		),
		SinkErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ossa_sink_errors_total",
				Help: "Failed sink deliveries",
			},
		),
	}
}

// NewDefault creates a metrics collector on the default registry.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}

// ObserveContext records a created context and its header size. Nil-safe so
// instrumentation stays optional.
func (m *Metrics) ObserveContext(kind string, headerBytes int) {
	if m == nil {
		return
	}
	m.ContextsCreated.WithLabelValues(kind).Inc()
	if headerBytes > 0 {
		m.BaggageBytes.Observe(float64(headerBytes))
	}
}

// ObserveParse records an incoming header parse outcome.
func (m *Metrics) ObserveParse(outcome string) {
	if m == nil {
		return
	}
	m.HeadersParsed.WithLabelValues(outcome).Inc()
}
