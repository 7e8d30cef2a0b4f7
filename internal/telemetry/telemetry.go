package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Package telemetry provides the fire-and-forget event sink the gateway
// reports to. Recording must never block a request or propagate a failure
// into the HTTP response.

// Gateway event names.
const (
	EventExtractionStarted   = "extraction_started"
	EventExtractionCompleted = "extraction_completed"
	EventExtractionFailed    = "extraction_failed"
	EventReportFetched       = "report_fetched"
	EventReportFetchFailed   = "report_fetch_failed"
)

// Sink receives named events with a property bag.
type Sink interface {
	Record(event string, props map[string]any)
}

// Noop discards every event. Used in tests and when metrics are disabled.
type Noop struct{}

func (Noop) Record(string, map[string]any) {}

// PrometheusSink counts events by name. Properties are intentionally not
// turned into labels: correlation ids and file counts would explode label
// cardinality.
type PrometheusSink struct {
	events *prometheus.CounterVec
}

// NewPrometheusSink registers the event counter on the given registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	s := &PrometheusSink{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_events_total",
				Help: "Total number of gateway telemetry events by name.",
			},
			[]string{"event"},
		),
	}
	if err := reg.Register(s.events); err != nil {
		return nil, err
	}
	return s, nil
}

// Record increments the event counter. It never panics into the caller.
func (s *PrometheusSink) Record(event string, _ map[string]any) {
	defer func() { _ = recover() }()
	s.events.WithLabelValues(event).Inc()
}
