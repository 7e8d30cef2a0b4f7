package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusSinkRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	sink.Record(EventExtractionStarted, map[string]any{"file_count": 3})
	sink.Record(EventExtractionStarted, nil)
	sink.Record(EventExtractionFailed, map[string]any{"error_type": "unavailable"})

	assert.Equal(t, float64(2), testutil.ToFloat64(sink.events.WithLabelValues(EventExtractionStarted)))
	assert.Equal(t, float64(1), testutil.ToFloat64(sink.events.WithLabelValues(EventExtractionFailed)))
}

func TestPrometheusSinkDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	_, err = NewPrometheusSink(reg)
	assert.Error(t, err)
}

func TestNoopSink(t *testing.T) {
	assert.NotPanics(t, func() {
		Noop{}.Record("anything", map[string]any{"k": "v"})
	})
}
