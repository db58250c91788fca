package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("dispatchai", reg)

	m.Assignments.WithLabelValues(ResultSuccess).Inc()
	m.Assignments.WithLabelValues(ResultSuccess).Inc()
	m.LogEdits.WithLabelValues("resolve", ResultFailure).Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Assignments.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LogEdits.WithLabelValues("resolve", ResultFailure)))

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "dispatchai_assignments_total")
	assert.Contains(t, names, "dispatchai_log_edits_total")
}

func TestNewTestMetrics_Independent(t *testing.T) {
	assert.NotPanics(t, func() {
		NewTestMetrics()
		NewTestMetrics()
	})
}
