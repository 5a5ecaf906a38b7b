package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordReport("SPY")
	r.RecordReport("SPY")
	r.RecordWarning("no_data")
	r.RecordError("upstream_fetch")
	r.RecordLastPrice("SPY", 412.5)
	r.RecordLatency("fetch", 0.2)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.reportsTotal.WithLabelValues("SPY")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.warningsTotal.WithLabelValues("no_data")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("upstream_fetch")))
	assert.Equal(t, 412.5, testutil.ToFloat64(r.lastClose.WithLabelValues("SPY")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "perfscope_operation_duration_seconds")
}
