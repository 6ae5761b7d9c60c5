package metricsvc

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveLookup(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	started := time.Now().Add(-50 * time.Millisecond)
	m.ObserveLookup(OutcomeFound, started)
	m.ObserveLookup(OutcomeFound, started)
	m.ObserveLookup(OutcomeNotFound, started)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Lookups(OutcomeFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Lookups(OutcomeNotFound)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Lookups(OutcomeLoadFailed)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.lookupDuration))

	// registering twice on the same registry fails
	_, err = New(reg)
	assert.Error(t, err)
}

func TestMetrics_ObserveRateLimited(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		m.ObserveRateLimited()
	}
	assert.Equal(t, 5.0, testutil.ToFloat64(m.Lookups(OutcomeRateLimited)))

	// refusals stay out of the latency histogram
	hist := &dto.Metric{}
	require.NoError(t, m.lookupDuration.Write(hist))
	assert.Equal(t, uint64(0), hist.GetHistogram().GetSampleCount())
}

func TestMetrics_nil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.ObserveLookup(OutcomeFound, time.Now()) })
	assert.NotPanics(t, func() { m.ObserveRateLimited() })
}
