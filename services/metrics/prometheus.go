package metricsvc

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Lookup outcomes
const (
	OutcomeFound        = "found"
	OutcomeInvalidInput = "invalid_input"
	OutcomeNotFound     = "not_found"
	OutcomeLoadFailed   = "load_failed"
	OutcomeUnexpected   = "unexpected"
	OutcomeRateLimited  = "rate_limited"
)

type Metrics struct {
	lookups        *prometheus.CounterVec
	lookupDuration prometheus.Histogram
}

// New registers the status lookup collectors on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "admissions",
			Name:      "status_lookups_total",
			Help:      "Application status lookups by outcome.",
		}, []string{"outcome"}),
		lookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "admissions",
			Name:      "status_lookup_duration_seconds",
			Help:      "Time spent resolving application status lookups.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	for _, c := range []prometheus.Collector{m.lookups, m.lookupDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveLookup records one lookup. A nil *Metrics is a no-op.
func (m *Metrics) ObserveLookup(outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(outcome).Inc()
	m.lookupDuration.Observe(time.Since(started).Seconds())
}

// ObserveRateLimited counts a refused lookup. Refusals carry no resolver latency.
func (m *Metrics) ObserveRateLimited() {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(OutcomeRateLimited).Inc()
}

// Lookups returns the counter for outcome.
func (m *Metrics) Lookups(outcome string) prometheus.Counter {
	return m.lookups.WithLabelValues(outcome)
}
