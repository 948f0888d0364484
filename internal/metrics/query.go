package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Query outcome labels.
const (
	OutcomeStructured           = "structured"
	OutcomeMissingFact          = "missing_fact"
	OutcomeAnswered             = "answered"
	OutcomeRefusedNoContext     = "refused_no_context"
	OutcomeRefusedTimeSensitive = "refused_time_sensitive"
	OutcomeError                = "error"
)

var (
	QueryOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_outcomes_total",
			Help:      "Questions answered, by how the answer was produced",
		},
		[]string{"outcome"},
	)

	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Duration of calls to embedding, vector search and chat services",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"service", "status"},
	)
)

func init() {
	prometheus.MustRegister(QueryOutcomesTotal)
	prometheus.MustRegister(UpstreamRequestDuration)
}

// RecordOutcome counts one finished question.
func RecordOutcome(outcome string) {
	QueryOutcomesTotal.WithLabelValues(outcome).Inc()
}

// ObserveUpstream records the duration of one upstream call started at start.
func ObserveUpstream(service string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	UpstreamRequestDuration.WithLabelValues(service, status).Observe(time.Since(start).Seconds())
}
