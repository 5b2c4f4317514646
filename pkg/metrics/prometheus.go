package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes Prometheus counters for the Datamart consumer and the
// HTTP getters.
type Recorder struct {
	messagesConsumed *prometheus.CounterVec
	messagesFailed   *prometheus.CounterVec
	fetchDuration    *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder on the default registry.
func New() *Recorder {
	return &Recorder{
		messagesConsumed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecget_datamart_messages_total",
				Help: "Total number of Datamart messages consumed",
			},
			[]string{"queue"},
		),
		messagesFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecget_datamart_message_failures_total",
				Help: "Total number of Datamart messages whose handler failed",
			},
			[]string{"queue"},
		),
		fetchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ecget_fetch_duration_seconds",
				Help:    "Duration of upstream data fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
	}
}

// RecordMessage records one consumed Datamart message.
func (r *Recorder) RecordMessage(queue string) {
	r.messagesConsumed.WithLabelValues(queue).Inc()
}

// RecordFailure records one message whose handler returned an error.
func (r *Recorder) RecordFailure(queue string) {
	r.messagesFailed.WithLabelValues(queue).Inc()
}

// RecordFetch records the duration of one upstream fetch.
func (r *Recorder) RecordFetch(source string, seconds float64) {
	r.fetchDuration.WithLabelValues(source).Observe(seconds)
}
