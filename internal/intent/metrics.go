package intent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the intent engine
type Metrics struct {
	IntentRequests *prometheus.CounterVec
	IntentErrors   *prometheus.CounterVec
	IntentLatency  *prometheus.HistogramVec
}

var globalMetrics *Metrics

// InitMetrics initializes the Prometheus metrics. Call once at startup.
func InitMetrics() *Metrics {
	metrics := &Metrics{
		IntentRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ledgermind_intent_requests_total",
			Help: "Total number of dispatched intents by operation",
		}, []string{"operation"}),

		IntentErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ledgermind_intent_errors_total",
			Help: "Total number of failed intents by operation and error code",
		}, []string{"operation", "code"}),

		IntentLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledgermind_intent_duration_seconds",
			Help:    "Intent execution latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
	}

	globalMetrics = metrics
	return metrics
}

// GetMetrics returns the global metrics instance (nil before InitMetrics)
func GetMetrics() *Metrics {
	return globalMetrics
}

// RecordIntent records one dispatched intent and its latency
func (m *Metrics) RecordIntent(operation string, seconds float64) {
	m.IntentRequests.WithLabelValues(operation).Inc()
	m.IntentLatency.WithLabelValues(operation).Observe(seconds)
}

// RecordIntentError records a failed intent by error code
func (m *Metrics) RecordIntentError(operation, code string) {
	m.IntentErrors.WithLabelValues(operation, code).Inc()
}
