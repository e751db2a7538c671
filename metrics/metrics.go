package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// RequestsTotal counts HTTP requests by endpoint and outcome.
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketplace",
		Subsystem: "ai",
		Name:      "requests_total",
		Help:      "Total number of requests handled, labeled by endpoint and result.",
	}, []string{"endpoint", "result"})

	// LLMDurationSeconds measures the external model call, success or not.
	LLMDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "marketplace",
		Subsystem: "ai",
		Name:      "llm_call_duration_seconds",
		Help:      "Duration of external LLM calls, including failed ones.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
	})

	// LLMFallbackTotal counts price suggestions that fell back to rules.
	LLMFallbackTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketplace",
		Subsystem: "ai",
		Name:      "llm_fallback_total",
		Help:      "Total number of rule-based fallbacks, labeled by cause.",
	}, []string{"cause"})

	// FraudFlagsTotal counts fraud classifications by flag.
	FraudFlagsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketplace",
		Subsystem: "ai",
		Name:      "fraud_flags_total",
		Help:      "Total number of fraud flags assigned, labeled by flag.",
	}, []string{"flag"})

	// ModerationTotal counts moderation outcomes by status.
	ModerationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketplace",
		Subsystem: "ai",
		Name:      "moderation_total",
		Help:      "Total number of moderated messages, labeled by status.",
	}, []string{"status"})
)

// Register registers service metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			LLMDurationSeconds,
			LLMFallbackTotal,
			FraudFlagsTotal,
			ModerationTotal,
		)
	})
}
