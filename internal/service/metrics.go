package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service-level Prometheus collectors
type Metrics struct {
	CounterGuardrailDecisions    *prometheus.CounterVec
	CounterReadinessSubmissions  prometheus.Counter
	CounterLoadRecomputations    prometheus.Counter
	CounterActivitiesImported    prometheus.Counter
	CounterCoachFallbacks        prometheus.Counter
	CounterSuggestionsRejected   prometheus.Counter
	HistRecomputeDurationSeconds prometheus.Histogram
}

// NewTestMetrics registers collectors on a throwaway registry
func NewTestMetrics() *Metrics {
	return NewMetrics("training_coach", "test", prometheus.NewRegistry())
}

// NewMetrics registers all collectors on reg
func NewMetrics(namespace, subsystem string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CounterGuardrailDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "guardrail_decisions_total",
			Help:      "Guardrail decisions by rule and outcome",
		}, []string{"rule", "decision"}),
		CounterReadinessSubmissions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "readiness_submissions_total",
			Help:      "Wellness check-ins scored",
		}),
		CounterLoadRecomputations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "load_recomputations_total",
			Help:      "Training load range recomputations",
		}),
		CounterActivitiesImported: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "activities_imported_total",
			Help:      "FIT activities imported",
		}),
		CounterCoachFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "coach_fallbacks_total",
			Help:      "Reports that used the fallback coach text",
		}),
		CounterSuggestionsRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "suggestions_rejected_total",
			Help:      "Coach suggestions dropped as unsafe",
		}),
		HistRecomputeDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "load_recompute_duration_seconds",
			Help:      "Duration of training load recomputations",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
}
