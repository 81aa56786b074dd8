package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "navigator_sessions_started_total",
			Help: "Total number of dialog sessions started",
		},
	)

	SessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "navigator_sessions_expired_total",
			Help: "Total number of sessions removed after inactivity",
		},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "navigator_sessions_active",
			Help: "Number of sessions currently held in the store",
		},
	)

	TurnsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navigator_turns_processed_total",
			Help: "Total number of user turns by extraction method",
		},
		[]string{"method"},
	)

	EligibilityChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navigator_eligibility_checks_total",
			Help: "Total number of eligibility evaluations by outcome",
		},
		[]string{"outcome"},
	)

	AIFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navigator_ai_fallbacks_total",
			Help: "Total number of times an AI call was replaced by a local fallback",
		},
		[]string{"operation"},
	)

	RetrievalQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "navigator_retrieval_queries_total",
			Help: "Total number of similarity queries by status",
		},
		[]string{"status"},
	)

	RetrievalDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "navigator_retrieval_duration_seconds",
			Help: "Duration of similarity queries in seconds",
		},
	)
)

const (
	OutcomeEligible   = "eligible"
	OutcomeIneligible = "ineligible"

	StatusOK       = "ok"
	StatusEmpty    = "empty"
	StatusDegraded = "degraded"
)
