package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "bazaar"
)

// Outcome label values for AuthAttemptsTotal.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

var (
	authDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}

	// Auth Screen Metrics
	AuthAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Count of auth form submissions that reached the identity provider or failed validation.",
	}, []string{"role", "mode", "outcome"})

	AuthDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "auth_duration_seconds",
		Help:      "Time taken by the identity provider to answer a sign in or sign up call.",
		Buckets:   authDurationBuckets,
	}, []string{"role", "mode"})

	AuthInflightCollapsedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_inflight_collapsed_total",
		Help:      "Number of submissions that joined an identical in-flight provider call instead of starting one.",
	}, []string{"role"})
)
