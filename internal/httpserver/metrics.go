package httpserver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	suggestionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hitblow_suggestions_total",
		Help: "Guess suggestions served, by result",
	}, []string{"result"})

	updatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hitblow_updates_total",
		Help: "Feedback updates received, by result",
	}, []string{"result"})

	suggestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hitblow_suggest_duration_seconds",
		Help:    "Time spent selecting a guess",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
	})

	roundsToSolve = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hitblow_rounds_to_solve",
		Help:    "Feedback rounds until a single candidate remained",
		Buckets: prometheus.LinearBuckets(1, 1, 10),
	})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hitblow_active_sessions",
		Help: "Live solver sessions",
	})
)
