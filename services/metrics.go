package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the bracket engine counters exported on /metrics.
type Metrics struct {
	BracketsGenerated *prometheus.CounterVec
	MatchesCompleted  prometheus.Counter
	RoundsAdvanced    prometheus.Counter
	TournamentsDone   prometheus.Counter
	OperationDuration *prometheus.HistogramVec
	OperationFailures *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BracketsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forge",
			Name:      "brackets_generated_total",
			Help:      "Brackets generated, by format.",
		}, []string{"format"}),
		MatchesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "forge",
			Name:      "matches_completed_total",
			Help:      "Match results declared, byes included.",
		}),
		RoundsAdvanced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "forge",
			Name:      "rounds_advanced_total",
			Help:      "Rounds that received advancing participants.",
		}),
		TournamentsDone: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "forge",
			Name:      "tournaments_completed_total",
			Help:      "Tournaments that reached a champion.",
		}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "forge",
			Name:      "operation_duration_seconds",
			Help:      "Duration of bracket engine operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		OperationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forge",
			Name:      "operation_failures_total",
			Help:      "Failed bracket engine operations.",
		}, []string{"operation"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.BracketsGenerated,
			m.MatchesCompleted,
			m.RoundsAdvanced,
			m.TournamentsDone,
			m.OperationDuration,
			m.OperationFailures,
		)
	}
	return m
}

// observe records the duration and outcome of one operation.
func (m *Metrics) observe(operation string, seconds float64, err error) {
	m.OperationDuration.WithLabelValues(operation).Observe(seconds)
	if err != nil {
		m.OperationFailures.WithLabelValues(operation).Inc()
	}
}
