package hybrid

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	StrategyServedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_strategy_total",
			Help: "Count of recommendation outcomes by serving strategy and fallback reason.",
		},
		[]string{"strategy", "reason"},
	)

	CandidatesSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_candidates_skipped_total",
			Help: "Count of sampled candidates dropped from ranking, by reason.",
		},
		[]string{"reason"},
	)

	PredictionUnavailableTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_prediction_unavailable_total",
			Help: "Count of predictor calls that failed or timed out and were replaced by the neutral score.",
		},
		[]string{"predictor"},
	)
)

func init() {
	prometheus.MustRegister(StrategyServedTotal, CandidatesSkippedTotal, PredictionUnavailableTotal)
}
