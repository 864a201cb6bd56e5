package predictor

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "predictor_breaker_state",
			Help: "Circuit breaker state per remote predictor (0=closed, 1=half-open, 2=open).",
		},
		[]string{"breaker"},
	)

	PredictionCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictor_cache_lookups_total",
			Help: "Neural prediction cache lookups by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(BreakerState, PredictionCacheTotal)
}
