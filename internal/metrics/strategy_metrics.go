// Package metrics defines strategy-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Strategy-specific counter vectors
var (
	StrategyDecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "derby",
		Name:      "strategy_decisions_total",
		Help:      "Total number of strategy decisions by strategy and decision",
	}, []string{"strategy_name", "decision"})
)

// Strategy-specific histogram vectors
var (
	StrategyStakeAmount = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "derby",
		Name:      "strategy_stake_amount",
		Help:      "Stakes chosen by each strategy",
		Buckets:   []float64{2, 5, 10, 25, 50, 100, 250},
	}, []string{"strategy_name"})
)

// RecordStrategyDecision records a strategy decision: "bet", "skip", "limited" or "rejected".
func RecordStrategyDecision(strategyName, decision string) {
	StrategyDecisionsTotal.WithLabelValues(strategyName, decision).Inc()
}

// RecordStrategyStake records the stake a strategy chose.
func RecordStrategyStake(strategyName string, stake float64) {
	StrategyStakeAmount.WithLabelValues(strategyName).Observe(stake)
}
