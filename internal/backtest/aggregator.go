package backtest

import (
	"encoding/json"
	"math"

	"github.com/yourusername/derby/internal/strategy"
)

// Recommendations attached to a series report.
const (
	RecommendationAccept      = "ACCEPT"
	RecommendationReject      = "REJECT"
	RecommendationNeedsReview = "NEEDS_REVIEW"
)

// SeriesReport combines the played series with its monte carlo resampling
type SeriesReport struct {
	Strategy       strategy.StrategyMetadata `json:"strategy"`
	Metrics        Metrics                   `json:"metrics"`
	MonteCarlo     MonteCarloResult          `json:"monte_carlo"`
	CompositeScore float64                   `json:"composite_score"`
	Recommendation string                    `json:"recommendation"`
}

// AggregateResults scores a series
func AggregateResults(meta strategy.StrategyMetadata, metrics Metrics, monteCarlo MonteCarloResult) SeriesReport {
	score := CalculateCompositeScore(metrics)
	monteCarloScore := normalize(monteCarlo.MeanReturn, -0.5, 1.0)
	if monteCarlo.Iterations > 0 {
		score = score*0.7 + monteCarloScore*0.3
	}

	return SeriesReport{
		Strategy:       meta,
		Metrics:        metrics,
		MonteCarlo:     monteCarlo,
		CompositeScore: score,
		Recommendation: GenerateRecommendation(score, metrics.TotalReturn, monteCarlo.ProbabilityOfProfit),
	}
}

// CalculateCompositeScore calculates weighted score from metrics
func CalculateCompositeScore(metrics Metrics) float64 {
	sharpeScore := normalize(metrics.SharpeRatio, -2, 3)
	roiScore := normalize(metrics.ROI, -0.5, 1.0)
	profitFactorScore := normalize(metrics.ProfitFactor, 0, 3)
	drawdownPenalty := 1.0 - normalize(metrics.MaxDrawdown, 0, 0.5)
	winRateScore := normalize(metrics.WinRate, 0, 1)

	weighted := 0.0
	weighted += sharpeScore * 0.30
	weighted += roiScore * 0.20
	weighted += profitFactorScore * 0.20
	weighted += drawdownPenalty * 0.15
	weighted += winRateScore * 0.15
	return weighted
}

// GenerateRecommendation determines if a strategy is worth keeping
func GenerateRecommendation(score, totalReturn, probabilityOfProfit float64) string {
	if score > 0.7 && totalReturn > 0 && probabilityOfProfit > 0.6 {
		return RecommendationAccept
	}
	if score < 0.4 || totalReturn < 0 {
		return RecommendationReject
	}
	return RecommendationNeedsReview
}

// ToJSON exports the report to JSON
func (r SeriesReport) ToJSON() string {
	data, _ := json.Marshal(r)
	return string(data)
}

func normalize(value, min, max float64) float64 {
	if max-min == 0 {
		return 0
	}
	v := (value - min) / (max - min)
	return math.Max(0, math.Min(1, v))
}
