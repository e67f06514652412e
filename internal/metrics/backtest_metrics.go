// Package metrics defines series (multi-race backtest) metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Series counter vectors
var (
	SeriesRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "derby",
		Name:      "series_runs_total",
		Help:      "Total number of race series by strategy and status",
	}, []string{"strategy_name", "status"})
)

// Series histograms
var (
	SeriesDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "derby",
		Name:      "series_duration_seconds",
		Help:      "Wall-clock duration of race series runs in seconds",
		Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60},
	})
)

// Series gauge vectors
var (
	SeriesROI = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "derby",
		Name:      "series_roi",
		Help:      "Return on investment of the last series for each strategy",
	}, []string{"strategy_name"})
)

// RecordSeriesRun records a series run event.
// status should be one of: "success", "failure", "cancelled"
func RecordSeriesRun(strategyName, status string, durationSeconds float64) {
	SeriesRunsTotal.WithLabelValues(strategyName, status).Inc()
	SeriesDuration.Observe(durationSeconds)
}

// UpdateSeriesROI updates the ROI of a strategy's last series.
func UpdateSeriesROI(strategyName string, roi float64) {
	SeriesROI.WithLabelValues(strategyName).Set(roi)
}
