// Package metrics provides centralized Prometheus metrics registry for the race simulator.
package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RacesStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "derby",
		Name:      "races_started_total",
		Help:      "Total number of races started",
	})
	RacesFinishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "derby",
		Name:      "races_finished_total",
		Help:      "Total number of races finished by outcome",
	}, []string{"outcome", "shape", "weather"})
	RaceTicksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "derby",
		Name:      "race_ticks_total",
		Help:      "Total number of race ticks processed",
	})
	HorseFallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "derby",
		Name:      "horse_falls_total",
		Help:      "Total number of falls by weather",
	}, []string{"weather"})
	BetsPlacedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "derby",
		Name:      "bets_placed_total",
		Help:      "Total number of bets placed",
	})
	BetsRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "derby",
		Name:      "bets_rejected_total",
		Help:      "Total number of bets rejected by reason",
	}, []string{"reason"})
	BetsSettledTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "derby",
		Name:      "bets_settled_total",
		Help:      "Total number of bets settled",
	})
	OddsComputationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "derby",
		Name:      "odds_computations_total",
		Help:      "Total number of odds table computations by kind",
	}, []string{"kind"})
)

// Gauge metrics
var (
	PlayerBalance = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "derby",
		Name:      "player_balance",
		Help:      "Current player balance in currency units",
	})
	HouseBalance = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "derby",
		Name:      "house_balance",
		Help:      "Current house balance in currency units",
	})
	OpenWagered = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "derby",
		Name:      "open_wagered",
		Help:      "Total stake on the current race",
	})
	HorseOdds = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "derby",
		Name:      "horse_odds",
		Help:      "Current decimal odds for each horse",
	}, []string{"horse"})
	ReportCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "derby",
		Name:      "report_cache_hit_ratio",
		Help:      "Hit ratio of the performance report cache",
	})
)

// Histogram metrics
var (
	RaceDurationTicks = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "derby",
		Name:      "race_duration_ticks",
		Help:      "Number of ticks a race took to finish",
		Buckets:   []float64{20, 40, 60, 80, 100, 150, 200, 300, 500},
	})
	RaceElapsedSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "derby",
		Name:      "race_elapsed_seconds",
		Help:      "Simulated race time in seconds",
		Buckets:   []float64{2, 4, 6, 8, 10, 15, 20, 30, 50},
	})
	PayoutAmount = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "derby",
		Name:      "payout_amount",
		Help:      "Winnings paid on settlement, excluding returned stake",
		Buckets:   []float64{0, 10, 25, 50, 100, 250, 500, 1000, 5000},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(RacesStartedTotal)
		registry.MustRegister(RacesFinishedTotal)
		registry.MustRegister(RaceTicksTotal)
		registry.MustRegister(HorseFallsTotal)
		registry.MustRegister(BetsPlacedTotal)
		registry.MustRegister(BetsRejectedTotal)
		registry.MustRegister(BetsSettledTotal)
		registry.MustRegister(OddsComputationsTotal)

		// Register gauge metrics
		registry.MustRegister(PlayerBalance)
		registry.MustRegister(HouseBalance)
		registry.MustRegister(OpenWagered)
		registry.MustRegister(HorseOdds)
		registry.MustRegister(ReportCacheHitRatio)

		// Register histogram metrics
		registry.MustRegister(RaceDurationTicks)
		registry.MustRegister(RaceElapsedSeconds)
		registry.MustRegister(PayoutAmount)

		// Register strategy metrics
		registry.MustRegister(StrategyDecisionsTotal)
		registry.MustRegister(StrategyStakeAmount)

		// Register series metrics
		registry.MustRegister(SeriesRunsTotal)
		registry.MustRegister(SeriesDuration)
		registry.MustRegister(SeriesROI)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// NewServer returns an HTTP server exposing the registry at path.
func NewServer(port int, path string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(path, Handler())
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// RecordRaceStarted records a race start.
func RecordRaceStarted() {
	RacesStartedTotal.Inc()
}

// RecordRaceFinished records a finished race.
func RecordRaceFinished(outcome, shape, weather string, ticks int, elapsedSeconds float64) {
	RacesFinishedTotal.WithLabelValues(outcome, shape, weather).Inc()
	RaceDurationTicks.Observe(float64(ticks))
	RaceElapsedSeconds.Observe(elapsedSeconds)
}

// RecordTick records one processed tick.
func RecordTick() {
	RaceTicksTotal.Inc()
}

// RecordFall records a horse falling.
func RecordFall(weather string) {
	HorseFallsTotal.WithLabelValues(weather).Inc()
}

// RecordBetPlaced records a bet placement event.
func RecordBetPlaced() {
	BetsPlacedTotal.Inc()
}

// RecordBetRejected records a refused bet.
func RecordBetRejected(reason string) {
	BetsRejectedTotal.WithLabelValues(reason).Inc()
}

// RecordBetsSettled records settled bets and the winnings paid.
func RecordBetsSettled(count int, payout float64) {
	BetsSettledTotal.Add(float64(count))
	PayoutAmount.Observe(payout)
}

// RecordOddsComputation records an odds table computation. kind is "static" or "live".
func RecordOddsComputation(kind string) {
	OddsComputationsTotal.WithLabelValues(kind).Inc()
}

// UpdateBalances updates the player and house balance gauges.
func UpdateBalances(player, house float64) {
	PlayerBalance.Set(player)
	HouseBalance.Set(house)
}

// UpdateOpenWagered updates the open stake gauge.
func UpdateOpenWagered(amount float64) {
	OpenWagered.Set(amount)
}

// UpdateHorseOdds updates a horse's odds gauge.
func UpdateHorseOdds(horse string, odds float64) {
	HorseOdds.WithLabelValues(horse).Set(odds)
}

// ResetHorseOdds drops every horse odds series, e.g. after a roster change.
func ResetHorseOdds() {
	HorseOdds.Reset()
}

// UpdateReportCacheHitRatio updates the report cache hit ratio gauge.
func UpdateReportCacheHitRatio(ratio float64) {
	ReportCacheHitRatio.Set(ratio)
}
