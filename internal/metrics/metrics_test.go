package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metricValue(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	if out.Counter != nil {
		return out.GetCounter().GetValue()
	}
	return out.GetGauge().GetValue()
}

func seriesCount(c prometheus.Collector) int {
	ch := make(chan prometheus.Metric, 64)
	c.Collect(ch)
	close(ch)
	return len(ch)
}

func TestMetricsRegistry(t *testing.T) {
	// Initialize the registry
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestRecordBetPlaced(t *testing.T) {
	InitRegistry()
	before := metricValue(t, BetsPlacedTotal)

	RecordBetPlaced()
	assert.Equal(t, before+1, metricValue(t, BetsPlacedTotal))
}

func TestRecordRaceFinished(t *testing.T) {
	InitRegistry()
	counter := RacesFinishedTotal.WithLabelValues("won", "Oval", "Clear")
	before := metricValue(t, counter)

	assert.NotPanics(t, func() {
		RecordRaceFinished("won", "Oval", "Clear", 57, 5.7)
	})
	assert.Equal(t, before+1, metricValue(t, counter))
}

func TestUpdateBalances(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name   string
		player float64
		house  float64
	}{
		{name: "starting balances", player: 1000, house: 10000},
		{name: "zero player", player: 0, house: 11000},
		{name: "negative house", player: 20000, house: -9000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			UpdateBalances(tt.player, tt.house)
			assert.Equal(t, tt.player, metricValue(t, PlayerBalance))
			assert.Equal(t, tt.house, metricValue(t, HouseBalance))
		})
	}
}

func TestHorseOdds(t *testing.T) {
	InitRegistry()

	UpdateHorseOdds("King", 4.2)
	assert.Equal(t, 4.2, metricValue(t, HorseOdds.WithLabelValues("King")))

	ResetHorseOdds()
	assert.Equal(t, 0, seriesCount(HorseOdds))
}

func TestRaceAndBetCounters(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordRaceStarted()
		RecordTick()
		RecordFall("Rainy")
		RecordBetRejected("insufficient_balance")
		RecordBetsSettled(3, 45)
		RecordOddsComputation("live")
		UpdateOpenWagered(50)
		UpdateReportCacheHitRatio(0.5)
	})
}

func TestMetricsHandler(t *testing.T) {
	InitRegistry()
	RecordRaceStarted()

	handler := Handler()
	require.NotNil(t, handler)
	assert.Implements(t, (*http.Handler)(nil), handler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "derby_races_started_total")
}

func TestNewServer(t *testing.T) {
	InitRegistry()
	srv := NewServer(9090, "/metrics")
	assert.Equal(t, ":9090", srv.Addr)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/other", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStrategyMetrics(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordStrategyDecision("favourite", "bet")
	})

	assert.NotPanics(t, func() {
		RecordStrategyStake("favourite", 10)
	})
}

func TestSeriesMetrics(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordSeriesRun("longshot", "success", 0.25)
	})

	UpdateSeriesROI("longshot", -0.12)
	assert.Equal(t, -0.12, metricValue(t, SeriesROI.WithLabelValues("longshot")))
}

func BenchmarkRecordBetPlaced(b *testing.B) {
	InitRegistry()

	for i := 0; i < b.N; i++ {
		RecordBetPlaced()
	}
}

func BenchmarkRecordTick(b *testing.B) {
	InitRegistry()

	for i := 0; i < b.N; i++ {
		RecordTick()
	}
}
