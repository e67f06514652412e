// Package statistics keeps per-horse race records and track-level aggregates.
package statistics

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yourusername/derby/internal/models"
)

// Config holds the aggregation constants.
type Config struct {
	// EWMAWeight is the weight of a new time in the per-shape average.
	EWMAWeight       float64
	DefaultShapeTime float64
	ShapeTimes       map[models.TrackShape]float64
	ReportTTL        time.Duration
}

// DefaultConfig returns the seeded per-shape average times in seconds.
func DefaultConfig() Config {
	return Config{
		EWMAWeight:       0.3,
		DefaultShapeTime: 20,
		ShapeTimes: map[models.TrackShape]float64{
			models.ShapeOval:        15,
			models.ShapeFigureEight: 18,
			models.ShapeStraight:    12,
			models.ShapeZigzag:      20,
			models.ShapeCustom:      25,
		},
		ReportTTL: 5 * time.Minute,
	}
}

type conditionKey struct {
	shape   models.TrackShape
	weather models.Weather
}

type horseShapeKey struct {
	horseID uuid.UUID
	shape   models.TrackShape
}

// Store is an append-only ledger of race records.
// Store is not safe for concurrent use; callers serialize access.
type Store struct {
	config Config

	records   map[uuid.UUID][]models.RaceRecord
	races     int
	bestTimes map[conditionKey]float64
	horseBest map[horseShapeKey]float64
	shapeAvg  map[models.TrackShape]float64
	reports   *ReportCache
}

// NewStore creates an empty store.
func NewStore(cfg Config) *Store {
	if cfg.EWMAWeight <= 0 || cfg.EWMAWeight > 1 {
		cfg.EWMAWeight = DefaultConfig().EWMAWeight
	}
	if cfg.ReportTTL <= 0 {
		cfg.ReportTTL = DefaultConfig().ReportTTL
	}
	s := &Store{
		config:    cfg,
		records:   make(map[uuid.UUID][]models.RaceRecord),
		bestTimes: make(map[conditionKey]float64),
		horseBest: make(map[horseShapeKey]float64),
		shapeAvg:  make(map[models.TrackShape]float64),
		reports:   NewReportCache(cfg.ReportTTL),
	}
	for shape, t := range cfg.ShapeTimes {
		s.shapeAvg[shape] = t
	}
	return s
}

// RecordRace appends one record per horse for a finished race and returns them.
//
// Winners and fallen horses are timed at the race time. A horse still running
// is timed by extrapolating its pace to the full length.
func (s *Store) RecordRace(result *models.RaceResult, horses []*models.Horse, initialConfidence func(uuid.UUID) float64) []models.RaceRecord {
	raceTime := result.Elapsed.Seconds()
	out := make([]models.RaceRecord, 0, len(horses))

	for _, h := range horses {
		finish := raceTime
		if !h.IsWinner && !h.HasFallen && h.DistanceTravelled < result.Length {
			finish = 0
			if h.DistanceTravelled > 0 {
				finish = raceTime * float64(result.Length) / float64(h.DistanceTravelled)
			}
		}
		avgSpeed := 0.0
		if raceTime > 0 {
			avgSpeed = float64(h.DistanceTravelled) / raceTime
		}
		initial := h.Confidence()
		if initialConfidence != nil {
			initial = initialConfidence(h.ID)
		}

		rec := models.RaceRecord{
			RaceID:            result.RaceID,
			HorseID:           h.ID,
			Shape:             result.Shape,
			Weather:           result.Weather,
			Distance:          h.DistanceTravelled,
			FinishTime:        finish,
			AvgSpeed:          avgSpeed,
			InitialConfidence: initial,
			FinalConfidence:   h.Confidence(),
			WasWinner:         h.IsWinner,
			HasFallen:         h.HasFallen,
			RecordedAt:        result.FinishedAt,
		}
		s.Record(rec)
		out = append(out, rec)
	}
	s.races++
	return out
}

// Record appends a single record. Only a winning time can set the best time
// for its conditions or move the shape's average.
func (s *Store) Record(rec models.RaceRecord) {
	s.records[rec.HorseID] = append(s.records[rec.HorseID], rec)

	if !rec.HasFallen && rec.FinishTime > 0 {
		k := horseShapeKey{rec.HorseID, rec.Shape}
		if best, ok := s.horseBest[k]; !ok || rec.FinishTime < best {
			s.horseBest[k] = rec.FinishTime
		}
	}

	if rec.WasWinner && rec.FinishTime > 0 {
		k := conditionKey{rec.Shape, rec.Weather}
		if best, ok := s.bestTimes[k]; !ok || rec.FinishTime < best {
			s.bestTimes[k] = rec.FinishTime
		}
		w := s.config.EWMAWeight
		s.shapeAvg[rec.Shape] = (1-w)*s.AverageTimeForShape(rec.Shape) + w*rec.FinishTime
	}

	s.reports.Invalidate(rec.HorseID)
}

// ApplyBettingOutcome nudges the horse's latest FinalConfidence by 0.1, up
// when the player was paid out and down otherwise.
func (s *Store) ApplyBettingOutcome(horseID uuid.UUID, payout decimal.Decimal) bool {
	rs := s.records[horseID]
	if len(rs) == 0 {
		return false
	}
	last := &rs[len(rs)-1]
	delta := -0.1
	if payout.IsPositive() {
		delta = 0.1
	}
	last.FinalConfidence = clampUnit(last.FinalConfidence + delta)
	s.reports.Invalidate(horseID)
	return true
}

// Races returns the number of races recorded through RecordRace.
func (s *Store) Races() int {
	return s.races
}

// History returns a copy of the horse's records, oldest first.
func (s *Store) History(horseID uuid.UUID) []models.RaceRecord {
	rs := s.records[horseID]
	out := make([]models.RaceRecord, len(rs))
	copy(out, rs)
	return out
}

// RecentForHorse returns up to n of the horse's latest records, oldest first.
func (s *Store) RecentForHorse(horseID uuid.UUID, n int) []models.RaceRecord {
	rs := s.records[horseID]
	if n >= 0 && len(rs) > n {
		rs = rs[len(rs)-n:]
	}
	out := make([]models.RaceRecord, len(rs))
	copy(out, rs)
	return out
}

// WinRatio returns wins / races for the horse, 0 with no history.
func (s *Store) WinRatio(horseID uuid.UUID) float64 {
	return s.ratio(horseID, func(r models.RaceRecord) bool { return r.WasWinner })
}

// FallRate returns falls / races for the horse, 0 with no history.
func (s *Store) FallRate(horseID uuid.UUID) float64 {
	return s.ratio(horseID, func(r models.RaceRecord) bool { return r.HasFallen })
}

func (s *Store) ratio(horseID uuid.UUID, match func(models.RaceRecord) bool) float64 {
	rs := s.records[horseID]
	if len(rs) == 0 {
		return 0
	}
	n := 0
	for _, r := range rs {
		if match(r) {
			n++
		}
	}
	return float64(n) / float64(len(rs))
}

// AverageSpeed returns the mean of the horse's per-race average speeds.
func (s *Store) AverageSpeed(horseID uuid.UUID) float64 {
	rs := s.records[horseID]
	if len(rs) == 0 {
		return 0
	}
	total := 0.0
	for _, r := range rs {
		total += r.AvgSpeed
	}
	return total / float64(len(rs))
}

// ConfidenceTrend is the mean change in FinalConfidence between consecutive races.
func (s *Store) ConfidenceTrend(horseID uuid.UUID) float64 {
	rs := s.records[horseID]
	if len(rs) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(rs); i++ {
		total += rs[i].FinalConfidence - rs[i-1].FinalConfidence
	}
	return total / float64(len(rs)-1)
}

// BestTime returns the fastest winning time recorded for the conditions.
func (s *Store) BestTime(shape models.TrackShape, weather models.Weather) (float64, bool) {
	t, ok := s.bestTimes[conditionKey{shape, weather}]
	return t, ok
}

// BestTimeForHorse returns the horse's fastest completed time on the shape.
func (s *Store) BestTimeForHorse(horseID uuid.UUID, shape models.TrackShape) (float64, bool) {
	t, ok := s.horseBest[horseShapeKey{horseID, shape}]
	return t, ok
}

// AverageTimeForShape returns the moving average winning time for the shape.
func (s *Store) AverageTimeForShape(shape models.TrackShape) float64 {
	if t, ok := s.shapeAvg[shape]; ok {
		return t
	}
	return s.config.DefaultShapeTime
}

// HorseStats is a per-horse summary.
type HorseStats struct {
	HorseID         uuid.UUID                     `json:"horse_id"`
	Races           int                           `json:"races"`
	WinRatio        float64                       `json:"win_ratio"`
	FallRate        float64                       `json:"fall_rate"`
	AverageSpeed    float64                       `json:"average_speed"`
	ConfidenceTrend float64                       `json:"confidence_trend"`
	BestTimes       map[models.TrackShape]float64 `json:"best_times"`
}

// HorseStats summarizes one horse.
func (s *Store) HorseStats(horseID uuid.UUID) HorseStats {
	stats := HorseStats{
		HorseID:         horseID,
		Races:           len(s.records[horseID]),
		WinRatio:        s.WinRatio(horseID),
		FallRate:        s.FallRate(horseID),
		AverageSpeed:    s.AverageSpeed(horseID),
		ConfidenceTrend: s.ConfidenceTrend(horseID),
		BestTimes:       make(map[models.TrackShape]float64),
	}
	for _, shape := range models.Shapes {
		if t, ok := s.BestTimeForHorse(horseID, shape); ok {
			stats.BestTimes[shape] = t
		}
	}
	return stats
}

// ShapeStats is a per-shape summary.
type ShapeStats struct {
	Shape       models.TrackShape         `json:"shape"`
	AverageTime float64                   `json:"average_time"`
	BestTimes   map[models.Weather]float64 `json:"best_times"`
}

// ShapeStats summarizes one track shape across weathers.
func (s *Store) ShapeStats(shape models.TrackShape) ShapeStats {
	stats := ShapeStats{
		Shape:       shape,
		AverageTime: s.AverageTimeForShape(shape),
		BestTimes:   make(map[models.Weather]float64),
	}
	for _, w := range models.Weathers {
		if t, ok := s.BestTime(shape, w); ok {
			stats.BestTimes[w] = t
		}
	}
	return stats
}

// PerformanceReport renders a text report for the horse. Reports are cached
// until the horse's records change.
func (s *Store) PerformanceReport(horseID uuid.UUID, name string) string {
	if report, ok := s.reports.Get(horseID); ok {
		return report
	}

	var builder strings.Builder
	builder.WriteString("Performance Report for " + name + "\n")
	builder.WriteString("----------------------------------------\n")
	builder.WriteString(fmt.Sprintf("Average Speed: %.2f\n", s.AverageSpeed(horseID)))
	builder.WriteString(fmt.Sprintf("Win Ratio: %.2f%%\n", s.WinRatio(horseID)*100))
	builder.WriteString(fmt.Sprintf("Fall Rate: %.2f%%\n", s.FallRate(horseID)*100))
	builder.WriteString(fmt.Sprintf("Confidence Trend: %.2f\n", s.ConfidenceTrend(horseID)))

	builder.WriteString("\nRecent Races:\n")
	for _, r := range s.records[horseID] {
		line := fmt.Sprintf("- %s (%s): %.2f seconds", r.Shape, r.Weather, r.FinishTime)
		switch {
		case r.WasWinner:
			line += " (won)"
		case r.HasFallen:
			line += " (fell)"
		}
		builder.WriteString(line + "\n")
	}

	report := builder.String()
	s.reports.Set(horseID, report)
	return report
}

// Reports exposes the report cache, mainly for its hit statistics.
func (s *Store) Reports() *ReportCache {
	return s.reports
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
