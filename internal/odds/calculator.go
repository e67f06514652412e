// Package odds prices horses before and during a race.
package odds

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yourusername/derby/internal/models"
)

// History is the slice of the statistics store the calculator reads.
type History interface {
	// RecentForHorse returns up to n of the horse's records, oldest first.
	RecentForHorse(horseID uuid.UUID, n int) []models.RaceRecord
	AverageTimeForShape(shape models.TrackShape) float64
	BestTimeForHorse(horseID uuid.UUID, shape models.TrackShape) (float64, bool)
}

// Config holds the pricing constants.
type Config struct {
	BaseOdds       float64
	HouseEdge      float64
	MinOdds        float64
	MaxOdds        float64
	MinSpread      float64
	FormWindow     int
	LiveFormWindow int
	CrowdThreshold float64
	CrowdWeight    float64
	MomentumWeight float64
}

// DefaultConfig returns the standard pricing constants.
func DefaultConfig() Config {
	return Config{
		BaseOdds:       10.0,
		HouseEdge:      0.15,
		MinOdds:        1.1,
		MaxOdds:        100.0,
		MinSpread:      2.0,
		FormWindow:     5,
		LiveFormWindow: 3,
		CrowdThreshold: 0.4,
		CrowdWeight:    0.5,
		MomentumWeight: 0.2,
	}
}

// Calculator computes odds tables. It holds no mutable state.
type Calculator struct {
	config Config
	now    func() time.Time
}

// NewCalculator creates a calculator with the given constants.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{config: cfg, now: time.Now}
}

// Config returns the calculator's constants.
func (c *Calculator) Config() Config {
	return c.config
}

// Compute prices every horse before a race from its confidence, recent form,
// track affinity, weather/equipment fit and the share of money wagered on it.
// history and wagers may be nil.
func (c *Calculator) Compute(horses []*models.Horse, track *models.Track, history History, wagers map[uuid.UUID]decimal.Decimal) *models.OddsTable {
	values := make([]float64, len(horses))
	totalWagered := decimal.Zero
	for _, w := range wagers {
		totalWagered = totalWagered.Add(w)
	}

	for i, h := range horses {
		product := PerformanceFactor(h) *
			c.RecentForm(h.ID, history) *
			TrackAffinity(h, track.Shape) *
			WeatherEquipmentFactor(h, track.Weather) *
			c.CrowdFactor(wagers[h.ID], totalWagered)

		base := c.config.BaseOdds / product
		values[i] = math.Max(c.config.MinOdds, base*(1+c.config.HouseEdge))
	}

	c.normalizeSpread(values)
	return c.table(horses, values, false)
}

// Live reprices a race in progress. Leaders gain momentum and fallen horses
// are pushed out to the maximum odds.
func (c *Calculator) Live(horses []*models.Horse, track *models.Track, history History) *models.OddsTable {
	strengths := make([]float64, len(horses))
	total := 0.0
	for i, h := range horses {
		if h.HasFallen {
			continue
		}
		s := h.EffectiveConfidence() * h.Speed * h.Stamina *
			track.WeatherModifiers().Confidence * track.ShapeModifiers().Speed *
			c.LiveForm(h.ID, history) *
			c.TrackRecord(h.ID, track.Shape, history) *
			(1 + c.config.MomentumWeight*h.Progress(track.Length))
		strengths[i] = s
		total += s
	}

	values := make([]float64, len(horses))
	for i, h := range horses {
		if h.HasFallen || strengths[i] <= 0 || total <= 0 {
			values[i] = c.config.MaxOdds
			continue
		}
		p := strengths[i] / total
		o := (1 / p) * (1 - c.config.HouseEdge)
		values[i] = math.Min(c.config.MaxOdds, math.Max(c.config.MinOdds, o))
	}

	c.normalizeSpread(values)
	return c.table(horses, values, true)
}

// PerformanceFactor maps effective confidence onto [0.5, 1.0].
func PerformanceFactor(h *models.Horse) float64 {
	return 0.5 + 0.5*h.EffectiveConfidence()
}

// RecentForm is the linearly weighted mean of the horse's last form scores,
// newest weighted heaviest. It is 1.0 with no history.
func (c *Calculator) RecentForm(horseID uuid.UUID, history History) float64 {
	if history == nil {
		return 1.0
	}
	records := history.RecentForHorse(horseID, c.config.FormWindow)
	if len(records) == 0 {
		return 1.0
	}
	sum, weights := 0.0, 0.0
	for i := range records {
		w := float64(i + 1)
		sum += records[i].FormScore() * w
		weights += w
	}
	return sum / weights
}

// LiveForm rewards recent wins and penalizes recent falls, clamped to [0.5, 1.5].
func (c *Calculator) LiveForm(horseID uuid.UUID, history History) float64 {
	if history == nil {
		return 1.0
	}
	form := 1.0
	for _, r := range history.RecentForHorse(horseID, c.config.LiveFormWindow) {
		if r.WasWinner {
			form += 0.1
		}
		if r.HasFallen {
			form -= 0.15
		}
	}
	return clamp(form, 0.5, 1.5)
}

// TrackRecord compares the shape's average time with the horse's best,
// clamped to [0.8, 1.2]. It is 1.0 when either is unknown.
func (c *Calculator) TrackRecord(horseID uuid.UUID, shape models.TrackShape, history History) float64 {
	if history == nil {
		return 1.0
	}
	best, ok := history.BestTimeForHorse(horseID, shape)
	avg := history.AverageTimeForShape(shape)
	if !ok || best <= 0 || avg <= 0 {
		return 1.0
	}
	return clamp(avg/best, 0.8, 1.2)
}

var shapeAffinity = map[models.TrackShape][]string{
	models.ShapeOval:        {models.BreedThoroughbred, models.BreedArabian},
	models.ShapeStraight:    {models.BreedQuarterHorse},
	models.ShapeFigureEight: {models.BreedAppaloosa},
}

// TrackAffinity is 1.2 when the breed prefers the shape, else 1.0.
func TrackAffinity(h *models.Horse, shape models.TrackShape) float64 {
	for _, breed := range shapeAffinity[shape] {
		if strings.EqualFold(h.Breed, breed) {
			return 1.2
		}
	}
	return 1.0
}

// WeatherEquipmentFactor scores the horse's saddle and shoes against the weather.
func WeatherEquipmentFactor(h *models.Horse, weather models.Weather) float64 {
	has := func(grade string) bool {
		return strings.EqualFold(h.Saddle, grade) || strings.EqualFold(h.Horseshoes, grade)
	}
	switch weather {
	case models.WeatherRainy, models.WeatherSnowy:
		if has(models.EquipmentHeavy) || has(models.EquipmentRacing) {
			return 1.1
		}
		if has(models.EquipmentLightweight) {
			return 0.9
		}
	case models.WeatherClear:
		if has(models.EquipmentLightweight) || has(models.EquipmentRacing) {
			return 1.1
		}
	}
	return 1.0
}

// CrowdFactor lengthens the odds of a horse carrying more than the threshold
// share of the money. It divides the factor product, so a value below 1
// raises the price.
func (c *Calculator) CrowdFactor(onHorse, total decimal.Decimal) float64 {
	if !total.IsPositive() {
		return 1.0
	}
	share := onHorse.Div(total).InexactFloat64()
	if share <= c.config.CrowdThreshold {
		return 1.0
	}
	return 1 / (1 + c.config.CrowdWeight*(share-c.config.CrowdThreshold))
}

// normalizeSpread widens the table in place until max - min reaches the
// configured spread. Ties for the minimum when every price is equal go to
// the first lane.
func (c *Calculator) normalizeSpread(values []float64) {
	if len(values) < 2 {
		return
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo >= c.config.MinSpread {
		return
	}

	isMin := make([]bool, len(values))
	isMax := make([]bool, len(values))
	if lo == hi {
		isMin[0] = true
		for i := 1; i < len(values); i++ {
			isMax[i] = true
		}
	} else {
		for i, v := range values {
			isMin[i] = v == lo
			isMax[i] = v == hi
		}
	}

	adjust := (c.config.MinSpread - (hi - lo)) / 2
	for i := range values {
		switch {
		case isMax[i]:
			values[i] += adjust
		case isMin[i]:
			values[i] = math.Max(c.config.MinOdds, values[i]-adjust)
		}
	}

	// The floor can swallow part of the downward nudge; lift the maxima to cover it.
	newLo := values[0]
	for _, v := range values[1:] {
		newLo = math.Min(newLo, v)
	}
	for i := range values {
		if !isMax[i] {
			continue
		}
		if values[i]-newLo < c.config.MinSpread {
			values[i] = newLo + c.config.MinSpread
		}
		for values[i]-newLo < c.config.MinSpread {
			values[i] = math.Nextafter(values[i], math.Inf(1))
		}
	}
}

func (c *Calculator) table(horses []*models.Horse, values []float64, live bool) *models.OddsTable {
	t := models.NewOddsTable()
	t.ComputedAt = c.now().UTC()
	t.Live = live
	for i, h := range horses {
		t.Set(h.ID, h.Name, values[i])
	}
	return t
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
