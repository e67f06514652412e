package odds

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/derby/internal/models"
)

type fakeHistory struct {
	records map[uuid.UUID][]models.RaceRecord
	avg     map[models.TrackShape]float64
	best    map[uuid.UUID]float64
}

func (f *fakeHistory) RecentForHorse(horseID uuid.UUID, n int) []models.RaceRecord {
	rs := f.records[horseID]
	if len(rs) > n {
		rs = rs[len(rs)-n:]
	}
	return rs
}

func (f *fakeHistory) AverageTimeForShape(shape models.TrackShape) float64 {
	return f.avg[shape]
}

func (f *fakeHistory) BestTimeForHorse(horseID uuid.UUID, shape models.TrackShape) (float64, bool) {
	b, ok := f.best[horseID]
	return b, ok
}

func defaultRoster() []*models.Horse {
	return []*models.Horse{
		models.NewHorse('>', "Le Horse", 0.70),
		models.NewHorse('^', "Solider", 0.65),
		models.NewHorse('#', "The Castle", 0.75),
		models.NewHorse('*', "King", 0.68),
	}
}

func assertTableInvariants(t *testing.T, table *models.OddsTable) {
	t.Helper()
	for _, e := range table.Entries() {
		assert.GreaterOrEqual(t, e.Odds, 1.1, "odds for %s", e.Name)
	}
	if table.Len() >= 2 {
		assert.GreaterOrEqual(t, table.Spread(), 2.0)
	}
}

func TestCompute_DefaultRoster(t *testing.T) {
	c := NewCalculator(DefaultConfig())
	horses := defaultRoster()

	table := c.Compute(horses, models.NewTrack(50, 4), nil, nil)
	require.Equal(t, 4, table.Len())
	assertTableInvariants(t, table)
	assert.False(t, table.Live)

	entries := table.Entries()
	for i, h := range horses {
		assert.Equal(t, h.ID, entries[i].HorseID, "lane order preserved")
	}

	fav, ok := table.Favourite()
	require.True(t, ok)
	assert.Equal(t, "The Castle", fav.Name)
}

func TestCompute_StaticFormula(t *testing.T) {
	c := NewCalculator(DefaultConfig())
	h := models.NewHorse('>', "Solo", 0.8)

	table := c.Compute([]*models.Horse{h}, models.NewTrack(50, 2), nil, nil)
	got, ok := table.Get(h.ID)
	require.True(t, ok)

	// Thoroughbred on an oval: affinity 1.2; standard kit in clear weather: 1.0.
	expected := 10.0 / (0.9 * 1.2) * 1.15
	assert.InDelta(t, expected, got, 1e-9)
}

func TestCompute_EqualOddsTieGoesToFirstLane(t *testing.T) {
	c := NewCalculator(DefaultConfig())
	horses := []*models.Horse{
		models.NewHorse('a', "A", 0.5),
		models.NewHorse('b', "B", 0.5),
		models.NewHorse('c', "C", 0.5),
	}

	table := c.Compute(horses, models.NewTrack(50, 3), nil, nil)
	assertTableInvariants(t, table)

	fav, _ := table.Favourite()
	assert.Equal(t, horses[0].ID, fav.HorseID)
	b, _ := table.Get(horses[1].ID)
	cOdds, _ := table.Get(horses[2].ID)
	assert.InDelta(t, b, cOdds, 1e-9)
}

func TestCompute_FloorAndSpreadAcrossConfidences(t *testing.T) {
	c := NewCalculator(DefaultConfig())
	confidences := [][]float64{
		{1.0, 1.0},
		{0.0, 1.0},
		{1.0, 0.99, 0.98, 0.97},
		{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
	}
	for _, set := range confidences {
		var horses []*models.Horse
		for i, conf := range set {
			h := models.NewHorse(rune('a'+i), "H", conf)
			h.Customize(models.HorseCustomization{Saddle: strPtr(models.EquipmentRacing)})
			horses = append(horses, h)
		}
		for _, w := range models.Weathers {
			track := models.NewTrack(50, len(horses))
			track.SetWeather(w)
			assertTableInvariants(t, c.Compute(horses, track, nil, nil))
		}
	}
}

func TestRecentForm(t *testing.T) {
	id := uuid.New()
	c := NewCalculator(DefaultConfig())

	tests := []struct {
		name     string
		records  []models.RaceRecord
		expected float64
	}{
		{name: "no history", records: nil, expected: 1.0},
		{name: "single win", records: []models.RaceRecord{{WasWinner: true}}, expected: 1.2},
		{name: "single fall", records: []models.RaceRecord{{HasFallen: true}}, expected: 0.8},
		{
			// oldest fall weight 1, newest win weight 2
			name:     "fall then win",
			records:  []models.RaceRecord{{HasFallen: true}, {WasWinner: true}},
			expected: (0.8*1 + 1.2*2) / 3,
		},
		{
			name: "only last five count",
			records: []models.RaceRecord{
				{HasFallen: true}, {WasWinner: true}, {WasWinner: true},
				{WasWinner: true}, {WasWinner: true}, {WasWinner: true},
			},
			expected: 1.2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &fakeHistory{records: map[uuid.UUID][]models.RaceRecord{id: tt.records}}
			got := c.RecentForm(id, h)
			assert.InDelta(t, tt.expected, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.8)
			assert.LessOrEqual(t, got, 1.2)
		})
	}
}

func TestTrackAffinity(t *testing.T) {
	tests := []struct {
		breed    string
		shape    models.TrackShape
		expected float64
	}{
		{models.BreedThoroughbred, models.ShapeOval, 1.2},
		{models.BreedArabian, models.ShapeOval, 1.2},
		{models.BreedQuarterHorse, models.ShapeStraight, 1.2},
		{models.BreedAppaloosa, models.ShapeFigureEight, 1.2},
		{models.BreedQuarterHorse, models.ShapeOval, 1.0},
		{models.BreedPaint, models.ShapeZigzag, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.breed+"/"+tt.shape.String(), func(t *testing.T) {
			h := models.NewHorse('a', "A", 0.5)
			h.Breed = tt.breed
			assert.Equal(t, tt.expected, TrackAffinity(h, tt.shape))
		})
	}
}

func TestWeatherEquipmentFactor(t *testing.T) {
	tests := []struct {
		name       string
		saddle     string
		horseshoes string
		weather    models.Weather
		expected   float64
	}{
		{"rain heavy shoes", models.EquipmentStandard, models.EquipmentHeavy, models.WeatherRainy, 1.1},
		{"snow racing saddle", models.EquipmentRacing, models.EquipmentStandard, models.WeatherSnowy, 1.1},
		{"rain lightweight", models.EquipmentLightweight, models.EquipmentStandard, models.WeatherRainy, 0.9},
		{"clear lightweight", models.EquipmentLightweight, models.EquipmentStandard, models.WeatherClear, 1.1},
		{"clear heavy", models.EquipmentHeavy, models.EquipmentHeavy, models.WeatherClear, 1.0},
		{"fog racing", models.EquipmentRacing, models.EquipmentRacing, models.WeatherFoggy, 1.0},
		{"standard kit", models.EquipmentStandard, models.EquipmentStandard, models.WeatherRainy, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := models.NewHorse('a', "A", 0.5)
			h.Saddle = tt.saddle
			h.Horseshoes = tt.horseshoes
			assert.Equal(t, tt.expected, WeatherEquipmentFactor(h, tt.weather))
		})
	}
}

func TestCrowdFactor_LengthensHeavilyBackedHorse(t *testing.T) {
	c := NewCalculator(DefaultConfig())

	assert.Equal(t, 1.0, c.CrowdFactor(decimal.Zero, decimal.Zero))
	assert.Equal(t, 1.0, c.CrowdFactor(decimal.NewFromInt(40), decimal.NewFromInt(100)))
	assert.InDelta(t, 1/(1+0.5*0.6), c.CrowdFactor(decimal.NewFromInt(100), decimal.NewFromInt(100)), 1e-9)

	horses := []*models.Horse{
		models.NewHorse('a', "A", 0.7),
		models.NewHorse('b', "B", 0.6),
		models.NewHorse('c', "C", 0.1),
	}
	track := models.NewTrack(50, 3)
	before := c.Compute(horses, track, nil, nil)
	after := c.Compute(horses, track, nil, map[uuid.UUID]decimal.Decimal{
		horses[1].ID: decimal.NewFromInt(90),
		horses[0].ID: decimal.NewFromInt(10),
	})

	b1, _ := before.Get(horses[1].ID)
	a1, _ := after.Get(horses[1].ID)
	assert.Greater(t, a1, b1)
}

func TestLive_MomentumAndFallen(t *testing.T) {
	c := NewCalculator(DefaultConfig())
	horses := []*models.Horse{
		models.NewHorse('a', "A", 0.7),
		models.NewHorse('b', "B", 0.7),
		models.NewHorse('c', "C", 0.7),
	}
	track := models.NewTrack(50, 3)
	horses[0].DistanceTravelled = 40
	horses[1].DistanceTravelled = 10
	horses[2].Fall()

	table := c.Live(horses, track, nil)
	assert.True(t, table.Live)
	assertTableInvariants(t, table)

	leader, _ := table.Get(horses[0].ID)
	trailer, _ := table.Get(horses[1].ID)
	fallen, _ := table.Get(horses[2].ID)
	assert.Less(t, leader, trailer)
	assert.Equal(t, DefaultConfig().MaxOdds, fallen)
}

func TestLive_FormAndTrackRecord(t *testing.T) {
	c := NewCalculator(DefaultConfig())
	id := uuid.New()

	h := &fakeHistory{
		records: map[uuid.UUID][]models.RaceRecord{
			id: {{WasWinner: true}, {WasWinner: true}, {HasFallen: true}},
		},
		avg:  map[models.TrackShape]float64{models.ShapeOval: 15},
		best: map[uuid.UUID]float64{id: 10},
	}

	assert.InDelta(t, 1.05, c.LiveForm(id, h), 1e-9)
	assert.Equal(t, 1.2, c.TrackRecord(id, models.ShapeOval, h), "clamped to 1.2")
	assert.Equal(t, 1.0, c.TrackRecord(uuid.New(), models.ShapeOval, h))
	assert.Equal(t, 1.0, c.LiveForm(id, nil))

	h.records[id] = []models.RaceRecord{{HasFallen: true}, {HasFallen: true}, {HasFallen: true}, {HasFallen: true}}
	assert.InDelta(t, 0.55, c.LiveForm(id, h), 1e-9)
}

func TestLive_AllFallen(t *testing.T) {
	c := NewCalculator(DefaultConfig())
	horses := []*models.Horse{models.NewHorse('a', "A", 0.7), models.NewHorse('b', "B", 0.7)}
	for _, h := range horses {
		h.Fall()
	}
	assertTableInvariants(t, c.Live(horses, models.NewTrack(50, 2), nil))
}

func TestNormalizeSpread(t *testing.T) {
	c := NewCalculator(DefaultConfig())

	tests := []struct {
		name     string
		values   []float64
		expected []float64
	}{
		{name: "already wide", values: []float64{2, 5}, expected: []float64{2, 5}},
		{name: "nudged both ways", values: []float64{4, 5}, expected: []float64{3.5, 5.5}},
		{name: "floor lifts max", values: []float64{1.2, 2.2, 1.8}, expected: []float64{1.1, 3.1, 1.8}},
		{name: "all equal", values: []float64{3, 3, 3}, expected: []float64{2, 4, 4}},
		{name: "single", values: []float64{3}, expected: []float64{3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.normalizeSpread(tt.values)
			assert.InDeltaSlice(t, tt.expected, tt.values, 1e-9)
		})
	}
}

func TestNormalizeSpread_NeverShortByRounding(t *testing.T) {
	c := NewCalculator(DefaultConfig())

	values := []float64{1.1719176749152596, 1.1719176749152596 + 1.3, 1.9}
	c.normalizeSpread(values)
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	assert.GreaterOrEqual(t, hi-lo, 2.0)

	rng := rand.New(rand.NewSource(11))
	for n := 0; n < 20000; n++ {
		values := make([]float64, 2+rng.Intn(8))
		for i := range values {
			values[i] = 1.1 + rng.Float64()*3
		}
		c.normalizeSpread(values)

		lo, hi := values[0], values[0]
		for _, v := range values {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
		require.GreaterOrEqual(t, hi-lo, 2.0, "values %v", values)
		require.GreaterOrEqual(t, lo, 1.1)
	}
}

func TestLive_SpreadHoldsMidRace(t *testing.T) {
	c := NewCalculator(DefaultConfig())
	rng := rand.New(rand.NewSource(5))

	for n := 0; n < 2000; n++ {
		length := 20 + rng.Intn(181)
		horses := make([]*models.Horse, 2+rng.Intn(6))
		for i := range horses {
			h := models.NewHorse(rune('a'+i), "H", rng.Float64())
			h.DistanceTravelled = rng.Intn(length)
			if rng.Float64() < 0.1 {
				h.Fall()
			}
			horses[i] = h
		}
		assertTableInvariants(t, c.Live(horses, models.NewTrack(length, len(horses)), nil))
	}
}

func TestPerformanceFactor_UsesEffectiveConfidence(t *testing.T) {
	h := models.NewHorse('a', "A", 0.8)
	assert.InDelta(t, 0.9, PerformanceFactor(h), 1e-9)

	// Quarter Horse 0.8, heavy shoes 1.1: modifier 0.88.
	h.Customize(models.HorseCustomization{
		Breed:      strPtr(models.BreedQuarterHorse),
		Horseshoes: strPtr(models.EquipmentHeavy),
	})
	assert.InDelta(t, 0.5+0.5*0.8*0.88, PerformanceFactor(h), 1e-9)
}

func strPtr(s string) *string { return &s }
