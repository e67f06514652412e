package strategy

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/derby/internal/models"
)

func field(confidences []float64, prices []float64) Context {
	horses := make([]*models.Horse, len(confidences))
	odds := models.NewOddsTable()
	for i, c := range confidences {
		horses[i] = models.NewHorse(rune('A'+i), string(rune('A'+i))+" Horse", c)
		odds.Set(horses[i].ID, horses[i].Name, prices[i])
	}
	return Context{
		RaceNumber: 1,
		Horses:     horses,
		Odds:       odds,
		WinRatio:   map[uuid.UUID]float64{},
		Bankroll:   100,
	}
}

func TestNew(t *testing.T) {
	for _, name := range Names {
		s, err := New(name, 10, 0)
		require.NoError(t, err, name)
		assert.Equal(t, name, s.Name())
	}

	_, err := New("martingale", 10, 0)
	assert.Error(t, err)
}

func TestPriceStrategies(t *testing.T) {
	ctx := field([]float64{0.5, 0.9, 0.2}, []float64{3.0, 1.8, 7.5})

	tests := []struct {
		name     string
		strategy Strategy
		wantLane int
		wantOdds float64
	}{
		{"favourite", NewFavouriteStrategy(10), 1, 1.8},
		{"longshot", NewLongshotStrategy(10), 2, 7.5},
		{"fixed lane", NewFixedLaneStrategy(0, 10), 0, 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals, err := tt.strategy.Evaluate(context.Background(), ctx)
			require.NoError(t, err)
			require.Len(t, signals, 1)

			sig := signals[0]
			assert.Equal(t, tt.wantLane, sig.Lane)
			assert.Equal(t, ctx.Horses[tt.wantLane].ID, sig.HorseID)
			assert.Equal(t, tt.wantOdds, sig.Odds)
			assert.InDelta(t, 1/tt.wantOdds, sig.Confidence, 1e-9)
			assert.True(t, tt.strategy.ShouldBet(sig))
			assert.Equal(t, 10.0, tt.strategy.CalculateStake(sig, ctx.Bankroll))
			assert.Equal(t, 4.0, tt.strategy.CalculateStake(sig, 4))
		})
	}
}

func TestPriceStrategies_NoOdds(t *testing.T) {
	ctx := field(nil, nil)
	for _, name := range Names {
		s, err := New(name, 10, 0)
		require.NoError(t, err)
		_, err = s.Evaluate(context.Background(), ctx)
		assert.Error(t, err, name)
	}
}

func TestFixedLane_LaneOffTrack(t *testing.T) {
	ctx := field([]float64{0.5, 0.5}, []float64{2.0, 2.0})
	_, err := NewFixedLaneStrategy(5, 10).Evaluate(context.Background(), ctx)
	assert.Error(t, err)
}

func TestValueStrategy(t *testing.T) {
	// strengths 0.9 / 0.3 / 0.3 give probabilities 0.6 / 0.2 / 0.2
	ctx := field([]float64{0.9, 0.3, 0.3}, []float64{5.0, 2.0, 2.0})
	s := NewValueStrategy(10)

	signals, err := s.Evaluate(context.Background(), ctx)
	require.NoError(t, err)
	require.Len(t, signals, 1)

	sig := signals[0]
	assert.Equal(t, 0, sig.Lane)
	assert.InDelta(t, 0.6, sig.Confidence, 1e-9)
	assert.InDelta(t, 10.0, sig.Stake, 1e-9, "kelly stake 13 capped at max")
	assert.InDelta(t, 26.0, sig.ExpectedValue, 1e-9)
	assert.InDelta(t, 2.6, sig.Features["edge"], 1e-9)
	assert.True(t, s.ShouldBet(sig))
	assert.Equal(t, 5.0, s.CalculateStake(sig, 5))
}

func TestValueStrategy_FormShiftsProbability(t *testing.T) {
	ctx := field([]float64{0.5, 0.5, 0.5}, []float64{2.0, 2.0, 2.0})
	s := NewValueStrategy(10)

	signals, err := s.Evaluate(context.Background(), ctx)
	require.NoError(t, err)
	assert.Empty(t, signals, "a third at 2.0 has no edge")

	ctx.WinRatio[ctx.Horses[0].ID] = 1.0
	signals, err = s.Evaluate(context.Background(), ctx)
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, ctx.Horses[0].ID, signals[0].HorseID)
}

func TestBaseStrategy(t *testing.T) {
	b := &BaseStrategy{MinOdds: 1.5, MaxOdds: 20, KellyFraction: 0.5, DefaultStake: 5}

	tests := []struct {
		odds    float64
		wantErr bool
	}{
		{1.0, true},
		{1.4, true},
		{1.5, false},
		{20, false},
		{25, true},
	}
	for _, tt := range tests {
		err := b.ValidateOdds(tt.odds)
		assert.Equal(t, tt.wantErr, err != nil, "odds %.2f", tt.odds)
	}

	assert.Zero(t, b.ApplyKellyCriterion(0.1, 2.0, 100), "negative edge")
	// p=0.5, b=2: kelly=(1-0.5)/2=0.25, half kelly
	assert.InDelta(t, 12.5, b.ApplyKellyCriterion(0.5, 2.0, 100), 1e-9)

	assert.InDelta(t, 0.5, b.CalculateExpectedValue(0.5, 2.0, 1), 1e-9)
	assert.Equal(t, 1.0, b.NormalizeProbability(1.7))
	assert.Equal(t, 0.0, b.NormalizeProbability(-0.2))

	assert.Equal(t, 5.0, b.CapStake(0, 100))
	assert.Equal(t, 3.0, b.CapStake(8, 3))
	assert.Zero(t, b.CapStake(8, 0))
}

func TestDescribe(t *testing.T) {
	meta := Describe(NewFixedLaneStrategy(2, 10), "Always lane two")
	assert.Equal(t, NameFixedLane, meta.Name)
	assert.Equal(t, 2, meta.Parameters["lane"])
}
