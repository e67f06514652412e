package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewHorseClampsConfidence(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{name: "within bounds", input: 0.7, expected: 0.7},
		{name: "above bounds", input: 1.5, expected: 1.0},
		{name: "below bounds", input: -0.5, expected: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHorse('H', "Thunder", tt.input)
			assert.Equal(t, tt.expected, h.Confidence())

			h.SetConfidence(tt.input)
			assert.Equal(t, tt.expected, h.Confidence())
		})
	}
}

func TestHorseInitialState(t *testing.T) {
	h := NewHorse('H', "Thunder", 0.7)

	assert.Equal(t, 0, h.DistanceTravelled)
	assert.False(t, h.HasFallen)
	assert.False(t, h.IsWinner)
	assert.Equal(t, 1.0, h.ConfidenceModifier)
	assert.Equal(t, 0.7, h.EffectiveConfidence())
}

func TestHorseMoveFallReset(t *testing.T) {
	h := NewHorse('H', "Thunder", 0.7)

	h.MoveForward(3)
	h.MoveForward(3)
	h.MoveForward(3)
	h.MoveForward(3)
	assert.Equal(t, 3, h.DistanceTravelled, "distance capped at the limit")

	h.Fall()
	h.MoveForward(10)
	assert.True(t, h.HasFallen)
	assert.Equal(t, 3, h.DistanceTravelled, "fallen horse does not move")

	h.IsWinner = true
	h.ResetForRace()
	assert.Equal(t, 0, h.DistanceTravelled)
	assert.False(t, h.HasFallen)
	assert.False(t, h.IsWinner)
}

func TestHorseCustomizeRecomputesModifiers(t *testing.T) {
	h := NewHorse('A', "Arrow", 0.8)

	breed := BreedArabian
	shoes := EquipmentHeavy
	h.Customize(HorseCustomization{Breed: &breed, Horseshoes: &shoes})

	assert.InDelta(t, 1.1*1.1, h.ConfidenceModifier, 1e-9)
	assert.InDelta(t, 1.1*0.9, h.Speed, 1e-9)
	assert.InDelta(t, 1.2, h.Stamina, 1e-9)
	assert.InDelta(t, 0.8*1.21, h.EffectiveConfidence(), 1e-9)

	conf := 0.9
	h.Customize(HorseCustomization{Confidence: &conf})
	assert.Equal(t, 1.0, h.EffectiveConfidence(), "effective confidence stays clamped")

	// Recomputing from unchanged attributes is idempotent.
	h.Customize(HorseCustomization{})
	assert.InDelta(t, 1.1*0.9, h.Speed, 1e-9)
}

func TestHorseCustomizeNameSymbolConfidence(t *testing.T) {
	h := NewHorse('A', "Arrow", 0.8)

	name := "Bolt"
	symbol := 'B'
	conf := 2.0
	h.Customize(HorseCustomization{Name: &name, Symbol: &symbol, Confidence: &conf})

	assert.Equal(t, "Bolt", h.Name)
	assert.Equal(t, 'B', h.Symbol)
	assert.Equal(t, 1.0, h.Confidence())
}

func TestHorseProgress(t *testing.T) {
	h := NewHorse('A', "Arrow", 0.8)
	h.DistanceTravelled = 10

	assert.Equal(t, 0.5, h.Progress(20))
	assert.Equal(t, 0.0, h.Progress(0))
	assert.Equal(t, 1.0, h.Progress(5))
}
