package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShape(t *testing.T) {
	tests := []struct {
		input    string
		expected TrackShape
	}{
		{"oval", ShapeOval},
		{"Straight", ShapeStraight},
		{"figure-eight", ShapeFigureEight},
		{"FigureEight", ShapeFigureEight},
		{"figure_eight", ShapeFigureEight},
		{" ZIGZAG ", ShapeZigzag},
		{"custom", ShapeCustom},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			shape, err := ParseShape(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, shape)
		})
	}

	_, err := ParseShape("hexagon")
	assert.True(t, errors.Is(err, ErrUnknownShape))
}

func TestParseWeather(t *testing.T) {
	w, err := ParseWeather("rainy")
	require.NoError(t, err)
	assert.Equal(t, WeatherRainy, w)

	_, err = ParseWeather("hail")
	assert.True(t, errors.Is(err, ErrUnknownWeather))
}

func TestTrackModifiersRecomputeImmediately(t *testing.T) {
	track := NewTrack(50, 4)
	assert.Equal(t, 1.0, track.MoveModifier())
	assert.Equal(t, 1.0, track.FallModifier())

	track.SetWeather(WeatherSnowy)
	assert.Equal(t, Modifiers{Speed: 0.6, Confidence: 0.8, Fall: 1.5}, track.WeatherModifiers())
	assert.InDelta(t, 0.8, track.MoveModifier(), 1e-9)
	assert.InDelta(t, 1.5, track.FallModifier(), 1e-9)

	track.SetShape(ShapeCustom)
	assert.InDelta(t, 0.8*0.8, track.MoveModifier(), 1e-9)

	track.SetWeather(WeatherFoggy)
	track.SetShape(ShapeFigureEight)
	assert.InDelta(t, 0.9, track.MoveModifier(), 1e-9)
	assert.InDelta(t, 1.0, track.FallModifier(), 1e-9)
}

func TestValidateBounds(t *testing.T) {
	assert.NoError(t, ValidateLaneCount(2))
	assert.NoError(t, ValidateLaneCount(25))
	assert.ErrorIs(t, ValidateLaneCount(1), ErrLaneCountOutOfRange)
	assert.ErrorIs(t, ValidateLaneCount(26), ErrLaneCountOutOfRange)

	assert.NoError(t, ValidateTrackLength(20))
	assert.NoError(t, ValidateTrackLength(200))
	assert.ErrorIs(t, ValidateTrackLength(19), ErrTrackLengthOutOfRange)
	assert.ErrorIs(t, ValidateTrackLength(201), ErrTrackLengthOutOfRange)
}
