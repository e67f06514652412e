package models

import (
	"fmt"
	"strings"
)

// Track geometry bounds accepted by the configuration commands.
const (
	MinLaneCount   = 2
	MaxLaneCount   = 25
	MinTrackLength = 20
	MaxTrackLength = 200
)

// TrackShape is the layout of the course.
type TrackShape string

const (
	ShapeOval        TrackShape = "Oval"
	ShapeStraight    TrackShape = "Straight"
	ShapeFigureEight TrackShape = "Figure-eight"
	ShapeZigzag      TrackShape = "Zigzag"
	ShapeCustom      TrackShape = "Custom"
)

// Shapes lists every supported track shape.
var Shapes = []TrackShape{ShapeOval, ShapeStraight, ShapeFigureEight, ShapeZigzag, ShapeCustom}

// Weather is the condition the race is run in.
type Weather string

const (
	WeatherClear Weather = "Clear"
	WeatherRainy Weather = "Rainy"
	WeatherSnowy Weather = "Snowy"
	WeatherFoggy Weather = "Foggy"
	WeatherWindy Weather = "Windy"
)

// Weathers lists every supported weather condition.
var Weathers = []Weather{WeatherClear, WeatherRainy, WeatherSnowy, WeatherFoggy, WeatherWindy}

// ParseShape resolves a shape name case-insensitively.
func ParseShape(s string) (TrackShape, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", "-", " ", "-").Replace(norm)
	if norm == "figureeight" {
		norm = "figure-eight"
	}
	for _, shape := range Shapes {
		if strings.ToLower(string(shape)) == norm {
			return shape, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownShape, s)
}

// ParseWeather resolves a weather name case-insensitively.
func ParseWeather(s string) (Weather, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, w := range Weathers {
		if strings.ToLower(string(w)) == norm {
			return w, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownWeather, s)
}

// String returns the display name of the shape.
func (s TrackShape) String() string { return string(s) }

// Valid reports whether the shape is one of Shapes.
func (s TrackShape) Valid() bool {
	for _, shape := range Shapes {
		if s == shape {
			return true
		}
	}
	return false
}

// Valid reports whether the weather is one of Weathers.
func (w Weather) Valid() bool {
	for _, weather := range Weathers {
		if w == weather {
			return true
		}
	}
	return false
}

// String returns the display name of the weather.
func (w Weather) String() string { return string(w) }

// Modifiers is a (speed, confidence, fall) multiplier triple.
type Modifiers struct {
	Speed      float64 `json:"speed"`
	Confidence float64 `json:"confidence"`
	Fall       float64 `json:"fall"`
}

var neutralModifiers = Modifiers{Speed: 1.0, Confidence: 1.0, Fall: 1.0}

// Modifiers returns the fixed multiplier triple for the shape.
func (s TrackShape) Modifiers() Modifiers {
	switch s {
	case ShapeFigureEight:
		return Modifiers{Speed: 0.9, Confidence: 1.0, Fall: 1.0}
	case ShapeCustom:
		return Modifiers{Speed: 0.8, Confidence: 1.0, Fall: 1.0}
	default:
		return neutralModifiers
	}
}

// Modifiers returns the fixed multiplier triple for the weather.
func (w Weather) Modifiers() Modifiers {
	switch w {
	case WeatherRainy:
		return Modifiers{Speed: 0.8, Confidence: 0.9, Fall: 1.2}
	case WeatherSnowy:
		return Modifiers{Speed: 0.6, Confidence: 0.8, Fall: 1.5}
	default:
		return neutralModifiers
	}
}

// Track holds race geometry and the active course modifiers.
type Track struct {
	Length    int        `json:"length"`
	LaneCount int        `json:"lane_count"`
	Shape     TrackShape `json:"shape"`
	Weather   Weather    `json:"weather"`

	shapeMods   Modifiers
	weatherMods Modifiers
}

// NewTrack creates an oval track in clear weather.
func NewTrack(length, laneCount int) *Track {
	t := &Track{Length: length, LaneCount: laneCount}
	t.SetShape(ShapeOval)
	t.SetWeather(WeatherClear)
	return t
}

// SetShape changes the shape and recomputes the active shape multipliers.
func (t *Track) SetShape(shape TrackShape) {
	t.Shape = shape
	t.shapeMods = shape.Modifiers()
}

// SetWeather changes the weather and recomputes the active weather multipliers.
func (t *Track) SetWeather(weather Weather) {
	t.Weather = weather
	t.weatherMods = weather.Modifiers()
}

// ShapeModifiers returns the active shape multipliers.
func (t *Track) ShapeModifiers() Modifiers { return t.shapeMods }

// WeatherModifiers returns the active weather multipliers.
func (t *Track) WeatherModifiers() Modifiers { return t.weatherMods }

// MoveModifier is the factor applied to a horse's move chance.
func (t *Track) MoveModifier() float64 {
	return t.weatherMods.Confidence * t.shapeMods.Speed
}

// FallModifier is the factor applied to a horse's fall chance.
func (t *Track) FallModifier() float64 {
	return t.weatherMods.Fall * t.shapeMods.Fall
}

// Clone returns a copy of the track.
func (t *Track) Clone() *Track {
	c := *t
	return &c
}

// ValidateLaneCount checks n against the supported lane range.
func ValidateLaneCount(n int) error {
	if n < MinLaneCount || n > MaxLaneCount {
		return fmt.Errorf("%w: %d not in [%d,%d]", ErrLaneCountOutOfRange, n, MinLaneCount, MaxLaneCount)
	}
	return nil
}

// ValidateTrackLength checks n against the supported length range.
func ValidateTrackLength(n int) error {
	if n < MinTrackLength || n > MaxTrackLength {
		return fmt.Errorf("%w: %d not in [%d,%d]", ErrTrackLengthOutOfRange, n, MinTrackLength, MaxTrackLength)
	}
	return nil
}
