package models

import (
	"github.com/google/uuid"
)

// Breed names understood by the attribute tables.
const (
	BreedThoroughbred = "Thoroughbred"
	BreedArabian      = "Arabian"
	BreedQuarterHorse = "Quarter Horse"
	BreedAppaloosa    = "Appaloosa"
	BreedPaint        = "Paint"
)

// Equipment grades shared by saddles and horseshoes.
const (
	EquipmentStandard    = "Standard"
	EquipmentRacing      = "Racing"
	EquipmentLightweight = "Lightweight"
	EquipmentHeavy       = "Heavy"
)

// Breeds lists every breed a generated horse can be assigned.
var Breeds = []string{BreedThoroughbred, BreedArabian, BreedQuarterHorse, BreedAppaloosa, BreedPaint}

// CoatColors lists the coat colors a generated horse can be assigned.
var CoatColors = []string{"Brown", "Black", "Grey", "White", "Chestnut"}

// Saddles lists the available saddle grades.
var Saddles = []string{EquipmentStandard, EquipmentRacing, EquipmentLightweight, EquipmentHeavy}

// Horseshoes lists the available horseshoe grades.
var Horseshoes = []string{EquipmentStandard, EquipmentLightweight, EquipmentHeavy, EquipmentRacing}

// Horse is a single competitor occupying one lane.
//
// Optional customization attributes (breed, coat, saddle, horseshoes) live on
// the same record; Speed, Stamina and ConfidenceModifier are derived from
// them and recomputed whenever one of them changes.
type Horse struct {
	ID                uuid.UUID
	Symbol            rune
	Name              string
	DistanceTravelled int
	HasFallen         bool
	IsWinner          bool

	Breed      string
	CoatColor  string
	Saddle     string
	Horseshoes string

	BaseSpeed   float64
	BaseStamina float64

	Speed              float64
	Stamina            float64
	ConfidenceModifier float64

	confidence float64
}

// NewHorse creates a horse with standard equipment and neutral modifiers.
// Modifiers are only derived once an attribute is customized.
func NewHorse(symbol rune, name string, confidence float64) *Horse {
	h := &Horse{
		ID:          uuid.New(),
		Symbol:      symbol,
		Name:        name,
		Breed:       BreedThoroughbred,
		CoatColor:   "Brown",
		Saddle:      EquipmentStandard,
		Horseshoes:  EquipmentStandard,
		BaseSpeed:   1.0,
		BaseStamina: 1.0,

		Speed:              1.0,
		Stamina:            1.0,
		ConfidenceModifier: 1.0,
	}
	h.SetConfidence(confidence)
	return h
}

// Confidence returns the base confidence in [0,1].
func (h *Horse) Confidence() float64 {
	return h.confidence
}

// SetConfidence stores confidence clamped to [0,1].
func (h *Horse) SetConfidence(confidence float64) {
	h.confidence = clampUnit(confidence)
}

// EffectiveConfidence is the base confidence after breed and equipment
// modifiers, clamped to [0,1]. Movement and fall chances use this value.
func (h *Horse) EffectiveConfidence() float64 {
	return clampUnit(h.confidence * h.ConfidenceModifier)
}

// MoveForward advances the horse one unit, never past limit.
func (h *Horse) MoveForward(limit int) {
	if h.HasFallen {
		return
	}
	if limit > 0 && h.DistanceTravelled >= limit {
		return
	}
	h.DistanceTravelled++
}

// Fall marks the horse as fallen for the rest of the race.
func (h *Horse) Fall() {
	h.HasFallen = true
}

// ResetForRace puts the horse back at the start line.
func (h *Horse) ResetForRace() {
	h.DistanceTravelled = 0
	h.HasFallen = false
	h.IsWinner = false
}

// Progress returns the fraction of length covered, in [0,1].
func (h *Horse) Progress(length int) float64 {
	if length <= 0 {
		return 0
	}
	p := float64(h.DistanceTravelled) / float64(length)
	if p > 1 {
		return 1
	}
	return p
}

// HorseCustomization carries the optional attribute changes for a horse.
// Nil fields are left untouched.
type HorseCustomization struct {
	Name       *string  `json:"name,omitempty"`
	Symbol     *rune    `json:"symbol,omitempty"`
	Breed      *string  `json:"breed,omitempty"`
	CoatColor  *string  `json:"coat_color,omitempty"`
	Saddle     *string  `json:"saddle,omitempty"`
	Horseshoes *string  `json:"horseshoes,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Customize applies c and recomputes the derived modifiers.
func (h *Horse) Customize(c HorseCustomization) {
	if c.Name != nil {
		h.Name = *c.Name
	}
	if c.Symbol != nil {
		h.Symbol = *c.Symbol
	}
	if c.Breed != nil {
		h.Breed = *c.Breed
	}
	if c.CoatColor != nil {
		h.CoatColor = *c.CoatColor
	}
	if c.Saddle != nil {
		h.Saddle = *c.Saddle
	}
	if c.Horseshoes != nil {
		h.Horseshoes = *c.Horseshoes
	}
	if c.Confidence != nil {
		h.SetConfidence(*c.Confidence)
	}
	h.recomputeModifiers()
}

// SetBaseAttributes overrides the pre-modifier speed and stamina.
func (h *Horse) SetBaseAttributes(speed, stamina float64) {
	h.BaseSpeed = speed
	h.BaseStamina = stamina
	h.recomputeModifiers()
}

// recomputeModifiers derives speed, stamina and the confidence modifier from
// breed, saddle and horseshoes. Base values are never mutated, so repeated
// calls are idempotent.
func (h *Horse) recomputeModifiers() {
	speed, stamina, conf := h.BaseSpeed, h.BaseStamina, 1.0

	switch h.Breed {
	case BreedThoroughbred:
		speed, conf, stamina = speed*1.2, conf*0.9, stamina*0.8
	case BreedArabian:
		speed, conf, stamina = speed*1.1, conf*1.1, stamina*1.2
	case BreedQuarterHorse:
		speed, conf, stamina = speed*1.3, conf*0.8, stamina*0.9
	case BreedAppaloosa:
		speed, stamina = speed*0.9, stamina*1.1
	}

	switch h.Saddle {
	case EquipmentRacing:
		speed, stamina = speed*1.1, stamina*0.9
	case EquipmentLightweight:
		speed, stamina = speed*1.05, stamina*1.05
	case EquipmentHeavy:
		speed, stamina = speed*0.9, stamina*1.1
	}

	switch h.Horseshoes {
	case EquipmentRacing:
		speed, conf = speed*1.1, conf*0.9
	case EquipmentLightweight:
		speed, conf = speed*1.05, conf*1.05
	case EquipmentHeavy:
		speed, conf = speed*0.9, conf*1.1
	}

	h.Speed = speed
	h.Stamina = stamina
	h.ConfidenceModifier = conf
}

// Clone returns a copy safe to hand to readers outside the simulation lock.
func (h *Horse) Clone() *Horse {
	c := *h
	return &c
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
