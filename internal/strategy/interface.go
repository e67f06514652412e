// Package strategy holds betting strategies that pick a horse before a race.
package strategy

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/derby/internal/models"
)

// Strategy defines the interface for betting strategies
type Strategy interface {
	Name() string
	Evaluate(ctx context.Context, strategyCtx Context) ([]Signal, error)
	ShouldBet(signal Signal) bool
	CalculateStake(signal Signal, bankroll float64) float64
	GetParameters() map[string]interface{}
}

// Signal represents a betting signal emitted by a strategy
type Signal struct {
	HorseID       uuid.UUID      `json:"horse_id"`
	HorseName     string         `json:"horse_name"`
	Lane          int            `json:"lane"`
	Odds          float64        `json:"odds"`
	Stake         float64        `json:"stake"`
	Confidence    float64        `json:"confidence"`
	ExpectedValue float64        `json:"expected_value"`
	Reasoning     string         `json:"reasoning"`
	Features      map[string]any `json:"features,omitempty"`
}

// Context provides the strategy with the pre-race state
type Context struct {
	RaceNumber int
	Track      models.Track
	Horses     []*models.Horse
	Odds       *models.OddsTable
	// WinRatio holds each horse's historical win ratio.
	WinRatio map[uuid.UUID]float64
	Bankroll float64
}

// StrategyMetadata describes a strategy for reports
type StrategyMetadata struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// Describe builds the metadata of s
func Describe(s Strategy, description string) StrategyMetadata {
	return StrategyMetadata{
		Name:        s.Name(),
		Description: description,
		Parameters:  s.GetParameters(),
	}
}
