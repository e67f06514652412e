package strategy

import (
	"fmt"
	"math"
)

// BaseStrategy provides shared functionality for strategies
type BaseStrategy struct {
	MinOdds       float64
	MaxOdds       float64
	KellyFraction float64
	// DefaultStake is used when a strategy does not size its own bets.
	DefaultStake float64
}

// ValidateOdds ensures odds are within acceptable bounds
func (b *BaseStrategy) ValidateOdds(odds float64) error {
	if odds <= 1.0 {
		return fmt.Errorf("odds must be greater than 1.0")
	}
	if b.MinOdds > 0 && odds < b.MinOdds {
		return fmt.Errorf("odds below minimum")
	}
	if b.MaxOdds > 0 && odds > b.MaxOdds {
		return fmt.Errorf("odds above maximum")
	}
	return nil
}

// ApplyKellyCriterion calculates stake based on the Kelly criterion. Winnings
// are stake × odds on top of the returned stake.
func (b *BaseStrategy) ApplyKellyCriterion(probability float64, odds float64, bankroll float64) float64 {
	if probability <= 0 || odds <= 0 || bankroll <= 0 {
		return 0
	}
	p := probability
	q := 1.0 - p
	bOdds := odds
	kelly := (bOdds*p - q) / bOdds
	if kelly <= 0 {
		return 0
	}
	fraction := b.KellyFraction
	if fraction <= 0 {
		fraction = 0.5
	}
	return bankroll * kelly * fraction
}

// CalculateExpectedValue calculates expected value for a bet. A winning bet
// returns the stake plus stake × odds.
func (b *BaseStrategy) CalculateExpectedValue(probability float64, odds float64, stake float64) float64 {
	if probability <= 0 || odds <= 0 || stake <= 0 {
		return 0
	}
	winProfit := odds * stake
	loss := stake
	return probability*winProfit - (1.0-probability)*loss
}

// NormalizeProbability ensures probability in [0,1]
func (b *BaseStrategy) NormalizeProbability(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// CapStake limits stake to the bankroll, falling back to the default stake
func (b *BaseStrategy) CapStake(stake, bankroll float64) float64 {
	if bankroll <= 0 {
		return 0
	}
	if stake <= 0 {
		stake = b.DefaultStake
	}
	if stake > bankroll {
		return bankroll
	}
	return stake
}
