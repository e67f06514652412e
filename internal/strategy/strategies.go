package strategy

import (
	"context"
	"fmt"

	"github.com/yourusername/derby/internal/models"
)

// Strategy names accepted by New.
const (
	NameFavourite = "favourite"
	NameLongshot  = "longshot"
	NameFixedLane = "fixed_lane"
	NameValue     = "value"
)

// Names lists every built-in strategy.
var Names = []string{NameFavourite, NameLongshot, NameFixedLane, NameValue}

// New builds a built-in strategy by name.
func New(name string, stake float64, lane int) (Strategy, error) {
	switch name {
	case NameFavourite:
		return NewFavouriteStrategy(stake), nil
	case NameLongshot:
		return NewLongshotStrategy(stake), nil
	case NameFixedLane:
		return NewFixedLaneStrategy(lane, stake), nil
	case NameValue:
		return NewValueStrategy(stake), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}

// FavouriteStrategy backs the shortest-priced horse every race.
type FavouriteStrategy struct {
	BaseStrategy
}

// NewFavouriteStrategy creates a favourite-backing strategy
func NewFavouriteStrategy(stake float64) *FavouriteStrategy {
	return &FavouriteStrategy{BaseStrategy{DefaultStake: stake}}
}

// Name returns strategy name
func (s *FavouriteStrategy) Name() string { return NameFavourite }

// Evaluate signals the favourite
func (s *FavouriteStrategy) Evaluate(ctx context.Context, strategyCtx Context) ([]Signal, error) {
	_ = ctx
	fav, ok := strategyCtx.Odds.Favourite()
	if !ok {
		return nil, fmt.Errorf("no odds available")
	}
	return []Signal{s.signal(strategyCtx, fav, "Shortest price in the field")}, nil
}

// ShouldBet determines if a signal should be executed
func (s *FavouriteStrategy) ShouldBet(signal Signal) bool {
	return signal.Stake > 0 && s.ValidateOdds(signal.Odds) == nil
}

// CalculateStake calculates stake based on bankroll
func (s *FavouriteStrategy) CalculateStake(signal Signal, bankroll float64) float64 {
	return s.CapStake(signal.Stake, bankroll)
}

// GetParameters returns strategy parameters
func (s *FavouriteStrategy) GetParameters() map[string]interface{} {
	return map[string]interface{}{"stake": s.DefaultStake}
}

// LongshotStrategy backs the longest-priced horse every race.
type LongshotStrategy struct {
	BaseStrategy
}

// NewLongshotStrategy creates a longshot-backing strategy
func NewLongshotStrategy(stake float64) *LongshotStrategy {
	return &LongshotStrategy{BaseStrategy{DefaultStake: stake}}
}

// Name returns strategy name
func (s *LongshotStrategy) Name() string { return NameLongshot }

// Evaluate signals the outsider
func (s *LongshotStrategy) Evaluate(ctx context.Context, strategyCtx Context) ([]Signal, error) {
	_ = ctx
	out, ok := strategyCtx.Odds.Outsider()
	if !ok {
		return nil, fmt.Errorf("no odds available")
	}
	return []Signal{s.signal(strategyCtx, out, "Longest price in the field")}, nil
}

// ShouldBet determines if a signal should be executed
func (s *LongshotStrategy) ShouldBet(signal Signal) bool {
	return signal.Stake > 0 && s.ValidateOdds(signal.Odds) == nil
}

// CalculateStake calculates stake based on bankroll
func (s *LongshotStrategy) CalculateStake(signal Signal, bankroll float64) float64 {
	return s.CapStake(signal.Stake, bankroll)
}

// GetParameters returns strategy parameters
func (s *LongshotStrategy) GetParameters() map[string]interface{} {
	return map[string]interface{}{"stake": s.DefaultStake}
}

// FixedLaneStrategy always backs whichever horse runs in one lane.
type FixedLaneStrategy struct {
	BaseStrategy
	Lane int
}

// NewFixedLaneStrategy creates a strategy backing lane every race
func NewFixedLaneStrategy(lane int, stake float64) *FixedLaneStrategy {
	return &FixedLaneStrategy{BaseStrategy: BaseStrategy{DefaultStake: stake}, Lane: lane}
}

// Name returns strategy name
func (s *FixedLaneStrategy) Name() string { return NameFixedLane }

// Evaluate signals the horse in the configured lane
func (s *FixedLaneStrategy) Evaluate(ctx context.Context, strategyCtx Context) ([]Signal, error) {
	_ = ctx
	if s.Lane < 0 || s.Lane >= len(strategyCtx.Horses) {
		return nil, fmt.Errorf("lane %d not on a %d-lane track", s.Lane, len(strategyCtx.Horses))
	}
	h := strategyCtx.Horses[s.Lane]
	odds, ok := strategyCtx.Odds.Get(h.ID)
	if !ok {
		return nil, fmt.Errorf("no odds for lane %d", s.Lane)
	}
	entry := models.OddsEntry{HorseID: h.ID, Name: h.Name, Odds: odds}
	return []Signal{s.signal(strategyCtx, entry, fmt.Sprintf("Lane %d", s.Lane))}, nil
}

// ShouldBet determines if a signal should be executed
func (s *FixedLaneStrategy) ShouldBet(signal Signal) bool {
	return signal.Stake > 0 && s.ValidateOdds(signal.Odds) == nil
}

// CalculateStake calculates stake based on bankroll
func (s *FixedLaneStrategy) CalculateStake(signal Signal, bankroll float64) float64 {
	return s.CapStake(signal.Stake, bankroll)
}

// GetParameters returns strategy parameters
func (s *FixedLaneStrategy) GetParameters() map[string]interface{} {
	return map[string]interface{}{"stake": s.DefaultStake, "lane": s.Lane}
}

// ValueStrategy backs every horse whose estimated win probability beats the
// price by more than MinEdgeThreshold, sizing bets by fractional Kelly.
//
// The estimate shares win probability in proportion to effective confidence,
// boosted by historical win ratio.
type ValueStrategy struct {
	BaseStrategy
	MinEdgeThreshold float64
	FormWeight       float64
}

// NewValueStrategy creates a value strategy capped at maxStake per bet
func NewValueStrategy(maxStake float64) *ValueStrategy {
	return &ValueStrategy{
		BaseStrategy: BaseStrategy{
			MinOdds:       1.1,
			MaxOdds:       100,
			KellyFraction: 0.25,
			DefaultStake:  maxStake,
		},
		MinEdgeThreshold: 0.05,
		FormWeight:       0.5,
	}
}

// Name returns strategy name
func (s *ValueStrategy) Name() string { return NameValue }

// Evaluate evaluates the field and signals every value bet
func (s *ValueStrategy) Evaluate(ctx context.Context, strategyCtx Context) ([]Signal, error) {
	_ = ctx
	if strategyCtx.Odds.Len() == 0 {
		return nil, fmt.Errorf("no odds available")
	}

	strengths := make([]float64, len(strategyCtx.Horses))
	total := 0.0
	for i, h := range strategyCtx.Horses {
		strengths[i] = h.EffectiveConfidence() * (1 + s.FormWeight*strategyCtx.WinRatio[h.ID])
		total += strengths[i]
	}
	if total <= 0 {
		return nil, nil
	}

	var signals []Signal
	for i, h := range strategyCtx.Horses {
		odds, ok := strategyCtx.Odds.Get(h.ID)
		if !ok || s.ValidateOdds(odds) != nil {
			continue
		}
		p := s.NormalizeProbability(strengths[i] / total)
		edge := p*(odds+1) - 1
		if edge <= s.MinEdgeThreshold {
			continue
		}
		stake := s.ApplyKellyCriterion(p, odds, strategyCtx.Bankroll)
		if stake > s.DefaultStake {
			stake = s.DefaultStake
		}
		signals = append(signals, Signal{
			HorseID:       h.ID,
			HorseName:     h.Name,
			Lane:          i,
			Odds:          odds,
			Stake:         stake,
			Confidence:    p,
			ExpectedValue: s.CalculateExpectedValue(p, odds, stake),
			Reasoning:     "Value edge exceeds threshold",
			Features: map[string]any{
				"edge":              edge,
				"model_probability": p,
			},
		})
	}
	return signals, nil
}

// ShouldBet determines if a signal should be executed
func (s *ValueStrategy) ShouldBet(signal Signal) bool {
	return signal.ExpectedValue > 0 && signal.Stake > 0
}

// CalculateStake calculates stake based on bankroll
func (s *ValueStrategy) CalculateStake(signal Signal, bankroll float64) float64 {
	if signal.Stake <= 0 || bankroll <= 0 {
		return 0
	}
	if signal.Stake > bankroll {
		return bankroll
	}
	return signal.Stake
}

// GetParameters returns strategy parameters
func (s *ValueStrategy) GetParameters() map[string]interface{} {
	return map[string]interface{}{
		"min_edge_threshold": s.MinEdgeThreshold,
		"form_weight":        s.FormWeight,
		"kelly_fraction":     s.KellyFraction,
		"max_stake":          s.DefaultStake,
	}
}

func (b *BaseStrategy) signal(strategyCtx Context, entry models.OddsEntry, reasoning string) Signal {
	lane := -1
	for i, h := range strategyCtx.Horses {
		if h.ID == entry.HorseID {
			lane = i
			break
		}
	}
	return Signal{
		HorseID:    entry.HorseID,
		HorseName:  entry.Name,
		Lane:       lane,
		Odds:       entry.Odds,
		Stake:      b.DefaultStake,
		Confidence: entry.ImpliedProbability(),
		Reasoning:  reasoning,
	}
}
