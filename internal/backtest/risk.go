package backtest

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Risk limit violations
var (
	ErrStakeLimit    = errors.New("stake exceeds per-bet limit")
	ErrExposureLimit = errors.New("race exposure limit reached")
	ErrStopLoss      = errors.New("series stop loss reached")
)

// RiskLimits caps what a strategy may put at risk. A zero limit is disabled.
type RiskLimits struct {
	MaxStakePerBet  float64
	MaxRaceExposure float64
	StopLoss        float64
}

// Validate rejects negative limits
func (l RiskLimits) Validate() error {
	if l.MaxStakePerBet < 0 || l.MaxRaceExposure < 0 || l.StopLoss < 0 {
		return fmt.Errorf("risk limits cannot be negative")
	}
	return nil
}

// RiskManager enforces RiskLimits across a series
type RiskManager struct {
	limits RiskLimits
	logger *logrus.Logger
}

// NewRiskManager creates a risk manager for the given limits
func NewRiskManager(limits RiskLimits, log *logrus.Logger) *RiskManager {
	if log == nil {
		log = logrus.New()
	}
	return &RiskManager{limits: limits, logger: log}
}

// SizeStake trims a proposed stake to the per-bet limit and whatever is left
// of the race exposure allowance. It returns ErrExposureLimit when nothing is left.
func (rm *RiskManager) SizeStake(proposed, raceExposure float64) (float64, error) {
	stake := proposed
	if rm.limits.MaxStakePerBet > 0 && stake > rm.limits.MaxStakePerBet {
		stake = rm.limits.MaxStakePerBet
	}
	if rm.limits.MaxRaceExposure > 0 {
		remaining := rm.limits.MaxRaceExposure - raceExposure
		if remaining <= 0 {
			return 0, ErrExposureLimit
		}
		if stake > remaining {
			stake = remaining
		}
	}

	if stake != proposed {
		rm.logger.WithFields(logrus.Fields{
			"proposed_stake": proposed,
			"sized_stake":    stake,
			"race_exposure":  raceExposure,
		}).Debug("Stake trimmed by risk limits")
	}
	return stake, nil
}

// CheckRiskLimits validates a stake against the limits without trimming it
func (rm *RiskManager) CheckRiskLimits(stake, raceExposure float64) error {
	if rm.limits.MaxStakePerBet > 0 && stake > rm.limits.MaxStakePerBet {
		return fmt.Errorf("%w: %.2f > %.2f", ErrStakeLimit, stake, rm.limits.MaxStakePerBet)
	}
	if rm.limits.MaxRaceExposure > 0 && raceExposure+stake > rm.limits.MaxRaceExposure {
		return fmt.Errorf("%w: %.2f > %.2f", ErrExposureLimit, raceExposure+stake, rm.limits.MaxRaceExposure)
	}
	return nil
}

// IsWithinLimits reports whether the series may keep betting
func (rm *RiskManager) IsWithinLimits(state *SeriesState) bool {
	if state.Bankroll <= 0 {
		return false
	}
	if rm.limits.StopLoss > 0 && -state.NetProfit() >= rm.limits.StopLoss {
		rm.logger.WithFields(logrus.Fields{
			"net_profit": state.NetProfit(),
			"stop_loss":  rm.limits.StopLoss,
		}).Warn("Series stop loss reached")
		return false
	}
	return true
}
