// Package logger provides strategy-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// StrategyLogger provides dedicated logging for betting strategies run over
// a series of races.
type StrategyLogger struct {
	*logrus.Entry
}

// NewStrategyLogger creates a new strategy logger.
func NewStrategyLogger(baseLogger *logrus.Logger) *StrategyLogger {
	return &StrategyLogger{
		Entry: baseLogger.WithField("component", "strategy"),
	}
}

// LogStrategyDecision logs the bet a strategy chose for one race.
func (sl *StrategyLogger) LogStrategyDecision(strategyName string, raceNumber int, decision, horseName string, stake, odds float64) {
	sl.WithFields(logrus.Fields{
		"strategy_name": strategyName,
		"race_number":   raceNumber,
		"decision":      decision,
		"horse":         horseName,
		"stake_amount":  stake,
		"odds":          odds,
	}).Debug("Strategy decision made")
}

// LogSeriesStarted logs the start of a strategy series.
func (sl *StrategyLogger) LogSeriesStarted(seriesID, strategyName string, races int, bankroll float64) {
	sl.WithFields(logrus.Fields{
		"series_id":     seriesID,
		"strategy_name": strategyName,
		"event_type":    "series_started",
		"races":         races,
		"bankroll":      bankroll,
	}).Info("Strategy series started")
}

// LogStrategyPnLUpdate logs a strategy's running P&L after a race.
func (sl *StrategyLogger) LogStrategyPnLUpdate(strategyName string, pnl, bankroll float64, winStreak, lossStreak int) {
	sl.WithFields(logrus.Fields{
		"strategy_name": strategyName,
		"pnl":           pnl,
		"bankroll":      bankroll,
		"win_streak":    winStreak,
		"loss_streak":   lossStreak,
	}).Debug("Strategy P&L updated")
}

// LogStrategyDrawdown logs a drawdown beyond the configured threshold.
func (sl *StrategyLogger) LogStrategyDrawdown(strategyName string, drawdownPercent, peakBankroll, currentBankroll float64) {
	sl.WithFields(logrus.Fields{
		"strategy_name":    strategyName,
		"drawdown_percent": drawdownPercent,
		"peak_bankroll":    peakBankroll,
		"current_bankroll": currentBankroll,
	}).Warn("Strategy drawdown threshold exceeded")
}

// LogSeriesCompleted logs the summary of a finished series.
func (sl *StrategyLogger) LogSeriesCompleted(seriesID, strategyName string, races, bets int, roi, finalBankroll float64) {
	sl.WithFields(logrus.Fields{
		"series_id":      seriesID,
		"strategy_name":  strategyName,
		"event_type":     "series_completed",
		"races":          races,
		"bets":           bets,
		"roi":            roi,
		"final_bankroll": finalBankroll,
	}).Info("Strategy series completed")
}
