// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging for money movements.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogBetPlacement logs an accepted bet.
func (al *AuditLogger) LogBetPlacement(betID, horseID, horseName, amount string, odds float64, balance string, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"bet_id":     betID,
		"horse_id":   horseID,
		"horse_name": horseName,
		"amount":     amount,
		"odds":       odds,
		"balance":    balance,
		"timestamp":  timestamp.Unix(),
	}).Info("Bet placement recorded")
}

// LogBetRejected logs a bet refused without any ledger mutation.
func (al *AuditLogger) LogBetRejected(horseID, amount, reason string) {
	al.WithFields(logrus.Fields{
		"horse_id": horseID,
		"amount":   amount,
		"reason":   reason,
	}).Warn("Bet rejected")
}

// LogSettlement logs the money moved by a race settlement.
func (al *AuditLogger) LogSettlement(outcome, totalWagered, winningStake, payout, houseNet, balance string, betsSettled int) {
	al.WithFields(logrus.Fields{
		"outcome":       outcome,
		"total_wagered": totalWagered,
		"winning_stake": winningStake,
		"payout":        payout,
		"house_net":     houseNet,
		"balance":       balance,
		"bets_settled":  betsSettled,
	}).Info("Bets settled")
}

// LogRefund logs stakes returned to the player.
func (al *AuditLogger) LogRefund(amount, reason string, betsRefunded int) {
	al.WithFields(logrus.Fields{
		"amount":        amount,
		"reason":        reason,
		"bets_refunded": betsRefunded,
	}).Info("Bets refunded")
}
