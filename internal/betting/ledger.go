// Package betting holds the player's wagers and settles them against race outcomes.
package betting

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/derby/internal/logger"
	"github.com/yourusername/derby/internal/models"
)

// Config holds the ledger's starting balances and limits.
type Config struct {
	InitialBalance decimal.Decimal
	HouseBalance   decimal.Decimal
	MinimumBet     decimal.Decimal
	HistorySize    int
}

// DefaultConfig returns a $1000 player bankroll against a $10000 house.
func DefaultConfig() Config {
	return Config{
		InitialBalance: decimal.NewFromInt(1000),
		HouseBalance:   decimal.NewFromInt(10000),
		MinimumBet:     decimal.NewFromInt(2),
		HistorySize:    10,
	}
}

// Ledger tracks the player's balance, open bets and betting history.
// Ledger is not safe for concurrent use; callers serialize access.
type Ledger struct {
	config Config
	audit  *logger.AuditLogger
	now    func() time.Time

	balance      decimal.Decimal
	houseBalance decimal.Decimal

	bets         []models.Bet
	wagers       map[uuid.UUID]decimal.Decimal
	totalWagered decimal.Decimal

	rounds        int
	winningRounds int
	totalAmount   decimal.Decimal
	recent        []string
	betCounts     map[uuid.UUID]int
	horseNames    map[uuid.UUID]string
}

// NewLedger creates a ledger with the configured starting balances.
func NewLedger(cfg Config, log *logrus.Logger) *Ledger {
	if log == nil {
		log = logrus.New()
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultConfig().HistorySize
	}
	return &Ledger{
		config:       cfg,
		audit:        logger.NewAuditLogger(log),
		now:          time.Now,
		balance:      cfg.InitialBalance,
		houseBalance: cfg.HouseBalance,
		wagers:       make(map[uuid.UUID]decimal.Decimal),
		betCounts:    make(map[uuid.UUID]int),
		horseNames:   make(map[uuid.UUID]string),
	}
}

// Balance returns the player's available funds.
func (l *Ledger) Balance() decimal.Decimal {
	return l.balance
}

// HouseBalance returns the house's funds. It may go negative.
func (l *Ledger) HouseBalance() decimal.Decimal {
	return l.houseBalance
}

// MinimumBet returns the smallest accepted stake.
func (l *Ledger) MinimumBet() decimal.Decimal {
	return l.config.MinimumBet
}

// TotalWagered returns the sum of open stakes.
func (l *Ledger) TotalWagered() decimal.Decimal {
	return l.totalWagered
}

// Wagers returns a copy of the open stake per horse.
func (l *Ledger) Wagers() map[uuid.UUID]decimal.Decimal {
	out := make(map[uuid.UUID]decimal.Decimal, len(l.wagers))
	for k, v := range l.wagers {
		out[k] = v
	}
	return out
}

// OpenBets returns a copy of the open bets in placement order.
func (l *Ledger) OpenBets() []models.Bet {
	out := make([]models.Bet, len(l.bets))
	copy(out, l.bets)
	return out
}

// PlaceBet stakes amount on horse at the given odds snapshot. A rejected bet
// leaves the ledger untouched.
func (l *Ledger) PlaceBet(horse *models.Horse, amount decimal.Decimal, odds float64) (*models.Bet, error) {
	if err := l.validate(horse, amount); err != nil {
		horseID := ""
		if horse != nil {
			horseID = horse.ID.String()
		}
		l.audit.LogBetRejected(horseID, amount.StringFixed(2), err.Error())
		return nil, err
	}

	bet := models.Bet{
		ID:       uuid.New(),
		HorseID:  horse.ID,
		Amount:   amount,
		Odds:     odds,
		PlacedAt: l.now().UTC(),
	}

	l.balance = l.balance.Sub(amount)
	l.bets = append(l.bets, bet)
	l.wagers[horse.ID] = l.wagers[horse.ID].Add(amount)
	l.totalWagered = l.totalWagered.Add(amount)
	l.betCounts[horse.ID]++
	l.horseNames[horse.ID] = horse.Name

	l.audit.LogBetPlacement(bet.ID.String(), horse.ID.String(), horse.Name, amount.StringFixed(2), odds, l.balance.StringFixed(2), bet.PlacedAt)
	return &bet, nil
}

func (l *Ledger) validate(horse *models.Horse, amount decimal.Decimal) error {
	switch {
	case horse == nil:
		return models.ErrUnknownHorse
	case !amount.IsPositive():
		return fmt.Errorf("%w: %s", models.ErrInvalidBetAmount, amount.StringFixed(2))
	case amount.LessThan(l.config.MinimumBet):
		return fmt.Errorf("%w: %s < %s", models.ErrBelowMinimumBet, amount.StringFixed(2), l.config.MinimumBet.StringFixed(2))
	case amount.GreaterThan(l.balance):
		return fmt.Errorf("%w: %s > %s", models.ErrInsufficientBalance, amount.StringFixed(2), l.balance.StringFixed(2))
	}
	return nil
}

// Settle pays out a finished race and clears every open bet.
//
// A win pays each stake on the winner back plus stake × odds, using the odds
// captured when that bet was placed; the house absorbs the difference. A draw
// refunds everything.
func (l *Ledger) Settle(outcome models.Outcome) *models.Settlement {
	s := &models.Settlement{
		Outcome:      outcome,
		TotalWagered: l.totalWagered,
		WinningStake: decimal.Zero,
		Payout:       decimal.Zero,
		Refunded:     decimal.Zero,
		HouseNet:     decimal.Zero,
		BetsSettled:  len(l.bets),
	}

	switch {
	case outcome.IsWon():
		for _, b := range l.bets {
			if b.HorseID != outcome.WinnerID {
				continue
			}
			s.WinningStake = s.WinningStake.Add(b.Amount)
			s.Payout = s.Payout.Add(b.PotentialPayout())
		}
		credit := s.WinningStake.Add(s.Payout)
		l.balance = l.balance.Add(credit)
		s.HouseNet = l.totalWagered.Sub(credit)
		l.houseBalance = l.houseBalance.Add(s.HouseNet)
	case outcome.IsDrawn():
		s.Refunded = l.totalWagered
		l.balance = l.balance.Add(l.totalWagered)
	}

	if s.BetsSettled > 0 {
		l.recordRound(s)
	}
	l.clear()

	s.Balance = l.balance
	l.audit.LogSettlement(string(outcome.Kind), s.TotalWagered.StringFixed(2), s.WinningStake.StringFixed(2),
		s.Payout.StringFixed(2), s.HouseNet.StringFixed(2), s.Balance.StringFixed(2), s.BetsSettled)
	return s
}

// Refund returns every open stake, e.g. when a race is abandoned. It returns
// the amount refunded; a second call refunds nothing.
func (l *Ledger) Refund(reason string) decimal.Decimal {
	amount := l.totalWagered
	n := len(l.bets)
	if n == 0 {
		return decimal.Zero
	}
	l.balance = l.balance.Add(amount)
	l.clear()
	l.audit.LogRefund(amount.StringFixed(2), reason, n)
	return amount
}

// Reset restores the starting balances and forgets all history.
func (l *Ledger) Reset() {
	*l = *NewLedger(l.config, l.audit.Logger)
}

func (l *Ledger) clear() {
	l.bets = nil
	l.wagers = make(map[uuid.UUID]decimal.Decimal)
	l.totalWagered = decimal.Zero
}

func (l *Ledger) recordRound(s *models.Settlement) {
	l.rounds++
	l.totalAmount = l.totalAmount.Add(s.TotalWagered)

	result := "Lost"
	switch {
	case s.Outcome.IsDrawn():
		result = "Refunded"
	case s.PlayerWon():
		result = "Won"
		l.winningRounds++
	}

	l.recent = append(l.recent, fmt.Sprintf("$%s - %s", s.TotalWagered.StringFixed(2), result))
	if len(l.recent) > l.config.HistorySize {
		l.recent = l.recent[len(l.recent)-l.config.HistorySize:]
	}
}

// Stats summarizes the settled betting rounds.
func (l *Ledger) Stats() models.BetStats {
	stats := models.BetStats{
		TotalRounds:   l.rounds,
		WinningRounds: l.winningRounds,
		TotalAmount:   l.totalAmount,
		AverageAmount: decimal.Zero,
		Recent:        append([]string(nil), l.recent...),
	}
	if l.rounds > 0 {
		stats.WinRate = float64(l.winningRounds) / float64(l.rounds)
		stats.AverageAmount = l.totalAmount.Div(decimal.NewFromInt(int64(l.rounds))).Round(2)
	}
	return stats
}
