package backtest

import (
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/derby/internal/models"
)

// BetRecord is one strategy bet and how it settled
type BetRecord struct {
	Race      int       `json:"race"`
	BetID     uuid.UUID `json:"bet_id"`
	HorseID   uuid.UUID `json:"horse_id"`
	HorseName string    `json:"horse_name"`
	Stake     float64   `json:"stake"`
	Odds      float64   `json:"odds"`
	// Probability is the strategy's win estimate when the bet was placed.
	Probability float64 `json:"probability"`
	Settled     bool    `json:"settled"`
	Won         bool    `json:"won"`
	Refunded    bool    `json:"refunded"`
	ProfitLoss  float64 `json:"profit_loss"`
}

// SettleBet settles a bet against a race outcome. A draw refunds the stake;
// a winner returns the stake plus stake × odds.
func SettleBet(bet *BetRecord, outcome models.Outcome) {
	bet.Settled = true
	switch {
	case outcome.IsDrawn():
		bet.Refunded = true
		bet.ProfitLoss = 0
	case outcome.IsWon() && outcome.WinnerID == bet.HorseID:
		bet.Won = true
		bet.ProfitLoss = bet.Stake * bet.Odds
	default:
		bet.ProfitLoss = -bet.Stake
	}
}

// SeriesState tracks current series state
type SeriesState struct {
	InitialBankroll float64
	Bankroll        float64
	PeakBankroll    float64
	Races           int
	Draws           int
	Bets            []*BetRecord
	EquityCurve     EquityCurve
	WinStreak       int
	LossStreak      int

	pendingPnL float64
}

// NewSeriesState initializes series state
func NewSeriesState(initialBankroll float64) *SeriesState {
	state := &SeriesState{
		InitialBankroll: initialBankroll,
		Bankroll:        initialBankroll,
		PeakBankroll:    initialBankroll,
		Bets:            []*BetRecord{},
		EquityCurve:     EquityCurve{},
	}
	state.RecordEquityPoint(0, time.Now().UTC(), initialBankroll, 0)
	return state
}

// UpdateState adds a settled bet to the current race
func (s *SeriesState) UpdateState(bet *BetRecord) {
	s.Bets = append(s.Bets, bet)
	s.pendingPnL += bet.ProfitLoss
}

// CompleteRace closes the current race at the ledger's bankroll
func (s *SeriesState) CompleteRace(race int, outcome models.Outcome, bankroll float64) {
	pnl := s.pendingPnL
	s.pendingPnL = 0

	s.Races++
	if outcome.IsDrawn() {
		s.Draws++
	}
	switch {
	case pnl > 0:
		s.WinStreak++
		s.LossStreak = 0
	case pnl < 0:
		s.LossStreak++
		s.WinStreak = 0
	}

	s.Bankroll = bankroll
	if bankroll > s.PeakBankroll {
		s.PeakBankroll = bankroll
	}
	s.RecordEquityPoint(race, time.Now().UTC(), bankroll, pnl)
}

// NetProfit returns bankroll growth since the series began
func (s *SeriesState) NetProfit() float64 {
	return s.Bankroll - s.InitialBankroll
}

// GetCurrentDrawdown calculates peak-to-trough drawdown
func (s *SeriesState) GetCurrentDrawdown() float64 {
	if s.PeakBankroll == 0 {
		return 0
	}
	drawdown := (s.PeakBankroll - s.Bankroll) / s.PeakBankroll
	if drawdown < 0 {
		return 0
	}
	return drawdown
}

// RecordEquityPoint adds an equity point to the curve
func (s *SeriesState) RecordEquityPoint(race int, t time.Time, value, racePnL float64) {
	drawdown := 0.0
	if value < s.PeakBankroll && s.PeakBankroll > 0 {
		drawdown = (s.PeakBankroll - value) / s.PeakBankroll
	}

	s.EquityCurve = append(s.EquityCurve, EquityPoint{
		Race:     race,
		Time:     t,
		Value:    value,
		Drawdown: drawdown,
		RacePnL:  racePnL,
	})
}
