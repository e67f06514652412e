package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bet is a single wager on one horse for the current race.
type Bet struct {
	ID       uuid.UUID       `json:"id"`
	HorseID  uuid.UUID       `json:"horse_id"`
	Amount   decimal.Decimal `json:"amount"`
	Odds     float64         `json:"odds"`
	PlacedAt time.Time       `json:"placed_at"`
}

// PotentialPayout is the winnings (excluding the returned stake) if the horse wins.
func (b *Bet) PotentialPayout() decimal.Decimal {
	return b.Amount.Mul(decimal.NewFromFloat(b.Odds))
}

// Settlement summarizes what a race settlement moved between player and house.
type Settlement struct {
	Outcome      Outcome         `json:"outcome"`
	TotalWagered decimal.Decimal `json:"total_wagered"`
	WinningStake decimal.Decimal `json:"winning_stake"`
	Payout       decimal.Decimal `json:"payout"`
	Refunded     decimal.Decimal `json:"refunded"`
	HouseNet     decimal.Decimal `json:"house_net"`
	BetsSettled  int             `json:"bets_settled"`
	Balance      decimal.Decimal `json:"balance"`
}

// PlayerWon reports whether any stake was on the winner.
func (s *Settlement) PlayerWon() bool {
	return s.WinningStake.IsPositive()
}

// BetStats aggregates the player's betting history across settled races.
type BetStats struct {
	TotalRounds   int             `json:"total_rounds"`
	WinningRounds int             `json:"winning_rounds"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	WinRate       float64         `json:"win_rate"`
	AverageAmount decimal.Decimal `json:"average_amount"`
	Recent        []string        `json:"recent"`
}
