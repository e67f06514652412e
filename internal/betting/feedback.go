package betting

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yourusername/derby/internal/models"
)

// Feedback describes a prospective bet: the horse's record, the conditions,
// its kit, where the money is, and the risk at the quoted odds.
func (l *Ledger) Feedback(horse *models.Horse, amount decimal.Decimal, odds float64, track *models.Track, records []models.RaceRecord) string {
	var builder strings.Builder

	if len(records) > 0 {
		wins, falls := 0, 0
		for _, r := range records {
			if r.WasWinner {
				wins++
			}
			if r.HasFallen {
				falls++
			}
		}
		n := float64(len(records))
		builder.WriteString("Recent Performance:\n")
		builder.WriteString(fmt.Sprintf("- Win Rate: %.1f%%\n", float64(wins)/n*100))
		builder.WriteString(fmt.Sprintf("- Fall Rate: %.1f%%\n", float64(falls)/n*100))
	}

	builder.WriteString("\nCurrent Conditions:\n")
	builder.WriteString(fmt.Sprintf("- Track Shape: %s\n", track.Shape))
	builder.WriteString(fmt.Sprintf("- Weather: %s\n", track.Weather))

	builder.WriteString("\nEquipment Analysis:\n")
	builder.WriteString(fmt.Sprintf("- Saddle: %s\n", horse.Saddle))
	builder.WriteString(fmt.Sprintf("- Horseshoes: %s\n", horse.Horseshoes))

	if l.totalWagered.IsPositive() {
		share := l.wagers[horse.ID].Div(l.totalWagered).Mul(decimal.NewFromInt(100))
		builder.WriteString(fmt.Sprintf("\nBetting Trends:\n- %s%% of total bets are on this horse\n", share.StringFixed(1)))
	}

	builder.WriteString("\nRisk Assessment:\n")
	builder.WriteString("- " + RiskLevel(odds) + "\n")

	potential := amount.Mul(decimal.NewFromFloat(odds))
	builder.WriteString(fmt.Sprintf("\nPotential Payout: $%s\n", potential.StringFixed(2)))
	return builder.String()
}

// RiskLevel buckets decimal odds into a short risk description.
func RiskLevel(odds float64) string {
	switch {
	case odds < 2.0:
		return "Low risk, low reward bet"
	case odds < 4.0:
		return "Moderate risk, potential good return"
	default:
		return "High risk, high reward bet"
	}
}

// Summary lists the balance, open bets and current odds in lane order.
func (l *Ledger) Summary(horses []*models.Horse, table *models.OddsTable) string {
	var builder strings.Builder
	builder.WriteString("Betting Summary:\n")
	builder.WriteString("----------------\n")
	builder.WriteString(fmt.Sprintf("Your Balance: $%s\n", l.balance.StringFixed(2)))
	builder.WriteString(fmt.Sprintf("Total Bets Placed: $%s\n", l.totalWagered.StringFixed(2)))

	builder.WriteString("\nCurrent Bets:\n")
	hasBets := false
	for _, h := range horses {
		w, ok := l.wagers[h.ID]
		if !ok || !w.IsPositive() {
			continue
		}
		o, _ := table.Get(h.ID)
		builder.WriteString(fmt.Sprintf("%s: $%s at %.2f odds\n", h.Name, w.StringFixed(2), o))
		hasBets = true
	}
	if !hasBets {
		builder.WriteString("No bets placed yet\n")
	}

	builder.WriteString("\nCurrent Odds:\n")
	for _, e := range table.Entries() {
		builder.WriteString(fmt.Sprintf("%s: %.2f\n", e.Name, e.Odds))
	}
	return builder.String()
}

// Suggestion reviews the player's settled rounds and the horses they back most.
func (l *Ledger) Suggestion() string {
	if l.rounds == 0 || len(l.betCounts) == 0 {
		return "No betting history available for suggestions."
	}

	var most, least string
	mostN, leastN := -1, -1
	for id, n := range l.betCounts {
		name := l.horseNames[id]
		if n > mostN || (n == mostN && name < most) {
			most, mostN = name, n
		}
		if leastN < 0 || n < leastN || (n == leastN && name < least) {
			least, leastN = name, n
		}
	}

	winRate := float64(l.winningRounds) / float64(l.rounds)

	var builder strings.Builder
	builder.WriteString("Based on your betting history:\n")
	builder.WriteString(fmt.Sprintf("- Overall win rate: %.1f%%\n", winRate*100))
	builder.WriteString(fmt.Sprintf("- Most bet horse: %s (%d times)\n", most, mostN))
	builder.WriteString(fmt.Sprintf("- Least bet horse: %s (%d times)\n", least, leastN))

	switch {
	case winRate < 0.3:
		builder.WriteString("\nSuggestion: Consider betting on horses with higher odds for better payouts.")
	case winRate > 0.7:
		builder.WriteString("\nSuggestion: Your strategy is working well! Consider increasing bet amounts.")
	default:
		builder.WriteString("\nSuggestion: Try diversifying your bets across different horses.")
	}
	return builder.String()
}
