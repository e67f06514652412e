package betting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/derby/internal/models"
)

func TestFeedback(t *testing.T) {
	ledger := newTestLedger()
	a := models.NewHorse('>', "A", 0.7)
	b := models.NewHorse('^', "B", 0.7)
	track := models.NewTrack(50, 2)
	track.SetWeather(models.WeatherRainy)

	_, err := ledger.PlaceBet(a, dec(30), 3.0)
	require.NoError(t, err)
	_, err = ledger.PlaceBet(b, dec(10), 3.0)
	require.NoError(t, err)

	records := []models.RaceRecord{{WasWinner: true}, {HasFallen: true}, {}, {}}
	fb := ledger.Feedback(a, dec(20), 2.5, track, records)

	assert.Contains(t, fb, "- Win Rate: 25.0%")
	assert.Contains(t, fb, "- Fall Rate: 25.0%")
	assert.Contains(t, fb, "- Weather: Rainy")
	assert.Contains(t, fb, "- Saddle: Standard")
	assert.Contains(t, fb, "75.0% of total bets are on this horse")
	assert.Contains(t, fb, "Moderate risk")
	assert.Contains(t, fb, "Potential Payout: $50.00")
}

func TestRiskLevel(t *testing.T) {
	assert.Equal(t, "Low risk, low reward bet", RiskLevel(1.5))
	assert.Equal(t, "Moderate risk, potential good return", RiskLevel(2.0))
	assert.Equal(t, "High risk, high reward bet", RiskLevel(4.0))
}

func TestSummary(t *testing.T) {
	ledger := newTestLedger()
	a := models.NewHorse('>', "Le Horse", 0.7)
	b := models.NewHorse('^', "Solider", 0.65)
	table := models.NewOddsTable()
	table.Set(a.ID, a.Name, 3.25)
	table.Set(b.ID, b.Name, 5.5)

	summary := ledger.Summary([]*models.Horse{a, b}, table)
	assert.Contains(t, summary, "Your Balance: $1000.00")
	assert.Contains(t, summary, "No bets placed yet")
	assert.Contains(t, summary, "Solider: 5.50")

	_, err := ledger.PlaceBet(a, dec(12.5), 3.25)
	require.NoError(t, err)
	summary = ledger.Summary([]*models.Horse{a, b}, table)
	assert.Contains(t, summary, "Le Horse: $12.50 at 3.25 odds")
	assert.NotContains(t, summary, "No bets placed yet")
}

func TestSuggestion(t *testing.T) {
	ledger := newTestLedger()
	assert.Equal(t, "No betting history available for suggestions.", ledger.Suggestion())

	a := models.NewHorse('>', "A", 0.7)
	b := models.NewHorse('^', "B", 0.7)
	for i := 0; i < 3; i++ {
		_, err := ledger.PlaceBet(a, dec(5), 2.0)
		require.NoError(t, err)
		ledger.Settle(models.Won(a.ID))
	}
	_, err := ledger.PlaceBet(b, dec(5), 2.0)
	require.NoError(t, err)
	ledger.Settle(models.Won(b.ID))

	s := ledger.Suggestion()
	assert.Contains(t, s, "Overall win rate: 100.0%")
	assert.Contains(t, s, "Most bet horse: A (3 times)")
	assert.Contains(t, s, "Least bet horse: B (1 times)")
	assert.Contains(t, s, "Consider increasing bet amounts")
}
