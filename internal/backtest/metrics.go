package backtest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Metrics represents series performance metrics
type Metrics struct {
	StrategyName  string `json:"strategy_name"`
	ParameterHash string `json:"parameter_hash"`
	Races         int    `json:"races"`
	Draws         int    `json:"draws"`

	InitialBankroll float64 `json:"initial_bankroll"`
	FinalBankroll   float64 `json:"final_bankroll"`
	TotalReturn     float64 `json:"total_return"`
	// ROI is net profit over total staked.
	ROI         float64 `json:"roi"`
	NetProfit   float64 `json:"net_profit"`
	TotalStaked float64 `json:"total_staked"`

	MaxDrawdown     float64 `json:"max_drawdown"`
	LongestDrawdown int     `json:"longest_drawdown"` // races
	SharpeRatio     float64 `json:"sharpe_ratio"`
	SortinoRatio    float64 `json:"sortino_ratio"`
	ValueAtRisk95   float64 `json:"var_95"`

	TotalBets    int     `json:"total_bets"`
	WinningBets  int     `json:"winning_bets"`
	LosingBets   int     `json:"losing_bets"`
	RefundedBets int     `json:"refunded_bets"`
	WinRate      float64 `json:"win_rate"`
	ProfitFactor float64 `json:"profit_factor"`
	AverageWin   float64 `json:"average_win"`
	AverageLoss  float64 `json:"average_loss"`
	Expectancy   float64 `json:"expectancy"`
	LargestWin   float64 `json:"largest_win"`
	LargestLoss  float64 `json:"largest_loss"`
}

// CalculateMetrics calculates metrics from series state
func CalculateMetrics(state *SeriesState, cfg SeriesConfig) Metrics {
	metrics := Metrics{}
	if state == nil || len(state.EquityCurve) == 0 {
		return metrics
	}

	metrics.Races = state.Races
	metrics.Draws = state.Draws
	metrics.InitialBankroll = state.InitialBankroll
	metrics.FinalBankroll = state.Bankroll
	metrics.NetProfit = state.NetProfit()
	if state.InitialBankroll > 0 {
		metrics.TotalReturn = metrics.NetProfit / state.InitialBankroll
	}

	metrics.MaxDrawdown = state.EquityCurve.MaxDrawdown()
	metrics.LongestDrawdown = state.EquityCurve.LongestDrawdown()
	returns := state.EquityCurve.GetReturns()
	metrics.SharpeRatio = calculateSharpeRatio(returns, cfg.RiskFreeRate)
	metrics.SortinoRatio = calculateSortinoRatio(returns, cfg.RiskFreeRate)
	metrics.ValueAtRisk95 = calculateVaR(returns, 0.95)

	metrics.TotalBets = len(state.Bets)
	for _, bet := range state.Bets {
		metrics.TotalStaked += bet.Stake
	}
	if metrics.TotalStaked > 0 {
		metrics.ROI = metrics.NetProfit / metrics.TotalStaked
	}

	stats := calculateBetStats(state.Bets)
	metrics.WinningBets = stats.wins
	metrics.LosingBets = stats.losses
	metrics.RefundedBets = stats.refunds
	metrics.AverageWin = stats.avgWin
	metrics.AverageLoss = stats.avgLoss
	metrics.LargestWin = stats.largestWin
	metrics.LargestLoss = stats.largestLoss
	metrics.WinRate = calculateWinRate(stats.wins, stats.wins+stats.losses)
	metrics.ProfitFactor = calculateProfitFactor(state.Bets)
	metrics.Expectancy = calculateExpectancy(state.Bets)

	return metrics
}

// ToJSON exports metrics to JSON
func (m Metrics) ToJSON() string {
	data, _ := json.Marshal(m)
	return string(data)
}

// Ratios are per race, scaled by the square root of the race count.
func calculateSharpeRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	n := float64(len(returns))
	std := stddev(returns)
	if std == 0 {
		return 0
	}
	return (average(returns) - riskFreeRate/n) / std * math.Sqrt(n)
}

func calculateSortinoRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	n := float64(len(returns))
	std := downsideStddev(returns)
	if std == 0 {
		return 0
	}
	return (average(returns) - riskFreeRate/n) / std * math.Sqrt(n)
}

func calculateProfitFactor(bets []*BetRecord) float64 {
	grossProfit := 0.0
	grossLoss := 0.0
	for _, bet := range bets {
		if !bet.Settled {
			continue
		}
		if bet.ProfitLoss > 0 {
			grossProfit += bet.ProfitLoss
		} else {
			grossLoss += math.Abs(bet.ProfitLoss)
		}
	}
	if grossLoss == 0 {
		if grossProfit > 0 {
			return 999
		}
		return 0
	}
	return grossProfit / grossLoss
}

func calculateExpectancy(bets []*BetRecord) float64 {
	if len(bets) == 0 {
		return 0
	}
	net := 0.0
	for _, bet := range bets {
		net += bet.ProfitLoss
	}
	return net / float64(len(bets))
}

func calculateVaR(returns []float64, level float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sorted := append([]float64{}, returns...)
	sort.Float64s(sorted)
	index := int(math.Floor((1.0 - level) * float64(len(sorted))))
	if index < 0 {
		index = 0
	}
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

type betStats struct {
	wins, losses, refunds   int
	avgWin, avgLoss         float64
	largestWin, largestLoss float64
}

func calculateBetStats(bets []*BetRecord) betStats {
	var stats betStats
	winSum := 0.0
	lossSum := 0.0
	for _, bet := range bets {
		if !bet.Settled {
			continue
		}
		switch {
		case bet.Refunded:
			stats.refunds++
		case bet.ProfitLoss > 0:
			stats.wins++
			winSum += bet.ProfitLoss
			if bet.ProfitLoss > stats.largestWin {
				stats.largestWin = bet.ProfitLoss
			}
		case bet.ProfitLoss < 0:
			stats.losses++
			lossSum += bet.ProfitLoss
			if bet.ProfitLoss < stats.largestLoss {
				stats.largestLoss = bet.ProfitLoss
			}
		}
	}

	if stats.wins > 0 {
		stats.avgWin = winSum / float64(stats.wins)
	}
	if stats.losses > 0 {
		stats.avgLoss = lossSum / float64(stats.losses)
	}
	return stats
}

func calculateWinRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total)
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	return mean / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := average(values)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

func downsideStddev(values []float64) float64 {
	negatives := make([]float64, 0)
	for _, v := range values {
		if v < 0 {
			negatives = append(negatives, v)
		}
	}
	return stddev(negatives)
}

// HashParameters creates a stable hash for parameter maps
func HashParameters(params map[string]interface{}) string {
	data, _ := json.Marshal(params)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}
