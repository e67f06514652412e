package backtest

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// EquityPoint represents the bankroll after one race
type EquityPoint struct {
	Race     int       `json:"race"`
	Time     time.Time `json:"time"`
	Value    float64   `json:"value"`
	Drawdown float64   `json:"drawdown"`
	RacePnL  float64   `json:"race_pnl"`
}

// EquityCurve is the bankroll race by race, starting before the first race
type EquityCurve []EquityPoint

// GetReturns returns the bankroll change of each race as a fraction of the
// bankroll going into it. A race entered with nothing returns 0.
func (e EquityCurve) GetReturns() []float64 {
	if len(e) < 2 {
		return []float64{}
	}
	returns := make([]float64, 0, len(e)-1)
	for i, point := range e[1:] {
		before := e[i].Value
		if before == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (point.Value-before)/before)
	}
	return returns
}

// GetVolatility is the standard deviation of per-race returns
func (e EquityCurve) GetVolatility() float64 {
	return stddev(e.GetReturns())
}

// GetDownsideDeviation is the root mean square of the losing races' returns
func (e EquityCurve) GetDownsideDeviation() float64 {
	sum, losing := 0.0, 0
	for _, r := range e.GetReturns() {
		if r < 0 {
			sum += r * r
			losing++
		}
	}
	if losing == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(losing))
}

// MaxDrawdown is the largest fall from a running peak, as a fraction of it
func (e EquityCurve) MaxDrawdown() float64 {
	worst, peak := 0.0, 0.0
	for _, point := range e {
		peak = math.Max(peak, point.Value)
		if peak > 0 {
			worst = math.Max(worst, (peak-point.Value)/peak)
		}
	}
	return worst
}

// LongestDrawdown counts the most consecutive races spent below a previous peak
func (e EquityCurve) LongestDrawdown() int {
	longest, current, peak := 0, 0, math.Inf(-1)
	for _, point := range e {
		if point.Value >= peak {
			peak = point.Value
			current = 0
			continue
		}
		current++
		if current > longest {
			longest = current
		}
	}
	return longest
}

// WriteCSV writes one row per race with a header
func (e EquityCurve) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"race", "time", "value", "drawdown", "race_pnl"}); err != nil {
		return err
	}
	for _, point := range e {
		row := []string{
			strconv.Itoa(point.Race),
			point.Time.Format(time.RFC3339),
			formatFloat(point.Value),
			formatFloat(point.Drawdown),
			formatFloat(point.RacePnL),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ToCSV renders the curve as CSV text
func (e EquityCurve) ToCSV() string {
	var sb strings.Builder
	_ = e.WriteCSV(&sb)
	return sb.String()
}

// ToJSON exports equity curve to JSON string
func (e EquityCurve) ToJSON() string {
	data, _ := json.Marshal(e)
	return string(data)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
