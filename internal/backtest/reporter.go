package backtest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GenerateConsoleReport formats a series report for terminal output
func GenerateConsoleReport(report SeriesReport) string {
	m := report.Metrics
	var builder strings.Builder
	builder.WriteString("Series Report\n")
	builder.WriteString("=============\n")
	builder.WriteString(fmt.Sprintf("Strategy: %s\n", report.Strategy.Name))
	builder.WriteString(fmt.Sprintf("Races: %d (%d drawn)\n", m.Races, m.Draws))
	builder.WriteString(fmt.Sprintf("Bets: %d won, %d lost, %d refunded\n", m.WinningBets, m.LosingBets, m.RefundedBets))
	builder.WriteString(fmt.Sprintf("Bankroll: $%.2f -> $%.2f\n", m.InitialBankroll, m.FinalBankroll))
	builder.WriteString(fmt.Sprintf("Net Profit: $%.2f\n", m.NetProfit))
	builder.WriteString(fmt.Sprintf("ROI: %.2f%%\n", m.ROI*100))
	builder.WriteString(fmt.Sprintf("Win Rate: %.2f%%\n", m.WinRate*100))
	builder.WriteString(fmt.Sprintf("Max Drawdown: %.2f%% (longest %d races)\n", m.MaxDrawdown*100, m.LongestDrawdown))
	builder.WriteString(fmt.Sprintf("Profit Factor: %.2f\n", m.ProfitFactor))
	builder.WriteString(fmt.Sprintf("Largest Win: $%.2f\n", m.LargestWin))
	builder.WriteString(fmt.Sprintf("Largest Loss: $%.2f\n", m.LargestLoss))
	builder.WriteString(fmt.Sprintf("Sharpe Ratio: %.2f\n", m.SharpeRatio))
	if report.MonteCarlo.Iterations > 0 {
		builder.WriteString(fmt.Sprintf("Probability of Profit: %.1f%%\n", report.MonteCarlo.ProbabilityOfProfit*100))
		builder.WriteString(fmt.Sprintf("Probability of Ruin: %.1f%%\n", report.MonteCarlo.ProbabilityOfRuin*100))
	}
	builder.WriteString(fmt.Sprintf("Composite Score: %.2f\n", report.CompositeScore))
	builder.WriteString(fmt.Sprintf("Recommendation: %s\n", report.Recommendation))
	return builder.String()
}

// GenerateHTMLReport creates a simple HTML report
func GenerateHTMLReport(report SeriesReport, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}

	m := report.Metrics
	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>Series Report</title></head>
<body>
<h1>Series Report: %s</h1>
<p><strong>Races:</strong> %d</p>
<p><strong>Net Profit:</strong> $%.2f</p>
<p><strong>ROI:</strong> %.2f%%</p>
<p><strong>Win Rate:</strong> %.2f%%</p>
<p><strong>Max Drawdown:</strong> %.2f%%</p>
<p><strong>Profit Factor:</strong> %.2f</p>
<p><strong>Composite Score:</strong> %.2f</p>
<p><strong>Recommendation:</strong> %s</p>
</body>
</html>`,
		report.Strategy.Name,
		m.Races,
		m.NetProfit,
		m.ROI*100,
		m.WinRate*100,
		m.MaxDrawdown*100,
		m.ProfitFactor,
		report.CompositeScore,
		report.Recommendation,
	)

	return os.WriteFile(outputPath, []byte(html), 0o644)
}

// GenerateCSVExport exports key metrics for spreadsheets
func GenerateCSVExport(report SeriesReport, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	m := report.Metrics
	csv := "metric,value\n" +
		fmt.Sprintf("strategy,%s\n", report.Strategy.Name) +
		fmt.Sprintf("races,%d\n", m.Races) +
		fmt.Sprintf("net_profit,%.4f\n", m.NetProfit) +
		fmt.Sprintf("roi,%.4f\n", m.ROI) +
		fmt.Sprintf("win_rate,%.4f\n", m.WinRate) +
		fmt.Sprintf("max_drawdown,%.4f\n", m.MaxDrawdown) +
		fmt.Sprintf("profit_factor,%.4f\n", m.ProfitFactor) +
		fmt.Sprintf("composite_score,%.4f\n", report.CompositeScore) +
		fmt.Sprintf("recommendation,%s\n", report.Recommendation)
	return os.WriteFile(outputPath, []byte(csv), 0o644)
}
