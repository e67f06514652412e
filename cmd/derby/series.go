package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/derby/internal/backtest"
	"github.com/yourusername/derby/internal/strategy"
)

var (
	seriesRaces    int
	seriesStrategy string
	seriesStake    float64
	seriesLane     int
	htmlOutput     string
	csvOutput      string
	equityOutput   string
)

func init() {
	seriesCmd.Flags().IntVarP(&seriesRaces, "races", "n", 0, "Number of races (default from config)")
	seriesCmd.Flags().StringVarP(&seriesStrategy, "strategy", "s", "", "Strategy: favourite, longshot, fixed_lane, value")
	seriesCmd.Flags().Float64Var(&seriesStake, "stake", 0, "Stake per bet (default from config)")
	seriesCmd.Flags().IntVar(&seriesLane, "lane", -1, "Lane for the fixed_lane strategy")
	seriesCmd.Flags().StringVar(&htmlOutput, "html", "", "Write an HTML report to this path")
	seriesCmd.Flags().StringVar(&csvOutput, "csv", "", "Write a CSV metrics export to this path")
	seriesCmd.Flags().StringVar(&equityOutput, "equity", "", "Write the equity curve CSV to this path")
}

var seriesCmd = &cobra.Command{
	Use:   "series",
	Short: "Play a series of races with a betting strategy and report how it fared",
	RunE:  runSeries,
}

var strategyDescriptions = map[string]string{
	strategy.NameFavourite: "Backs the shortest-priced horse every race",
	strategy.NameLongshot:  "Backs the longest-priced horse every race",
	strategy.NameFixedLane: "Backs whichever horse runs in one lane",
	strategy.NameValue:     "Backs horses whose estimated chance beats the price",
}

func runSeries(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	seriesCfg, err := backtest.FromConfig(cfg)
	if err != nil {
		return fmt.Errorf("invalid series config: %w", err)
	}
	if seriesRaces > 0 {
		seriesCfg.Races = seriesRaces
	}
	if seriesStrategy != "" {
		seriesCfg.Strategy = seriesStrategy
	}
	if seriesStake > 0 {
		seriesCfg.Stake = seriesStake
	}
	if seriesLane >= 0 {
		seriesCfg.Lane = seriesLane
	}

	strat, err := strategy.New(seriesCfg.Strategy, seriesCfg.Stake, seriesCfg.Lane)
	if err != nil {
		return err
	}

	sim, err := newSimulation()
	if err != nil {
		return err
	}

	engine, err := backtest.NewEngine(seriesCfg, sim, strat, appLog)
	if err != nil {
		return err
	}

	appLog.WithFields(logrus.Fields{"strategy": strat.Name(), "races": seriesCfg.Races}).Info("Starting series")
	state, m, err := engine.Run(ctx)
	if err != nil {
		return fmt.Errorf("series failed after %d races: %w", state.Races, err)
	}

	report, err := engine.BuildReport(ctx, state, m, strategyDescriptions[strat.Name()])
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), backtest.GenerateConsoleReport(report))

	if htmlOutput != "" {
		if err := backtest.GenerateHTMLReport(report, htmlOutput); err != nil {
			return fmt.Errorf("failed to write HTML report: %w", err)
		}
	}
	if csvOutput != "" {
		if err := backtest.GenerateCSVExport(report, csvOutput); err != nil {
			return fmt.Errorf("failed to write CSV export: %w", err)
		}
	}
	if equityOutput != "" {
		if err := os.MkdirAll(filepath.Dir(equityOutput), 0o755); err != nil {
			return err
		}
		f, err := os.Create(equityOutput)
		if err != nil {
			return fmt.Errorf("failed to create equity curve file: %w", err)
		}
		defer f.Close()
		if err := state.EquityCurve.WriteCSV(f); err != nil {
			return fmt.Errorf("failed to write equity curve: %w", err)
		}
	}
	return nil
}
