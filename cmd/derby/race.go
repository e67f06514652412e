package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/yourusername/derby/internal/models"
	"github.com/yourusername/derby/internal/simulation"
)

var (
	betLane   int
	betAmount float64
	watch     bool
)

func init() {
	raceCmd.Flags().IntVar(&betLane, "bet-lane", -1, "Lane to bet on before the start")
	raceCmd.Flags().Float64Var(&betAmount, "bet", 10, "Bet amount")
	raceCmd.Flags().BoolVarP(&watch, "watch", "w", false, "Play the race back in real time")
}

var raceCmd = &cobra.Command{
	Use:   "race",
	Short: "Run one race and print the result",
	RunE:  runRace,
}

func runRace(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	ctx, cancel := signalContext(cmd)
	defer cancel()

	sim, err := newSimulation()
	if err != nil {
		return err
	}

	printOdds(out, sim)

	if betLane >= 0 {
		if err := placeLaneBet(out, sim, betLane, decimal.NewFromFloat(betAmount)); err != nil {
			return err
		}
	}

	var result *models.RaceResult
	if watch {
		result, err = watchRace(ctx, out, sim)
	} else {
		result, err = sim.RunRace(ctx)
	}
	if err != nil {
		return err
	}

	printLanes(out, sim)
	printResult(out, sim, result)
	return nil
}

func placeLaneBet(out io.Writer, sim *simulation.Simulation, lane int, amount decimal.Decimal) error {
	lanes := sim.Lanes()
	if lane >= len(lanes) {
		return fmt.Errorf("lane %d does not exist on a %d-lane track", lane, len(lanes))
	}
	horse := lanes[lane]

	feedback, err := sim.BetFeedback(horse.HorseID, amount)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, feedback)

	bet, err := sim.PlaceBet(horse.HorseID, amount)
	if err != nil {
		return fmt.Errorf("bet rejected: %w", err)
	}
	fmt.Fprintf(out, "Bet $%s on %s at %.2f\n\n", bet.Amount.StringFixed(2), horse.Name, bet.Odds)
	return nil
}

func watchRace(ctx context.Context, out io.Writer, sim *simulation.Simulation) (*models.RaceResult, error) {
	runner := simulation.NewRunner(sim, simulation.RunnerConfig{
		TickInterval: cfg.PlaybackInterval(),
		LiveOdds:     cfg.Race.LiveOdds,
	}, appLog)

	results, err := runner.Start(ctx)
	if err != nil {
		return nil, err
	}

	ticker := time.NewTicker(cfg.PlaybackInterval())
	defer ticker.Stop()

	for {
		select {
		case result, ok := <-results:
			if !ok || result == nil {
				return nil, fmt.Errorf("race stopped: %w", ctx.Err())
			}
			return result, nil
		case <-ticker.C:
			fmt.Fprint(out, "\033[H\033[2J")
			printLanes(out, sim)
		}
	}
}

func printLanes(out io.Writer, sim *simulation.Simulation) {
	track := sim.Track()
	for _, lane := range sim.Lanes() {
		fmt.Fprintln(out, renderLane(lane, track.Length))
	}
	fmt.Fprintln(out)
}

// renderLane draws one lane as |   >        | Name (Current confidence: 0.70)
func renderLane(lane simulation.Lane, length int) string {
	distance := lane.Distance
	if distance > length {
		distance = length
	}
	symbol := lane.Symbol
	if lane.Fallen {
		symbol = 'X'
	}

	var b strings.Builder
	b.WriteByte('|')
	b.WriteString(strings.Repeat(" ", distance))
	b.WriteRune(symbol)
	b.WriteString(strings.Repeat(" ", length-distance))
	b.WriteByte('|')
	fmt.Fprintf(&b, " %s (Current confidence: %.2f)", lane.Name, lane.Confidence)
	if lane.Winner {
		b.WriteString(" WINNER")
	}
	return b.String()
}

func printResult(out io.Writer, sim *simulation.Simulation, result *models.RaceResult) {
	if result.Outcome.IsDrawn() {
		fmt.Fprintln(out, "All horses fell - the race is a draw.")
	} else {
		fmt.Fprintf(out, "%s wins after %d ticks (%s)\n", result.WinnerName, result.Ticks, result.Elapsed)
	}

	if s := result.Settlement; s != nil && s.BetsSettled > 0 {
		fmt.Fprintf(out, "Bets settled: %d, payout $%s, refunded $%s\n",
			s.BetsSettled, s.Payout.StringFixed(2), s.Refunded.StringFixed(2))
	}
	fmt.Fprintf(out, "Balance: $%s\n", sim.Balance().StringFixed(2))
}
