package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yourusername/derby/internal/simulation"
)

var showReports bool

func init() {
	oddsCmd.Flags().BoolVar(&showReports, "reports", false, "Print each horse's performance report")
}

var oddsCmd = &cobra.Command{
	Use:   "odds",
	Short: "Print the odds for the configured track and field",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		sim, err := newSimulation()
		if err != nil {
			return err
		}

		printOdds(out, sim)
		fmt.Fprintln(out, sim.BettingSuggestion())

		if showReports {
			for _, lane := range sim.Lanes() {
				report, err := sim.PerformanceReport(lane.HorseID)
				if err != nil {
					return err
				}
				fmt.Fprintln(out)
				fmt.Fprint(out, report)
			}
		}
		return nil
	},
}

func printOdds(out io.Writer, sim *simulation.Simulation) {
	track := sim.Track()
	table := sim.Odds()

	fmt.Fprintf(out, "%s track, %s, length %d\n", track.Shape, track.Weather, track.Length)
	for _, lane := range sim.Lanes() {
		price, _ := table.Get(lane.HorseID)
		fmt.Fprintf(out, "  %2d  %c  %-20s %6.2f\n", lane.Index, lane.Symbol, lane.Name, price)
	}
	fmt.Fprintln(out)
}
