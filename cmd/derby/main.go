// Package main provides the derby command-line tool: run a race, play a
// betting series or price the field.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/derby/internal/config"
	"github.com/yourusername/derby/internal/logger"
	"github.com/yourusername/derby/internal/metrics"
	"github.com/yourusername/derby/internal/simulation"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	appLog     *logrus.Logger
	cfg        *config.Config

	shapeFlag   string
	weatherFlag string
	lanesFlag   int
	lengthFlag  int
	seedFlag    int64
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultPath, "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&shapeFlag, "shape", "", "Track shape override (oval, straight, figure eight)")
	rootCmd.PersistentFlags().StringVar(&weatherFlag, "weather", "", "Weather override (clear, rainy, snowy)")
	rootCmd.PersistentFlags().IntVar(&lanesFlag, "lanes", 0, "Lane count override")
	rootCmd.PersistentFlags().IntVar(&lengthFlag, "length", 0, "Track length override")
	rootCmd.PersistentFlags().Int64Var(&seedFlag, "seed", 0, "Random seed override")

	rootCmd.AddCommand(raceCmd, seriesCmd, oddsCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "derby",
	Short: "Horse race simulator with odds and betting",
	Long: `Runs simulated horse races on a configurable track, prices each field,
settles bets against a player ledger and keeps per-horse statistics.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		if err := loadConfig(cmd); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		setupDependencies()
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "derby %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig(cmd *cobra.Command) error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("shape") {
		cfg.Race.Shape = shapeFlag
	}
	if flags.Changed("weather") {
		cfg.Race.Weather = weatherFlag
	}
	if flags.Changed("lanes") {
		cfg.Race.LaneCount = lanesFlag
	}
	if flags.Changed("length") {
		cfg.Race.TrackLength = lengthFlag
	}
	if flags.Changed("seed") {
		cfg.Race.Seed = seedFlag
	}

	return config.Validate(cfg)
}

func setupDependencies() {
	appLog = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	// command output goes to stdout; keep routine logs out of it
	if appLog.GetLevel() == logrus.InfoLevel {
		appLog.SetLevel(logrus.WarnLevel)
	}
	metrics.InitRegistry()
}

func newSimulation() (*simulation.Simulation, error) {
	simCfg, err := cfg.SimulationConfig()
	if err != nil {
		return nil, err
	}
	return simulation.New(simCfg, appLog)
}

// signalContext is cancelled on interrupt so long runs stop cleanly.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}
