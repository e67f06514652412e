// Package main provides the entry point for the race simulator service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/derby/internal/config"
	"github.com/yourusername/derby/internal/health"
	"github.com/yourusername/derby/internal/logger"
	"github.com/yourusername/derby/internal/metrics"
	"github.com/yourusername/derby/internal/models"
	"github.com/yourusername/derby/internal/scheduler"
	"github.com/yourusername/derby/internal/simulation"
)

// Version is set via ldflags
var Version = "dev"

func main() {
	configPath := config.DefaultPath
	if envPath := os.Getenv("DERBY_CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}

	// Load configuration
	cfg, err := config.LoadWithDefaults(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := config.ValidateEnvironment(cfg); err != nil {
		log.Fatalf("Invalid configuration for %s: %v", cfg.App.Environment, err)
	}

	// Set up logging
	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"version":     Version,
	}).Info("Derby simulator starting")

	metrics.InitRegistry()

	simCfg, err := cfg.SimulationConfig()
	if err != nil {
		appLog.WithError(err).Fatal("Failed to build simulation config")
	}
	sim, err := simulation.New(simCfg, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to create simulation")
	}

	sim.SetRaceEndObserver(func(result models.RaceResult) {
		appLog.WithFields(logrus.Fields{
			"race_id": result.RaceID,
			"outcome": result.Outcome.Kind,
			"winner":  result.WinnerName,
			"balance": sim.Balance().StringFixed(2),
		}).Info("Race result published")
	})

	runner := simulation.NewRunner(sim, simulation.RunnerConfig{
		TickInterval: cfg.PlaybackInterval(),
		LiveOdds:     cfg.Race.LiveOdds,
	}, appLog)

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	playRace := func(ctx context.Context) (*models.RaceResult, error) {
		if sim.State() != models.RaceIdle {
			sim.Reset()
		}
		results, err := runner.Start(ctx)
		if err != nil {
			return nil, err
		}
		result, ok := <-results
		if !ok || result == nil {
			return nil, fmt.Errorf("race interrupted: %w", ctx.Err())
		}
		return result, nil
	}

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.NewScheduler(appLog)
		timeout := time.Duration(cfg.Scheduler.TimeoutSecs) * time.Second
		if _, err := sched.ScheduleRaces(cfg.Scheduler.RaceSchedule, timeout, playRace); err != nil {
			appLog.WithError(err).Fatal("Failed to schedule races")
		}
		if err := sched.Start(); err != nil {
			appLog.WithError(err).Fatal("Failed to start scheduler")
		}
	} else {
		appLog.Info("Scheduler disabled; running a single race")
		go func() {
			if _, err := playRace(ctx); err != nil {
				appLog.WithError(err).Error("Race failed")
			}
		}()
	}

	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Port:        cfg.Health.Port,
		Logger:      appLog,
		Checks:      healthChecks(runner, sched, cfg.PlaybackInterval()),
		Status: func() interface{} {
			return statusSnapshot(sim, runner, sched)
		},
	})
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics.Port, cfg.Metrics.Path)
		go func() {
			appLog.WithField("port", cfg.Metrics.Port).Info("Metrics server starting")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				appLog.WithError(err).Error("Metrics server error")
			}
		}()
	}

	healthServer.SetReady(true)
	appLog.WithFields(logrus.Fields{
		"lanes":     cfg.Race.LaneCount,
		"length":    cfg.Race.TrackLength,
		"shape":     cfg.Race.Shape,
		"weather":   cfg.Race.Weather,
		"scheduled": cfg.Scheduler.Enabled,
	}).Info("Simulator is running")

	// Wait for shutdown signal
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")
	healthServer.SetReady(false)

	// Cancel context to stop all goroutines
	cancel()

	if sched != nil {
		if err := sched.Stop(); err != nil {
			appLog.WithError(err).Error("Error during scheduler shutdown")
		}
	}
	if err := runner.Stop(); err != nil {
		appLog.WithError(err).Error("Error during runner shutdown")
	}
	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			appLog.WithError(err).Warn("Metrics server shutdown error")
		}
		shutdownCancel()
	}

	appLog.WithFields(logrus.Fields{
		"balance":       sim.Balance().StringFixed(2),
		"house_balance": sim.HouseBalance().StringFixed(2),
	}).Info("Derby simulator shut down successfully")
}

// healthChecks reports the playback loop unhealthy when it stops ticking
// mid-race, and the scheduler unhealthy when it is not running.
func healthChecks(runner *simulation.Runner, sched *scheduler.Scheduler, tick time.Duration) map[string]health.Checker {
	stallAfter := 20 * tick
	if stallAfter < 5*time.Second {
		stallAfter = 5 * time.Second
	}

	checks := map[string]health.Checker{
		"playback": health.CheckerFunc(func(ctx context.Context) error {
			status := runner.Status()
			if status.Running && !status.LastUpdate.IsZero() && time.Since(status.LastUpdate) > stallAfter {
				return fmt.Errorf("no tick for %s", time.Since(status.LastUpdate).Round(time.Second))
			}
			return nil
		}),
	}
	if sched != nil {
		checks["scheduler"] = health.CheckerFunc(func(ctx context.Context) error {
			if !sched.IsRunning() {
				return errors.New("scheduler stopped")
			}
			return nil
		})
	}
	return checks
}

type status struct {
	Playback     simulation.RunnerStatus `json:"playback"`
	Lanes        []simulation.Lane       `json:"lanes"`
	Odds         []models.OddsEntry      `json:"odds"`
	LiveOdds     bool                    `json:"live_odds"`
	Balance      string                  `json:"balance"`
	HouseBalance string                  `json:"house_balance"`
	Bets         models.BetStats         `json:"bets"`
	RacesRun     int                     `json:"races_run,omitempty"`
	NextRace     *time.Time              `json:"next_race,omitempty"`
}

func statusSnapshot(sim *simulation.Simulation, runner *simulation.Runner, sched *scheduler.Scheduler) status {
	table := sim.Odds()
	s := status{
		Playback:     runner.Status(),
		Lanes:        sim.Lanes(),
		Odds:         table.Entries(),
		LiveOdds:     table.Live,
		Balance:      sim.Balance().StringFixed(2),
		HouseBalance: sim.HouseBalance().StringFixed(2),
		Bets:         sim.BetStats(),
	}
	if sched != nil {
		s.RacesRun = sched.RacesRun()
		if next := sched.GetNextRun(); !next.IsZero() {
			s.NextRace = &next
		}
	}
	return s
}
