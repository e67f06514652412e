// Package config provides configuration management for the derby simulator.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/derby/internal/betting"
	"github.com/yourusername/derby/internal/models"
	"github.com/yourusername/derby/internal/odds"
	"github.com/yourusername/derby/internal/race"
	"github.com/yourusername/derby/internal/simulation"
	"github.com/yourusername/derby/internal/statistics"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Race      RaceConfig      `mapstructure:"race" validate:"required"`
	Betting   BettingConfig   `mapstructure:"betting" validate:"required"`
	Odds      OddsConfig      `mapstructure:"odds" validate:"required"`
	Series    SeriesConfig    `mapstructure:"series" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Metrics   MetricsConfig   `mapstructure:"metrics" validate:"required"`
	Health    HealthConfig    `mapstructure:"health" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// RaceConfig represents the track and race engine settings
type RaceConfig struct {
	LaneCount      int     `mapstructure:"lane_count" validate:"required,min=2,max=25"`
	TrackLength    int     `mapstructure:"track_length" validate:"required,min=20,max=200"`
	Shape          string  `mapstructure:"shape" validate:"required,shape"`
	Weather        string  `mapstructure:"weather" validate:"required,weather"`
	Seed           int64   `mapstructure:"seed"`
	TickIntervalMS int     `mapstructure:"tick_interval_ms" validate:"required,gt=0"`
	PlaybackMS     int     `mapstructure:"playback_ms" validate:"gte=0"`
	BaseMoveFactor float64 `mapstructure:"base_move_factor" validate:"required,gt=0,lte=1"`
	BaseFallFactor float64 `mapstructure:"base_fall_factor" validate:"gte=0,lte=1"`
	FallBias       float64 `mapstructure:"fall_bias" validate:"required,gt=0"`
	LiveOdds       bool    `mapstructure:"live_odds"`
}

// BettingConfig represents the ledger settings
type BettingConfig struct {
	InitialBalance float64 `mapstructure:"initial_balance" validate:"required,gt=0"`
	HouseBalance   float64 `mapstructure:"house_balance" validate:"required,gt=0"`
	MinimumBet     float64 `mapstructure:"minimum_bet" validate:"required,gt=0"`
	HistorySize    int     `mapstructure:"history_size" validate:"required,gt=0"`
}

// OddsConfig represents odds engine constants
type OddsConfig struct {
	BaseOdds                float64 `mapstructure:"base_odds" validate:"required,gt=0"`
	HouseEdge               float64 `mapstructure:"house_edge" validate:"gte=0,lt=1"`
	MinOdds                 float64 `mapstructure:"min_odds" validate:"required,gt=1"`
	MaxOdds                 float64 `mapstructure:"max_odds" validate:"required,gtfield=MinOdds"`
	MinSpread               float64 `mapstructure:"min_spread" validate:"gte=0"`
	LiveOddsIntervalSeconds int     `mapstructure:"live_odds_interval_seconds" validate:"gte=0"`
}

// SeriesConfig represents defaults for multi-race strategy runs
type SeriesConfig struct {
	Races        int     `mapstructure:"races" validate:"required,gt=0"`
	Strategy     string  `mapstructure:"strategy" validate:"required,oneof=favourite longshot fixed_lane value"`
	Stake        float64 `mapstructure:"stake" validate:"required,gt=0"`
	Lane         int     `mapstructure:"lane" validate:"gte=0"`
	RiskFreeRate float64 `mapstructure:"risk_free_rate" validate:"gte=0,lte=1"`

	MaxStakePerBet  float64 `mapstructure:"max_stake_per_bet" validate:"gte=0"`
	MaxRaceExposure float64 `mapstructure:"max_race_exposure" validate:"gte=0"`
	StopLoss        float64 `mapstructure:"stop_loss" validate:"gte=0"`
}

// SchedulerConfig represents automatic race scheduling
type SchedulerConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	RaceSchedule string `mapstructure:"race_schedule" validate:"required_if=Enabled true"`
	TimeoutSecs  int    `mapstructure:"timeout_seconds" validate:"gte=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// HealthConfig represents the health server configuration
type HealthConfig struct {
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// TickInterval returns the simulated duration of one race tick
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Race.TickIntervalMS) * time.Millisecond
}

// PlaybackInterval returns the wall-clock gap between ticks for live playback
func (c *Config) PlaybackInterval() time.Duration {
	if c.Race.PlaybackMS <= 0 {
		return c.TickInterval()
	}
	return time.Duration(c.Race.PlaybackMS) * time.Millisecond
}

// SimulationConfig builds the simulation settings from the file configuration
func (c *Config) SimulationConfig() (simulation.Config, error) {
	shape, err := models.ParseShape(c.Race.Shape)
	if err != nil {
		return simulation.Config{}, fmt.Errorf("race.shape: %w", err)
	}
	weather, err := models.ParseWeather(c.Race.Weather)
	if err != nil {
		return simulation.Config{}, fmt.Errorf("race.weather: %w", err)
	}

	rc := race.DefaultConfig()
	rc.BaseMoveFactor = c.Race.BaseMoveFactor
	rc.BaseFallFactor = c.Race.BaseFallFactor
	rc.FallBias = c.Race.FallBias
	rc.TickInterval = c.TickInterval()

	oc := odds.DefaultConfig()
	oc.BaseOdds = c.Odds.BaseOdds
	oc.HouseEdge = c.Odds.HouseEdge
	oc.MinOdds = c.Odds.MinOdds
	oc.MaxOdds = c.Odds.MaxOdds
	oc.MinSpread = c.Odds.MinSpread

	bc := betting.Config{
		InitialBalance: decimal.NewFromFloat(c.Betting.InitialBalance),
		HouseBalance:   decimal.NewFromFloat(c.Betting.HouseBalance),
		MinimumBet:     decimal.NewFromFloat(c.Betting.MinimumBet),
		HistorySize:    c.Betting.HistorySize,
	}

	sc := simulation.DefaultConfig()
	sc.LaneCount = c.Race.LaneCount
	sc.TrackLength = c.Race.TrackLength
	sc.Shape = shape
	sc.Weather = weather
	sc.Seed = c.Race.Seed
	sc.Race = rc
	sc.Odds = oc
	sc.Betting = bc
	sc.Statistics = statistics.DefaultConfig()
	sc.LiveOddsInterval = time.Duration(c.Odds.LiveOddsIntervalSeconds) * time.Second
	return sc, nil
}
