package backtest

import (
	"fmt"

	"github.com/yourusername/derby/internal/config"
)

// SeriesConfig configures a multi-race strategy run
type SeriesConfig struct {
	Races                int
	Strategy             string
	Stake                float64
	Lane                 int
	RiskFreeRate         float64
	MonteCarloIterations int
	Seed                 int64
	Risk                 RiskLimits
}

// FromConfig converts app config to series config
func FromConfig(cfg *config.Config) (SeriesConfig, error) {
	if cfg == nil {
		return SeriesConfig{}, fmt.Errorf("config is required")
	}

	sc := SeriesConfig{
		Races:                cfg.Series.Races,
		Strategy:             cfg.Series.Strategy,
		Stake:                cfg.Series.Stake,
		Lane:                 cfg.Series.Lane,
		RiskFreeRate:         cfg.Series.RiskFreeRate,
		MonteCarloIterations: 1000,
		Seed:                 cfg.Race.Seed,
		Risk: RiskLimits{
			MaxStakePerBet:  cfg.Series.MaxStakePerBet,
			MaxRaceExposure: cfg.Series.MaxRaceExposure,
			StopLoss:        cfg.Series.StopLoss,
		},
	}

	return sc, sc.Validate()
}

// Validate validates series config parameters
func (c SeriesConfig) Validate() error {
	if c.Races <= 0 {
		return fmt.Errorf("races must be positive")
	}
	if c.Stake <= 0 {
		return fmt.Errorf("stake must be positive")
	}
	if c.Lane < 0 {
		return fmt.Errorf("lane cannot be negative")
	}
	if c.RiskFreeRate < 0 || c.RiskFreeRate > 1 {
		return fmt.Errorf("risk free rate must be between 0 and 1")
	}
	if c.MonteCarloIterations < 0 {
		return fmt.Errorf("monte carlo iterations cannot be negative")
	}
	return c.Risk.Validate()
}
