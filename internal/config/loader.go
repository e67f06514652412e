package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "DERBY"

// DefaultPath is used when no configuration path is given.
const DefaultPath = "config/config.yaml"

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for every field,
// so a missing file yields a runnable configuration
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

// ReloadFromEnv reloads the configuration from DERBY_CONFIG_PATH when set
func ReloadFromEnv(cfg *Config) error {
	if envPath := os.Getenv(envPrefix + "_CONFIG_PATH"); envPath != "" {
		newCfg, err := Load(envPath)
		if err != nil {
			return err
		}
		*cfg = *newCfg
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "derby")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("race.lane_count", 4)
	v.SetDefault("race.track_length", 50)
	v.SetDefault("race.shape", "Oval")
	v.SetDefault("race.weather", "Clear")
	v.SetDefault("race.seed", 0)
	v.SetDefault("race.tick_interval_ms", 100)
	v.SetDefault("race.playback_ms", 0)
	v.SetDefault("race.base_move_factor", 0.95)
	v.SetDefault("race.base_fall_factor", 0.01)
	v.SetDefault("race.fall_bias", 1.3)
	v.SetDefault("race.live_odds", true)

	v.SetDefault("betting.initial_balance", 1000)
	v.SetDefault("betting.house_balance", 10000)
	v.SetDefault("betting.minimum_bet", 2)
	v.SetDefault("betting.history_size", 10)

	v.SetDefault("odds.base_odds", 10)
	v.SetDefault("odds.house_edge", 0.15)
	v.SetDefault("odds.min_odds", 1.1)
	v.SetDefault("odds.max_odds", 100)
	v.SetDefault("odds.min_spread", 2)
	v.SetDefault("odds.live_odds_interval_seconds", 1)

	v.SetDefault("series.races", 100)
	v.SetDefault("series.strategy", "favourite")
	v.SetDefault("series.stake", 10)
	v.SetDefault("series.lane", 0)
	v.SetDefault("series.risk_free_rate", 0)
	v.SetDefault("series.max_stake_per_bet", 0)
	v.SetDefault("series.max_race_exposure", 0)
	v.SetDefault("series.stop_loss", 0)

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.race_schedule", "@every 30s")
	v.SetDefault("scheduler.timeout_seconds", 60)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("health.port", 8080)
}
