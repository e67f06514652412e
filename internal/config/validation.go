package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"

	"github.com/yourusername/derby/internal/models"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

var customValidations = map[string]validator.Func{
	"environment": validateEnvironment,
	"loglevel":    validateLogLevel,
	"shape":       validateShape,
	"weather":     validateWeather,
}

// NewValidator creates a new validator with custom validation functions.
// It panics if a custom tag cannot be registered.
func NewValidator() *CustomValidator {
	v := validator.New()

	for tag, fn := range customValidations {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("config: register %q validation: %v", tag, err))
		}
	}

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	return NewValidator().Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	if err := cv.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateShape(fl validator.FieldLevel) bool {
	_, err := models.ParseShape(fl.Field().String())
	return err == nil
}

func validateWeather(fl validator.FieldLevel) bool {
	_, err := models.ParseWeather(fl.Field().String())
	return err == nil
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	if cfg.Betting.MinimumBet > cfg.Betting.InitialBalance {
		return fmt.Errorf("minimum_bet cannot exceed initial_balance")
	}

	if cfg.Series.Strategy == "fixed_lane" && cfg.Series.Lane >= cfg.Race.LaneCount {
		return fmt.Errorf("series lane %d does not exist on a %d-lane track", cfg.Series.Lane, cfg.Race.LaneCount)
	}

	if cfg.Scheduler.Enabled {
		if _, err := cron.ParseStandard(cfg.Scheduler.RaceSchedule); err != nil {
			return fmt.Errorf("invalid scheduler race_schedule %q: %w", cfg.Scheduler.RaceSchedule, err)
		}
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Port == cfg.Health.Port {
		return fmt.Errorf("metrics and health servers cannot share port %d", cfg.Health.Port)
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg string
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required", "required_if":
			errMsg += fmt.Sprintf("- Field '%s' is required\n", field)
		case "min", "max":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte", "gtfield":
			errMsg += fmt.Sprintf("- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			errMsg += fmt.Sprintf("- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "shape":
			errMsg += fmt.Sprintf("- Field '%s' has unknown track shape '%v'\n", field, value)
		case "weather":
			errMsg += fmt.Sprintf("- Field '%s' has unknown weather '%v'\n", field, value)
		case "oneof":
			errMsg += fmt.Sprintf("- Field '%s' has invalid value '%v'\n", field, value)
		default:
			errMsg += fmt.Sprintf("- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg)
}

// ValidateEnvironment validates environment-specific requirements
func ValidateEnvironment(cfg *Config) error {
	if cfg.IsProduction() {
		if cfg.Race.Seed != 0 {
			return fmt.Errorf("production environment should not use a fixed race seed")
		}
		if cfg.App.LogLevel == "debug" {
			return fmt.Errorf("production environment should not log at debug level")
		}
	}
	return nil
}
