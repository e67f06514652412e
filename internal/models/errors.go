package models

import "errors"

// Configuration errors
var (
	ErrLaneCountOutOfRange   = errors.New("lane count out of range")
	ErrTrackLengthOutOfRange = errors.New("track length out of range")
	ErrUnknownShape          = errors.New("unknown track shape")
	ErrUnknownWeather        = errors.New("unknown weather condition")
	ErrRaceInProgress        = errors.New("race in progress")
)

// Betting errors
var (
	ErrInvalidBetAmount    = errors.New("bet amount must be positive")
	ErrBelowMinimumBet     = errors.New("bet amount below minimum")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUnknownHorse        = errors.New("unknown horse")
)

// Roster errors
var (
	ErrInvalidCustomization = errors.New("invalid horse customization")
)
