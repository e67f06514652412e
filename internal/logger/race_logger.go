// Package logger provides race-specific logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// RaceLogger provides dedicated logging for race lifecycle events.
type RaceLogger struct {
	*logrus.Entry
}

// NewRaceLogger creates a new race logger.
func NewRaceLogger(baseLogger *logrus.Logger) *RaceLogger {
	return &RaceLogger{
		Entry: baseLogger.WithField("component", "race"),
	}
}

// LogRaceStarted logs a race start.
func (rl *RaceLogger) LogRaceStarted(raceID, shape, weather string, length, lanes int) {
	rl.WithFields(logrus.Fields{
		"race_id": raceID,
		"shape":   shape,
		"weather": weather,
		"length":  length,
		"lanes":   lanes,
	}).Info("Race started")
}

// LogStateChange logs a race state transition.
func (rl *RaceLogger) LogStateChange(raceID, from, to string) {
	rl.WithFields(logrus.Fields{
		"race_id":    raceID,
		"event_type": "state_change",
		"from_state": from,
		"to_state":   to,
	}).Debug("Race state changed")
}

// LogHorseFell logs a fall.
func (rl *RaceLogger) LogHorseFell(raceID, horseName string, lane, distance, tick int) {
	rl.WithFields(logrus.Fields{
		"race_id":  raceID,
		"horse":    horseName,
		"lane":     lane,
		"distance": distance,
		"tick":     tick,
	}).Debug("Horse fell")
}

// LogRaceFinished logs the race outcome.
func (rl *RaceLogger) LogRaceFinished(raceID, outcome, winner string, ticks int, elapsed time.Duration) {
	rl.WithFields(logrus.Fields{
		"race_id":    raceID,
		"outcome":    outcome,
		"winner":     winner,
		"ticks":      ticks,
		"elapsed_ms": elapsed.Milliseconds(),
	}).Info("Race finished")
}

// LogConfigurationChange logs a track or roster change.
func (rl *RaceLogger) LogConfigurationChange(parameter string, oldValue, newValue interface{}) {
	rl.WithFields(logrus.Fields{
		"event_type":     "configuration",
		"parameter_name": parameter,
		"old_value":      oldValue,
		"new_value":      newValue,
	}).Info("Race configuration changed")
}
