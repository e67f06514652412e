package models

import (
	"time"

	"github.com/google/uuid"
)

// RaceRecord is one horse's result in one completed race.
//
// Records are append-only; FinalConfidence is the only field a later
// betting-outcome adjustment may change.
type RaceRecord struct {
	RaceID            uuid.UUID  `json:"race_id"`
	HorseID           uuid.UUID  `json:"horse_id"`
	Shape             TrackShape `json:"shape"`
	Weather           Weather    `json:"weather"`
	Distance          int        `json:"distance"`
	FinishTime        float64    `json:"finish_time"`
	AvgSpeed          float64    `json:"avg_speed"`
	InitialConfidence float64    `json:"initial_confidence"`
	FinalConfidence   float64    `json:"final_confidence"`
	WasWinner         bool       `json:"was_winner"`
	HasFallen         bool       `json:"has_fallen"`
	RecordedAt        time.Time  `json:"recorded_at"`
}

// FormScore maps the result onto the recent-form scale: win 1.2, fall 0.8, else 1.0.
func (r *RaceRecord) FormScore() float64 {
	switch {
	case r.WasWinner:
		return 1.2
	case r.HasFallen:
		return 0.8
	default:
		return 1.0
	}
}
