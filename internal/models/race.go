package models

import (
	"time"

	"github.com/google/uuid"
)

// RaceState is a step of the race lifecycle.
type RaceState int

const (
	// RaceIdle means no race is running; horses sit at the start line.
	RaceIdle RaceState = iota
	// RaceRunning means ticks advance the race.
	RaceRunning
	// RacePaused means ticks are ignored until the race resumes.
	RacePaused
	// RaceFinished means the race has an outcome.
	RaceFinished
)

// String returns string representation of race state
func (s RaceState) String() string {
	switch s {
	case RaceIdle:
		return "IDLE"
	case RaceRunning:
		return "RUNNING"
	case RacePaused:
		return "PAUSED"
	case RaceFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// OutcomeKind distinguishes the two ways a race can end.
type OutcomeKind string

const (
	OutcomeNone  OutcomeKind = ""
	OutcomeWon   OutcomeKind = "won"
	OutcomeDrawn OutcomeKind = "drawn"
)

// Outcome is how a finished race resolved. WinnerID is set only for OutcomeWon.
type Outcome struct {
	Kind     OutcomeKind `json:"kind"`
	WinnerID uuid.UUID   `json:"winner_id,omitempty"`
}

// Won builds a won outcome.
func Won(horseID uuid.UUID) Outcome {
	return Outcome{Kind: OutcomeWon, WinnerID: horseID}
}

// Drawn builds a no-winner outcome.
func Drawn() Outcome {
	return Outcome{Kind: OutcomeDrawn}
}

// IsWon reports whether a horse won.
func (o Outcome) IsWon() bool {
	return o.Kind == OutcomeWon
}

// IsDrawn reports whether every horse fell.
func (o Outcome) IsDrawn() bool {
	return o.Kind == OutcomeDrawn
}

// RaceResult describes a completed race as seen by the race-end observer.
type RaceResult struct {
	RaceID     uuid.UUID     `json:"race_id"`
	Outcome    Outcome       `json:"outcome"`
	WinnerName string        `json:"winner_name,omitempty"`
	Shape      TrackShape    `json:"shape"`
	Weather    Weather       `json:"weather"`
	Length     int           `json:"length"`
	Ticks      int           `json:"ticks"`
	Elapsed    time.Duration `json:"elapsed"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Settlement *Settlement   `json:"settlement,omitempty"`
}
