// Package race implements the race state machine and its per-tick movement model.
package race

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/derby/internal/logger"
	"github.com/yourusername/derby/internal/models"
)

// Config holds the tunable constants of the movement model.
type Config struct {
	BaseMoveFactor float64
	BaseFallFactor float64
	FallBias       float64
	TickInterval   time.Duration
}

// DefaultConfig returns the standard movement constants.
func DefaultConfig() Config {
	return Config{
		BaseMoveFactor: 0.95,
		BaseFallFactor: 0.01,
		FallBias:       1.3,
		TickInterval:   100 * time.Millisecond,
	}
}

// FinishHandler is invoked once, synchronously, when a race reaches Finished.
// It may attach a settlement to the result before observers see it.
type FinishHandler func(result *models.RaceResult, horses []*models.Horse)

// Engine runs a single race over a roster of horses in lane order.
// Engine is not safe for concurrent use; callers serialize access.
type Engine struct {
	config Config
	track  *models.Track
	horses []*models.Horse
	rng    RandomSource
	logger *logger.RaceLogger

	state     models.RaceState
	outcome   models.Outcome
	winner    *models.Horse
	raceID    uuid.UUID
	ticks     int
	startedAt time.Time

	initialConfidence map[uuid.UUID]float64
	onFinish          FinishHandler
	now               func() time.Time
}

// NewEngine creates an idle engine for the given track and roster.
func NewEngine(cfg Config, track *models.Track, horses []*models.Horse, rng RandomSource, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.New()
	}
	if rng == nil {
		rng = NewRandomSource(0)
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultConfig().TickInterval
	}
	return &Engine{
		config:            cfg,
		track:             track,
		horses:            horses,
		rng:               rng,
		logger:            logger.NewRaceLogger(log),
		state:             models.RaceIdle,
		initialConfidence: make(map[uuid.UUID]float64),
		now:               time.Now,
	}
}

// SetFinishHandler registers the single finish callback, replacing any previous one.
func (e *Engine) SetFinishHandler(h FinishHandler) {
	e.onFinish = h
}

// SetHorses replaces the roster. Rejected while a race is in progress.
func (e *Engine) SetHorses(horses []*models.Horse) error {
	if e.InProgress() {
		return fmt.Errorf("replace roster: %w", models.ErrRaceInProgress)
	}
	e.horses = horses
	return nil
}

// Horses returns the roster in lane order. The slice is shared.
func (e *Engine) Horses() []*models.Horse {
	return e.horses
}

// Track returns the engine's track.
func (e *Engine) Track() *models.Track {
	return e.track
}

// State returns the current lifecycle state.
func (e *Engine) State() models.RaceState {
	return e.state
}

// InProgress reports whether the race is running or paused.
func (e *Engine) InProgress() bool {
	return e.state == models.RaceRunning || e.state == models.RacePaused
}

// Outcome returns the outcome of the last finished race, if any.
func (e *Engine) Outcome() models.Outcome {
	return e.outcome
}

// Winner returns the winning horse, or nil.
func (e *Engine) Winner() *models.Horse {
	return e.winner
}

// RaceID identifies the current or most recent race.
func (e *Engine) RaceID() uuid.UUID {
	return e.raceID
}

// Ticks returns the ticks processed in the current race.
func (e *Engine) Ticks() int {
	return e.ticks
}

// Elapsed returns simulated race time. Paused periods do not count.
func (e *Engine) Elapsed() time.Duration {
	return time.Duration(e.ticks) * e.config.TickInterval
}

// TickInterval returns the simulated duration of one tick.
func (e *Engine) TickInterval() time.Duration {
	return e.config.TickInterval
}

// InitialConfidence returns a horse's confidence as it was at race start.
func (e *Engine) InitialConfidence(horseID uuid.UUID) (float64, bool) {
	c, ok := e.initialConfidence[horseID]
	return c, ok
}

// Start begins a fresh race from Idle or resumes a paused one.
// It is a no-op while Running or Finished.
func (e *Engine) Start() {
	switch e.state {
	case models.RaceIdle:
		e.resetHorses()
		e.raceID = uuid.New()
		e.ticks = 0
		e.startedAt = e.now().UTC()
		e.outcome = models.Outcome{}
		e.winner = nil
		for _, h := range e.horses {
			e.initialConfidence[h.ID] = h.Confidence()
		}
		e.transition(models.RaceRunning)
		e.logger.LogRaceStarted(e.raceID.String(), e.track.Shape.String(), e.track.Weather.String(), e.track.Length, len(e.horses))
	case models.RacePaused:
		e.transition(models.RaceRunning)
	}
}

// Pause suspends a running race. Other states are unaffected.
func (e *Engine) Pause() {
	if e.state == models.RaceRunning {
		e.transition(models.RacePaused)
	}
}

// Reset returns to Idle from any state and puts every horse back at the start.
func (e *Engine) Reset() {
	e.resetHorses()
	e.outcome = models.Outcome{}
	e.winner = nil
	e.ticks = 0
	if e.state != models.RaceIdle {
		e.transition(models.RaceIdle)
	}
}

// Tick advances a running race by one step. It returns the result when this
// tick finished the race, nil otherwise.
func (e *Engine) Tick() *models.RaceResult {
	if e.state != models.RaceRunning {
		return nil
	}
	e.ticks++

	moveMod := e.track.MoveModifier()
	fallMod := e.track.FallModifier()

	for lane, h := range e.horses {
		if h.HasFallen {
			continue
		}
		conf := h.EffectiveConfidence()

		moveChance := conf * e.config.BaseMoveFactor * moveMod
		if e.rng.Float64() < moveChance {
			h.MoveForward(e.track.Length)
		}

		fallChance := e.config.BaseFallFactor * (e.config.FallBias - conf) * fallMod
		if e.rng.Float64() < fallChance {
			h.Fall()
			e.logger.LogHorseFell(e.raceID.String(), h.Name, lane, h.DistanceTravelled, e.ticks)
		}
	}

	if w := e.leader(); w != nil {
		w.IsWinner = true
		e.winner = w
		return e.finish(models.Won(w.ID))
	}
	if e.allFallen() {
		return e.finish(models.Drawn())
	}
	return nil
}

// leader returns the first horse in lane order that reached the finish line.
func (e *Engine) leader() *models.Horse {
	if e.track.Length <= 0 {
		return nil
	}
	for _, h := range e.horses {
		if h.DistanceTravelled >= e.track.Length {
			return h
		}
	}
	return nil
}

func (e *Engine) allFallen() bool {
	for _, h := range e.horses {
		if !h.HasFallen {
			return false
		}
	}
	return true
}

func (e *Engine) finish(outcome models.Outcome) *models.RaceResult {
	e.outcome = outcome
	e.transition(models.RaceFinished)

	result := &models.RaceResult{
		RaceID:     e.raceID,
		Outcome:    outcome,
		Shape:      e.track.Shape,
		Weather:    e.track.Weather,
		Length:     e.track.Length,
		Ticks:      e.ticks,
		Elapsed:    e.Elapsed(),
		StartedAt:  e.startedAt,
		FinishedAt: e.now().UTC(),
	}
	winnerName := ""
	if e.winner != nil {
		result.WinnerName = e.winner.Name
		winnerName = e.winner.Name
	}

	e.logger.LogRaceFinished(e.raceID.String(), string(outcome.Kind), winnerName, e.ticks, result.Elapsed)

	if e.onFinish != nil {
		e.onFinish(result, e.horses)
	}
	return result
}

func (e *Engine) resetHorses() {
	for _, h := range e.horses {
		h.ResetForRace()
	}
}

func (e *Engine) transition(to models.RaceState) {
	e.logger.LogStateChange(e.raceID.String(), e.state.String(), to.String())
	e.state = to
}
