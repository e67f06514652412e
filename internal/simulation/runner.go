package simulation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/derby/internal/models"
)

// RunnerConfig controls real-time race playback.
type RunnerConfig struct {
	// TickInterval is the wall-clock gap between ticks.
	TickInterval time.Duration
	// LiveOdds reprices the field while the race runs.
	LiveOdds bool
}

// RunnerStatus reports the playback loop state.
type RunnerStatus struct {
	Running    bool               `json:"running"`
	RaceState  string             `json:"race_state"`
	Ticks      int                `json:"ticks"`
	LastResult *models.RaceResult `json:"last_result,omitempty"`
	LastUpdate time.Time          `json:"last_update"`
}

// Runner drives a Simulation on a wall-clock ticker, one race at a time.
type Runner struct {
	sim    *Simulation
	config RunnerConfig
	logger *logrus.Logger

	done     chan struct{}
	finished chan *models.RaceResult
	running  bool
	ticks    int
	updated  time.Time
	mu       sync.RWMutex
}

// NewRunner creates a runner for sim.
func NewRunner(sim *Simulation, cfg RunnerConfig, logger *logrus.Logger) *Runner {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 100 * time.Millisecond
	}
	return &Runner{
		sim:    sim,
		config: cfg,
		logger: logger,
	}
}

// Start begins the race and the playback loop. The returned channel receives
// the result when the race finishes and is closed when the loop exits.
func (r *Runner) Start(ctx context.Context) (<-chan *models.RaceResult, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, fmt.Errorf("runner is already running")
	}
	r.running = true
	r.ticks = 0
	r.done = make(chan struct{})
	r.finished = make(chan *models.RaceResult, 1)
	done, finished := r.done, r.finished
	r.mu.Unlock()

	r.sim.Start()
	if st := r.sim.State(); st != models.RaceRunning {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
		return nil, fmt.Errorf("cannot start race from state %s", st)
	}

	r.logger.WithFields(logrus.Fields{
		"tick_interval": r.config.TickInterval,
		"live_odds":     r.config.LiveOdds,
	}).Info("Starting race playback")

	go r.loop(ctx, done, finished)
	return finished, nil
}

// Stop halts playback, pausing the race where it stands.
func (r *Runner) Stop() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	close(r.done)
	r.mu.Unlock()

	r.sim.Pause()
	r.logger.Info("Race playback stopped")
	return nil
}

// Status returns the current playback status.
func (r *Runner) Status() RunnerStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return RunnerStatus{
		Running:    r.running,
		RaceState:  r.sim.State().String(),
		Ticks:      r.ticks,
		LastResult: r.sim.LastResult(),
		LastUpdate: r.updated,
	}
}

func (r *Runner) loop(ctx context.Context, done <-chan struct{}, finished chan<- *models.RaceResult) {
	defer close(finished)

	ticker := time.NewTicker(r.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Race playback stopped by context")
			_ = r.Stop()
			return

		case <-done:
			return

		case <-ticker.C:
			result := r.sim.Tick()

			r.mu.Lock()
			r.ticks++
			r.updated = time.Now()
			r.mu.Unlock()

			if result != nil {
				finished <- result
				r.mu.Lock()
				r.running = false
				r.mu.Unlock()
				return
			}
			switch r.sim.State() {
			case models.RaceIdle:
				r.logger.Warn("Race reset during playback, stopping")
				r.mu.Lock()
				r.running = false
				r.mu.Unlock()
				return
			case models.RacePaused:
				continue
			}
			if r.config.LiveOdds {
				r.sim.RefreshLiveOdds()
			}
		}
	}
}
