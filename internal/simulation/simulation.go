// Package simulation owns a single race context: track, roster, race engine,
// odds, betting ledger and statistics, behind one lock.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/derby/internal/betting"
	"github.com/yourusername/derby/internal/logger"
	"github.com/yourusername/derby/internal/metrics"
	"github.com/yourusername/derby/internal/models"
	"github.com/yourusername/derby/internal/odds"
	"github.com/yourusername/derby/internal/race"
	"github.com/yourusername/derby/internal/statistics"
)

// Config assembles the settings of every owned component.
type Config struct {
	LaneCount   int
	TrackLength int
	Shape       models.TrackShape
	Weather     models.Weather
	// Seed fixes the random source; zero seeds from the clock.
	Seed int64

	Race       race.Config
	Odds       odds.Config
	Betting    betting.Config
	Statistics statistics.Config

	// LiveOddsInterval is the minimum gap between mid-race odds refreshes.
	LiveOddsInterval time.Duration
	LiveOddsBurst    int
}

// DefaultConfig returns a four-lane, 50-unit oval in clear weather.
func DefaultConfig() Config {
	return Config{
		LaneCount:        4,
		TrackLength:      50,
		Shape:            models.ShapeOval,
		Weather:          models.WeatherClear,
		Race:             race.DefaultConfig(),
		Odds:             odds.DefaultConfig(),
		Betting:          betting.DefaultConfig(),
		Statistics:       statistics.DefaultConfig(),
		LiveOddsInterval: time.Second,
		LiveOddsBurst:    1,
	}
}

// Lane is a read-only view of one lane.
type Lane struct {
	Index      int       `json:"index"`
	HorseID    uuid.UUID `json:"horse_id"`
	Symbol     rune      `json:"symbol"`
	Name       string    `json:"name"`
	Distance   int       `json:"distance"`
	Fallen     bool      `json:"fallen"`
	Winner     bool      `json:"winner"`
	Confidence float64   `json:"confidence"`
}

// RaceEndObserver is notified once per finished race, after settlement.
type RaceEndObserver func(result models.RaceResult)

// Simulation is the single exclusion boundary for every command and query.
type Simulation struct {
	mu sync.Mutex

	config  Config
	log     *logrus.Logger
	raceLog *logger.RaceLogger
	rng     race.RandomSource

	track  *models.Track
	horses []*models.Horse
	engine *race.Engine
	calc   *odds.Calculator
	ledger *betting.Ledger
	stats  *statistics.Store
	odds   *models.OddsTable

	liveLimiter *rate.Limiter
	observer    RaceEndObserver
	lastResult  *models.RaceResult
}

// New builds a simulation with the default roster resized to cfg.LaneCount.
func New(cfg Config, log *logrus.Logger) (*Simulation, error) {
	return NewWithSource(cfg, race.NewRandomSource(cfg.Seed), log)
}

// NewWithSource builds a simulation whose races draw from rng instead of a
// seeded math/rand source.
func NewWithSource(cfg Config, rng race.RandomSource, log *logrus.Logger) (*Simulation, error) {
	if log == nil {
		log = logrus.New()
	}
	if err := models.ValidateLaneCount(cfg.LaneCount); err != nil {
		return nil, err
	}
	if err := models.ValidateTrackLength(cfg.TrackLength); err != nil {
		return nil, err
	}

	track := models.NewTrack(cfg.TrackLength, cfg.LaneCount)
	if cfg.Shape != "" {
		if !cfg.Shape.Valid() {
			return nil, fmt.Errorf("%w: %q", models.ErrUnknownShape, cfg.Shape)
		}
		track.SetShape(cfg.Shape)
	}
	if cfg.Weather != "" {
		if !cfg.Weather.Valid() {
			return nil, fmt.Errorf("%w: %q", models.ErrUnknownWeather, cfg.Weather)
		}
		track.SetWeather(cfg.Weather)
	}

	limit := rate.Inf
	if cfg.LiveOddsInterval > 0 {
		limit = rate.Every(cfg.LiveOddsInterval)
	}
	burst := cfg.LiveOddsBurst
	if burst <= 0 {
		burst = 1
	}

	s := &Simulation{
		config:      cfg,
		log:         log,
		raceLog:     logger.NewRaceLogger(log),
		rng:         rng,
		track:       track,
		horses:      resizeRoster(DefaultRoster(), cfg.LaneCount, rng),
		calc:        odds.NewCalculator(cfg.Odds),
		ledger:      betting.NewLedger(cfg.Betting, log),
		stats:       statistics.NewStore(cfg.Statistics),
		liveLimiter: rate.NewLimiter(limit, burst),
	}
	s.engine = race.NewEngine(cfg.Race, track, s.horses, rng, log)
	s.engine.SetFinishHandler(s.onFinish)
	s.recomputeOdds()

	metrics.UpdateBalances(s.ledger.Balance().InexactFloat64(), s.ledger.HouseBalance().InexactFloat64())
	return s, nil
}

// SetRaceEndObserver registers the single race-end observer, replacing any
// previous one. The observer runs outside the lock and may query the simulation.
func (s *Simulation) SetRaceEndObserver(obs RaceEndObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = obs
}

// Start begins a race from Idle or resumes a paused one.
func (s *Simulation) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasIdle := s.engine.State() == models.RaceIdle
	s.engine.Start()
	if wasIdle && s.engine.State() == models.RaceRunning {
		metrics.RecordRaceStarted()
	}
}

// Pause suspends a running race. Open bets stay valid.
func (s *Simulation) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Pause()
}

// Reset abandons any race in progress, refunding its bets, and returns to Idle.
func (s *Simulation) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine.InProgress() {
		s.ledger.Refund("race reset")
		s.publishBalances()
	}
	s.engine.Reset()
	s.recomputeOdds()
}

// Tick advances the race by one step. When the step finishes the race, the
// result is returned and the observer is notified after the lock is released.
func (s *Simulation) Tick() *models.RaceResult {
	s.mu.Lock()
	if s.engine.State() != models.RaceRunning {
		s.mu.Unlock()
		return nil
	}

	standing := s.countStanding()
	result := s.engine.Tick()
	metrics.RecordTick()
	for i := s.countStanding(); i < standing; i++ {
		metrics.RecordFall(s.track.Weather.String())
	}

	var obs RaceEndObserver
	var snapshot models.RaceResult
	if result != nil {
		s.recomputeOdds()
		obs = s.observer
		snapshot = *result
	}
	s.mu.Unlock()

	if obs != nil {
		obs(snapshot)
	}
	return result
}

// RunRace starts a race if idle and ticks it to completion without pausing
// between ticks. It stops early with the context's error.
func (s *Simulation) RunRace(ctx context.Context) (*models.RaceResult, error) {
	s.Start()
	for i := 0; ; i++ {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if result := s.Tick(); result != nil {
			return result, nil
		}
		if st := s.State(); st != models.RaceRunning {
			return nil, fmt.Errorf("race not running: %s", st)
		}
	}
}

// onFinish runs under the lock from inside the engine's tick.
func (s *Simulation) onFinish(result *models.RaceResult, horses []*models.Horse) {
	s.stats.RecordRace(result, horses, func(id uuid.UUID) float64 {
		if c, ok := s.engine.InitialConfidence(id); ok {
			return c
		}
		return 0
	})

	settlement := s.ledger.Settle(result.Outcome)
	result.Settlement = settlement
	if result.Outcome.IsWon() && settlement.BetsSettled > 0 {
		s.stats.ApplyBettingOutcome(result.Outcome.WinnerID, settlement.Payout)
	}

	metrics.RecordRaceFinished(string(result.Outcome.Kind), result.Shape.String(), result.Weather.String(), result.Ticks, result.Elapsed.Seconds())
	if settlement.BetsSettled > 0 {
		metrics.RecordBetsSettled(settlement.BetsSettled, settlement.Payout.InexactFloat64())
	}
	s.publishBalances()

	copied := *result
	s.lastResult = &copied
}

// PlaceBet stakes amount on the horse at its current odds.
func (s *Simulation) PlaceBet(horseID uuid.UUID, amount decimal.Decimal) (*models.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	horse := s.findHorse(horseID)
	price, _ := s.odds.Get(horseID)
	bet, err := s.ledger.PlaceBet(horse, amount, price)
	if err != nil {
		metrics.RecordBetRejected(rejectReason(err))
		return nil, err
	}

	metrics.RecordBetPlaced()
	s.publishBalances()
	if !s.engine.InProgress() {
		s.recomputeOdds()
	}
	return bet, nil
}

// SetTrackShape changes the shape and reprices the field.
func (s *Simulation) SetTrackShape(shape models.TrackShape) error {
	if !shape.Valid() {
		return fmt.Errorf("%w: %q", models.ErrUnknownShape, shape)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.track.Shape
	s.track.SetShape(shape)
	s.raceLog.LogConfigurationChange("shape", old, shape)
	s.recomputeOdds()
	return nil
}

// SetWeather changes the weather and reprices the field.
func (s *Simulation) SetWeather(weather models.Weather) error {
	if !weather.Valid() {
		return fmt.Errorf("%w: %q", models.ErrUnknownWeather, weather)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.track.Weather
	s.track.SetWeather(weather)
	s.raceLog.LogConfigurationChange("weather", old, weather)
	s.recomputeOdds()
	return nil
}

// SetLaneCount resizes the field, keeping existing lanes and generating new
// runners for added ones. Shape and weather are preserved.
func (s *Simulation) SetLaneCount(n int) error {
	if err := models.ValidateLaneCount(n); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine.InProgress() {
		return fmt.Errorf("set lane count: %w", models.ErrRaceInProgress)
	}
	horses := resizeRoster(s.horses, n, s.rng)
	if err := s.engine.SetHorses(horses); err != nil {
		return err
	}
	old := s.track.LaneCount
	s.horses = horses
	s.track.LaneCount = n
	s.raceLog.LogConfigurationChange("lane_count", old, n)
	metrics.ResetHorseOdds()
	s.recomputeOdds()
	return nil
}

// SetTrackLength changes the race length.
func (s *Simulation) SetTrackLength(n int) error {
	if err := models.ValidateTrackLength(n); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine.InProgress() {
		return fmt.Errorf("set track length: %w", models.ErrRaceInProgress)
	}
	old := s.track.Length
	s.track.Length = n
	s.raceLog.LogConfigurationChange("length", old, n)
	return nil
}

// CustomizeHorse applies attribute changes to one horse and reprices the field.
func (s *Simulation) CustomizeHorse(horseID uuid.UUID, c models.HorseCustomization) error {
	if err := validateCustomization(c); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine.InProgress() {
		return fmt.Errorf("customize horse: %w", models.ErrRaceInProgress)
	}
	horse := s.findHorse(horseID)
	if horse == nil {
		return fmt.Errorf("customize horse %s: %w", horseID, models.ErrUnknownHorse)
	}
	horse.Customize(c)
	s.raceLog.LogConfigurationChange("horse", horse.ID.String(), horse.Name)
	s.recomputeOdds()
	return nil
}

// RefreshLiveOdds reprices a running race from current positions. Refreshes
// are rate limited; it reports whether the table changed.
func (s *Simulation) RefreshLiveOdds() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine.State() != models.RaceRunning || !s.liveLimiter.Allow() {
		return false
	}
	s.odds = s.calc.Live(s.horses, s.track, s.stats)
	s.publishOdds("live")
	return true
}

// Lanes returns a snapshot of every lane.
func (s *Simulation) Lanes() []Lane {
	s.mu.Lock()
	defer s.mu.Unlock()

	lanes := make([]Lane, len(s.horses))
	for i, h := range s.horses {
		lanes[i] = Lane{
			Index:      i,
			HorseID:    h.ID,
			Symbol:     h.Symbol,
			Name:       h.Name,
			Distance:   h.DistanceTravelled,
			Fallen:     h.HasFallen,
			Winner:     h.IsWinner,
			Confidence: h.Confidence(),
		}
	}
	return lanes
}

// Horses returns copies of the runners in lane order.
func (s *Simulation) Horses() []*models.Horse {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Horse, len(s.horses))
	for i, h := range s.horses {
		out[i] = h.Clone()
	}
	return out
}

// State returns the race state.
func (s *Simulation) State() models.RaceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.State()
}

// Outcome returns the outcome of the last finished race.
func (s *Simulation) Outcome() models.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Outcome()
}

// LastResult returns the most recent race result, or nil.
func (s *Simulation) LastResult() *models.RaceResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastResult == nil {
		return nil
	}
	copied := *s.lastResult
	return &copied
}

// Elapsed returns the simulated time of the current race.
func (s *Simulation) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Elapsed()
}

// Odds returns a copy of the current odds table.
func (s *Simulation) Odds() *models.OddsTable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.odds.Clone()
}

// Balance returns the player's balance.
func (s *Simulation) Balance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Balance()
}

// HouseBalance returns the house's balance.
func (s *Simulation) HouseBalance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.HouseBalance()
}

// OpenBets returns the bets on the current race.
func (s *Simulation) OpenBets() []models.Bet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.OpenBets()
}

// BetStats returns the player's betting history summary.
func (s *Simulation) BetStats() models.BetStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Stats()
}

// HorseStats returns a horse's record summary.
func (s *Simulation) HorseStats(horseID uuid.UUID) (statistics.HorseStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findHorse(horseID) == nil {
		return statistics.HorseStats{}, fmt.Errorf("horse stats %s: %w", horseID, models.ErrUnknownHorse)
	}
	return s.stats.HorseStats(horseID), nil
}

// ShapeStats returns the per-shape time aggregates.
func (s *Simulation) ShapeStats(shape models.TrackShape) statistics.ShapeStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats.ShapeStats(shape)
}

// Track returns a copy of the track.
func (s *Simulation) Track() models.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.track.Clone()
}

// PerformanceReport renders the horse's performance report.
func (s *Simulation) PerformanceReport(horseID uuid.UUID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	horse := s.findHorse(horseID)
	if horse == nil {
		return "", fmt.Errorf("performance report %s: %w", horseID, models.ErrUnknownHorse)
	}
	return s.stats.PerformanceReport(horseID, horse.Name), nil
}

// BetFeedback describes a prospective bet on the horse at its current odds.
func (s *Simulation) BetFeedback(horseID uuid.UUID, amount decimal.Decimal) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	horse := s.findHorse(horseID)
	if horse == nil {
		return "", fmt.Errorf("bet feedback %s: %w", horseID, models.ErrUnknownHorse)
	}
	price, _ := s.odds.Get(horseID)
	return s.ledger.Feedback(horse, amount, price, s.track, s.stats.History(horseID)), nil
}

// BettingSummary lists balance, open bets and odds.
func (s *Simulation) BettingSummary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Summary(s.horses, s.odds)
}

// BettingSuggestion reviews the player's betting history.
func (s *Simulation) BettingSuggestion() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Suggestion()
}

func (s *Simulation) findHorse(id uuid.UUID) *models.Horse {
	for _, h := range s.horses {
		if h.ID == id {
			return h
		}
	}
	return nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, models.ErrUnknownHorse):
		return "unknown_horse"
	case errors.Is(err, models.ErrInvalidBetAmount):
		return "invalid_amount"
	case errors.Is(err, models.ErrBelowMinimumBet):
		return "below_minimum"
	case errors.Is(err, models.ErrInsufficientBalance):
		return "insufficient_balance"
	default:
		return "other"
	}
}

func (s *Simulation) countStanding() int {
	n := 0
	for _, h := range s.horses {
		if !h.HasFallen {
			n++
		}
	}
	return n
}

// recomputeOdds prices the field for the next race, or live while one runs.
func (s *Simulation) recomputeOdds() {
	if s.engine != nil && s.engine.InProgress() {
		s.odds = s.calc.Live(s.horses, s.track, s.stats)
		s.publishOdds("live")
		return
	}
	s.odds = s.calc.Compute(s.horses, s.track, s.stats, s.ledger.Wagers())
	s.publishOdds("static")
}

func (s *Simulation) publishOdds(kind string) {
	metrics.RecordOddsComputation(kind)
	for _, e := range s.odds.Entries() {
		metrics.UpdateHorseOdds(e.Name, e.Odds)
	}
}

func (s *Simulation) publishBalances() {
	metrics.UpdateBalances(s.ledger.Balance().InexactFloat64(), s.ledger.HouseBalance().InexactFloat64())
	metrics.UpdateOpenWagered(s.ledger.TotalWagered().InexactFloat64())
}
