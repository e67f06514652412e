// Package backtest plays a series of simulated races with a betting strategy
// and measures how the strategy's bankroll fared.
package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/derby/internal/logger"
	"github.com/yourusername/derby/internal/metrics"
	"github.com/yourusername/derby/internal/models"
	"github.com/yourusername/derby/internal/simulation"
	"github.com/yourusername/derby/internal/strategy"
)

// drawdownWarning is the drawdown that triggers a warning log.
const drawdownWarning = 0.2

// Engine orchestrates series runs
type Engine struct {
	config      SeriesConfig
	sim         *simulation.Simulation
	strategy    strategy.Strategy
	risk        *RiskManager
	logger      *logrus.Logger
	strategyLog *logger.StrategyLogger
}

// NewEngine creates a new series engine
func NewEngine(cfg SeriesConfig, sim *simulation.Simulation, strat strategy.Strategy, log *logrus.Logger) (*Engine, error) {
	if sim == nil {
		return nil, fmt.Errorf("simulation is required")
	}
	if strat == nil {
		return nil, fmt.Errorf("strategy is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.New()
	}

	return &Engine{
		config:      cfg,
		sim:         sim,
		strategy:    strat,
		risk:        NewRiskManager(cfg.Risk, log),
		logger:      log,
		strategyLog: logger.NewStrategyLogger(log),
	}, nil
}

// Config returns the series configuration
func (e *Engine) Config() SeriesConfig {
	return e.config
}

// Run plays the configured number of races. The series ends early when the
// bankroll is exhausted or the stop loss is hit. A cancelled context returns
// the partial state.
func (e *Engine) Run(ctx context.Context) (*SeriesState, Metrics, error) {
	start := time.Now()
	seriesID := uuid.New().String()
	name := e.strategy.Name()

	state := NewSeriesState(e.sim.Balance().InexactFloat64())
	e.strategyLog.LogSeriesStarted(seriesID, name, e.config.Races, state.InitialBankroll)

	for n := 1; n <= e.config.Races; n++ {
		if !e.risk.IsWithinLimits(state) {
			e.logger.WithFields(logrus.Fields{
				"strategy": name,
				"race":     n,
				"bankroll": state.Bankroll,
			}).Warn("Risk limits reached, ending series")
			break
		}
		if err := e.runRace(ctx, n, state); err != nil {
			status := "failed"
			if ctx.Err() != nil {
				status = "cancelled"
			}
			metrics.RecordSeriesRun(name, status, time.Since(start).Seconds())
			return state, e.metrics(state), err
		}
	}

	m := e.metrics(state)
	metrics.RecordSeriesRun(name, "completed", time.Since(start).Seconds())
	metrics.UpdateSeriesROI(name, m.ROI)
	e.strategyLog.LogSeriesCompleted(seriesID, name, m.Races, m.TotalBets, m.ROI, m.FinalBankroll)

	return state, m, nil
}

// BuildReport resamples a finished series and scores it
func (e *Engine) BuildReport(ctx context.Context, state *SeriesState, m Metrics, description string) (SeriesReport, error) {
	var mc MonteCarloResult
	if e.config.MonteCarloIterations > 0 && len(state.Bets) > 0 {
		var err error
		mc, err = RunMonteCarlo(ctx, state.Bets, MonteCarloConfig{
			Iterations:      e.config.MonteCarloIterations,
			Seed:            e.config.Seed,
			InitialBankroll: state.InitialBankroll,
		})
		if err != nil {
			return SeriesReport{}, fmt.Errorf("monte carlo failed: %w", err)
		}
	}
	return AggregateResults(strategy.Describe(e.strategy, description), m, mc), nil
}

func (e *Engine) metrics(state *SeriesState) Metrics {
	m := CalculateMetrics(state, e.config)
	m.StrategyName = e.strategy.Name()
	m.ParameterHash = HashParameters(e.strategy.GetParameters())
	return m
}

func (e *Engine) runRace(ctx context.Context, raceNumber int, state *SeriesState) error {
	if e.sim.State() != models.RaceIdle {
		e.sim.Reset()
	}

	horses := e.sim.Horses()
	winRatio := make(map[uuid.UUID]float64, len(horses))
	for _, h := range horses {
		if stats, err := e.sim.HorseStats(h.ID); err == nil {
			winRatio[h.ID] = stats.WinRatio
		}
	}

	strategyCtx := strategy.Context{
		RaceNumber: raceNumber,
		Track:      e.sim.Track(),
		Horses:     horses,
		Odds:       e.sim.Odds(),
		WinRatio:   winRatio,
		Bankroll:   state.Bankroll,
	}

	signals, err := e.strategy.Evaluate(ctx, strategyCtx)
	if err != nil {
		return fmt.Errorf("strategy evaluation failed: %w", err)
	}

	placed := make([]*BetRecord, 0, len(signals))
	exposure := 0.0
	for _, signal := range signals {
		if bet := e.placeBet(raceNumber, signal, state.Bankroll, exposure); bet != nil {
			placed = append(placed, bet)
			exposure += bet.Stake
		}
	}

	result, err := e.sim.RunRace(ctx)
	if err != nil {
		return fmt.Errorf("race %d failed: %w", raceNumber, err)
	}

	for _, bet := range placed {
		SettleBet(bet, result.Outcome)
		state.UpdateState(bet)
	}
	state.CompleteRace(raceNumber, result.Outcome, e.sim.Balance().InexactFloat64())

	name := e.strategy.Name()
	e.strategyLog.LogStrategyPnLUpdate(name, state.NetProfit(), state.Bankroll, state.WinStreak, state.LossStreak)
	if dd := state.GetCurrentDrawdown(); dd >= drawdownWarning {
		e.strategyLog.LogStrategyDrawdown(name, dd*100, state.PeakBankroll, state.Bankroll)
	}
	return nil
}

func (e *Engine) placeBet(raceNumber int, signal strategy.Signal, bankroll, exposure float64) *BetRecord {
	name := e.strategy.Name()
	if !e.strategy.ShouldBet(signal) {
		metrics.RecordStrategyDecision(name, "skip")
		e.strategyLog.LogStrategyDecision(name, raceNumber, "skip", signal.HorseName, 0, signal.Odds)
		return nil
	}

	sized, err := e.risk.SizeStake(e.strategy.CalculateStake(signal, bankroll), exposure)
	if err != nil {
		metrics.RecordStrategyDecision(name, "limited")
		e.strategyLog.LogStrategyDecision(name, raceNumber, "limited", signal.HorseName, 0, signal.Odds)
		return nil
	}

	stake := decimal.NewFromFloat(sized).Round(2)
	if !stake.IsPositive() {
		metrics.RecordStrategyDecision(name, "skip")
		e.strategyLog.LogStrategyDecision(name, raceNumber, "skip", signal.HorseName, 0, signal.Odds)
		return nil
	}

	bet, err := e.sim.PlaceBet(signal.HorseID, stake)
	if err != nil {
		metrics.RecordStrategyDecision(name, "rejected")
		e.logger.WithError(err).WithFields(logrus.Fields{
			"strategy": name,
			"race":     raceNumber,
			"horse":    signal.HorseName,
			"stake":    stake.StringFixed(2),
		}).Warn("Strategy bet rejected")
		return nil
	}

	amount := stake.InexactFloat64()
	metrics.RecordStrategyDecision(name, "bet")
	metrics.RecordStrategyStake(name, amount)
	e.strategyLog.LogStrategyDecision(name, raceNumber, "bet", signal.HorseName, amount, bet.Odds)

	return &BetRecord{
		Race:        raceNumber,
		BetID:       bet.ID,
		HorseID:     signal.HorseID,
		HorseName:   signal.HorseName,
		Stake:       amount,
		Odds:        bet.Odds,
		Probability: signal.Confidence,
	}
}
