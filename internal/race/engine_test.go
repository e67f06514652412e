package race

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/derby/internal/models"
)

// scriptedSource replays a fixed sequence of draws, cycling when exhausted.
type scriptedSource struct {
	values []float64
	i      int
}

func (s *scriptedSource) Float64() float64 {
	v := s.values[s.i%len(s.values)]
	s.i++
	return v
}

// alwaysMove makes every move draw succeed and every fall draw miss.
func alwaysMove() *scriptedSource { return &scriptedSource{values: []float64{0.0, 0.999}} }

// alwaysFall makes every move and fall draw succeed.
func alwaysFall() *scriptedSource { return &scriptedSource{values: []float64{0.0}} }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestEngine(length int, rng RandomSource, horses ...*models.Horse) *Engine {
	return NewEngine(DefaultConfig(), models.NewTrack(length, len(horses)), horses, rng, quietLogger())
}

func TestEngine_ForcedMoveWinsInExactlyLengthTicks(t *testing.T) {
	h := models.NewHorse('>', "Le Horse", 0.9)
	e := newTestEngine(20, alwaysMove(), h)

	e.Start()
	for i := 1; i < 20; i++ {
		require.Nil(t, e.Tick(), "race finished early at tick %d", i)
		assert.Equal(t, i, h.DistanceTravelled)
	}

	result := e.Tick()
	require.NotNil(t, result)
	assert.Equal(t, models.RaceFinished, e.State())
	assert.True(t, result.Outcome.IsWon())
	assert.Equal(t, h.ID, result.Outcome.WinnerID)
	assert.Equal(t, "Le Horse", result.WinnerName)
	assert.Equal(t, 20, result.Ticks)
	assert.Equal(t, 20*DefaultConfig().TickInterval, result.Elapsed)
	assert.True(t, h.IsWinner)
}

func TestEngine_AllFallenIsDraw(t *testing.T) {
	a := models.NewHorse('>', "A", 0.7)
	b := models.NewHorse('^', "B", 0.6)
	e := newTestEngine(20, alwaysFall(), a, b)

	e.Start()
	result := e.Tick()
	require.NotNil(t, result)
	assert.True(t, result.Outcome.IsDrawn())
	assert.Empty(t, result.WinnerName)
	assert.Nil(t, e.Winner())
	assert.True(t, a.HasFallen)
	assert.True(t, b.HasFallen)
	assert.False(t, a.IsWinner)
	assert.False(t, b.IsWinner)
}

func TestEngine_SameTickTieGoesToFirstLane(t *testing.T) {
	a := models.NewHorse('>', "A", 0.7)
	b := models.NewHorse('^', "B", 0.7)
	e := newTestEngine(20, alwaysMove(), a, b)

	e.Start()
	a.DistanceTravelled = 19
	b.DistanceTravelled = 19

	result := e.Tick()
	require.NotNil(t, result)
	assert.Equal(t, a.ID, result.Outcome.WinnerID)
	assert.Equal(t, 20, a.DistanceTravelled)
	assert.Equal(t, 20, b.DistanceTravelled)
	assert.True(t, a.IsWinner)
	assert.False(t, b.IsWinner)
}

func TestEngine_ResetMidRace(t *testing.T) {
	a := models.NewHorse('>', "A", 0.7)
	b := models.NewHorse('^', "B", 0.6)
	e := newTestEngine(50, alwaysMove(), a, b)

	e.Start()
	for i := 0; i < 5; i++ {
		e.Tick()
	}
	b.Fall()
	require.Equal(t, 5, a.DistanceTravelled)

	e.Reset()
	assert.Equal(t, models.RaceIdle, e.State())
	assert.Equal(t, models.Outcome{}, e.Outcome())
	assert.Zero(t, e.Ticks())
	for _, h := range []*models.Horse{a, b} {
		assert.Zero(t, h.DistanceTravelled)
		assert.False(t, h.HasFallen)
		assert.False(t, h.IsWinner)
	}
}

func TestEngine_DistanceMonotonicAndBounded(t *testing.T) {
	horses := []*models.Horse{
		models.NewHorse('>', "A", 0.7),
		models.NewHorse('^', "B", 0.65),
		models.NewHorse('#', "C", 0.75),
		models.NewHorse('*', "D", 0.68),
		models.NewHorse('@', "E", 0.2),
	}
	e := NewEngine(DefaultConfig(), models.NewTrack(20, len(horses)), horses, NewRandomSource(42), quietLogger())

	for race := 0; race < 20; race++ {
		e.Reset()
		e.Start()
		prev := make([]int, len(horses))
		fallenAt := make(map[int]int)

		for tick := 0; tick < 10000 && e.State() == models.RaceRunning; tick++ {
			e.Tick()
			for i, h := range horses {
				assert.GreaterOrEqual(t, h.DistanceTravelled, prev[i])
				assert.LessOrEqual(t, h.DistanceTravelled, 20)
				if d, ok := fallenAt[i]; ok {
					assert.Equal(t, d, h.DistanceTravelled, "fallen horse moved")
				} else if h.HasFallen {
					fallenAt[i] = h.DistanceTravelled
				}
				prev[i] = h.DistanceTravelled
			}
		}
		require.Equal(t, models.RaceFinished, e.State())

		winners := 0
		for _, h := range horses {
			if h.IsWinner {
				winners++
			}
		}
		assert.LessOrEqual(t, winners, 1)
	}
}

func TestEngine_StateTransitions(t *testing.T) {
	h := models.NewHorse('>', "A", 0.9)
	e := newTestEngine(20, alwaysMove(), h)

	assert.Nil(t, e.Tick(), "tick while idle")
	e.Pause()
	assert.Equal(t, models.RaceIdle, e.State(), "pause while idle is a no-op")

	e.Start()
	assert.Equal(t, models.RaceRunning, e.State())
	e.Tick()
	e.Tick()
	raceID := e.RaceID()

	e.Pause()
	assert.Equal(t, models.RacePaused, e.State())
	assert.Nil(t, e.Tick())
	assert.Equal(t, 2, h.DistanceTravelled, "paused race does not advance")

	e.Start()
	assert.Equal(t, models.RaceRunning, e.State())
	assert.Equal(t, 2, h.DistanceTravelled, "resume keeps progress")
	assert.Equal(t, raceID, e.RaceID())

	e.Start()
	assert.Equal(t, models.RaceRunning, e.State(), "start while running is a no-op")

	for e.State() == models.RaceRunning {
		e.Tick()
	}
	assert.Equal(t, models.RaceFinished, e.State())

	e.Start()
	assert.Equal(t, models.RaceFinished, e.State(), "finished only leaves via reset")
	assert.Nil(t, e.Tick())

	e.Reset()
	e.Start()
	assert.Equal(t, models.RaceRunning, e.State())
	assert.NotEqual(t, raceID, e.RaceID())
	assert.Zero(t, h.DistanceTravelled)
}

func TestEngine_FinishHandlerFiresOnce(t *testing.T) {
	h := models.NewHorse('>', "A", 0.9)
	e := newTestEngine(20, alwaysMove(), h)

	calls := 0
	e.SetFinishHandler(func(result *models.RaceResult, horses []*models.Horse) {
		calls++
		assert.Len(t, horses, 1)
		assert.True(t, result.Outcome.IsWon())
	})

	e.Start()
	for i := 0; i < 40; i++ {
		e.Tick()
	}
	assert.Equal(t, 1, calls)
}

func TestEngine_ZeroLengthOnlyDraws(t *testing.T) {
	h := models.NewHorse('>', "A", 0.9)
	e := newTestEngine(0, alwaysMove(), h)

	e.Start()
	for i := 0; i < 100; i++ {
		require.Nil(t, e.Tick())
	}
	assert.Equal(t, models.RaceRunning, e.State())

	e.rng = alwaysFall()
	result := e.Tick()
	require.NotNil(t, result)
	assert.True(t, result.Outcome.IsDrawn())
}

func TestEngine_WeatherScalesMoveChance(t *testing.T) {
	tests := []struct {
		name    string
		weather models.Weather
		moved   bool
	}{
		// confidence 1.0: clear gives 0.95, snowy gives 0.95*0.8 = 0.76
		{name: "clear", weather: models.WeatherClear, moved: true},
		{name: "snowy", weather: models.WeatherSnowy, moved: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := models.NewHorse('>', "A", 1.0)
			e := newTestEngine(20, &scriptedSource{values: []float64{0.8, 0.999}}, h)
			e.Track().SetWeather(tt.weather)

			e.Start()
			e.Tick()
			assert.Equal(t, tt.moved, h.DistanceTravelled == 1)
		})
	}
}

func TestEngine_FallDoesNotRetractMove(t *testing.T) {
	h := models.NewHorse('>', "A", 0.5)
	e := newTestEngine(20, alwaysFall(), h, models.NewHorse('^', "B", 0.5))

	e.Start()
	e.Tick()
	assert.True(t, h.HasFallen)
	assert.Equal(t, 1, h.DistanceTravelled)
}

func TestEngine_SetHorsesRejectedInProgress(t *testing.T) {
	e := newTestEngine(20, alwaysMove(), models.NewHorse('>', "A", 0.5))
	e.Start()

	err := e.SetHorses(nil)
	assert.ErrorIs(t, err, models.ErrRaceInProgress)

	e.Pause()
	assert.ErrorIs(t, e.SetHorses(nil), models.ErrRaceInProgress)

	e.Reset()
	assert.NoError(t, e.SetHorses([]*models.Horse{models.NewHorse('#', "C", 0.5)}))
	assert.Len(t, e.Horses(), 1)
}
