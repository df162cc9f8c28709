package search

import (
	"context"
	"errors"
	"sync"
	"testing"

	"staking_sim/internal/model"
	"staking_sim/internal/service/montecarlo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEvaluator вероятность разорения по цели из таблицы
type fakeEvaluator struct {
	ruin map[float64]float64
	err  error

	mu    sync.Mutex
	seeds []uint64
}

func (f *fakeEvaluator) Evaluate(_ context.Context, limits model.SessionLimits) (model.AggregateResult, error) {
	f.mu.Lock()
	f.seeds = append(f.seeds, limits.Seed)
	f.mu.Unlock()

	if f.err != nil {
		return model.AggregateResult{}, f.err
	}
	r := f.ruin[limits.ProfitTarget]
	return model.AggregateResult{
		Sessions: 1000,
		Probabilities: model.OutcomeProbabilities{
			ProfitTarget: 1 - r,
			StopLoss:     r,
		},
		PnL: model.PnLStats{Mean: limits.ProfitTarget},
	}, nil
}

func baseLimits(t *testing.T) model.SessionLimits {
	t.Helper()
	l, err := model.NewSessionLimits(800000, 1, 80000, 5000, nil, 42)
	require.NoError(t, err)
	return l
}

func TestSearch_LastSafePointInScanOrder(t *testing.T) {
	eval := &fakeEvaluator{ruin: map[float64]float64{50: 0.02, 100: 0.005, 150: 0.03}}

	for _, workers := range []int{1, 3} {
		res, err := NewSearcher(eval, WithWorkers(workers)).
			Search(context.Background(), baseLimits(t), 0.01, model.Grid{Min: 50, Max: 150, Step: 50})
		require.NoError(t, err)

		assert.Equal(t, 100.0, res.SafeTarget)
		assert.Equal(t, 0.005, res.RuinProbability)
		assert.Equal(t, 100.0, res.Result.PnL.Mean)
		require.Len(t, res.Curve, 3)
		for i, want := range []float64{50, 100, 150} {
			assert.Equal(t, want, res.Curve[i].ProfitTarget)
			assert.Equal(t, i, res.Curve[i].Index)
		}
		assert.Equal(t, 0.03, res.Curve[2].RuinProbability)
	}
}

func TestSearch_NonMonotonicCurvePicksLast(t *testing.T) {
	eval := &fakeEvaluator{ruin: map[float64]float64{10: 0.001, 20: 0.5, 30: 0.009, 40: 0.2}}

	res, err := NewSearcher(eval).Search(context.Background(), baseLimits(t), 0.01, model.Grid{Min: 10, Max: 40, Step: 10})
	require.NoError(t, err)
	assert.Equal(t, 30.0, res.SafeTarget)
}

func TestSearch_AlphaIsInclusive(t *testing.T) {
	eval := &fakeEvaluator{ruin: map[float64]float64{10: 0.01}}
	res, err := NewSearcher(eval).Search(context.Background(), baseLimits(t), 0.01, model.Grid{Min: 10, Max: 10, Step: 1})
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.SafeTarget)
}

func TestSearch_NoSafeTarget(t *testing.T) {
	eval := &fakeEvaluator{ruin: map[float64]float64{50: 0.2, 100: 0.3}}

	res, err := NewSearcher(eval).Search(context.Background(), baseLimits(t), 0.01, model.Grid{Min: 50, Max: 100, Step: 50})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoSafeTarget))
	assert.Contains(t, err.Error(), "alpha=0.01")
	assert.Zero(t, res.SafeTarget)
	assert.Len(t, res.Curve, 2)
}

func TestSearch_SameSeedForEveryPoint(t *testing.T) {
	eval := &fakeEvaluator{ruin: map[float64]float64{}}
	_, err := NewSearcher(eval, WithWorkers(4)).Search(context.Background(), baseLimits(t), 0.5, model.Grid{Min: 10, Max: 100, Step: 10})
	require.NoError(t, err)

	require.Len(t, eval.seeds, 10)
	for _, s := range eval.seeds {
		assert.Equal(t, uint64(42), s)
	}
}

func TestSearch_EvaluatorError(t *testing.T) {
	boom := errors.New("boom")
	eval := &fakeEvaluator{err: boom}
	_, err := NewSearcher(eval).Search(context.Background(), baseLimits(t), 0.01, model.Grid{Min: 10, Max: 20, Step: 10})
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, ErrNoSafeTarget))
}

func TestSearch_Validation(t *testing.T) {
	s := NewSearcher(&fakeEvaluator{})

	_, err := s.Search(context.Background(), baseLimits(t), 1.5, model.Grid{Min: 10, Max: 20, Step: 10})
	assert.ErrorIs(t, err, model.ErrInvalidConfig)

	_, err = s.Search(context.Background(), baseLimits(t), 0.01, model.Grid{Min: 10, Max: 20, Step: 0})
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}

func TestSearch_Progress(t *testing.T) {
	eval := &fakeEvaluator{ruin: map[float64]float64{10: 0.1, 20: 0.001, 30: 0.001}}
	var seen []float64

	_, err := NewSearcher(eval, WithWorkers(2), WithProgress(func(p model.CurvePoint) {
		seen = append(seen, p.ProfitTarget)
	})).Search(context.Background(), baseLimits(t), 0.01, model.Grid{Min: 10, Max: 30, Step: 10})
	require.NoError(t, err)
	assert.ElementsMatch(t, []float64{10, 20, 30}, seen)
}

func TestSearch_WithMonteCarlo(t *testing.T) {
	strategy, err := model.NewStrategy(model.DefaultLadders(), model.CarryOverIndexDelta{}, 0.5, 0)
	require.NoError(t, err)
	limits, err := model.NewSessionLimits(800000, 1, 80000, 2000, nil, 42)
	require.NoError(t, err)

	eval := MonteCarloEvaluator{
		Strategy: strategy,
		Game:     model.EvenMoneyGame(),
		Sessions: 200,
		Engine:   []montecarlo.Option{montecarlo.WithStreamMode(montecarlo.SplitStreams), montecarlo.WithWorkers(2)},
	}
	grid := model.Grid{Min: 50, Max: 200, Step: 50}

	seq, err := NewSearcher(eval).Search(context.Background(), limits, 1, grid)
	require.NoError(t, err)
	par, err := NewSearcher(eval, WithWorkers(4)).Search(context.Background(), limits, 1, grid)
	require.NoError(t, err)

	assert.Equal(t, seq, par)
	// alpha=1 — любая точка безопасна, выбирается последняя
	assert.Equal(t, 200.0, seq.SafeTarget)
	assert.Len(t, seq.Curve, 4)
}
