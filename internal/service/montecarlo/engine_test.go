package montecarlo

import (
	"context"
	"testing"

	"staking_sim/internal/model"
	"staking_sim/internal/service/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMachine(t *testing.T, target float64, seed uint64) *session.Machine {
	t.Helper()
	strategy, err := model.NewStrategy(model.DefaultLadders(), model.CarryOverIndexDelta{}, 0.5, 1)
	require.NoError(t, err)
	limits, err := model.NewSessionLimits(800000, target, 80000, 2000, nil, seed)
	require.NoError(t, err)
	return session.NewMachine(strategy, model.EvenMoneyGame(), limits)
}

func TestNewEngine_Validation(t *testing.T) {
	m := testMachine(t, 500, 1)

	_, err := NewEngine(m, 0)
	assert.ErrorIs(t, err, model.ErrInvalidConfig)

	_, err = NewEngine(m, 10, WithWorkers(-1))
	assert.ErrorIs(t, err, model.ErrInvalidConfig)

	e, err := NewEngine(m, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, e.Sessions())
	assert.Positive(t, e.workers)
}

func TestEngine_SharedStreamDeterministic(t *testing.T) {
	ctx := context.Background()

	run := func(seed uint64) model.AggregateResult {
		e, err := NewEngine(testMachine(t, 500, seed), 300, WithTraces())
		require.NoError(t, err)
		res, err := e.Run(ctx)
		require.NoError(t, err)
		return res
	}

	a, b := run(42), run(42)
	assert.Equal(t, a, b)
	require.NotNil(t, a.Traces)
	assert.Len(t, a.Traces.PnL, 300)
	assert.Len(t, a.Traces.Rounds, 300)

	c := run(43)
	assert.NotEqual(t, a.Traces.PnL, c.Traces.PnL)
}

func TestEngine_SharedStreamConsumesSequentially(t *testing.T) {
	// общий поток: сессии зависят друг от друга через порядок чисел
	e, err := NewEngine(testMachine(t, 500, 9), 20)
	require.NoError(t, err)
	outs, err := e.Outcomes(context.Background())
	require.NoError(t, err)

	distinct := map[float64]struct{}{}
	for _, o := range outs {
		distinct[o.FinalPnL+float64(o.Rounds)*1e-6] = struct{}{}
	}
	assert.Greater(t, len(distinct), 1)
}

func TestEngine_SplitStreamsIndependentOfWorkers(t *testing.T) {
	ctx := context.Background()
	m := testMachine(t, 500, 7)

	var results []model.AggregateResult
	for _, w := range []int{1, 2, 3, 8} {
		e, err := NewEngine(m, 257, WithStreamMode(SplitStreams), WithWorkers(w), WithTraces())
		require.NoError(t, err)
		res, err := e.Run(ctx)
		require.NoError(t, err)
		results = append(results, res)
	}
	for _, r := range results[1:] {
		assert.Equal(t, results[0], r)
	}
}

func TestEngine_SplitStreamSessionMatchesDirectRun(t *testing.T) {
	m := testMachine(t, 500, 5)
	e, err := NewEngine(m, 16, WithStreamMode(SplitStreams), WithWorkers(4))
	require.NoError(t, err)
	outs, err := e.Outcomes(context.Background())
	require.NoError(t, err)

	assert.Equal(t, m.Run(sessionStream(5, 11)), outs[11])
}

func TestEngine_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, mode := range []StreamMode{SharedStream, SplitStreams} {
		e, err := NewEngine(testMachine(t, 500, 1), 100, WithStreamMode(mode))
		require.NoError(t, err)
		_, err = e.Run(ctx)
		assert.ErrorIs(t, err, context.Canceled, mode.String())
	}
}

func TestEngine_ProbabilitiesSumToOne(t *testing.T) {
	e, err := NewEngine(testMachine(t, 2000, 3), 500)
	require.NoError(t, err)
	res, err := e.Run(context.Background())
	require.NoError(t, err)

	var sum float64
	for _, r := range model.TerminalReasons() {
		sum += res.Probabilities.Of(r)
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Equal(t, 500, res.Sessions)
	assert.Nil(t, res.Traces)
	assert.Len(t, res.Risk.LadderTouchProb, 3)
	assert.Equal(t, 1.0, res.Risk.LadderTouchProb[0])
	assert.LessOrEqual(t, res.PnL.CI95Lower, res.PnL.Mean)
	assert.GreaterOrEqual(t, res.PnL.CI95Upper, res.PnL.Mean)
}

func TestParseStreamMode(t *testing.T) {
	m, err := ParseStreamMode("split")
	require.NoError(t, err)
	assert.Equal(t, SplitStreams, m)

	m, err = ParseStreamMode("")
	require.NoError(t, err)
	assert.Equal(t, SharedStream, m)

	_, err = ParseStreamMode("parallel")
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}
