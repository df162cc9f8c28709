package converter

import (
	"encoding/json"
	"testing"

	dto "staking_sim/internal/api/dto/simulation"
	"staking_sim/internal/config/env"
	"staking_sim/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type simDefaults struct{}

func (simDefaults) Sessions() int        { return 1000 }
func (simDefaults) Alpha() float64       { return 0.01 }
func (simDefaults) Seed() uint64         { return 7 }
func (simDefaults) Workers() int         { return 0 }
func (simDefaults) StreamMode() string   { return "shared" }
func (simDefaults) Bankroll() float64    { return 10000 }
func (simDefaults) StopLossPct() float64 { return 10 }
func (simDefaults) MaxRounds() int       { return 500 }
func (simDefaults) ProfitTargetGrid() model.Grid {
	return model.Grid{Min: 50, Max: 500, Step: 50}
}
func (simDefaults) PresetsFile() string { return "" }

func ptr[T any](v T) *T { return &v }

func TestToRunRequest_Defaults(t *testing.T) {
	got, err := ToRunRequest(dto.RunRequest{ProfitTarget: 100}, simDefaults{}, env.NewBuiltinPresetsConfig())
	require.NoError(t, err)

	assert.Equal(t, model.CarryOverIndexDelta{}, got.Strategy.Policy)
	assert.Equal(t, 0.5, got.Strategy.RecoveryTargetFraction)
	assert.Len(t, got.Strategy.Ladders, 3)
	assert.Equal(t, model.EvenMoneyGame(), got.Game)
	assert.Equal(t, 10000.0, got.Limits.Bankroll)
	assert.Equal(t, 1000.0, got.Limits.StopLossAbsolute)
	assert.Equal(t, 500, got.Limits.MaxRounds)
	assert.Equal(t, uint64(7), got.Limits.Seed)
	assert.Nil(t, got.Limits.TableMax)
	assert.Equal(t, 1000, got.Sessions)
}

func TestToRunRequest_Overrides(t *testing.T) {
	in := dto.RunRequest{
		BridgingPolicy:    ptr(model.PolicyStopAtTableLimit),
		RecoveryTargetPct: ptr(1.0),
		CrossoverOffset:   ptr(1),
		Ladders:           []dto.Ladder{{Name: "A", Stakes: []float64{1, 2}}, {Name: "B", Stakes: []float64{4, 8}}},
		WinProbability:    ptr(0.48),
		Bankroll:          ptr(500.0),
		ProfitTarget:      25,
		StopLossPct:       ptr(50.0),
		StopLossAbs:       ptr(120.0),
		TableMax:          ptr(8.0),
		Seed:              ptr(uint64(1)),
		Sessions:          ptr(10),
	}

	got, err := ToRunRequest(in, simDefaults{}, env.NewBuiltinPresetsConfig())
	require.NoError(t, err)

	assert.Equal(t, model.StopAtTableLimit{}, got.Strategy.Policy)
	assert.Equal(t, 1.0, got.Strategy.RecoveryTargetFraction)
	assert.Equal(t, 1, got.Strategy.CrossoverOffset)
	require.Len(t, got.Strategy.Ladders, 2)
	assert.Equal(t, "B", got.Strategy.Ladders[1].Name)
	assert.Equal(t, 1.0, got.Game.PayoutRatio)
	assert.Equal(t, 0.48, got.Game.WinProbability)
	// абсолютный стоп-лосс важнее процента
	assert.Equal(t, 120.0, got.Limits.StopLossAbsolute)
	require.NotNil(t, got.Limits.TableMax)
	assert.Equal(t, 8.0, *got.Limits.TableMax)
	assert.Equal(t, 10, got.Sessions)
}

func TestToRunRequest_Invalid(t *testing.T) {
	presets := env.NewBuiltinPresetsConfig()
	cases := map[string]dto.RunRequest{
		"no target":      {},
		"unknown policy": {ProfitTarget: 10, BridgingPolicy: ptr("martingale")},
		"unknown preset": {ProfitTarget: 10, Preset: "nope"},
		"bad ladder":     {ProfitTarget: 10, Ladders: []dto.Ladder{{Name: "A", Stakes: []float64{0, 1}}}},
		"bad game":       {ProfitTarget: 10, WinProbability: ptr(1.5)},
		"zero sessions":  {ProfitTarget: 10, Sessions: ptr(0)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ToRunRequest(in, simDefaults{}, presets)
			assert.ErrorIs(t, err, model.ErrInvalidConfig)
		})
	}
}

func TestToSearchRequest(t *testing.T) {
	presets := env.NewBuiltinPresetsConfig()

	got, err := ToSearchRequest(dto.SearchRequest{}, simDefaults{}, presets)
	require.NoError(t, err)
	assert.Equal(t, 0.01, got.Alpha)
	assert.Equal(t, model.Grid{Min: 50, Max: 500, Step: 50}, got.Grid)
	assert.Equal(t, 50.0, got.Limits.ProfitTarget)

	got, err = ToSearchRequest(dto.SearchRequest{Alpha: ptr(0.05), ProfitTargetGrid: "10:30:10"}, simDefaults{}, presets)
	require.NoError(t, err)
	assert.Equal(t, 0.05, got.Alpha)
	assert.Equal(t, []float64{10, 20, 30}, got.Grid.Points())

	_, err = ToSearchRequest(dto.SearchRequest{ProfitTargetGrid: "10:30"}, simDefaults{}, presets)
	assert.ErrorIs(t, err, model.ErrInvalidConfig)

	_, err = ToSearchRequest(dto.SearchRequest{Alpha: ptr(2.0)}, simDefaults{}, presets)
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}

func TestToAggregateResponse_RoundsMoney(t *testing.T) {
	res := model.AggregateResult{
		Sessions:      4,
		Probabilities: model.OutcomeProbabilities{ProfitTarget: 0.5, StopLoss: 0.25, TableLimit: 0.25},
		PnL:           model.PnLStats{Mean: 12.3456, CI95Lower: -1.005},
		Risk:          model.RiskStats{LadderTouchProb: []float64{1, 0.5}},
	}

	got := ToAggregateResponse(res)
	assert.Equal(t, 0.5, got.RuinProbability)
	assert.Equal(t, "12.35", got.MeanPnL.String())
	assert.Equal(t, []float64{1, 0.5}, got.ProbTouchLadder)

	got.ProbTouchLadder[0] = 0
	assert.Equal(t, 1.0, res.Risk.LadderTouchProb[0])

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"mean_pnl":"12.35"`)
	assert.Contains(t, string(raw), `"prob_hit_target":0.5`)
}

func TestToSearchResponse(t *testing.T) {
	id := uuid.New()
	rec := &model.RunRecord{
		ID:     id,
		Policy: model.PolicyCarryOverIndexDelta,
		Grid:   model.Grid{Min: 50, Max: 150, Step: 50},
		Result: model.SearchResult{
			SafeTarget: 100,
			Curve:      []model.CurvePoint{{ProfitTarget: 50}, {ProfitTarget: 100}},
		},
	}

	got := ToSearchResponse(rec)
	assert.Equal(t, id.String(), got.RunID)
	assert.Equal(t, "50:150:50", got.Parameters.ProfitTargetGrid)
	assert.Equal(t, "100", got.SafeTarget.String())
	assert.Len(t, got.TradeOffCurve, 2)
}

func TestToPresetsResponse(t *testing.T) {
	presets := []model.Preset{model.BuiltinPreset()}
	got := ToPresetsResponse(presets, model.DefaultLadders())
	require.Len(t, got.Presets, 1)
	assert.Equal(t, model.PolicyCarryOverIndexDelta, got.Presets[0].BridgingPolicy)
	assert.Len(t, got.Ladders, 3)
}
