package converter

import (
	dto "staking_sim/internal/api/dto/simulation"
	"staking_sim/internal/config"
	"staking_sim/internal/model"

	"github.com/shopspring/decimal"
)

// Money денежные значения в ответах округляются до центов
func Money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// ToRunRequest незаданные поля берутся из пресета и sim
func ToRunRequest(in dto.RunRequest, sim config.SimulationConfig, presets config.PresetsConfig) (model.RunRequest, error) {
	return toRunRequest(in, in.ProfitTarget, sim, presets)
}

func ToSearchRequest(in dto.SearchRequest, sim config.SimulationConfig, presets config.PresetsConfig) (model.SearchRequest, error) {
	grid := sim.ProfitTargetGrid()
	if in.ProfitTargetGrid != "" {
		g, err := model.ParseGrid(in.ProfitTargetGrid)
		if err != nil {
			return model.SearchRequest{}, err
		}
		grid = g
	}

	// цель перебирается по сетке, для проверки ограничений берём первую точку
	run, err := toRunRequest(in.RunRequest, grid.Min, sim, presets)
	if err != nil {
		return model.SearchRequest{}, err
	}

	alpha := sim.Alpha()
	if in.Alpha != nil {
		alpha = *in.Alpha
	}

	out := model.SearchRequest{RunRequest: run, Alpha: alpha, Grid: grid}
	if err := out.Validate(); err != nil {
		return model.SearchRequest{}, err
	}
	return out, nil
}

func toRunRequest(in dto.RunRequest, target float64, sim config.SimulationConfig, presets config.PresetsConfig) (model.RunRequest, error) {
	name := in.Preset
	if name == "" {
		name = model.DefaultPresetName
	}
	preset, err := presets.Get(name)
	if err != nil {
		return model.RunRequest{}, &model.ValidationError{Field: "preset", Value: name, Reason: err.Error()}
	}

	overrides := model.PresetOverrides{
		RecoveryTargetFraction: in.RecoveryTargetPct,
		CrossoverOffset:        in.CrossoverOffset,
	}
	if in.BridgingPolicy != nil {
		policy, err := model.ParseBridgingPolicy(*in.BridgingPolicy)
		if err != nil {
			return model.RunRequest{}, err
		}
		overrides.Policy = policy
	}

	ladders := presets.Ladders()
	if len(in.Ladders) > 0 {
		ladders = make([]model.Ladder, 0, len(in.Ladders))
		for _, l := range in.Ladders {
			ladder, err := model.NewLadder(l.Name, l.Stakes)
			if err != nil {
				return model.RunRequest{}, err
			}
			ladders = append(ladders, ladder)
		}
	}

	strategy, err := preset.Merge(overrides).Strategy(ladders)
	if err != nil {
		return model.RunRequest{}, err
	}

	game := model.EvenMoneyGame()
	if in.PayoutRatio != nil || in.WinProbability != nil {
		payout, p := game.PayoutRatio, game.WinProbability
		if in.PayoutRatio != nil {
			payout = *in.PayoutRatio
		}
		if in.WinProbability != nil {
			p = *in.WinProbability
		}
		game, err = model.NewGame("custom", payout, p)
		if err != nil {
			return model.RunRequest{}, err
		}
	}

	bankroll := valueOr(in.Bankroll, sim.Bankroll())
	stopLoss := bankroll * valueOr(in.StopLossPct, sim.StopLossPct()) / 100
	if in.StopLossAbs != nil {
		stopLoss = *in.StopLossAbs
	}

	limits, err := model.NewSessionLimits(
		bankroll,
		target,
		stopLoss,
		valueOr(in.MaxRounds, sim.MaxRounds()),
		in.TableMax,
		valueOr(in.Seed, sim.Seed()),
	)
	if err != nil {
		return model.RunRequest{}, err
	}

	out := model.RunRequest{
		Strategy: strategy,
		Game:     game,
		Limits:   limits,
		Sessions: valueOr(in.Sessions, sim.Sessions()),
	}
	if err := out.Validate(); err != nil {
		return model.RunRequest{}, err
	}
	return out, nil
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

func ToAggregateResponse(res model.AggregateResult) dto.AggregateResponse {
	return dto.AggregateResponse{
		Sessions: res.Sessions,

		ProbHitTarget:         res.Probabilities.ProfitTarget,
		ProbHitStopLoss:       res.Probabilities.StopLoss,
		ProbHitMaxRounds:      res.Probabilities.MaxRounds,
		ProbHitTableLimit:     res.Probabilities.TableLimit,
		ProbBankrollExhausted: res.Probabilities.BankrollExhausted,
		RuinProbability:       res.Probabilities.Ruin(),

		MeanPnL:      Money(res.PnL.Mean),
		MedianPnL:    Money(res.PnL.Median),
		StdPnL:       Money(res.PnL.StdDev),
		SkewPnL:      res.PnL.Skewness,
		KurtosisPnL:  res.PnL.ExcessKurtosis,
		PnL95CILower: Money(res.PnL.CI95Lower),
		PnL95CIUpper: Money(res.PnL.CI95Upper),

		MeanRounds:           res.Rounds.Mean,
		MedianRounds:         res.Rounds.Median,
		MeanRoundsToTarget:   res.Rounds.MeanToTarget,
		MedianRoundsToTarget: res.Rounds.MedianToTarget,

		MeanMaxStake:      Money(res.Risk.MeanMaxStake),
		MedianMaxStake:    Money(res.Risk.MedianMaxStake),
		MeanMaxDrawdown:   Money(res.Risk.MeanMaxDrawdown),
		MedianMaxDrawdown: Money(res.Risk.MedianMaxDrawdown),
		ProbTouchLadder:   append([]float64{}, res.Risk.LadderTouchProb...),
		ProbTopOfLadder:   res.Risk.TopOfLadderProb,

		MeanTotalWagered: Money(res.MeanTotalWagered),
	}
}

func ToCurvePoint(p model.CurvePoint) dto.CurvePoint {
	return dto.CurvePoint{
		ProfitTarget:         Money(p.ProfitTarget),
		RuinProbability:      p.RuinProbability,
		ProbHitTarget:        p.ProbHitTarget,
		MeanPnL:              Money(p.MeanPnL),
		StdPnL:               Money(p.StdPnL),
		MeanRounds:           p.MeanRounds,
		MedianRoundsToTarget: p.MedianRoundsToTarget,
	}
}

func ToCurvePoints(points []model.CurvePoint) []dto.CurvePoint {
	out := make([]dto.CurvePoint, len(points))
	for i, p := range points {
		out[i] = ToCurvePoint(p)
	}
	return out
}

func ToParameters(rec *model.RunRecord) dto.Parameters {
	return dto.Parameters{
		BridgingPolicy:    rec.Policy,
		RecoveryTargetPct: rec.RecoveryTargetFraction,
		CrossoverOffset:   rec.CrossoverOffset,
		Bankroll:          Money(rec.Bankroll),
		StopLossAbs:       Money(rec.StopLossAbsolute),
		MaxRounds:         rec.MaxRounds,
		Sessions:          rec.Sessions,
		Alpha:             rec.Alpha,
		Seed:              rec.Seed,
		ProfitTargetGrid:  rec.Grid.String(),
	}
}

func ToSearchResponse(rec *model.RunRecord) dto.SearchResponse {
	return dto.SearchResponse{
		RunID:           rec.ID.String(),
		CreatedAt:       rec.CreatedAt,
		Operator:        rec.Operator,
		Parameters:      ToParameters(rec),
		SafeTarget:      Money(rec.Result.SafeTarget),
		RuinProbability: rec.Result.RuinProbability,
		Results:         ToAggregateResponse(rec.Result.Result),
		TradeOffCurve:   ToCurvePoints(rec.Result.Curve),
	}
}

func ToStatsResponse(s model.SimulationStats) dto.StatsResponse {
	out := dto.StatsResponse{
		Runs:              s.Runs,
		Searches:          s.Searches,
		FailedSearches:    s.FailedSearches,
		SessionsSimulated: s.SessionsSimulated,
		LastSafeTarget:    Money(s.LastSafeTarget),
		WindowMeanRuin:    s.WindowMeanRuin,
		Window:            make([]dto.SearchSummary, len(s.Window)),
	}
	for i, w := range s.Window {
		out.Window[i] = dto.SearchSummary{
			At:              w.At,
			SafeTarget:      Money(w.SafeTarget),
			RuinProbability: w.RuinProbability,
			Points:          w.Points,
			Sessions:        w.Sessions,
		}
	}
	return out
}

func ToPresetsResponse(presets []model.Preset, ladders []model.Ladder) dto.PresetsResponse {
	out := dto.PresetsResponse{
		Presets: make([]dto.Preset, len(presets)),
		Ladders: make([]dto.Ladder, len(ladders)),
	}
	for i, p := range presets {
		out.Presets[i] = dto.Preset{
			Name:              p.Name,
			BridgingPolicy:    p.Policy.Name(),
			RecoveryTargetPct: p.RecoveryTargetFraction,
			CrossoverOffset:   p.CrossoverOffset,
		}
	}
	for i, l := range ladders {
		out.Ladders[i] = dto.Ladder{Name: l.Name, Stakes: append([]float64{}, l.Stakes...)}
	}
	return out
}
