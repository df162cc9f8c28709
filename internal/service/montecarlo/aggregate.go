package montecarlo

import (
	"math"
	"slices"

	"staking_sim/internal/model"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Aggregate сводит результаты сессий в статистику.
// ladders — число лестниц стратегии, traces — сохранить сырые значения.
func Aggregate(outcomes []model.SessionOutcome, ladders int, traces bool) model.AggregateResult {
	n := len(outcomes)
	res := model.AggregateResult{
		Sessions: n,
		Risk:     model.RiskStats{LadderTouchProb: make([]float64, ladders)},
	}
	if n == 0 {
		return res
	}

	pnl := make([]float64, n)
	rounds := make([]float64, n)
	stakes := make([]float64, n)
	drawdowns := make([]float64, n)
	wagered := make([]float64, n)
	toTarget := make([]float64, 0, n)

	counts := make(map[model.TerminalReason]int, 5)
	touched := make([]int, ladders)
	top := 0

	for i, o := range outcomes {
		pnl[i] = o.FinalPnL
		rounds[i] = float64(o.Rounds)
		stakes[i] = o.MaxStake
		drawdowns[i] = o.MaxDrawdown
		wagered[i] = o.TotalWagered

		counts[o.Reason]++
		if o.Reason == model.ReasonProfitTarget {
			toTarget = append(toTarget, float64(o.Rounds))
		}
		for l, c := range o.LadderTouches {
			if l < ladders && c > 0 {
				touched[l]++
			}
		}
		if o.TopTouches > 0 {
			top++
		}
	}

	share := func(c int) float64 { return float64(c) / float64(n) }

	res.Probabilities = model.OutcomeProbabilities{
		ProfitTarget:      share(counts[model.ReasonProfitTarget]),
		StopLoss:          share(counts[model.ReasonStopLoss]),
		MaxRounds:         share(counts[model.ReasonMaxRounds]),
		TableLimit:        share(counts[model.ReasonTableLimit]),
		BankrollExhausted: share(counts[model.ReasonBankrollExhausted]),
	}

	res.PnL = pnlStats(pnl)

	res.Rounds = model.RoundStats{
		Mean:   stat.Mean(rounds, nil),
		Median: median(rounds),
	}
	if len(toTarget) > 0 {
		res.Rounds.MeanToTarget = stat.Mean(toTarget, nil)
		res.Rounds.MedianToTarget = median(toTarget)
	}

	res.Risk.MeanMaxStake = stat.Mean(stakes, nil)
	res.Risk.MedianMaxStake = median(stakes)
	res.Risk.MeanMaxDrawdown = stat.Mean(drawdowns, nil)
	res.Risk.MedianMaxDrawdown = median(drawdowns)
	for l, c := range touched {
		res.Risk.LadderTouchProb[l] = share(c)
	}
	res.Risk.TopOfLadderProb = share(top)

	res.MeanTotalWagered = stat.Mean(wagered, nil)

	if traces {
		res.Traces = &model.Traces{PnL: pnl, Rounds: make([]int, n)}
		for i, o := range outcomes {
			res.Traces.Rounds[i] = o.Rounds
		}
	}
	return res
}

func pnlStats(x []float64) model.PnLStats {
	n := len(x)
	s := model.PnLStats{
		Mean:   stat.Mean(x, nil),
		Median: median(x),
	}
	s.CI95Lower, s.CI95Upper = s.Mean, s.Mean
	if n < 2 {
		return s
	}

	s.StdDev = stat.StdDev(x, nil)
	if s.StdDev > 0 {
		// смещённые оценки через центральные моменты
		m2 := stat.Moment(2, x, nil)
		s.Skewness = stat.Moment(3, x, nil) / math.Pow(m2, 1.5)
		s.ExcessKurtosis = stat.Moment(4, x, nil)/(m2*m2) - 3
	}

	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
	margin := t.Quantile(0.975) * s.StdDev / math.Sqrt(float64(n))
	s.CI95Lower = s.Mean - margin
	s.CI95Upper = s.Mean + margin
	return s
}

// median при чётном числе значений — среднее двух средних
func median(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	sorted := slices.Clone(x)
	slices.Sort(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
