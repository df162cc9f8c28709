package model

// OutcomeProbabilities доли сессий по причинам завершения
type OutcomeProbabilities struct {
	ProfitTarget      float64
	StopLoss          float64
	MaxRounds         float64
	TableLimit        float64
	BankrollExhausted float64
}

// Of доля для конкретной причины
func (p OutcomeProbabilities) Of(r TerminalReason) float64 {
	switch r {
	case ReasonProfitTarget:
		return p.ProfitTarget
	case ReasonStopLoss:
		return p.StopLoss
	case ReasonMaxRounds:
		return p.MaxRounds
	case ReasonTableLimit:
		return p.TableLimit
	case ReasonBankrollExhausted:
		return p.BankrollExhausted
	}
	return 0
}

// Ruin вероятность разорения: stop_loss + table_limit + bankroll_exhausted
func (p OutcomeProbabilities) Ruin() float64 {
	return p.StopLoss + p.TableLimit + p.BankrollExhausted
}

type PnLStats struct {
	Mean           float64
	Median         float64
	StdDev         float64
	Skewness       float64
	ExcessKurtosis float64
	CI95Lower      float64
	CI95Upper      float64
}

type RoundStats struct {
	Mean   float64
	Median float64
	// Только по сессиям, достигшим цели; 0 если таких нет
	MeanToTarget   float64
	MedianToTarget float64
}

type RiskStats struct {
	MeanMaxStake      float64
	MedianMaxStake    float64
	MeanMaxDrawdown   float64
	MedianMaxDrawdown float64
	// LadderTouchProb[i] доля сессий, сделавших хотя бы одну ставку на лестнице i
	LadderTouchProb []float64
	TopOfLadderProb float64
}

// Traces сырые значения по сессиям, сохраняются по запросу
type Traces struct {
	PnL    []float64
	Rounds []int
}

// AggregateResult сводная статистика прогона Монте-Карло
type AggregateResult struct {
	Sessions         int
	Probabilities    OutcomeProbabilities
	PnL              PnLStats
	Rounds           RoundStats
	Risk             RiskStats
	MeanTotalWagered float64
	Traces           *Traces `json:"-"`
}
