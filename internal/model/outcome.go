package model

// TerminalReason причина завершения сессии
type TerminalReason string

const (
	ReasonNone              TerminalReason = ""
	ReasonProfitTarget      TerminalReason = "profit_target"
	ReasonStopLoss          TerminalReason = "stop_loss"
	ReasonMaxRounds         TerminalReason = "max_rounds"
	ReasonTableLimit        TerminalReason = "table_limit"
	ReasonBankrollExhausted TerminalReason = "bankroll_exhausted"
)

// TerminalReasons все причины завершения
func TerminalReasons() []TerminalReason {
	return []TerminalReason{
		ReasonProfitTarget,
		ReasonStopLoss,
		ReasonMaxRounds,
		ReasonTableLimit,
		ReasonBankrollExhausted,
	}
}

// IsRuin разорение — любое завершение кроме цели и лимита раундов
func (r TerminalReason) IsRuin() bool {
	return r == ReasonStopLoss || r == ReasonTableLimit || r == ReasonBankrollExhausted
}

// SessionOutcome снимок сессии в момент завершения
type SessionOutcome struct {
	Reason        TerminalReason
	FinalPnL      float64
	Rounds        int
	TotalWagered  float64
	MaxStake      float64
	MaxDrawdown   float64
	LadderTouches []int
	TopTouches    int
	FinalLadder   int
	FinalIndex    int
}
