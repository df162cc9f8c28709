package session

import "staking_sim/internal/model"

// Position текущая лестница и ступень
type Position struct {
	Ladder int
	Index  int
}

// Recovery режим отыгрыша с зафиксированной целью по PnL
type Recovery struct {
	Target float64
}

// State изменяемое состояние одной сессии. Принадлежит одной сессии.
type State struct {
	Position

	PnL          float64
	Rounds       int
	TotalWagered float64
	MaxStake     float64
	PeakPnL      float64
	MaxDrawdown  float64

	LadderTouches []int
	TopTouches    int

	Reason model.TerminalReason
	// Recovery nil — режим отыгрыша выключен
	Recovery *Recovery
}

// NewState начальное состояние: лестница 0, ступень 0
func NewState(ladders int) State {
	return State{LadderTouches: make([]int, ladders)}
}

// Terminated сессия завершена
func (s *State) Terminated() bool {
	return s.Reason != model.ReasonNone
}

// InRecovery сессия в режиме отыгрыша
func (s *State) InRecovery() bool {
	return s.Recovery != nil
}

// RecoveryTarget цель отыгрыша, определена только в режиме отыгрыша
func (s *State) RecoveryTarget() (float64, bool) {
	if s.Recovery == nil {
		return 0, false
	}
	return s.Recovery.Target, true
}

// terminate первая причина остаётся навсегда
func (s *State) terminate(reason model.TerminalReason) {
	if s.Reason == model.ReasonNone {
		s.Reason = reason
	}
}

// Outcome снимок состояния для результата сессии
func (s *State) Outcome() model.SessionOutcome {
	return model.SessionOutcome{
		Reason:        s.Reason,
		FinalPnL:      s.PnL,
		Rounds:        s.Rounds,
		TotalWagered:  s.TotalWagered,
		MaxStake:      s.MaxStake,
		MaxDrawdown:   s.MaxDrawdown,
		LadderTouches: append([]int(nil), s.LadderTouches...),
		TopTouches:    s.TopTouches,
		FinalLadder:   s.Ladder,
		FinalIndex:    s.Index,
	}
}
