package session

import (
	"fmt"
	"math"

	"staking_sim/internal/model"

	"go.uber.org/zap"
)

// Source последовательность равномерных чисел из [0, 1).
// *rand.Rand из math/rand/v2 подходит.
type Source interface {
	Float64() float64
}

// Machine правила одной сессии: стратегия, игра и ограничения.
// Не хранит изменяемого состояния и может использоваться из нескольких горутин.
type Machine struct {
	strategy model.Strategy
	game     model.Game
	limits   model.SessionLimits
	log      *zap.Logger
}

type Option func(*Machine)

// WithLogger логгер для событий отыгрыша и переходов между лестницами
func WithLogger(l *zap.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.log = l
		}
	}
}

// NewMachine конфигурация считается уже проверенной конструкторами model
func NewMachine(strategy model.Strategy, game model.Game, limits model.SessionLimits, opts ...Option) *Machine {
	m := &Machine{
		strategy: strategy,
		game:     game,
		limits:   limits,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) Strategy() model.Strategy    { return m.strategy }
func (m *Machine) Limits() model.SessionLimits { return m.limits }

// NewState начальное состояние сессии для этой стратегии
func (m *Machine) NewState() State {
	return NewState(len(m.strategy.Ladders))
}

// Run играет сессию до завершения
func (m *Machine) Run(src Source) model.SessionOutcome {
	st := m.NewState()
	for !st.Terminated() {
		m.PlayRound(&st, src)
	}
	return st.Outcome()
}

// PlayRound один раунд. Число из src берётся только если ставка действительно делается.
func (m *Machine) PlayRound(st *State, src Source) {
	if st.Terminated() {
		return
	}

	stake := m.strategy.Ladders[st.Ladder].StakeAt(st.Index)

	if m.limits.Bankroll+st.PnL < stake {
		st.terminate(model.ReasonBankrollExhausted)
		return
	}
	if m.limits.TableMax != nil && stake > *m.limits.TableMax {
		st.terminate(model.ReasonTableLimit)
		return
	}

	st.LadderTouches[st.Ladder]++
	st.MaxStake = max(st.MaxStake, stake)
	st.TotalWagered += stake

	won, delta := m.game.Resolve(stake, src.Float64())
	st.PnL += delta
	st.Rounds++

	st.PeakPnL = max(st.PeakPnL, st.PnL)
	st.MaxDrawdown = max(st.MaxDrawdown, st.PeakPnL-st.PnL)

	if ce := m.log.Check(zap.DebugLevel, "state_change"); ce != nil {
		ce.Write(
			zap.Int("ladder", st.Ladder),
			zap.Int("index", st.Index),
			zap.Float64("pnl", st.PnL),
			zap.Bool("won", won),
			zap.Float64("stake", stake),
		)
	}

	switch {
	case st.PnL >= m.limits.ProfitTarget:
		st.terminate(model.ReasonProfitTarget)
	case -st.PnL >= m.limits.StopLossAbsolute:
		st.terminate(model.ReasonStopLoss)
	case st.Rounds >= m.limits.MaxRounds:
		st.terminate(model.ReasonMaxRounds)
	}
	if st.Terminated() {
		return
	}

	m.Step(st, won)
}

// Step переход позиции после раунда: выигрыш -2 ступени, проигрыш +1.
// Проигрыш на верхней ступени запускает переход по политике стратегии.
func (m *Machine) Step(st *State, won bool) {
	if st.Terminated() {
		return
	}

	ladder := m.strategy.Ladders[st.Ladder]
	atTop := st.Index == ladder.MaxIndex()

	if won {
		st.Index -= 2
	} else {
		st.Index++
	}

	if !won && atTop {
		m.bridge(st)
		return
	}

	st.Index = min(max(st.Index, 0), ladder.MaxIndex())

	if st.Recovery != nil && st.PnL >= st.Recovery.Target {
		if ce := m.log.Check(zap.DebugLevel, "recovery_exit"); ce != nil {
			ce.Write(
				zap.Float64("pnl", st.PnL),
				zap.Float64("target", st.Recovery.Target),
				zap.String("reset_to", "L0[0]"),
			)
		}
		st.Recovery = nil
		st.Position = Position{}
	}
}

// Transition чистая версия Step: исходное состояние не меняется
func (m *Machine) Transition(st State, won bool) State {
	m.Step(&st, won)
	return st
}

func (m *Machine) bridge(st *State) {
	st.TopTouches++

	if st.Ladder == len(m.strategy.Ladders)-1 {
		st.terminate(model.ReasonTableLimit)
		return
	}

	switch p := m.strategy.Policy.(type) {
	case model.AdvanceToNextLadderStart:
		m.moveTo(st, Position{Ladder: st.Ladder + 1, Index: 0})
	case model.CarryOverIndexDelta:
		if st.Recovery == nil {
			st.Recovery = &Recovery{Target: recoveryTarget(st.PnL, m.strategy.RecoveryTargetFraction)}
			if ce := m.log.Check(zap.DebugLevel, "recovery_enter"); ce != nil {
				ce.Write(
					zap.Float64("pnl", st.PnL),
					zap.Float64("target", st.Recovery.Target),
					zap.Float64("recovery_fraction", m.strategy.RecoveryTargetFraction),
					zap.Int("ladder", st.Ladder),
					zap.Int("index", st.Index),
				)
			}
		}
		m.moveTo(st, Position{Ladder: st.Ladder + 1, Index: m.strategy.CrossoverOffset})
	case model.StopAtTableLimit:
		st.terminate(model.ReasonTableLimit)
	default:
		panic(fmt.Sprintf("session: unknown bridging policy %T", p))
	}
}

func (m *Machine) moveTo(st *State, to Position) {
	from := st.Position
	st.Position = to
	if ce := m.log.Check(zap.DebugLevel, "ladder_bridge"); ce != nil {
		ce.Write(
			zap.Int("from_ladder", from.Ladder),
			zap.Int("from_index", from.Index),
			zap.Int("to_ladder", to.Ladder),
			zap.Int("to_index", to.Index),
			zap.Int("offset", m.strategy.CrossoverOffset),
			zap.Float64("stake", m.strategy.Ladders[to.Ladder].StakeAt(to.Index)),
		)
	}
}

// recoveryTarget считается от всего накопленного PnL на момент перехода,
// включая проигрыш, который вызвал переход
func recoveryTarget(pnl, fraction float64) float64 {
	if pnl < 0 {
		return pnl + math.Abs(pnl)*fraction
	}
	return pnl
}
