package model

import (
	"fmt"
	"strings"
)

const (
	PolicyAdvanceToNextLadderStart = "advance_to_next_ladder_start"
	PolicyCarryOverIndexDelta      = "carry_over_index_delta"
	PolicyStopAtTableLimit         = "stop_at_table_limit"
)

// BridgingPolicy правило перехода при проигрыше на верхней ступени лестницы.
// Набор реализаций закрыт: AdvanceToNextLadderStart, CarryOverIndexDelta, StopAtTableLimit.
type BridgingPolicy interface {
	Name() string
	bridgingPolicy()
}

// AdvanceToNextLadderStart переход на следующую лестницу с индекса 0
type AdvanceToNextLadderStart struct{}

// CarryOverIndexDelta вход в режим отыгрыша и переход на следующую лестницу
// с индекса crossover_offset
type CarryOverIndexDelta struct{}

// StopAtTableLimit остановка сессии как при достижении лимита стола
type StopAtTableLimit struct{}

func (AdvanceToNextLadderStart) Name() string { return PolicyAdvanceToNextLadderStart }
func (CarryOverIndexDelta) Name() string      { return PolicyCarryOverIndexDelta }
func (StopAtTableLimit) Name() string         { return PolicyStopAtTableLimit }

func (AdvanceToNextLadderStart) bridgingPolicy() {}
func (CarryOverIndexDelta) bridgingPolicy()      {}
func (StopAtTableLimit) bridgingPolicy()         {}

// BridgingPolicies все известные политики в порядке объявления
func BridgingPolicies() []BridgingPolicy {
	return []BridgingPolicy{AdvanceToNextLadderStart{}, CarryOverIndexDelta{}, StopAtTableLimit{}}
}

// ParseBridgingPolicy возвращает политику по имени
func ParseBridgingPolicy(name string) (BridgingPolicy, error) {
	names := make([]string, 0, 3)
	for _, p := range BridgingPolicies() {
		if p.Name() == name {
			return p, nil
		}
		names = append(names, p.Name())
	}
	return nil, invalid("bridging_policy", name, "must be one of "+strings.Join(names, ", "))
}

// Strategy неизменяемая конфигурация стратегии
type Strategy struct {
	Ladders                []Ladder
	Policy                 BridgingPolicy
	RecoveryTargetFraction float64
	CrossoverOffset        int
}

// NewStrategy создаёт стратегию, копирует лестницы и проверяет все поля
func NewStrategy(ladders []Ladder, policy BridgingPolicy, recoveryFraction float64, crossoverOffset int) (Strategy, error) {
	copied := make([]Ladder, len(ladders))
	for i, l := range ladders {
		copied[i] = Ladder{Name: l.Name, Stakes: append([]float64(nil), l.Stakes...)}
	}
	s := Strategy{
		Ladders:                copied,
		Policy:                 policy,
		RecoveryTargetFraction: recoveryFraction,
		CrossoverOffset:        crossoverOffset,
	}
	if err := s.Validate(); err != nil {
		return Strategy{}, err
	}
	return s, nil
}

func (s Strategy) Validate() error {
	if len(s.Ladders) == 0 {
		return invalid("ladders", len(s.Ladders), "strategy must have at least one ladder")
	}
	for i, l := range s.Ladders {
		if err := l.validate(fmt.Sprintf("ladders[%d]", i)); err != nil {
			return err
		}
	}
	if s.Policy == nil {
		return invalid("bridging_policy", nil, "must be set")
	}
	if s.RecoveryTargetFraction <= 0 || s.RecoveryTargetFraction > 1 {
		return invalid("recovery_target_fraction", s.RecoveryTargetFraction, "must be in (0, 1]")
	}
	if s.CrossoverOffset < 0 {
		return invalid("crossover_offset", s.CrossoverOffset, "must be non-negative")
	}
	return nil
}
