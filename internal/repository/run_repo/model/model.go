package model

import (
	"time"

	"github.com/google/uuid"
)

// Строка simulation_runs
type Run struct {
	ID                     uuid.UUID
	CreatedAt              time.Time
	Operator               string
	Policy                 string
	RecoveryTargetFraction float64
	CrossoverOffset        int
	Bankroll               float64
	StopLossAbsolute       float64
	MaxRounds              int
	Seed                   int64 // uint64 хранится как bigint побитово
	Sessions               int
	Alpha                  float64
	GridMin                float64
	GridMax                float64
	GridStep               float64
	SafeTarget             float64
	RuinProbability        float64
	Result                 []byte // AggregateResult в jsonb
}

// Строка simulation_curve_points
type CurvePoint struct {
	RunID                uuid.UUID
	Idx                  int
	ProfitTarget         float64
	RuinProbability      float64
	ProbHitTarget        float64
	MeanPnL              float64
	StdPnL               float64
	MeanRounds           float64
	MedianRoundsToTarget float64
}
