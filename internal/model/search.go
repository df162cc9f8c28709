package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	gridTolerance = 1e-9

	// MaxGridPoints предел числа точек сетки
	MaxGridPoints = 100_000
	// MaxSessions предел числа сессий в одном прогоне
	MaxSessions = 10_000_000
)

// Grid замкнутая сетка целей по прибыли [Min, Max] с шагом Step
type Grid struct {
	Min  float64
	Max  float64
	Step float64
}

// ParseGrid разбирает сетку в формате min:max:step
func ParseGrid(s string) (Grid, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Grid{}, invalid("grid", s, "must be in format min:max:step")
	}
	var vals [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Grid{}, invalid("grid", s, err.Error())
		}
		vals[i] = v
	}
	g := Grid{Min: vals[0], Max: vals[1], Step: vals[2]}
	if err := g.Validate(); err != nil {
		return Grid{}, err
	}
	return g, nil
}

func (g Grid) Validate() error {
	fields := [...]struct {
		name string
		v    float64
	}{{"grid.min", g.Min}, {"grid.max", g.Max}, {"grid.step", g.Step}}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return invalid(f.name, f.v, "must be finite")
		}
	}
	if g.Min <= 0 {
		return invalid("grid.min", g.Min, "must be positive")
	}
	if g.Max < g.Min {
		return invalid("grid.max", g.Max, "must not be less than grid.min")
	}
	if g.Step <= 0 {
		return invalid("grid.step", g.Step, "must be positive")
	}
	if n := (g.Max-g.Min)/g.Step + gridTolerance; math.IsInf(n, 0) || n >= MaxGridPoints {
		return invalid("grid.step", g.Step, fmt.Sprintf("grid must have at most %d points", MaxGridPoints))
	}
	return nil
}

// Points точки сетки по возрастанию: Min + i*Step, не превышая Max
func (g Grid) Points() []float64 {
	n := int(math.Floor((g.Max-g.Min)/g.Step + gridTolerance))
	points := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		points = append(points, g.Min+float64(i)*g.Step)
	}
	return points
}

func (g Grid) String() string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return f(g.Min) + ":" + f(g.Max) + ":" + f(g.Step)
}

// CurvePoint строка кривой риск/доходность для одной точки сетки
type CurvePoint struct {
	Index                int
	ProfitTarget         float64
	RuinProbability      float64
	ProbHitTarget        float64
	MeanPnL              float64
	StdPnL               float64
	MeanRounds           float64
	MedianRoundsToTarget float64
}

// NewCurvePoint строка кривой из результата агрегатора
func NewCurvePoint(index int, target float64, res AggregateResult) CurvePoint {
	return CurvePoint{
		Index:                index,
		ProfitTarget:         target,
		RuinProbability:      res.Probabilities.Ruin(),
		ProbHitTarget:        res.Probabilities.ProfitTarget,
		MeanPnL:              res.PnL.Mean,
		StdPnL:               res.PnL.StdDev,
		MeanRounds:           res.Rounds.Mean,
		MedianRoundsToTarget: res.Rounds.MedianToTarget,
	}
}

// SearchResult результат поиска безопасной цели
type SearchResult struct {
	SafeTarget      float64
	RuinProbability float64
	Result          AggregateResult
	Curve           []CurvePoint
}

// RunRequest один прогон агрегатора
type RunRequest struct {
	Strategy Strategy
	Game     Game
	Limits   SessionLimits
	Sessions int
}

func (r RunRequest) Validate() error {
	if err := r.Strategy.Validate(); err != nil {
		return err
	}
	if err := r.Game.Validate(); err != nil {
		return err
	}
	if err := r.Limits.Validate(); err != nil {
		return err
	}
	if r.Sessions <= 0 {
		return invalid("sessions", r.Sessions, "must be positive")
	}
	if r.Sessions > MaxSessions {
		return invalid("sessions", r.Sessions, fmt.Sprintf("must not exceed %d", MaxSessions))
	}
	return nil
}

// SearchRequest поиск безопасной цели. Limits.ProfitTarget перебирается по Grid.
type SearchRequest struct {
	RunRequest
	Alpha float64
	Grid  Grid
}

func (r SearchRequest) Validate() error {
	if err := r.RunRequest.Validate(); err != nil {
		return err
	}
	if r.Alpha < 0 || r.Alpha > 1 {
		return invalid("alpha", r.Alpha, "must be in [0, 1]")
	}
	return r.Grid.Validate()
}

// RunRecord сохранённый поиск
type RunRecord struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Operator  string

	Policy                 string
	RecoveryTargetFraction float64
	CrossoverOffset        int
	Bankroll               float64
	StopLossAbsolute       float64
	MaxRounds              int
	Seed                   uint64
	Sessions               int
	Alpha                  float64
	Grid                   Grid

	Result SearchResult
}
