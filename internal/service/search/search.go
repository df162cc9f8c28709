package search

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"staking_sim/internal/model"
	"staking_sim/internal/service/montecarlo"
	"staking_sim/internal/service/session"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrNoSafeTarget = errors.New("no safe target found in range")

// Evaluator статистика для ограничений с конкретной целью по прибыли
type Evaluator interface {
	Evaluate(ctx context.Context, limits model.SessionLimits) (model.AggregateResult, error)
}

// MonteCarloEvaluator каждый вызов — новый прогон Монте-Карло с seed из limits,
// так что все точки сетки играют на одних и тех же случайных числах
type MonteCarloEvaluator struct {
	Strategy model.Strategy
	Game     model.Game
	Sessions int
	Machine  []session.Option
	Engine   []montecarlo.Option
}

func (e MonteCarloEvaluator) Evaluate(ctx context.Context, limits model.SessionLimits) (model.AggregateResult, error) {
	machine := session.NewMachine(e.Strategy, e.Game, limits, e.Machine...)
	engine, err := montecarlo.NewEngine(machine, e.Sessions, e.Engine...)
	if err != nil {
		return model.AggregateResult{}, err
	}
	return engine.Run(ctx)
}

// Searcher перебор сетки целей
type Searcher struct {
	eval    Evaluator
	workers int
	onPoint func(model.CurvePoint)
	log     *zap.Logger

	mu sync.Mutex
}

type Option func(*Searcher)

// WithWorkers сколько точек сетки считать одновременно
func WithWorkers(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithProgress вызывается после каждой посчитанной точки.
// При нескольких воркерах порядок вызовов не совпадает с порядком сетки.
func WithProgress(fn func(model.CurvePoint)) Option {
	return func(s *Searcher) { s.onPoint = fn }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Searcher) {
		if l != nil {
			s.log = l
		}
	}
}

func NewSearcher(eval Evaluator, opts ...Option) *Searcher {
	s := &Searcher{
		eval:    eval,
		workers: 1,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search выбирает последнюю по возрастанию точку сетки с вероятностью разорения <= alpha.
// Кривая не считается монотонной. Если безопасной точки нет, возвращается кривая
// и ошибка ErrNoSafeTarget.
func (s *Searcher) Search(ctx context.Context, limits model.SessionLimits, alpha float64, grid model.Grid) (model.SearchResult, error) {
	if err := grid.Validate(); err != nil {
		return model.SearchResult{}, err
	}
	if alpha < 0 || alpha > 1 {
		return model.SearchResult{}, &model.ValidationError{Field: "alpha", Value: alpha, Reason: "must be in [0, 1]"}
	}

	targets := grid.Points()
	results := make([]model.AggregateResult, len(targets))

	s.log.Info("target search started",
		zap.Stringer("grid", grid),
		zap.Int("points", len(targets)),
		zap.Float64("alpha", alpha),
		zap.Int("workers", s.workers),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, target := range targets {
		g.Go(func() error {
			res, err := s.eval.Evaluate(gctx, limits.WithProfitTarget(target))
			if err != nil {
				return fmt.Errorf("profit target %v: %w", target, err)
			}
			results[i] = res
			s.progress(model.NewCurvePoint(i, target, res))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.SearchResult{}, err
	}

	out := model.SearchResult{Curve: make([]model.CurvePoint, len(targets))}
	best := -1
	for i, target := range targets {
		out.Curve[i] = model.NewCurvePoint(i, target, results[i])
		if out.Curve[i].RuinProbability <= alpha {
			best = i
		}
	}

	if best < 0 {
		s.log.Warn("no safe target", zap.Stringer("grid", grid), zap.Float64("alpha", alpha))
		return out, fmt.Errorf("%w [%v, %v] with alpha=%v", ErrNoSafeTarget, grid.Min, grid.Max, alpha)
	}

	out.SafeTarget = targets[best]
	out.RuinProbability = out.Curve[best].RuinProbability
	out.Result = results[best]

	s.log.Info("target search finished",
		zap.Float64("safe_target", out.SafeTarget),
		zap.Float64("ruin", out.RuinProbability),
	)
	return out, nil
}

func (s *Searcher) progress(p model.CurvePoint) {
	if s.onPoint == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPoint(p)
}
