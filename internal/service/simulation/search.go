package simulation

import (
	"context"
	"errors"
	"fmt"

	"staking_sim/internal/middleware"
	"staking_sim/internal/model"
	"staking_sim/internal/service/montecarlo"
	"staking_sim/internal/service/search"
	"staking_sim/internal/service/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Search поиск безопасной цели и сохранение результата, если включено хранилище
func (s *serv) Search(ctx context.Context, req model.SearchRequest, onPoint func(model.CurvePoint)) (*model.RunRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	eval := search.MonteCarloEvaluator{
		Strategy: req.Strategy,
		Game:     req.Game,
		Sessions: req.Sessions,
		Machine:  []session.Option{session.WithLogger(s.settings.MachineLog)},
		// Параллелим точки сетки, каждая точка считается в одной горутине
		Engine: []montecarlo.Option{
			montecarlo.WithStreamMode(s.settings.Mode),
			montecarlo.WithWorkers(1),
			montecarlo.WithLogger(s.log),
		},
	}

	opts := []search.Option{search.WithWorkers(s.settings.Workers), search.WithLogger(s.log)}
	if onPoint != nil {
		opts = append(opts, search.WithProgress(onPoint))
	}

	res, err := search.NewSearcher(eval, opts...).Search(ctx, req.Limits, req.Alpha, req.Grid)
	if err != nil {
		played := 0
		if errors.Is(err, search.ErrNoSafeTarget) {
			played = len(res.Curve) * req.Sessions
		}
		s.statsRepo.RecordFailedSearch(played)
		return nil, fmt.Errorf("target search: %w", err)
	}

	operator, _ := middleware.SubjectFromContext(ctx)
	rec := &model.RunRecord{
		ID:                     uuid.New(),
		CreatedAt:              s.now().UTC(),
		Operator:               operator,
		Policy:                 req.Strategy.Policy.Name(),
		RecoveryTargetFraction: req.Strategy.RecoveryTargetFraction,
		CrossoverOffset:        req.Strategy.CrossoverOffset,
		Bankroll:               req.Limits.Bankroll,
		StopLossAbsolute:       req.Limits.StopLossAbsolute,
		MaxRounds:              req.Limits.MaxRounds,
		Seed:                   req.Limits.Seed,
		Sessions:               req.Sessions,
		Alpha:                  req.Alpha,
		Grid:                   req.Grid,
		Result:                 res,
	}

	if s.persistenceEnabled() {
		// Прогон и кривая сохраняются вместе или никак
		err = s.txManager.Do(ctx, func(txCtx context.Context) error {
			if err := s.runRepo.CreateRun(txCtx, rec); err != nil {
				return err
			}
			return s.runRepo.AddCurvePoints(txCtx, rec.ID, res.Curve)
		})
		if err != nil {
			return nil, fmt.Errorf("persist run: %w", err)
		}
		s.log.Info("run persisted", zap.Stringer("id", rec.ID), zap.String("operator", operator))
	}

	s.statsRepo.RecordSearch(model.SearchSummary{
		At:              rec.CreatedAt,
		SafeTarget:      res.SafeTarget,
		RuinProbability: res.RuinProbability,
		Points:          len(res.Curve),
		Sessions:        req.Sessions,
	})
	return rec, nil
}
