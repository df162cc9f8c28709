package simulation

import (
	"context"
	"fmt"

	"staking_sim/internal/model"
	"staking_sim/internal/service/montecarlo"
	"staking_sim/internal/service/session"

	"go.uber.org/zap"
)

// Run один прогон агрегатора с целью из req.Limits
func (s *serv) Run(ctx context.Context, req model.RunRequest) (*model.AggregateResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	machine := session.NewMachine(req.Strategy, req.Game, req.Limits, session.WithLogger(s.settings.MachineLog))
	engine, err := montecarlo.NewEngine(machine, req.Sessions,
		montecarlo.WithStreamMode(s.settings.Mode),
		montecarlo.WithWorkers(s.settings.Workers),
		montecarlo.WithLogger(s.log),
	)
	if err != nil {
		return nil, err
	}

	res, err := engine.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("monte carlo run: %w", err)
	}

	s.statsRepo.RecordRun(req.Sessions)

	s.log.Info("simulation run finished",
		zap.String("policy", req.Strategy.Policy.Name()),
		zap.Float64("profit_target", req.Limits.ProfitTarget),
		zap.Int("sessions", req.Sessions),
		zap.Float64("ruin", res.Probabilities.Ruin()),
	)
	return &res, nil
}
