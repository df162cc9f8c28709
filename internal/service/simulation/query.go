package simulation

import (
	"context"

	"staking_sim/internal/model"
	"staking_sim/internal/service"

	"github.com/google/uuid"
)

func (s *serv) GetRun(ctx context.Context, id uuid.UUID) (*model.RunRecord, error) {
	if !s.persistenceEnabled() {
		return nil, service.ErrPersistenceDisabled
	}
	return s.runRepo.GetRun(ctx, id)
}

func (s *serv) Stats() model.SimulationStats {
	return s.statsRepo.Stats()
}

// Presets все пресеты, DEFAULT первым
func (s *serv) Presets() ([]model.Preset, error) {
	names := s.presets.Names()
	out := make([]model.Preset, 0, len(names))
	for _, name := range names {
		p, err := s.presets.Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *serv) Ladders() []model.Ladder {
	return s.presets.Ladders()
}
