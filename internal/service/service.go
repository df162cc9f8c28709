package service

import (
	"context"
	"errors"

	"staking_sim/internal/model"

	"github.com/google/uuid"
)

var ErrPersistenceDisabled = errors.New("run persistence is disabled")

type SimulationService interface {
	// Run один прогон Монте-Карло без поиска
	Run(ctx context.Context, req model.RunRequest) (*model.AggregateResult, error)
	// Search поиск безопасной цели; onPoint вызывается на каждую точку сетки, может быть nil
	Search(ctx context.Context, req model.SearchRequest, onPoint func(model.CurvePoint)) (*model.RunRecord, error)
	GetRun(ctx context.Context, id uuid.UUID) (*model.RunRecord, error)
	Stats() model.SimulationStats
	Presets() ([]model.Preset, error)
	Ladders() []model.Ladder
}
