package repository

import (
	"context"
	"errors"

	"staking_sim/internal/model"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

type RunRepository interface {
	CreateRun(ctx context.Context, run *model.RunRecord) error
	AddCurvePoints(ctx context.Context, runID uuid.UUID, points []model.CurvePoint) error
	GetRun(ctx context.Context, id uuid.UUID) (*model.RunRecord, error)
}

type StatsRepository interface {
	RecordRun(sessions int)
	RecordSearch(summary model.SearchSummary)
	RecordFailedSearch(sessions int)
	Stats() model.SimulationStats
}
