package simulation

import (
	"context"
	"errors"
	"testing"
	"time"

	"staking_sim/internal/config/env"
	"staking_sim/internal/middleware"
	"staking_sim/internal/model"
	"staking_sim/internal/repository"
	"staking_sim/internal/repository/stats_repo"
	"staking_sim/internal/service"
	"staking_sim/internal/service/search"

	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	calls int
}

func (f *fakeTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

func (f *fakeTx) DoWithSettings(ctx context.Context, _ trm.Settings, fn func(ctx context.Context) error) error {
	return f.Do(ctx, fn)
}

type fakeRunRepo struct {
	runs     map[uuid.UUID]*model.RunRecord
	curves   map[uuid.UUID][]model.CurvePoint
	curveErr error
}

func newFakeRunRepo() *fakeRunRepo {
	return &fakeRunRepo{runs: map[uuid.UUID]*model.RunRecord{}, curves: map[uuid.UUID][]model.CurvePoint{}}
}

func (f *fakeRunRepo) CreateRun(_ context.Context, run *model.RunRecord) error {
	f.runs[run.ID] = run
	return nil
}

func (f *fakeRunRepo) AddCurvePoints(_ context.Context, id uuid.UUID, points []model.CurvePoint) error {
	if f.curveErr != nil {
		return f.curveErr
	}
	f.curves[id] = points
	return nil
}

func (f *fakeRunRepo) GetRun(_ context.Context, id uuid.UUID) (*model.RunRecord, error) {
	r, ok := f.runs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r, nil
}

func runRequest(t *testing.T) model.RunRequest {
	t.Helper()
	strategy, err := model.NewStrategy(model.DefaultLadders(), model.CarryOverIndexDelta{}, 0.5, 0)
	require.NoError(t, err)
	limits, err := model.NewSessionLimits(800000, 100, 80000, 2000, nil, 42)
	require.NoError(t, err)
	return model.RunRequest{Strategy: strategy, Game: model.EvenMoneyGame(), Limits: limits, Sessions: 100}
}

func newService(runRepo repository.RunRepository, tx trm.Manager) service.SimulationService {
	return NewSimulationService(runRepo, stats_repo.NewStatsRepository(), tx, env.NewBuiltinPresetsConfig(), Settings{Workers: 2}, nil)
}

func TestRun(t *testing.T) {
	svc := newService(nil, nil)

	res, err := svc.Run(context.Background(), runRequest(t))
	require.NoError(t, err)
	assert.Equal(t, 100, res.Sessions)

	again, err := svc.Run(context.Background(), runRequest(t))
	require.NoError(t, err)
	assert.Equal(t, res, again)

	st := svc.Stats()
	assert.Equal(t, 2, st.Runs)
	assert.Equal(t, int64(200), st.SessionsSimulated)
}

func TestRun_Invalid(t *testing.T) {
	req := runRequest(t)
	req.Sessions = 0
	_, err := newService(nil, nil).Run(context.Background(), req)
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}

func TestSearch_PersistsAndReportsProgress(t *testing.T) {
	repo := newFakeRunRepo()
	tx := &fakeTx{}
	svc := newService(repo, tx)
	svc.(*serv).now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	req := model.SearchRequest{RunRequest: runRequest(t), Alpha: 1, Grid: model.Grid{Min: 50, Max: 150, Step: 50}}
	var points []model.CurvePoint
	ctx := middleware.WithSubject(context.Background(), "desk")

	rec, err := svc.Search(ctx, req, func(p model.CurvePoint) { points = append(points, p) })
	require.NoError(t, err)

	assert.Len(t, points, 3)
	assert.Equal(t, 150.0, rec.Result.SafeTarget)
	assert.Equal(t, "desk", rec.Operator)
	assert.Equal(t, model.PolicyCarryOverIndexDelta, rec.Policy)
	assert.Equal(t, uint64(42), rec.Seed)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), rec.CreatedAt)

	assert.Equal(t, 1, tx.calls)
	assert.Len(t, repo.curves[rec.ID], 3)

	got, err := svc.GetRun(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	_, err = svc.GetRun(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	st := svc.Stats()
	assert.Equal(t, 1, st.Searches)
	assert.Equal(t, 150.0, st.LastSafeTarget)
	assert.Equal(t, int64(300), st.SessionsSimulated)
}

func TestSearch_NoSafeTarget(t *testing.T) {
	svc := newService(nil, nil)
	req := model.SearchRequest{RunRequest: runRequest(t), Alpha: 0, Grid: model.Grid{Min: 100000, Max: 200000, Step: 100000}}
	// банкролла хватает на пару проигрышей
	req.Limits.Bankroll = 20

	_, err := svc.Search(context.Background(), req, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, search.ErrNoSafeTarget))

	st := svc.Stats()
	assert.Equal(t, 1, st.FailedSearches)
	assert.Equal(t, int64(200), st.SessionsSimulated)
}

func TestSearch_PersistFailure(t *testing.T) {
	repo := newFakeRunRepo()
	repo.curveErr = errors.New("disk full")
	svc := newService(repo, &fakeTx{})

	req := model.SearchRequest{RunRequest: runRequest(t), Alpha: 1, Grid: model.Grid{Min: 50, Max: 50, Step: 50}}
	_, err := svc.Search(context.Background(), req, nil)
	assert.ErrorContains(t, err, "disk full")
	assert.Zero(t, svc.Stats().Searches)
}

func TestGetRun_PersistenceDisabled(t *testing.T) {
	_, err := newService(nil, nil).GetRun(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrPersistenceDisabled)
}

func TestPresets(t *testing.T) {
	svc := newService(nil, nil)
	presets, err := svc.Presets()
	require.NoError(t, err)
	require.Len(t, presets, 1)
	assert.Equal(t, model.DefaultPresetName, presets[0].Name)
	assert.Len(t, svc.Ladders(), 3)
}
