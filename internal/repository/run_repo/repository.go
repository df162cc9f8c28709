package run_repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"staking_sim/internal/model"
	"staking_sim/internal/repository"
	repoModel "staking_sim/internal/repository/run_repo/model"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	runsTable  = "simulation_runs"
	curveTable = "simulation_curve_points"

	colID              = "id"
	colCreatedAt       = "created_at"
	colOperator        = "operator"
	colPolicy          = "bridging_policy"
	colRecovery        = "recovery_target_fraction"
	colOffset          = "crossover_offset"
	colBankroll        = "bankroll"
	colStopLoss        = "stop_loss_absolute"
	colMaxRounds       = "max_rounds"
	colSeed            = "seed"
	colSessions        = "sessions"
	colAlpha           = "alpha"
	colGridMin         = "grid_min"
	colGridMax         = "grid_max"
	colGridStep        = "grid_step"
	colSafeTarget      = "safe_target"
	colRuinProbability = "ruin_probability"
	colResult          = "result"

	colRunID          = "run_id"
	colIdx            = "idx"
	colProfitTarget   = "profit_target"
	colProbHitTarget  = "prob_hit_target"
	colMeanPnL        = "mean_pnl"
	colStdPnL         = "std_pnl"
	colMeanRounds     = "mean_rounds"
	colMedianToTarget = "median_rounds_to_target"
)

var runColumns = []string{
	colID, colCreatedAt, colOperator, colPolicy, colRecovery, colOffset,
	colBankroll, colStopLoss, colMaxRounds, colSeed, colSessions, colAlpha,
	colGridMin, colGridMax, colGridStep, colSafeTarget, colRuinProbability, colResult,
}

var curveColumns = []string{
	colRunID, colIdx, colProfitTarget, colRuinProbability, colProbHitTarget,
	colMeanPnL, colStdPnL, colMeanRounds, colMedianToTarget,
}

type repo struct {
	db     trmpgx.Tr
	getter *trmpgx.CtxGetter
}

// NewRunRepository запросы идут в транзакцию из контекста, если она есть
func NewRunRepository(db trmpgx.Tr, getter *trmpgx.CtxGetter) repository.RunRepository {
	return &repo{
		db:     db,
		getter: getter,
	}
}

func (r *repo) conn(ctx context.Context) trmpgx.Tr {
	return r.getter.DefaultTrOrDB(ctx, r.db)
}

// CreateRun - сохранение прогона без точек кривой
func (r *repo) CreateRun(ctx context.Context, run *model.RunRecord) error {
	row, err := toRunRow(run)
	if err != nil {
		return err
	}

	sqlStr, args, err := insertRunQuery(row).ToSql()
	if err != nil {
		return err
	}

	_, err = r.conn(ctx).Exec(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// AddCurvePoints - все точки одним запросом
func (r *repo) AddCurvePoints(ctx context.Context, runID uuid.UUID, points []model.CurvePoint) error {
	if len(points) == 0 {
		return nil
	}

	sqlStr, args, err := insertCurveQuery(runID, points).ToSql()
	if err != nil {
		return err
	}

	_, err = r.conn(ctx).Exec(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("insert curve points: %w", err)
	}
	return nil
}

// GetRun - прогон с кривой по возрастанию цели
func (r *repo) GetRun(ctx context.Context, id uuid.UUID) (*model.RunRecord, error) {
	sqlStr, args, err := selectRunQuery(id).ToSql()
	if err != nil {
		return nil, err
	}

	var row repoModel.Run
	err = r.conn(ctx).QueryRow(ctx, sqlStr, args...).Scan(
		&row.ID, &row.CreatedAt, &row.Operator, &row.Policy, &row.RecoveryTargetFraction, &row.CrossoverOffset,
		&row.Bankroll, &row.StopLossAbsolute, &row.MaxRounds, &row.Seed, &row.Sessions, &row.Alpha,
		&row.GridMin, &row.GridMax, &row.GridStep, &row.SafeTarget, &row.RuinProbability, &row.Result,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select run: %w", err)
	}

	sqlStr, args, err = selectCurveQuery(id).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.conn(ctx).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("select curve: %w", err)
	}
	defer rows.Close()

	var points []repoModel.CurvePoint
	for rows.Next() {
		var p repoModel.CurvePoint
		if err := rows.Scan(
			&p.RunID, &p.Idx, &p.ProfitTarget, &p.RuinProbability, &p.ProbHitTarget,
			&p.MeanPnL, &p.StdPnL, &p.MeanRounds, &p.MedianRoundsToTarget,
		); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return fromRows(row, points)
}

func insertRunQuery(row repoModel.Run) sq.InsertBuilder {
	return sq.Insert(runsTable).
		Columns(runColumns...).
		Values(
			row.ID, row.CreatedAt, row.Operator, row.Policy, row.RecoveryTargetFraction, row.CrossoverOffset,
			row.Bankroll, row.StopLossAbsolute, row.MaxRounds, row.Seed, row.Sessions, row.Alpha,
			row.GridMin, row.GridMax, row.GridStep, row.SafeTarget, row.RuinProbability, row.Result,
		).
		PlaceholderFormat(sq.Dollar)
}

func insertCurveQuery(runID uuid.UUID, points []model.CurvePoint) sq.InsertBuilder {
	q := sq.Insert(curveTable).
		Columns(curveColumns...).
		PlaceholderFormat(sq.Dollar)
	for _, p := range points {
		q = q.Values(runID, p.Index, p.ProfitTarget, p.RuinProbability, p.ProbHitTarget,
			p.MeanPnL, p.StdPnL, p.MeanRounds, p.MedianRoundsToTarget)
	}
	return q
}

func selectRunQuery(id uuid.UUID) sq.SelectBuilder {
	return sq.Select(runColumns...).
		From(runsTable).
		Where(sq.Eq{colID: id}).
		PlaceholderFormat(sq.Dollar)
}

func selectCurveQuery(runID uuid.UUID) sq.SelectBuilder {
	return sq.Select(curveColumns...).
		From(curveTable).
		Where(sq.Eq{colRunID: runID}).
		OrderBy(colIdx).
		PlaceholderFormat(sq.Dollar)
}

func toRunRow(run *model.RunRecord) (repoModel.Run, error) {
	result, err := json.Marshal(run.Result.Result)
	if err != nil {
		return repoModel.Run{}, fmt.Errorf("marshal aggregate result: %w", err)
	}
	return repoModel.Run{
		ID:                     run.ID,
		CreatedAt:              run.CreatedAt,
		Operator:               run.Operator,
		Policy:                 run.Policy,
		RecoveryTargetFraction: run.RecoveryTargetFraction,
		CrossoverOffset:        run.CrossoverOffset,
		Bankroll:               run.Bankroll,
		StopLossAbsolute:       run.StopLossAbsolute,
		MaxRounds:              run.MaxRounds,
		Seed:                   int64(run.Seed),
		Sessions:               run.Sessions,
		Alpha:                  run.Alpha,
		GridMin:                run.Grid.Min,
		GridMax:                run.Grid.Max,
		GridStep:               run.Grid.Step,
		SafeTarget:             run.Result.SafeTarget,
		RuinProbability:        run.Result.RuinProbability,
		Result:                 result,
	}, nil
}

func fromRows(row repoModel.Run, points []repoModel.CurvePoint) (*model.RunRecord, error) {
	var agg model.AggregateResult
	if len(row.Result) > 0 {
		if err := json.Unmarshal(row.Result, &agg); err != nil {
			return nil, fmt.Errorf("unmarshal aggregate result: %w", err)
		}
	}

	rec := &model.RunRecord{
		ID:                     row.ID,
		CreatedAt:              row.CreatedAt,
		Operator:               row.Operator,
		Policy:                 row.Policy,
		RecoveryTargetFraction: row.RecoveryTargetFraction,
		CrossoverOffset:        row.CrossoverOffset,
		Bankroll:               row.Bankroll,
		StopLossAbsolute:       row.StopLossAbsolute,
		MaxRounds:              row.MaxRounds,
		Seed:                   uint64(row.Seed),
		Sessions:               row.Sessions,
		Alpha:                  row.Alpha,
		Grid:                   model.Grid{Min: row.GridMin, Max: row.GridMax, Step: row.GridStep},
		Result: model.SearchResult{
			SafeTarget:      row.SafeTarget,
			RuinProbability: row.RuinProbability,
			Result:          agg,
			Curve:           make([]model.CurvePoint, len(points)),
		},
	}
	for i, p := range points {
		rec.Result.Curve[i] = model.CurvePoint{
			Index:                p.Idx,
			ProfitTarget:         p.ProfitTarget,
			RuinProbability:      p.RuinProbability,
			ProbHitTarget:        p.ProbHitTarget,
			MeanPnL:              p.MeanPnL,
			StdPnL:               p.StdPnL,
			MeanRounds:           p.MeanRounds,
			MedianRoundsToTarget: p.MedianRoundsToTarget,
		}
	}
	return rec, nil
}
