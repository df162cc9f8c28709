package simulation

import (
	"time"

	"github.com/shopspring/decimal"
)

type Ladder struct {
	Name   string    `json:"name"`
	Stakes []float64 `json:"stakes"`
}

// RunRequest Незаданные поля берутся из пресета и настроек сервера
type RunRequest struct {
	Preset            string   `json:"preset,omitempty"`              // Имя пресета, по умолчанию DEFAULT
	BridgingPolicy    *string  `json:"bridging_policy,omitempty"`     // Переопределение политики пресета
	RecoveryTargetPct *float64 `json:"recovery_target_pct,omitempty"` // Доля отыгрыша (0, 1]
	CrossoverOffset   *int     `json:"crossover_offset,omitempty"`    // Ступень на следующей лестнице
	Ladders           []Ladder `json:"ladders,omitempty"`             // Свои лестницы вместо лестниц сервера

	PayoutRatio    *float64 `json:"payout_ratio,omitempty"`
	WinProbability *float64 `json:"win_probability,omitempty"`

	Bankroll     *float64 `json:"bankroll,omitempty"`
	ProfitTarget float64  `json:"profit_target,omitempty"` // Для поиска не нужен
	StopLossPct  *float64 `json:"stop_loss_pct,omitempty"` // Процент от банкролла
	StopLossAbs  *float64 `json:"stop_loss_abs,omitempty"` // Приоритетнее stop_loss_pct
	MaxRounds    *int     `json:"max_rounds,omitempty"`
	TableMax     *float64 `json:"table_max,omitempty"`
	Seed         *uint64  `json:"seed,omitempty"`
	Sessions     *int     `json:"n_sessions,omitempty"`
}

type SearchRequest struct {
	RunRequest
	Alpha            *float64 `json:"alpha,omitempty"`
	ProfitTargetGrid string   `json:"profit_target_grid,omitempty"` // min:max:step
}

type AggregateResponse struct {
	Sessions int `json:"n_sessions"`

	ProbHitTarget         float64 `json:"prob_hit_target"`
	ProbHitStopLoss       float64 `json:"prob_hit_stop_loss"`
	ProbHitMaxRounds      float64 `json:"prob_hit_max_rounds"`
	ProbHitTableLimit     float64 `json:"prob_hit_table_limit"`
	ProbBankrollExhausted float64 `json:"prob_bankroll_exhausted"`
	RuinProbability       float64 `json:"ruin_probability"`

	MeanPnL      decimal.Decimal `json:"mean_pnl"`
	MedianPnL    decimal.Decimal `json:"median_pnl"`
	StdPnL       decimal.Decimal `json:"std_pnl"`
	SkewPnL      float64         `json:"skew_pnl"`
	KurtosisPnL  float64         `json:"kurtosis_pnl"`
	PnL95CILower decimal.Decimal `json:"pnl_95ci_lower"`
	PnL95CIUpper decimal.Decimal `json:"pnl_95ci_upper"`

	MeanRounds           float64 `json:"mean_rounds"`
	MedianRounds         float64 `json:"median_rounds"`
	MeanRoundsToTarget   float64 `json:"mean_rounds_to_target"`
	MedianRoundsToTarget float64 `json:"median_rounds_to_target"`

	MeanMaxStake      decimal.Decimal `json:"mean_max_stake"`
	MedianMaxStake    decimal.Decimal `json:"median_max_stake"`
	MeanMaxDrawdown   decimal.Decimal `json:"mean_max_drawdown"`
	MedianMaxDrawdown decimal.Decimal `json:"median_max_drawdown"`
	ProbTouchLadder   []float64       `json:"prob_touch_ladder"`
	ProbTopOfLadder   float64         `json:"prob_top_of_ladder"`

	MeanTotalWagered decimal.Decimal `json:"mean_total_wagered"`
}

type CurvePoint struct {
	ProfitTarget         decimal.Decimal `json:"profit_target"`
	RuinProbability      float64         `json:"ruin_probability"`
	ProbHitTarget        float64         `json:"prob_hit_target"`
	MeanPnL              decimal.Decimal `json:"mean_pnl"`
	StdPnL               decimal.Decimal `json:"std_pnl"`
	MeanRounds           float64         `json:"mean_rounds"`
	MedianRoundsToTarget float64         `json:"median_rounds_to_target"`
}

type Parameters struct {
	BridgingPolicy    string          `json:"bridging_policy"`
	RecoveryTargetPct float64         `json:"recovery_target_pct"`
	CrossoverOffset   int             `json:"crossover_offset"`
	Bankroll          decimal.Decimal `json:"bankroll"`
	StopLossAbs       decimal.Decimal `json:"stop_loss_abs"`
	MaxRounds         int             `json:"max_rounds"`
	Sessions          int             `json:"n_sessions"`
	Alpha             float64         `json:"alpha"`
	Seed              uint64          `json:"seed"`
	ProfitTargetGrid  string          `json:"profit_target_grid"`
}

type SearchResponse struct {
	RunID           string            `json:"run_id"`
	CreatedAt       time.Time         `json:"created_at"`
	Operator        string            `json:"operator,omitempty"`
	Parameters      Parameters        `json:"parameters"`
	SafeTarget      decimal.Decimal   `json:"safe_target"`
	RuinProbability float64           `json:"ruin_probability"`
	Results         AggregateResponse `json:"results"`
	TradeOffCurve   []CurvePoint      `json:"trade_off_curve"`
}

type SearchSummary struct {
	At              time.Time       `json:"at"`
	SafeTarget      decimal.Decimal `json:"safe_target"`
	RuinProbability float64         `json:"ruin_probability"`
	Points          int             `json:"points"`
	Sessions        int             `json:"n_sessions"`
}

type StatsResponse struct {
	Runs              int             `json:"runs"`
	Searches          int             `json:"searches"`
	FailedSearches    int             `json:"failed_searches"`
	SessionsSimulated int64           `json:"sessions_simulated"`
	LastSafeTarget    decimal.Decimal `json:"last_safe_target"`
	WindowMeanRuin    float64         `json:"window_mean_ruin"`
	Window            []SearchSummary `json:"window"`
}

type Preset struct {
	Name              string  `json:"name"`
	BridgingPolicy    string  `json:"bridging_policy"`
	RecoveryTargetPct float64 `json:"recovery_target_pct"`
	CrossoverOffset   int     `json:"crossover_offset"`
}

type PresetsResponse struct {
	Presets []Preset `json:"presets"`
	Ladders []Ladder `json:"ladders"`
}

// WSMessage сообщение потока поиска: point, result или error
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
	Time int64       `json:"time"`
}

const (
	MsgTypePoint  = "point"
	MsgTypeResult = "result"
	MsgTypeError  = "error"
)
