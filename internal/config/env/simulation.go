package env

import (
	"fmt"

	"staking_sim/internal/config"
	"staking_sim/internal/model"

	"github.com/caarlos0/env/v11"
)

type simulationConfig struct {
	SessionsN   int     `env:"SIM_SESSIONS" envDefault:"100000"`
	AlphaV      float64 `env:"SIM_ALPHA" envDefault:"0.01"`
	SeedV       uint64  `env:"SIM_SEED" envDefault:"42"`
	WorkersN    int     `env:"SIM_WORKERS" envDefault:"0"`
	Mode        string  `env:"SIM_STREAM_MODE" envDefault:"shared"`
	BankrollV   float64 `env:"SIM_BANKROLL" envDefault:"800000"`
	StopLoss    float64 `env:"SIM_STOP_LOSS_PCT" envDefault:"10"`
	MaxRoundsN  int     `env:"SIM_MAX_ROUNDS" envDefault:"5000"`
	GridRaw     string  `env:"SIM_PROFIT_TARGET_GRID" envDefault:"50:5000:50"`
	PresetsPath string  `env:"SIM_PRESETS_FILE" envDefault:"presets.yaml"`

	grid model.Grid
}

func NewSimulationConfig() (config.SimulationConfig, error) {
	var cfg simulationConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse simulation config: %w", err)
	}

	grid, err := model.ParseGrid(cfg.GridRaw)
	if err != nil {
		return nil, fmt.Errorf("SIM_PROFIT_TARGET_GRID: %w", err)
	}
	cfg.grid = grid

	switch {
	case cfg.SessionsN <= 0:
		return nil, fmt.Errorf("SIM_SESSIONS must be positive, got %d", cfg.SessionsN)
	case cfg.AlphaV < 0 || cfg.AlphaV > 1:
		return nil, fmt.Errorf("SIM_ALPHA must be in [0, 1], got %v", cfg.AlphaV)
	case cfg.WorkersN < 0:
		return nil, fmt.Errorf("SIM_WORKERS must not be negative, got %d", cfg.WorkersN)
	case cfg.BankrollV <= 0:
		return nil, fmt.Errorf("SIM_BANKROLL must be positive, got %v", cfg.BankrollV)
	case cfg.StopLoss <= 0 || cfg.StopLoss > 100:
		return nil, fmt.Errorf("SIM_STOP_LOSS_PCT must be in (0, 100], got %v", cfg.StopLoss)
	case cfg.MaxRoundsN <= 0:
		return nil, fmt.Errorf("SIM_MAX_ROUNDS must be positive, got %d", cfg.MaxRoundsN)
	case cfg.Mode != "shared" && cfg.Mode != "split":
		return nil, fmt.Errorf("SIM_STREAM_MODE must be shared or split, got %q", cfg.Mode)
	}

	return &cfg, nil
}

func (c *simulationConfig) Sessions() int                { return c.SessionsN }
func (c *simulationConfig) Alpha() float64               { return c.AlphaV }
func (c *simulationConfig) Seed() uint64                 { return c.SeedV }
func (c *simulationConfig) Workers() int                 { return c.WorkersN }
func (c *simulationConfig) StreamMode() string           { return c.Mode }
func (c *simulationConfig) Bankroll() float64            { return c.BankrollV }
func (c *simulationConfig) StopLossPct() float64         { return c.StopLoss }
func (c *simulationConfig) MaxRounds() int               { return c.MaxRoundsN }
func (c *simulationConfig) ProfitTargetGrid() model.Grid { return c.grid }
func (c *simulationConfig) PresetsFile() string          { return c.PresetsPath }
