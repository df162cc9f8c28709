package config

import (
	"time"

	"staking_sim/internal/model"

	"github.com/joho/godotenv"
)

func Load(path string) error {
	err := godotenv.Load(path)
	if err != nil {
		return err
	}
	return nil
}

type HTTPConfig interface {
	Address() string
}

type PGConfig interface {
	DSN() string
	// Enabled false — сохранение прогонов выключено
	Enabled() bool
}

type JWTConfig interface {
	AccessTokenSecretKey() []byte
	AccessTokenDuration() time.Duration
	// Enabled false — API без авторизации
	Enabled() bool
}

type LogConfig interface {
	Level() string
	File() string
}

// SimulationConfig значения по умолчанию для прогонов и поиска
type SimulationConfig interface {
	Sessions() int
	Alpha() float64
	Seed() uint64
	Workers() int
	StreamMode() string
	Bankroll() float64
	StopLossPct() float64
	MaxRounds() int
	ProfitTargetGrid() model.Grid
	PresetsFile() string
}

// PresetsConfig именованные пресеты стратегии и набор лестниц
type PresetsConfig interface {
	Names() []string
	Get(name string) (model.Preset, error)
	Ladders() []model.Ladder
}
