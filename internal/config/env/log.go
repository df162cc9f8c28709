package env

import (
	"fmt"
	"strings"

	"staking_sim/internal/config"

	"github.com/caarlos0/env/v11"
)

type logConfig struct {
	LevelName string `env:"SIMULATOR_LOG_LEVEL" envDefault:"warn"`
	FilePath  string `env:"SIMULATOR_LOG_FILE"`
}

func NewLogConfig() (config.LogConfig, error) {
	var cfg logConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse log config: %w", err)
	}

	level, err := NormalizeLogLevel(cfg.LevelName)
	if err != nil {
		return nil, fmt.Errorf("SIMULATOR_LOG_LEVEL: %w", err)
	}
	cfg.LevelName = level
	return &cfg, nil
}

// NormalizeLogLevel приводит уровень к debug, info, warn или error; warning == warn
func NormalizeLogLevel(s string) (string, error) {
	level := strings.ToLower(strings.TrimSpace(s))
	switch level {
	case "debug", "info", "warn", "error":
		return level, nil
	case "warning":
		return "warn", nil
	}
	return "", fmt.Errorf("invalid log level %q", s)
}

func (c *logConfig) Level() string { return c.LevelName }
func (c *logConfig) File() string  { return c.FilePath }
