package logger

import (
	"fmt"

	"staking_sim/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New логгер в консоль (stderr) и, если задан, дополнительно в файл
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level())
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Development = false
	zc.DisableStacktrace = true
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	zc.OutputPaths = []string{"stderr"}
	if cfg.File() != "" {
		zc.OutputPaths = append(zc.OutputPaths, cfg.File())
	}

	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l.Named("simulator"), nil
}
