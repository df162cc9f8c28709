package app

import (
	"path/filepath"
	"testing"

	"staking_sim/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLogger_LevelOverride(t *testing.T) {
	t.Setenv("SIMULATOR_LOG_LEVEL", "debug")
	t.Setenv("SIMULATOR_LOG_FILE", "")

	for _, level := range []string{"WARNING", "warning", " Warn "} {
		sp := newServiceProvider(Options{LogLevel: level})
		l := sp.Logger()
		assert.False(t, l.Core().Enabled(zapcore.InfoLevel), level)
		assert.True(t, l.Core().Enabled(zapcore.WarnLevel), level)
	}

	sp := newServiceProvider(Options{})
	assert.True(t, sp.Logger().Core().Enabled(zapcore.DebugLevel))

	assert.Panics(t, func() {
		newServiceProvider(Options{LogLevel: "chatty"}).Logger()
	})
}

func TestPresetsCfg_Fallback(t *testing.T) {
	t.Setenv("SIMULATOR_LOG_LEVEL", "error")
	t.Setenv("SIM_PRESETS_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	sp := newServiceProvider(Options{})
	presets := sp.PresetsCfg()
	require.NotNil(t, presets)
	assert.Equal(t, []string{model.DefaultPresetName}, presets.Names())

	assert.Panics(t, func() {
		newServiceProvider(Options{PresetsFile: filepath.Join(t.TempDir(), "nope.yaml")}).PresetsCfg()
	})
}
