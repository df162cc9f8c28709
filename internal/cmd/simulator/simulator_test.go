package simulator

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"staking_sim/internal/model"
	"staking_sim/internal/service/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) Config {
	t.Helper()
	fs := flag.NewFlagSet("simulator", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg, err := ParseConfig(fs, args)
	require.NoError(t, err)
	return cfg
}

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PG_DSN", "")
	t.Setenv("SIMULATOR_LOG_LEVEL", "error")
	t.Setenv("SIM_PRESETS_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("SIM_WORKERS", "2")
}

func TestParseConfig_OnlyExplicitFlags(t *testing.T) {
	cfg := parse(t)
	assert.Equal(t, model.DefaultPresetName, cfg.Request.Preset)
	assert.Nil(t, cfg.Request.Bankroll)
	assert.Nil(t, cfg.Request.BridgingPolicy)
	assert.Nil(t, cfg.Request.Alpha)
	assert.Empty(t, cfg.Request.ProfitTargetGrid)
	assert.Equal(t, "results", cfg.OutputDir)

	cfg = parse(t,
		"-bankroll", "1000",
		"-policy", model.PolicyStopAtTableLimit,
		"-alpha", "0.05",
		"-seed", "7",
		"-table-max", "500",
		"-profit-target-grid", "10:20:5",
		"-preset", "aggressive",
		"-persist",
	)
	require.NotNil(t, cfg.Request.Bankroll)
	assert.Equal(t, 1000.0, *cfg.Request.Bankroll)
	assert.Equal(t, model.PolicyStopAtTableLimit, *cfg.Request.BridgingPolicy)
	assert.Equal(t, 0.05, *cfg.Request.Alpha)
	assert.Equal(t, uint64(7), *cfg.Request.Seed)
	assert.Equal(t, 500.0, *cfg.Request.TableMax)
	assert.Equal(t, "10:20:5", cfg.Request.ProfitTargetGrid)
	assert.Equal(t, "aggressive", cfg.Request.Preset)
	assert.True(t, cfg.Persist)
	assert.Nil(t, cfg.Request.MaxRounds)
}

func TestParseConfig_BadFlag(t *testing.T) {
	fs := flag.NewFlagSet("simulator", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	_, err := ParseConfig(fs, []string{"-bankroll", "lots"})
	assert.Error(t, err)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, ExitNoSafeTarget, ExitCode(fmt.Errorf("target search: %w", search.ErrNoSafeTarget)))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
}

func TestRun_WritesResults(t *testing.T) {
	isolateEnv(t)
	outDir := filepath.Join(t.TempDir(), "results")

	cfg := parse(t,
		"-n-sessions", "50",
		"-profit-target-grid", "10:30:10",
		"-alpha", "1",
		"-output-dir", outDir,
		"-v",
	)

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), cfg, &out, io.Discard))

	assert.Contains(t, out.String(), "Policy: "+model.PolicyCarryOverIndexDelta+", recovery target 50%, crossover offset 0")
	assert.Contains(t, out.String(), "Testing profit target: $20")
	assert.Contains(t, out.String(), "RECOMMENDED SAFE PROFIT TARGET: $30")

	jsonFiles, err := filepath.Glob(filepath.Join(outDir, "simulation_results_*.json"))
	require.NoError(t, err)
	assert.Len(t, jsonFiles, 1)
	csvFiles, err := filepath.Glob(filepath.Join(outDir, "trade_off_curve_*.csv"))
	require.NoError(t, err)
	assert.Len(t, csvFiles, 1)
}

func TestRun_NoSafeTarget(t *testing.T) {
	isolateEnv(t)
	cfg := parse(t,
		"-bankroll", "20",
		"-n-sessions", "20",
		"-alpha", "0",
		"-profit-target-grid", "100000:100000:1",
		"-output-dir", t.TempDir(),
	)

	err := Run(context.Background(), cfg, io.Discard, io.Discard)
	require.Error(t, err)
	assert.Equal(t, ExitNoSafeTarget, ExitCode(err))
}

func TestRun_InvalidRequest(t *testing.T) {
	isolateEnv(t)
	cfg := parse(t, "-policy", "martingale")

	err := Run(context.Background(), cfg, io.Discard, io.Discard)
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
	assert.Equal(t, 1, ExitCode(err))
}

func TestRun_ListPresets(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
presets:
  aggressive:
    recovery_target_pct: 0.75
`), 0o600))

	cfg := parse(t, "-config", path, "-list-presets")
	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), cfg, &out, io.Discard))

	assert.Contains(t, out.String(), "DEFAULT")
	assert.Contains(t, out.String(), "aggressive")
	assert.Contains(t, out.String(), "recovery_target_pct=0.75")
	assert.Contains(t, out.String(), "L3")
}
