// Package simulator поиск безопасной цели по прибыли из командной строки.
package simulator

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"staking_sim/internal/api/dto/simulation"
	"staking_sim/internal/app"
	"staking_sim/internal/converter"
	"staking_sim/internal/model"
	"staking_sim/internal/report"
	"staking_sim/internal/service/search"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ExitNoSafeTarget код выхода, если в сетке нет безопасной цели
const ExitNoSafeTarget = 2

type Config struct {
	EnvFile     string
	PresetsFile string
	Preset      string
	ListPresets bool
	Verbose     bool
	LogLevel    string
	Workers     int
	Persist     bool
	OutputDir   string

	// Request только флаги, заданные явно; остальное берётся из пресета и SIM_*
	Request simulation.SearchRequest
}

// ParseConfig разбирает флаги. Значения по умолчанию у флагов только для справки:
// незаданный флаг не попадает в запрос.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	var (
		policy         string
		recoveryTarget float64
		offset         int
		bankroll       float64
		stopLossPct    float64
		maxRounds      int
		tableMax       float64
		sessions       int
		alpha          float64
		seed           uint64
		grid           string
	)

	fs.StringVar(&cfg.EnvFile, "env", ".env", "path to .env file")
	fs.StringVar(&cfg.PresetsFile, "config", "", "presets YAML file (default: SIM_PRESETS_FILE)")
	fs.StringVar(&cfg.Preset, "preset", model.DefaultPresetName, "preset name")
	fs.BoolVar(&cfg.ListPresets, "list-presets", false, "list presets and exit")
	fs.BoolVar(&cfg.Verbose, "v", false, "print every grid point")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "debug, info, warn or error (default: SIMULATOR_LOG_LEVEL)")
	fs.IntVar(&cfg.Workers, "workers", 0, "grid points evaluated in parallel (default: SIM_WORKERS)")
	fs.BoolVar(&cfg.Persist, "persist", false, "save the run to Postgres (requires PG_DSN)")
	fs.StringVar(&cfg.OutputDir, "output-dir", "results", "directory for JSON and CSV results")

	fs.StringVar(&policy, "policy", model.PolicyCarryOverIndexDelta, "bridging policy: advance_to_next_ladder_start, carry_over_index_delta, stop_at_table_limit")
	fs.Float64Var(&recoveryTarget, "recovery-target-pct", 0.5, "fraction of the loss to recover, (0, 1]")
	fs.IntVar(&offset, "crossover-offset", 0, "index on the next ladder after a bridge")
	fs.Float64Var(&bankroll, "bankroll", 800000, "starting bankroll")
	fs.Float64Var(&stopLossPct, "stop-loss-pct", 10, "stop loss as percent of bankroll")
	fs.IntVar(&maxRounds, "max-rounds", 5000, "maximum rounds per session")
	fs.Float64Var(&tableMax, "table-max", 0, "table maximum stake (default: no limit)")
	fs.IntVar(&sessions, "n-sessions", 100000, "sessions per grid point")
	fs.Float64Var(&alpha, "alpha", 0.01, "maximum acceptable ruin probability")
	fs.Uint64Var(&seed, "seed", 42, "random seed")
	fs.StringVar(&grid, "profit-target-grid", "50:5000:50", "profit target grid min:max:step")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	req := &cfg.Request
	req.Preset = cfg.Preset
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "policy":
			req.BridgingPolicy = &policy
		case "recovery-target-pct":
			req.RecoveryTargetPct = &recoveryTarget
		case "crossover-offset":
			req.CrossoverOffset = &offset
		case "bankroll":
			req.Bankroll = &bankroll
		case "stop-loss-pct":
			req.StopLossPct = &stopLossPct
		case "max-rounds":
			req.MaxRounds = &maxRounds
		case "table-max":
			req.TableMax = &tableMax
		case "n-sessions":
			req.Sessions = &sessions
		case "alpha":
			req.Alpha = &alpha
		case "seed":
			req.Seed = &seed
		case "profit-target-grid":
			req.ProfitTargetGrid = grid
		}
	})

	return cfg, nil
}

// ExitCode код выхода процесса для ошибки Run
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, search.ErrNoSafeTarget):
		return ExitNoSafeTarget
	}
	return 1
}

func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	a := app.NewApp(app.Options{
		LogLevel:    cfg.LogLevel,
		PresetsFile: cfg.PresetsFile,
		Workers:     cfg.Workers,
		NoPersist:   !cfg.Persist,
	})
	a.Init(cfg.EnvFile)
	sp := a.ServiceProvider
	defer sp.Close()

	if cfg.ListPresets {
		return listPresets(out, sp)
	}

	req, err := converter.ToSearchRequest(cfg.Request, sp.SimulationCfg(), sp.PresetsCfg())
	if err != nil {
		return err
	}

	if cfg.Persist && !sp.PersistenceEnabled() {
		fmt.Fprintln(errOut, "Warning: -persist ignored, PG_DSN is not set")
	}

	p := message.NewPrinter(language.English)
	p.Fprintf(out, "Policy: %s, recovery target %.0f%%, crossover offset %d\n",
		req.Strategy.Policy.Name(), req.Strategy.RecoveryTargetFraction*100, req.Strategy.CrossoverOffset)
	p.Fprintf(out, "\nSearching for safe profit target with alpha = %v...\n", req.Alpha)
	p.Fprintf(out, "Profit target grid: %s\n", req.Grid)
	p.Fprintf(out, "Using %d sessions per target\n\n", req.Sessions)

	var onPoint func(model.CurvePoint)
	if cfg.Verbose {
		onPoint = func(pt model.CurvePoint) {
			p.Fprintf(out, "Testing profit target: $%.0f... Ruin prob: %.4f\n", pt.ProfitTarget, pt.RuinProbability)
		}
	}

	rec, err := sp.SimulationService(ctx).Search(ctx, req, onPoint)
	if err != nil {
		return err
	}

	ladders := make([]string, len(req.Strategy.Ladders))
	for i, l := range req.Strategy.Ladders {
		ladders[i] = l.Name
	}
	rep := report.Report{Record: rec, Game: req.Game, Ladders: ladders}

	if err := report.WriteSummary(out, rep); err != nil {
		return err
	}

	paths, err := report.Save(cfg.OutputDir, rep, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nResults saved to: %s\n", paths.JSON)
	fmt.Fprintf(out, "Trade-off curve saved to: %s\n", paths.CSV)
	if sp.PersistenceEnabled() {
		fmt.Fprintf(out, "Run stored with id: %s\n", rec.ID)
	}
	return nil
}

func listPresets(out io.Writer, sp *app.ServiceProvider) error {
	presets := sp.PresetsCfg()
	fmt.Fprintln(out, "Available presets:")
	for _, name := range presets.Names() {
		p, err := presets.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %-20s policy=%s recovery_target_pct=%v crossover_offset=%d\n",
			p.Name, p.Policy.Name(), p.RecoveryTargetFraction, p.CrossoverOffset)
	}
	fmt.Fprintln(out, "\nLadders:")
	for _, l := range presets.Ladders() {
		fmt.Fprintf(out, "  %-4s %v\n", l.Name, l.Stakes)
	}
	return nil
}
