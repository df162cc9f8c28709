package app

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"runtime"

	simulationAPI "staking_sim/internal/api/simulation"
	"staking_sim/internal/config"
	"staking_sim/internal/config/env"
	"staking_sim/internal/logger"
	"staking_sim/internal/middleware"
	"staking_sim/internal/repository"
	"staking_sim/internal/repository/run_repo"
	"staking_sim/internal/repository/stats_repo"
	"staking_sim/internal/service"
	"staking_sim/internal/service/montecarlo"
	"staking_sim/internal/service/simulation"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Options переопределения из командной строки, пустые значения не меняют конфиг
type Options struct {
	LogLevel    string
	PresetsFile string
	Workers     int
	// NoPersist не подключаться к базе, даже если задан PG_DSN
	NoPersist bool
}

type ServiceProvider struct {
	opts Options

	// Logging
	logCfg config.LogConfig
	log    *zap.Logger

	//TXManager
	txManager trm.Manager

	// Database
	pgConfig config.PGConfig
	dbClient *pgxpool.Pool

	// Simulation bits
	simCfg     config.SimulationConfig
	presetsCfg config.PresetsConfig
	runRepo    repository.RunRepository
	statsRepo  repository.StatsRepository
	simServ    service.SimulationService
	simHand    *simulationAPI.Handler

	// Auth
	jwtCfg config.JWTConfig

	// Router and HTTP config
	httpCfg config.HTTPConfig
	router  chi.Router
}

func newServiceProvider(opts Options) *ServiceProvider {
	return &ServiceProvider{opts: opts}
}

func (sp *ServiceProvider) LogCfg() config.LogConfig {
	if sp.logCfg == nil {
		cfg, err := env.NewLogConfig()
		if err != nil {
			panic("failed to get log config: " + err.Error())
		}
		sp.logCfg = cfg
	}
	return sp.logCfg
}

func (sp *ServiceProvider) Logger() *zap.Logger {
	if sp.log == nil {
		cfg := sp.LogCfg()
		if sp.opts.LogLevel != "" {
			level, err := env.NormalizeLogLevel(sp.opts.LogLevel)
			if err != nil {
				panic("failed to get log level: " + err.Error())
			}
			cfg = levelOverride{LogConfig: cfg, level: level}
		}
		l, err := logger.New(cfg)
		if err != nil {
			panic("failed to create logger: " + err.Error())
		}
		sp.log = l
	}
	return sp.log
}

type levelOverride struct {
	config.LogConfig
	level string
}

func (o levelOverride) Level() string { return o.level }

func (sp *ServiceProvider) PgConfig() config.PGConfig {
	if sp.pgConfig == nil {
		cfg, err := env.NewPGConfig()
		if err != nil {
			panic("failed to get database config: " + err.Error())
		}
		sp.pgConfig = cfg
	}
	return sp.pgConfig
}

// PersistenceEnabled прогоны сохраняются, только если задан PG_DSN
func (sp *ServiceProvider) PersistenceEnabled() bool {
	return !sp.opts.NoPersist && sp.PgConfig().Enabled()
}

func (sp *ServiceProvider) DBClient(ctx context.Context) *pgxpool.Pool {
	if sp.dbClient == nil {
		dbc, err := pgxpool.New(ctx, sp.PgConfig().DSN())
		if err != nil {
			panic("failed to create db pool: " + err.Error())
		}
		err = dbc.Ping(ctx)
		if err != nil {
			panic("failed to ping db: " + err.Error())
		}
		sp.dbClient = dbc
	}
	return sp.dbClient
}

func (sp *ServiceProvider) TXManager(ctx context.Context) trm.Manager {
	if sp.txManager == nil {
		m, err := manager.New(trmpgx.NewDefaultFactory(sp.DBClient(ctx)))
		if err != nil {
			panic("failed to create tx manager: " + err.Error())
		}

		sp.txManager = m
	}

	return sp.txManager
}

func (sp *ServiceProvider) SimulationCfg() config.SimulationConfig {
	if sp.simCfg == nil {
		cfg, err := env.NewSimulationConfig()
		if err != nil {
			panic("failed to get simulation config: " + err.Error())
		}
		sp.simCfg = cfg
	}
	return sp.simCfg
}

// PresetsCfg файл из Options обязателен; файл из SIM_PRESETS_FILE может отсутствовать,
// тогда берутся встроенные пресеты
func (sp *ServiceProvider) PresetsCfg() config.PresetsConfig {
	if sp.presetsCfg == nil {
		path, explicit := sp.opts.PresetsFile, true
		if path == "" {
			path, explicit = sp.SimulationCfg().PresetsFile(), false
		}

		cfg, err := env.NewPresetsConfigFromYAML(path)
		switch {
		case err == nil:
			sp.Logger().Info("presets loaded", zap.String("file", path), zap.Strings("names", cfg.Names()))
		case !explicit && errors.Is(err, fs.ErrNotExist):
			sp.Logger().Info("presets file not found, using builtin presets", zap.String("file", path))
			cfg = env.NewBuiltinPresetsConfig()
		default:
			panic("failed to get presets config: " + err.Error())
		}
		sp.presetsCfg = cfg
	}
	return sp.presetsCfg
}

func (sp *ServiceProvider) RunRepository(ctx context.Context) repository.RunRepository {
	if sp.runRepo == nil {
		sp.runRepo = run_repo.NewRunRepository(sp.DBClient(ctx), trmpgx.DefaultCtxGetter)
	}
	return sp.runRepo
}

func (sp *ServiceProvider) StatsRepository() repository.StatsRepository {
	if sp.statsRepo == nil {
		sp.statsRepo = stats_repo.NewStatsRepository()
	}
	return sp.statsRepo
}

func (sp *ServiceProvider) SimulationService(ctx context.Context) service.SimulationService {
	if sp.simServ == nil {
		cfg := sp.SimulationCfg()

		mode, err := montecarlo.ParseStreamMode(cfg.StreamMode())
		if err != nil {
			panic("failed to parse stream mode: " + err.Error())
		}
		workers := cfg.Workers()
		if sp.opts.Workers > 0 {
			workers = sp.opts.Workers
		}
		if workers == 0 {
			workers = runtime.GOMAXPROCS(0)
		}

		// Без базы интерфейсы остаются nil, а не nil-указателями
		var runRepo repository.RunRepository
		var txManager trm.Manager
		if sp.PersistenceEnabled() {
			runRepo = sp.RunRepository(ctx)
			txManager = sp.TXManager(ctx)
		}

		sp.simServ = simulation.NewSimulationService(
			runRepo,
			sp.StatsRepository(),
			txManager,
			sp.PresetsCfg(),
			simulation.Settings{
				Mode:       mode,
				Workers:    workers,
				MachineLog: sp.Logger().Named("session"),
			},
			sp.Logger(),
		)
	}
	return sp.simServ
}

func (sp *ServiceProvider) SimulationHandler(ctx context.Context) *simulationAPI.Handler {
	if sp.simHand == nil {
		sp.simHand = simulationAPI.NewHandler(simulationAPI.HandlerDeps{
			Serv:     sp.SimulationService(ctx),
			Defaults: sp.SimulationCfg(),
			Presets:  sp.PresetsCfg(),
			Log:      sp.Logger().Named("api"),
		})
	}
	return sp.simHand
}

func (sp *ServiceProvider) JWTCfg() config.JWTConfig {
	if sp.jwtCfg == nil {
		cfg, err := env.NewJWTConfig()
		if err != nil {
			panic("failed to get jwt config: " + err.Error())
		}
		sp.jwtCfg = cfg
	}
	return sp.jwtCfg
}

func (sp *ServiceProvider) HTTPCfg() config.HTTPConfig {
	if sp.httpCfg == nil {
		cfg, err := env.NewHTTPConfig()
		if err != nil {
			panic("failed to get http config: " + err.Error())
		}
		sp.httpCfg = cfg
	}

	return sp.httpCfg
}

func (sp *ServiceProvider) Router(ctx context.Context) chi.Router {
	if sp.router == nil {
		r := chi.NewRouter()

		// CORS middleware
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: false,
			MaxAge:           60 * 15,
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		// Simulation endpoints
		simHandler := sp.SimulationHandler(ctx)
		r.Route("/simulation", func(rr chi.Router) {
			if sp.JWTCfg().Enabled() {
				rr.Use(middleware.Auth(sp.JWTCfg().AccessTokenSecretKey()))
			} else {
				sp.Logger().Warn("ACCESS_TOKEN is empty, simulation API is not protected")
			}
			rr.Post("/run", simHandler.Run)
			rr.Post("/search", simHandler.Search)
			rr.Get("/search/stream", simHandler.SearchStream)
			rr.Get("/runs/{id}", simHandler.GetRun)
			rr.Get("/stats", simHandler.Stats)
			rr.Get("/presets", simHandler.Presets)
		})

		sp.router = r
	}

	return sp.router
}

// Close закрывает пул соединений и сбрасывает буфер логгера
func (sp *ServiceProvider) Close() {
	if sp.dbClient != nil {
		sp.dbClient.Close()
	}
	if sp.log != nil {
		_ = sp.log.Sync()
	}
}
