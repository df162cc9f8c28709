package simulation

import (
	"runtime"
	"time"

	"staking_sim/internal/config"
	"staking_sim/internal/repository"
	"staking_sim/internal/service"
	"staking_sim/internal/service/montecarlo"

	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"go.uber.org/zap"
)

// Settings параметры исполнения, на результат не влияют
type Settings struct {
	Mode montecarlo.StreamMode
	// Workers точки сетки при поиске, сессии SplitStreams при прогоне; 0 — по числу процессоров
	Workers int
	// MachineLog логгер событий сессии (отыгрыш, переходы); nil — без логов
	MachineLog *zap.Logger
}

type serv struct {
	runRepo   repository.RunRepository
	statsRepo repository.StatsRepository
	txManager trm.Manager
	presets   config.PresetsConfig
	settings  Settings
	log       *zap.Logger
	now       func() time.Time
}

// NewSimulationService runRepo и txManager могут быть nil — тогда прогоны не сохраняются
func NewSimulationService(
	runRepo repository.RunRepository,
	statsRepo repository.StatsRepository,
	txManager trm.Manager,
	presets config.PresetsConfig,
	settings Settings,
	log *zap.Logger,
) service.SimulationService {
	if log == nil {
		log = zap.NewNop()
	}
	if settings.Workers <= 0 {
		settings.Workers = runtime.GOMAXPROCS(0)
	}
	if settings.MachineLog == nil {
		settings.MachineLog = zap.NewNop()
	}
	return &serv{
		runRepo:   runRepo,
		statsRepo: statsRepo,
		txManager: txManager,
		presets:   presets,
		settings:  settings,
		log:       log,
		now:       time.Now,
	}
}

func (s *serv) persistenceEnabled() bool {
	return s.runRepo != nil && s.txManager != nil
}
