package stats_repo

import (
	"sync"

	"staking_sim/internal/model"
	"staking_sim/internal/repository"
	repoModel "staking_sim/internal/repository/stats_repo/model"
)

const (
	// windowSize Сколько последних поисков учитывать в окне
	windowSize = 50
)

// StatsRepo Репозиторий для хранения счётчиков сервиса в памяти
type StatsRepo struct {
	mtx   sync.RWMutex
	state repoModel.SimulationState
}

// NewStatsRepository Конструктор с пустым состоянием
func NewStatsRepository() repository.StatsRepository {
	return &StatsRepo{
		state: repoModel.SimulationState{
			SearchWindow: make([]repoModel.SearchResult, 0, windowSize),
			WindowSize:   windowSize,
		},
	}
}

// RecordRun Обновление после прогона без поиска
func (r *StatsRepo) RecordRun(sessions int) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.state.Runs++
	r.state.SessionsSimulated += int64(sessions)
}

// RecordFailedSearch sessions — сколько сессий успели сыграть
func (r *StatsRepo) RecordFailedSearch(sessions int) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.state.FailedSearches++
	r.state.SessionsSimulated += int64(sessions)
}

// RecordSearch Обновление после успешного поиска
func (r *StatsRepo) RecordSearch(s model.SearchSummary) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.state.Searches++
	r.state.SessionsSimulated += int64(s.Sessions) * int64(s.Points)
	r.state.LastSafeTarget = s.SafeTarget

	// Добавляем поиск в окно
	r.state.SearchWindow = append(r.state.SearchWindow, repoModel.SearchResult{
		At:              s.At,
		SafeTarget:      s.SafeTarget,
		RuinProbability: s.RuinProbability,
		Points:          s.Points,
		Sessions:        s.Sessions,
	})

	// Поддерживаем размер окна
	if len(r.state.SearchWindow) > r.state.WindowSize {
		r.state.SearchWindow = r.state.SearchWindow[1:]
	}

	// Пересчитываем среднюю вероятность разорения в окне
	var sum float64
	for _, res := range r.state.SearchWindow {
		sum += res.RuinProbability
	}
	r.state.WindowMeanRuin = sum / float64(len(r.state.SearchWindow))
}

// Stats Копия текущего состояния
func (r *StatsRepo) Stats() model.SimulationStats {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	out := model.SimulationStats{
		Runs:              r.state.Runs,
		Searches:          r.state.Searches,
		FailedSearches:    r.state.FailedSearches,
		SessionsSimulated: r.state.SessionsSimulated,
		LastSafeTarget:    r.state.LastSafeTarget,
		WindowMeanRuin:    r.state.WindowMeanRuin,
		Window:            make([]model.SearchSummary, len(r.state.SearchWindow)),
	}
	for i, res := range r.state.SearchWindow {
		out.Window[i] = model.SearchSummary{
			At:              res.At,
			SafeTarget:      res.SafeTarget,
			RuinProbability: res.RuinProbability,
			Points:          res.Points,
			Sessions:        res.Sessions,
		}
	}
	return out
}
