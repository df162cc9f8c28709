package model

import "time"

// SearchSummary краткий итог одного поиска для окна статистики
type SearchSummary struct {
	At              time.Time
	SafeTarget      float64
	RuinProbability float64
	Points          int
	Sessions        int
}

// SimulationStats счётчики сервиса с момента запуска
type SimulationStats struct {
	Runs              int
	Searches          int
	FailedSearches    int
	SessionsSimulated int64
	LastSafeTarget    float64

	Window         []SearchSummary
	WindowMeanRuin float64
}
