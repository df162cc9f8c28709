package model

import "time"

// Состояние сервиса симуляций
type SimulationState struct {
	Runs              int   // Сколько прогонов без поиска
	Searches          int   // Сколько успешных поисков
	FailedSearches    int   // Поиски без безопасной цели или с ошибкой
	SessionsSimulated int64 // Сколько всего сессий сыграно

	LastSafeTarget float64 // Цель последнего успешного поиска

	SearchWindow   []SearchResult // Окно последних поисков
	WindowMeanRuin float64        // Средняя вероятность разорения в окне
	WindowSize     int            // Размер окна
}

// Результат поиска для окна
type SearchResult struct {
	At              time.Time
	SafeTarget      float64
	RuinProbability float64
	Points          int
	Sessions        int
}
