package domain

import (
	"time"

	"github.com/google/uuid"
)

// CityStats - итог обхода одного города
type CityStats struct {
	City         string
	PagesVisited int
	LinksSeen    int
	AlreadyKnown int
	Failed       int
	Saved        int
	QuotaReached bool
}

// RunStats - итог одного полного запуска парсинга
type RunStats struct {
	RunID      uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Cities     []CityStats
	SavedAdIDs []string
}

// TotalSaved - сколько объявлений сохранено за запуск
func (s *RunStats) TotalSaved() int {
	return len(s.SavedAdIDs)
}
