package rabbitmq

import (
	"time"

	"github.com/google/uuid"
)

// RunCompletedEventDTO - сообщение о завершенном запуске парсинга.
// По нему задача обработки фотографий берет новые объявления.
type RunCompletedEventDTO struct {
	Event      string           `json:"event"`
	RunID      uuid.UUID        `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	TotalSaved int              `json:"total_saved"`
	AdIDs      []string         `json:"ad_ids"`
	Cities     []CitySummaryDTO `json:"cities"`
}

type CitySummaryDTO struct {
	City  string `json:"city"`
	Saved int    `json:"saved"`
}
