package usecases_port

import (
	"context"

	"github.com/google/uuid"
)

// TriggerRunPort запускает парсинг так, чтобы два запуска никогда не шли одновременно
type TriggerRunPort interface {
	// RunOnce выполняет запуск синхронно. Если запуск уже идет, возвращает domain.ErrRunInProgress.
	RunOnce(ctx context.Context) error
	// StartRun запускает парсинг в фоне и сразу возвращает id запуска.
	StartRun(ctx context.Context) (uuid.UUID, error)
	IsRunning() bool
}
