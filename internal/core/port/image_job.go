package port

import (
	"context"
	"krisha-parser-service/internal/core/domain"
)

// ImageJobPort запускает последующую обработку фотографий после завершения запуска
type ImageJobPort interface {
	Trigger(ctx context.Context, stats *domain.RunStats) error
}
