package usecases_port

import (
	"context"
	"krisha-parser-service/internal/core/domain"
)

type CrawlAdsPort interface {
	Execute(ctx context.Context) (*domain.RunStats, error)
}
