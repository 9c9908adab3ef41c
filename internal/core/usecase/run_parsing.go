package usecase

import (
	"context"
	"fmt"
	"time"

	"krisha-parser-service/internal/contextkeys"
	"krisha-parser-service/internal/core/port"
	usecases_port "krisha-parser-service/internal/core/port/usecases"

	"github.com/google/uuid"
)

// RunParsingUseCase - один полный запуск: обход выдачи, итоговый отчет в лог
// и запуск обработки фотографий.
type RunParsingUseCase struct {
	crawlUC  usecases_port.CrawlAdsPort
	imageJob port.ImageJobPort
}

// NewRunParsingUseCase создает новый экземпляр use case
func NewRunParsingUseCase(crawlUC usecases_port.CrawlAdsPort, imageJob port.ImageJobPort) *RunParsingUseCase {
	return &RunParsingUseCase{
		crawlUC:  crawlUC,
		imageJob: imageJob,
	}
}

func (uc *RunParsingUseCase) Execute(ctx context.Context, runID uuid.UUID) error {
	baseLogger := contextkeys.LoggerFromContext(ctx)
	ucLogger := baseLogger.WithFields(port.Fields{
		"use_case": "RunParsing",
		"run_id":   runID.String(),
	})
	ctx = contextkeys.ContextWithLogger(ctx, ucLogger)
	ctx = contextkeys.ContextWithTraceID(ctx, runID.String())

	ucLogger.Info("Parsing run started", nil)

	stats, crawlErr := uc.crawlUC.Execute(ctx)
	if stats == nil {
		return fmt.Errorf("run %s: crawl returned no stats: %w", runID, crawlErr)
	}
	stats.RunID = runID

	for _, city := range stats.Cities {
		ucLogger.Info("City summary", port.Fields{
			"city":          city.City,
			"pages":         city.PagesVisited,
			"links":         city.LinksSeen,
			"already_known": city.AlreadyKnown,
			"failed":        city.Failed,
			"saved":         city.Saved,
			"quota_reached": city.QuotaReached,
		})
	}
	ucLogger.Info("Parsing run finished", port.Fields{
		"total_saved": stats.TotalSaved(),
		"duration":    stats.FinishedAt.Sub(stats.StartedAt).Round(time.Second).String(),
	})

	if crawlErr != nil {
		ucLogger.Warn("Run was interrupted, image job is not triggered", port.Fields{"reason": crawlErr.Error()})
		return fmt.Errorf("run %s interrupted: %w", runID, crawlErr)
	}

	// Результат обработки фотографий на запуск не влияет
	if err := uc.imageJob.Trigger(ctx, stats); err != nil {
		ucLogger.Error("Failed to trigger image job", err, nil)
	} else {
		ucLogger.Info("Image job triggered", nil)
	}

	return nil
}
