package usecase

import (
	"context"
	"time"

	"krisha-parser-service/internal/contextkeys"
	"krisha-parser-service/internal/core/domain"
	"krisha-parser-service/internal/core/port"
)

// SleepFunc - пауза, которую можно прервать через контекст
type SleepFunc func(ctx context.Context, d time.Duration) error

// CrawlAdsUseCase обходит выдачу по всем городам конфигурации, по одному объявлению за раз,
// и сохраняет объявления, которых еще нет в хранилище.
type CrawlAdsUseCase struct {
	fetcher port.KrishaFetcherPort
	storage port.AdsStoragePort
	cfg     domain.SearchConfig
	pause   time.Duration
	sleep   SleepFunc
}

// NewCrawlAdsUseCase создает новый экземпляр use case. sleep == nil - обычная пауза по таймеру.
func NewCrawlAdsUseCase(
	fetcher port.KrishaFetcherPort,
	storage port.AdsStoragePort,
	cfg domain.SearchConfig,
	pause time.Duration,
	sleep SleepFunc,
) *CrawlAdsUseCase {
	if sleep == nil {
		sleep = timerSleep
	}
	return &CrawlAdsUseCase{
		fetcher: fetcher,
		storage: storage,
		cfg:     cfg,
		pause:   pause,
		sleep:   sleep,
	}
}

// Execute выполняет полный обход. Ошибка возвращается только при отмене контекста,
// статистика при этом содержит все, что успели сделать.
func (uc *CrawlAdsUseCase) Execute(ctx context.Context) (*domain.RunStats, error) {
	baseLogger := contextkeys.LoggerFromContext(ctx)
	ucLogger := baseLogger.WithFields(port.Fields{"use_case": "CrawlAds"})

	stats := &domain.RunStats{
		StartedAt:  time.Now(),
		Cities:     make([]domain.CityStats, 0, len(uc.cfg.Params.Cities)),
		SavedAdIDs: make([]string, 0),
	}
	defer func() { stats.FinishedAt = time.Now() }()

	ucLogger.Info("Starting crawl", port.Fields{
		"cities":           len(uc.cfg.Params.Cities),
		"max_ads_per_city": uc.cfg.MaxAdsPerCity,
	})

	for _, city := range uc.cfg.Params.Cities {
		cityLogger := ucLogger.WithFields(port.Fields{"city": city})
		cityCtx := contextkeys.ContextWithLogger(ctx, cityLogger)

		cityStats, saved, err := uc.crawlCity(cityCtx, city)
		stats.Cities = append(stats.Cities, cityStats)
		stats.SavedAdIDs = append(stats.SavedAdIDs, saved...)
		if err != nil {
			ucLogger.Warn("Crawl interrupted", port.Fields{"city": city, "reason": err.Error()})
			return stats, err
		}
	}

	ucLogger.Info("Crawl finished", port.Fields{"total_saved": stats.TotalSaved()})
	return stats, nil
}

func (uc *CrawlAdsUseCase) crawlCity(ctx context.Context, city string) (domain.CityStats, []string, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	stats := domain.CityStats{City: city}
	saved := make([]string, 0)

	for page := 1; stats.Saved < uc.cfg.MaxAdsPerCity; page++ {
		if err := ctx.Err(); err != nil {
			return stats, saved, err
		}

		pageURL := uc.fetcher.BuildSearchURL(page, city)
		pageLogger := logger.WithFields(port.Fields{"page": page, "url": pageURL})

		html, ok := uc.fetcher.FetchPage(ctx, pageURL)
		if !ok {
			pageLogger.Warn("Results page unavailable, finishing city", nil)
			break
		}
		stats.PagesVisited++

		links, err := uc.fetcher.FetchLinks(ctx, html)
		if err != nil {
			pageLogger.Error("Failed to extract links, finishing city", err, nil)
			break
		}
		if len(links) == 0 {
			pageLogger.Info("No links on page, pagination finished", nil)
			break
		}
		stats.LinksSeen += len(links)

		for _, link := range links {
			if stats.Saved >= uc.cfg.MaxAdsPerCity {
				break
			}
			adID, err := uc.processLink(ctx, link, &stats)
			if adID != "" {
				saved = append(saved, adID)
			}
			if err != nil {
				return stats, saved, err
			}
		}
	}

	stats.QuotaReached = stats.Saved >= uc.cfg.MaxAdsPerCity
	logger.Info("City finished", port.Fields{
		"pages":         stats.PagesVisited,
		"links":         stats.LinksSeen,
		"already_known": stats.AlreadyKnown,
		"failed":        stats.Failed,
		"saved":         stats.Saved,
		"quota_reached": stats.QuotaReached,
	})
	return stats, saved, nil
}

// processLink возвращает id сохраненного объявления или пустую строку.
// Ошибка возвращается только если контекст отменен во время паузы.
func (uc *CrawlAdsUseCase) processLink(ctx context.Context, link domain.AdLink, stats *domain.CityStats) (string, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"url": link.URL})

	adID := link.AdID()
	if adID == "" {
		logger.Warn("Link has no ad id, skipping", nil)
		stats.Failed++
		return "", nil
	}
	logger = logger.WithFields(port.Fields{"ad_id": adID})

	exists, err := uc.storage.Exists(ctx, adID)
	if err != nil {
		logger.Error("Dedup check failed, skipping", err, nil)
		stats.Failed++
		return "", nil
	}
	if exists {
		logger.Debug("Ad already saved, skipping", nil)
		stats.AlreadyKnown++
		return "", nil
	}

	savedID := ""
	record, err := uc.fetcher.FetchAdDetails(ctx, link.URL)
	if err != nil {
		logger.Warn("Ad extraction failed, skipping", port.Fields{"error": err.Error()})
		stats.Failed++
	} else {
		record.Promotions = append(make([]domain.PromotionTag, 0, len(link.Promotions)), link.Promotions...)
		if err := uc.storage.Save(ctx, record); err != nil {
			logger.Error("Failed to save ad, skipping", err, nil)
			stats.Failed++
		} else {
			logger.Info("Ad saved", nil)
			stats.Saved++
			savedID = record.AdID
		}
	}

	// Пауза после каждого открытого объявления, чем бы оно ни закончилось
	if err := uc.sleep(ctx, uc.pause); err != nil {
		return savedID, err
	}
	return savedID, nil
}

func timerSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
