package krishafetcher

import (
	"context"
	"fmt"

	"krisha-parser-service/internal/contextkeys"
	"krisha-parser-service/internal/core/port"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
)

// FetchPage загружает страницу, повторяя попытку через фиксированную паузу.
// Никогда не возвращает ошибку: после исчерпания попыток отдает ok == false.
func (a *KrishaFetcherAdapter) FetchPage(ctx context.Context, pageURL string) ([]byte, bool) {
	logger := contextkeys.LoggerFromContext(ctx)
	fetchLogger := logger.WithFields(port.Fields{
		"component": "KrishaFetcherAdapter(FetchPage)",
		"url":       pageURL,
	})

	retries := a.opts.FetchRetries
	for attempt := 1; attempt <= retries; attempt++ {
		body, err := a.fetchOnce(pageURL)
		if err == nil {
			fetchLogger.Debug("Page loaded", port.Fields{"attempt": attempt, "bytes": len(body)})
			return body, true
		}

		fetchLogger.Warn("Failed to load page", port.Fields{
			"attempt": attempt,
			"error":   err.Error(),
		})

		if attempt == retries {
			fetchLogger.Error("Page is unavailable after all attempts", err, port.Fields{"attempts": retries})
			return nil, false
		}

		fetchLogger.Info("Retrying page load", port.Fields{"delay": a.opts.FetchRetryDelay.String()})
		if err := sleepContext(ctx, a.opts.FetchRetryDelay); err != nil {
			fetchLogger.Warn("Retry wait interrupted", port.Fields{"error": err.Error()})
			return nil, false
		}
	}

	return nil, false
}

func (a *KrishaFetcherAdapter) fetchOnce(pageURL string) ([]byte, error) {
	// Одноразовый клон: свои обработчики, общий http-клиент
	collector := a.collector.Clone()
	extensions.RandomUserAgent(collector)

	var body []byte
	var responseErr error

	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	collector.OnError(func(r *colly.Response, err error) {
		responseErr = fmt.Errorf("request to %s failed with status %d: %w", r.Request.URL, r.StatusCode, err)
	})

	visitErr := collector.Visit(pageURL)
	collector.Wait()

	if responseErr != nil {
		return nil, responseErr
	}
	if visitErr != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", pageURL, visitErr)
	}
	return body, nil
}
