package krishafetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"krisha-parser-service/internal/constants"
	"krisha-parser-service/internal/contextkeys"
	"krisha-parser-service/internal/core/domain"
	"krisha-parser-service/internal/core/port"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// sessionStep - один шаг работы с живой страницей объявления
type sessionStep struct {
	name     string
	action   chromedp.Action
	optional bool
	// timeout для шага; ноль - действует только общий таймаут сессии
	timeout time.Duration
}

// FetchAdDetails открывает страницу объявления в браузере, раскрывает телефон,
// разбирает снимок страницы и подбирает фотографии. Любая ошибка логируется здесь же,
// вызывающему возвращается (nil, err) и он просто пропускает объявление.
func (a *KrishaFetcherAdapter) FetchAdDetails(ctx context.Context, adURL string) (*domain.AdDetails, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	detailsLogger := logger.WithFields(port.Fields{
		"component": "KrishaFetcherAdapter(FetchAdDetails)",
		"url":       adURL,
	})

	snap, err := a.readAdPage(ctx, adURL)
	if err != nil {
		detailsLogger.Error("Browser session failed", err, nil)
		return nil, fmt.Errorf("failed to read ad page %s: %w", adURL, err)
	}

	record, seedPhoto, err := toAdDetails(snap, a.cfg, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrNoPhotos) {
			detailsLogger.Warn("Ad has no photos, skipping", nil)
		} else {
			detailsLogger.Error("Failed to parse ad page", err, nil)
		}
		return nil, fmt.Errorf("failed to extract ad %s: %w", adURL, err)
	}

	// Браузер к этому моменту уже закрыт, фотографии проверяются обычными HEAD-запросами
	record.Photos = a.photos.Probe(ctx, seedPhoto)

	detailsLogger.Info("Ad details extracted", port.Fields{
		"ad_id":  record.AdID,
		"photos": len(record.Photos),
	})
	return record, nil
}

// readAdPage проводит одну сессию браузера. Сессия живет ровно до выхода из функции.
func (a *KrishaFetcherAdapter) readAdPage(ctx context.Context, adURL string) (pageSnapshot, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "KrishaFetcherAdapter(readAdPage)",
		"url":       adURL,
	})

	sessionCtx, closeSession, err := a.openSession(ctx, a.opts.Browser)
	if err != nil {
		return pageSnapshot{}, err
	}
	defer closeSession()

	snap := pageSnapshot{URL: adURL}
	if err := runSteps(sessionCtx, a.adPageSteps(adURL, &snap), a.runStep, logger); err != nil {
		return pageSnapshot{}, err
	}

	return snap, nil
}

// sessionOpener открывает сессию браузера. Возвращенную функцию закрытия нужно вызвать всегда.
type sessionOpener func(ctx context.Context, opts BrowserOptions) (context.Context, context.CancelFunc, error)

// stepRunner выполняет один шаг в контексте сессии
type stepRunner func(ctx context.Context, step sessionStep) error

// openChromeSession запускает отдельный браузер и ограничивает сессию DetailTimeout
func openChromeSession(ctx context.Context, opts BrowserOptions) (context.Context, context.CancelFunc, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts.allocatorOptions()...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Первый Run запускает сам браузер
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, nil, fmt.Errorf("failed to start browser: %w", err)
	}

	sessionCtx, cancelSession := context.WithTimeout(browserCtx, opts.DetailTimeout)
	return sessionCtx, func() {
		cancelSession()
		cancelBrowser()
		cancelAlloc()
	}, nil
}

// runSteps выполняет шаги по порядку. Ошибка необязательного шага только логируется,
// ошибка обязательного прерывает сессию.
func runSteps(ctx context.Context, steps []sessionStep, run stepRunner, logger port.LoggerPort) error {
	for _, step := range steps {
		err := run(ctx, step)
		if err == nil {
			logger.Debug("Step completed", port.Fields{"step": step.name})
			continue
		}
		if step.optional {
			logger.Info("Optional step skipped", port.Fields{"step": step.name, "reason": err.Error()})
			continue
		}
		return fmt.Errorf("step %q failed: %w", step.name, err)
	}
	return nil
}

func (a *KrishaFetcherAdapter) adPageSteps(adURL string, snap *pageSnapshot) []sessionStep {
	return []sessionStep{
		{
			name: "navigate",
			action: chromedp.Tasks{
				navigateNoWait(adURL),
				// у about:blank тоже есть body, поэтому ждем заголовок объявления
				chromedp.WaitReady(constants.SelectorTitle, chromedp.ByQuery),
			},
		},
		{
			name:     "dismiss_tutorial",
			action:   chromedp.Click(constants.SelectorTutorialClose, chromedp.ByQuery, chromedp.NodeVisible),
			optional: true,
			timeout:  a.opts.Browser.PopupTimeout,
		},
		{
			name:   "reveal_phone",
			action: chromedp.Click(constants.SelectorShowPhones, chromedp.ByQuery, chromedp.NodeVisible),
		},
		{
			name:   "read_phone",
			action: chromedp.Text(constants.SelectorPhone, &snap.Phone, chromedp.ByQuery, chromedp.NodeVisible),
		},
		{
			name:   "read_condition",
			action: chromedp.Evaluate(textContentJS(constants.SelectorCondition), &snap.Condition),
		},
		{
			name:   "read_views",
			action: chromedp.Evaluate(textContentJS(constants.SelectorViewsText), &snap.ViewsText),
		},
		{
			name:   "snapshot",
			action: chromedp.OuterHTML("html", &snap.HTML, chromedp.ByQuery),
		},
	}
}

// navigateNoWait переходит по адресу, не дожидаясь события load.
// Готовность DOM проверяет следующий за ним WaitReady по заголовку объявления.
func navigateNoWait(adURL string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		_, _, errorText, err := page.Navigate(adURL).Do(ctx)
		if err != nil {
			return err
		}
		if errorText != "" {
			return fmt.Errorf("page load error %s", errorText)
		}
		return nil
	})
}

func runChromeStep(ctx context.Context, step sessionStep) error {
	if step.timeout <= 0 {
		return chromedp.Run(ctx, step.action)
	}
	stepCtx, cancel := context.WithTimeout(ctx, step.timeout)
	defer cancel()
	return chromedp.Run(stepCtx, step.action)
}

// textContentJS - текст первого подходящего элемента или пустая строка
func textContentJS(selector string) string {
	quoted, _ := json.Marshal(selector)
	return fmt.Sprintf(`(() => { const el = document.querySelector(%s); return el ? el.textContent : ""; })()`, quoted)
}
