package krishafetcher

import (
	"time"

	"krisha-parser-service/internal/constants"

	"github.com/chromedp/chromedp"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// BrowserOptions - настройки сессии браузера для страницы объявления
type BrowserOptions struct {
	Headless  bool
	ExecPath  string
	UserAgent string

	// DetailTimeout ограничивает всю сессию, PopupTimeout - ожидание окна обучения
	DetailTimeout time.Duration
	PopupTimeout  time.Duration
}

func (b *BrowserOptions) applyDefaults() {
	if b.UserAgent == "" {
		b.UserAgent = defaultUserAgent
	}
	if b.DetailTimeout <= 0 {
		b.DetailTimeout = constants.DefaultDetailTimeout
	}
	if b.PopupTimeout <= 0 {
		b.PopupTimeout = constants.DefaultPopupTimeout
	}
}

func (b BrowserOptions) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(b.UserAgent),
		chromedp.WindowSize(1440, 900),
	)
	if b.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(b.ExecPath))
	}
	return opts
}
