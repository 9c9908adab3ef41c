package krishafetcher

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"krisha-parser-service/internal/constants"
	"krisha-parser-service/internal/core/domain"

	"github.com/gocolly/colly/v2"
)

// Options - настройки адаптера. Нулевые значения заменяются значениями по умолчанию.
type Options struct {
	// AllowedDomains ограничивает домены для загрузчика страниц. Пустой список - без ограничений.
	AllowedDomains []string

	FetchRetries    int
	FetchRetryDelay time.Duration
	FetchTimeout    time.Duration

	Browser BrowserOptions
}

func (o *Options) applyDefaults() {
	if o.FetchRetries <= 0 {
		o.FetchRetries = constants.DefaultFetchRetries
	}
	if o.FetchRetryDelay <= 0 {
		o.FetchRetryDelay = constants.DefaultFetchRetryDelay
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = constants.DefaultFetchTimeout
	}
	o.Browser.applyDefaults()
}

// KrishaFetcherAdapter отвечает за все взаимодействия с сайтом krisha.kz
type KrishaFetcherAdapter struct {
	// родительский коллектор, клоны которого разделяют http-клиент и лимиты
	collector *colly.Collector
	cfg       domain.SearchConfig
	opts      Options
	photos    *PhotoProber

	openSession sessionOpener
	runStep     stepRunner
}

// NewKrishaFetcherAdapter - конструктор
func NewKrishaFetcherAdapter(cfg domain.SearchConfig, opts Options, photos *PhotoProber) (*KrishaFetcherAdapter, error) {
	if photos == nil {
		return nil, fmt.Errorf("KrishaFetcherAdapter: photo prober cannot be nil")
	}
	opts.applyDefaults()

	c := colly.NewCollector(colly.AllowURLRevisit())
	if len(opts.AllowedDomains) > 0 {
		c.AllowedDomains = opts.AllowedDomains
	}
	c.SetRequestTimeout(opts.FetchTimeout)

	// Страницы выдачи грузим строго по одной
	err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("KrishaFetcherAdapter: failed to set limit rule: %w", err)
	}

	return &KrishaFetcherAdapter{
		collector: c,
		cfg:       cfg,
		opts:      opts,
		photos:    photos,

		openSession: openChromeSession,
		runStep:     runChromeStep,
	}, nil
}

// BuildSearchURL строит адрес страницы выдачи по конфигурации адаптера
func (a *KrishaFetcherAdapter) BuildSearchURL(page int, city string) string {
	return BuildSearchURL(a.cfg, page, city)
}

// AllowedDomainsFor возвращает хост из base_url в двух вариантах: без www и с www
func AllowedDomainsFor(baseURL string) ([]string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("KrishaFetcherAdapter: invalid base url %q: %w", baseURL, err)
	}
	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("KrishaFetcherAdapter: base url %q has no host", baseURL)
	}

	bare := strings.TrimPrefix(host, "www.")
	return []string{bare, "www." + bare}, nil
}
