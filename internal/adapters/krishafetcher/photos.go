package krishafetcher

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"krisha-parser-service/internal/constants"
	"krisha-parser-service/internal/contextkeys"
	"krisha-parser-service/internal/core/domain"
	"krisha-parser-service/internal/core/port"

	"github.com/gocolly/colly/v2"
)

var seedIndexRe = regexp.MustCompile(`/(\d+)-750x470\.jpg$`)

// ExistenceChecker проверяет, что по адресу что-то лежит. Любая ошибка означает "нет".
type ExistenceChecker interface {
	Exists(ctx context.Context, url string) bool
}

// PhotoProber восстанавливает набор фотографий объявления по одной известной картинке,
// перебирая номера файлов подряд.
type PhotoProber struct {
	checker ExistenceChecker
	cdnBase string
	limit   int
}

// NewPhotoProber - конструктор. Пустой cdnBase заменяется адресом CDN krisha.kz.
func NewPhotoProber(checker ExistenceChecker, cdnBase string) *PhotoProber {
	if cdnBase == "" {
		cdnBase = constants.DefaultPhotoCDNBase
	}
	if !strings.HasSuffix(cdnBase, "/") {
		cdnBase += "/"
	}
	return &PhotoProber{
		checker: checker,
		cdnBase: cdnBase,
		limit:   domain.MaxPhotos,
	}
}

// Probe возвращает от 0 до 10 адресов в порядке номеров. Перебор останавливается
// на первом несуществующем файле или по достижении лимита. Повторов нет.
func (p *PhotoProber) Probe(ctx context.Context, seedURL string) []string {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "PhotoProber"})

	path := PhotoPath(seedURL)
	start := SeedIndex(seedURL)

	photos := make([]string, 0, p.limit)
	for index := start; len(photos) < p.limit; index++ {
		candidate := p.candidateURL(path, index)
		if !p.checker.Exists(ctx, candidate) {
			break
		}
		photos = append(photos, candidate)
	}

	logger.Debug("Photo probing finished", port.Fields{
		"seed":        seedURL,
		"start_index": start,
		"found":       len(photos),
	})
	return photos
}

func (p *PhotoProber) candidateURL(path string, index int) string {
	return fmt.Sprintf("%s%s/%d-full.webp", p.cdnBase, path, index)
}

// PhotoPath достает из адреса картинки часть пути вида "14/14f77fad-..."
// (пятый и шестой сегменты при разбиении по "/").
func PhotoPath(seedURL string) string {
	parts := strings.Split(seedURL, "/")
	lo, hi := min(4, len(parts)), min(6, len(parts))
	return strings.Join(parts[lo:hi], "/")
}

// SeedIndex - номер известной картинки, 1 если номер не найден
func SeedIndex(seedURL string) int {
	m := seedIndexRe.FindStringSubmatch(seedURL)
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 1
	}
	return n
}

// CollyHeadChecker проверяет существование файла HEAD-запросом
type CollyHeadChecker struct {
	collector *colly.Collector
}

// NewCollyHeadChecker - конструктор
func NewCollyHeadChecker(timeout time.Duration) *CollyHeadChecker {
	if timeout <= 0 {
		timeout = constants.DefaultFetchTimeout
	}
	c := colly.NewCollector(colly.AllowURLRevisit())
	c.SetRequestTimeout(timeout)
	return &CollyHeadChecker{collector: c}
}

// Exists - true только при ответе 200
func (h *CollyHeadChecker) Exists(ctx context.Context, url string) bool {
	if ctx.Err() != nil {
		return false
	}

	collector := h.collector.Clone()
	status := 0
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
	})

	if err := collector.Head(url); err != nil {
		contextkeys.LoggerFromContext(ctx).Debug("Photo does not exist", port.Fields{
			"component": "CollyHeadChecker",
			"url":       url,
			"error":     err.Error(),
		})
		return false
	}
	collector.Wait()

	return status == http.StatusOK
}
