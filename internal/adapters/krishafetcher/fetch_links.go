package krishafetcher

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"krisha-parser-service/internal/constants"
	"krisha-parser-service/internal/contextkeys"
	"krisha-parser-service/internal/core/domain"
	"krisha-parser-service/internal/core/port"

	"github.com/PuerkitoBio/goquery"
)

type promotionRule struct {
	marker string
	tag    domain.PromotionTag
}

// Порядок важен: побеждает первое совпадение
var promotionRules = []promotionRule{
	{marker: "fi-paid-hot", tag: domain.PromotionHot},
	{marker: "fi-paid-up", tag: domain.PromotionUp},
	{marker: "fi-paid-fast", tag: domain.PromotionX5},
	{marker: "fi-paid-urgent", tag: domain.PromotionUrgent},
	{marker: "fi-paid-turbo", tag: domain.PromotionX15},
}

// ClassifyPromotion сопоставляет класс иконки с меткой продвижения
func ClassifyPromotion(iconClass string) domain.PromotionTag {
	for _, rule := range promotionRules {
		if strings.Contains(iconClass, rule.marker) {
			return rule.tag
		}
	}
	return domain.PromotionUnknown
}

// FetchLinks разбирает страницу выдачи. Пустой результат означает конец пагинации.
func (a *KrishaFetcherAdapter) FetchLinks(ctx context.Context, html []byte) ([]domain.AdLink, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	fetchLinksLogger := logger.WithFields(port.Fields{"component": "KrishaFetcherAdapter(FetchLinks)"})

	links, skipped, err := ParseAdLinks(html, a.cfg.BaseURL)
	if err != nil {
		fetchLinksLogger.Error("Failed to parse ad links", err, nil)
		return nil, err
	}
	for _, href := range skipped {
		fetchLinksLogger.Warn("Skipping card with invalid href", port.Fields{"href": href})
	}

	fetchLinksLogger.Debug("Finished parsing links", port.Fields{"links_fetched": len(links)})
	return links, nil
}

// ParseAdLinks возвращает ссылки на объявления в порядке документа
// и href карточек, которые не удалось разобрать как адрес.
func ParseAdLinks(html []byte, baseURL string) ([]domain.AdLink, []string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("krisha adapter: invalid base url %q: %w", baseURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, nil, fmt.Errorf("krisha adapter: failed to parse results page: %w", err)
	}

	links := make([]domain.AdLink, 0)
	var skipped []string
	doc.Find(constants.SelectorCardTitle).Each(func(_ int, anchor *goquery.Selection) {
		href, ok := anchor.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			skipped = append(skipped, href)
			return
		}

		promotions := make([]domain.PromotionTag, 0)
		anchor.Closest(constants.SelectorCardDescr).Find(constants.SelectorPaidIcon).Each(func(_ int, icon *goquery.Selection) {
			label := icon.Find(constants.SelectorPaidIconTag).First()
			if label.Length() == 0 {
				return
			}
			class, _ := label.Attr("class")
			promotions = append(promotions, ClassifyPromotion(class))
		})

		links = append(links, domain.AdLink{
			URL:        base.ResolveReference(ref).String(),
			Promotions: promotions,
		})
	})

	return links, skipped, nil
}
