package domain

import "regexp"

// PromotionTag - платная метка продвижения объявления в выдаче
type PromotionTag string

const (
	PromotionHot     PromotionTag = "hot"
	PromotionUp      PromotionTag = "up"
	PromotionX5      PromotionTag = "x5"
	PromotionUrgent  PromotionTag = "urgent"
	PromotionX15     PromotionTag = "x15"
	PromotionUnknown PromotionTag = "unknown"
)

// AdLink - ссылка на объявление из страницы выдачи вместе с метками продвижения.
// Живет только в пределах обработки одной страницы.
type AdLink struct {
	URL        string
	Promotions []PromotionTag
}

// AdID - идентификатор объявления из ссылки, пустая строка если его нет
func (l AdLink) AdID() string {
	return ExtractAdID(l.URL)
}

var adIDRe = regexp.MustCompile(`/show/(\d+)`)

// ExtractAdID достает идентификатор объявления из пути "/show/<id>"
func ExtractAdID(adURL string) string {
	m := adIDRe.FindStringSubmatch(adURL)
	if m == nil {
		return ""
	}
	return m[1]
}
