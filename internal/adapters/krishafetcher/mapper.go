package krishafetcher

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"krisha-parser-service/internal/constants"
	"krisha-parser-service/internal/core/domain"

	"github.com/PuerkitoBio/goquery"
)

// Пробелы на сайте бывают неразрывными
var (
	dailyRentRe = regexp.MustCompile(`(?i)посуточно`)
	nonDigitRe  = regexp.MustCompile(`\D`)
	showOnMapRe = regexp.MustCompile(`\n[\s\x{00A0}]*показать на карте$`)
	floorRe     = regexp.MustCompile(`(\d+)[\s\x{00A0}]из[\s\x{00A0}](\d+)`)
	areaRe      = regexp.MustCompile(`(\d+)[\s\x{00A0}]м²`)
)

// pageSnapshot - все, что прочитано из живой сессии браузера
type pageSnapshot struct {
	URL       string
	HTML      string
	Phone     string
	Condition string
	ViewsText string
}

// toAdDetails разбирает снимок страницы объявления. Возвращает запись без
// фотографий и адрес первой картинки галереи, по которому потом ищутся остальные.
func toAdDetails(snap pageSnapshot, cfg domain.SearchConfig, now time.Time) (*domain.AdDetails, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snap.HTML))
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse ad page: %w", err)
	}

	seedPhoto, _ := doc.Find(constants.SelectorGalleryImg).First().Attr("src")
	if strings.TrimSpace(seedPhoto) == "" {
		return nil, "", domain.ErrNoPhotos
	}

	adID := domain.ExtractAdID(snap.URL)
	if adID == "" {
		return nil, "", domain.ErrMissingAdID
	}

	title := strings.TrimSpace(doc.Find(constants.SelectorTitle).Text())

	price, err := parsePrice(doc.Find(constants.SelectorPrice).Text())
	if err != nil {
		return nil, "", err
	}

	city, district := splitLocation(doc.Find(constants.SelectorLocation).Text())

	record := &domain.AdDetails{
		AdID:     adID,
		AdURL:    snap.URL,
		Title:    title,
		Address:  lastCommaSegment(title),
		City:     city,
		District: district,
		Rooms:    FirstChar(title),
		Price:    price,
		Floor:    parseFloor(doc.Find(constants.SelectorFloor).Text()),
		Area:     parseArea(doc.Find(constants.SelectorArea).Text()),
		Duration: domain.DurationLongTerm,

		Condition:     strings.TrimSpace(snap.Condition),
		Phone:         strings.TrimSpace(snap.Phone),
		Author:        strings.TrimSpace(doc.Find(constants.SelectorAuthor).Text()),
		Description:   strings.TrimSpace(doc.Find(constants.SelectorDescription).Text()),
		Furniture:     definitionValue(doc, constants.DataNameFurniture),
		Facilities:    definitionValue(doc, constants.DataNameFacilities),
		Toilet:        domain.NormalizeToilet(definitionValue(doc, constants.DataNameToilet)),
		Bathroom:      definitionValue(doc, constants.DataNameBathroom),
		RentalOptions: definitionValue(doc, constants.DataNameRentalOptions),

		PostedAt:   ParsePostedAt(snap.ViewsText, now),
		Promotions: []domain.PromotionTag{},

		Source:    domain.SourceParser,
		AdType:    domain.AdTypeRentOut,
		HouseType: domain.HouseTypeForSpace(cfg.Params.Space),
	}
	if dailyRentRe.MatchString(title) {
		record.Duration = domain.DurationDaily
	}

	return record, seedPhoto, nil
}

func parsePrice(text string) (int64, error) {
	digits := nonDigitRe.ReplaceAllString(text, "")
	if digits == "" {
		return 0, domain.ErrPriceNotFound
	}
	price, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse price %q: %w", digits, err)
	}
	return price, nil
}

// Адрес - последняя часть заголовка после запятой
func lastCommaSegment(title string) string {
	parts := strings.Split(title, ",")
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[len(parts)-1])
}

func splitLocation(raw string) (city, district string) {
	location := showOnMapRe.ReplaceAllString(strings.TrimSpace(raw), "")
	parts := strings.Split(location, ",")
	city = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		district = strings.TrimSpace(parts[1])
	}
	return city, district
}

func parseFloor(text string) *domain.Floor {
	m := floorRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return nil
	}
	current, err1 := strconv.Atoi(m[1])
	total, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil {
		return nil
	}
	return &domain.Floor{Current: current, Total: total}
}

func parseArea(text string) *int {
	m := areaRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return nil
	}
	area, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &area
}

// definitionValue читает текст элемента, следующего за <dt data-name="...">
func definitionValue(doc *goquery.Document, dataName string) string {
	return strings.TrimSpace(doc.Find(fmt.Sprintf(`dt[data-name=%q]`, dataName)).Next().Text())
}
