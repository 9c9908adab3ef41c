package domain

import "time"

const (
	DurationDaily    = "daily_rent"
	DurationLongTerm = "long_time"

	SourceParser  = "parser"
	AdTypeRentOut = "rentOut"
	HouseTypeFlat = "apartment"
)

// Значения поля санузла после нормализации
const (
	ToiletCombined = "совмещенный санузел"
	ToiletSeparate = "раздельный санузел"
)

// MaxPhotos - предел количества фотографий у одного объявления
const MaxPhotos = 10

// Floor - этаж квартиры и этажность дома ("X из Y")
type Floor struct {
	Current int
	Total   int
}

// AdDetails - полная запись об объявлении. Создается один раз при разборе
// страницы и больше не меняется. AdID - глобальный ключ уникальности.
type AdDetails struct {
	AdID     string
	AdURL    string
	Title    string
	Address  string
	City     string
	District string
	// Rooms - первый символ заголовка. Не обязательно цифра.
	Rooms    string
	Price    int64
	Floor    *Floor
	Area     *int
	Duration string

	Condition     string
	Phone         string
	Author        string
	Description   string
	Furniture     string
	Facilities    string
	Toilet        string
	Bathroom      string
	RentalOptions string

	PostedAt   *time.Time
	Photos     []string
	Promotions []PromotionTag

	Source    string
	AdType    string
	HouseType string
}

// NormalizeToilet приводит сырое значение поля санузла к одной из двух формулировок
func NormalizeToilet(raw string) string {
	if raw == "совмещен" {
		return ToiletCombined
	}
	return ToiletSeparate
}

// HouseTypeForSpace выводит тип жилья из раздела поиска
func HouseTypeForSpace(space string) string {
	if space == "kvartiry" {
		return HouseTypeFlat
	}
	return ""
}
