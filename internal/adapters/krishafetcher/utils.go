package krishafetcher

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Родительный и именительный падежи
var ruMonths = map[string]time.Month{
	"января": time.January, "январь": time.January,
	"февраля": time.February, "февраль": time.February,
	"марта": time.March, "март": time.March,
	"апреля": time.April, "апрель": time.April,
	"мая": time.May, "май": time.May,
	"июня": time.June, "июнь": time.June,
	"июля": time.July, "июль": time.July,
	"августа": time.August, "август": time.August,
	"сентября": time.September, "сентябрь": time.September,
	"октября": time.October, "октябрь": time.October,
	"ноября": time.November, "ноябрь": time.November,
	"декабря": time.December, "декабрь": time.December,
}

// ParsePostedAt берет два последних слова строки ("12 октября") и
// превращает их в календарную дату текущего года. nil, если разобрать не удалось.
func ParsePostedAt(text string, now time.Time) *time.Time {
	tokens := strings.Fields(text)
	if len(tokens) < 2 {
		return nil
	}
	dayToken, monthToken := tokens[len(tokens)-2], tokens[len(tokens)-1]

	day, err := strconv.Atoi(dayToken)
	if err != nil || day < 1 || day > 31 {
		return nil
	}

	// Caser хранит состояние, поэтому создаем его на каждый вызов
	lower := cases.Lower(language.Russian)
	month, ok := ruMonths[lower.String(monthToken)]
	if !ok {
		return nil
	}

	posted := time.Date(now.Year(), month, day, 0, 0, 0, 0, now.Location())
	if posted.Day() != day {
		// 31 июня и подобное
		return nil
	}
	return &posted
}

// FirstChar возвращает первый символ строки (руну), без проверки что это цифра
func FirstChar(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return ""
	}
	return string(r)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
