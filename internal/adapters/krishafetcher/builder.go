package krishafetcher

import (
	"fmt"
	"net/url"
	"strings"

	"krisha-parser-service/internal/constants"
	"krisha-parser-service/internal/core/domain"
)

// BuildSearchURL собирает адрес страницы выдачи. Чистая функция:
// одинаковые входные данные всегда дают одинаковый адрес.
func BuildSearchURL(cfg domain.SearchConfig, page int, city string) string {
	p := cfg.Params
	searchURL := fmt.Sprintf("%s/%s/%s/%s/", cfg.BaseURL, p.Type, p.Space, city)

	var params []string

	if p.HasPhotos {
		params = append(params, constants.ParamHasPhoto)
	}
	if p.FromOwner {
		params = append(params, constants.ParamFromOwner)
	}

	// Одна комната - скалярный параметр, несколько - массив
	switch len(p.Rooms) {
	case 0:
	case 1:
		params = append(params, fmt.Sprintf("%s=%s", constants.ParamRooms, p.Rooms[0]))
	default:
		for _, room := range p.Rooms {
			params = append(params, fmt.Sprintf("%s[]=%s", constants.ParamRooms, room))
		}
	}

	// Пагинация у аренды работает только вместе с переключателем периода
	if page > 1 && cfg.IsRent() {
		period := url.QueryEscape(fmt.Sprintf("/%s/%s", p.Type, p.Space))
		params = append(params, fmt.Sprintf("%s=%s&%s=%d", constants.ParamRentPeriod, period, constants.ParamPage, page))
	}

	if len(params) > 0 {
		searchURL += "?" + strings.Join(params, "&")
	}
	return searchURL
}
