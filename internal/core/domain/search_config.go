package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RentTransactionType - тип сделки "аренда" на krisha.kz
const RentTransactionType = "arenda"

// RoomValue - значение фильтра по комнатам. В конфиге может быть числом или строкой.
type RoomValue string

func (r *RoomValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RoomValue(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("room value must be a number or a string: %w", err)
	}
	*r = RoomValue(n.String())
	return nil
}

// SearchParams - фильтры выдачи
type SearchParams struct {
	Type      string      `json:"type"`
	Space     string      `json:"space"`
	HasPhotos bool        `json:"has_photos"`
	FromOwner bool        `json:"from_owner"`
	Rooms     []RoomValue `json:"rooms"`
	Cities    []string    `json:"cities"`
}

// SearchConfig загружается один раз при старте и не меняется во время запуска
type SearchConfig struct {
	BaseURL       string       `json:"base_url"`
	Params        SearchParams `json:"params"`
	MaxAdsPerCity int          `json:"max_ads_per_city"`
}

// IsRent - относится ли поиск к аренде (от этого зависит пагинация)
func (c SearchConfig) IsRent() bool {
	return c.Params.Type == RentTransactionType
}
