package krishafetcher

import (
	"os"
	"strings"
	"testing"
	"time"

	"krisha-parser-service/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadSnapshot(t *testing.T) pageSnapshot {
	t.Helper()

	html, err := os.ReadFile("testdata/ad_page.html")
	require.NoError(t, err)

	return pageSnapshot{
		URL:       "https://krisha.kz/a/show/681234567",
		HTML:      string(html),
		Phone:     " +7 701 123 45 67 ",
		Condition: "\n свежий ремонт ",
		ViewsText: "обновлено 12 февраля",
	}
}

func TestToAdDetails(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	cfg := rentConfig()

	record, seed, err := toAdDetails(loadSnapshot(t), cfg, now)
	require.NoError(t, err)

	assert.Equal(t, "https://alaps-photos-kr.kcdn.kz/webp/14/14f77fad-b4c5-4a3e-9d0e-a1b2c3d4e5f6/3-750x470.jpg", seed)

	assert.Equal(t, "681234567", record.AdID)
	assert.Equal(t, "https://krisha.kz/a/show/681234567", record.AdURL)
	assert.Equal(t, "2-комнатная квартира посуточно, 54 м², 3/9 этаж, Абая 150", record.Title)
	assert.Equal(t, "Абая 150", record.Address)
	assert.Equal(t, "2", record.Rooms)
	assert.Equal(t, int64(18000), record.Price)
	assert.Equal(t, domain.DurationDaily, record.Duration)

	assert.Equal(t, "Алматы", record.City)
	assert.Equal(t, "Бостандыкский р-н", record.District)

	require.NotNil(t, record.Floor)
	assert.Equal(t, domain.Floor{Current: 3, Total: 9}, *record.Floor)
	require.NotNil(t, record.Area)
	assert.Equal(t, 54, *record.Area)

	assert.Equal(t, "+7 701 123 45 67", record.Phone)
	assert.Equal(t, "свежий ремонт", record.Condition)
	assert.Equal(t, "Хозяин недвижимости", record.Author)
	assert.Equal(t, "Светлая квартира рядом с метро.", record.Description)
	assert.Equal(t, "полностью", record.Furniture)
	assert.Equal(t, "кондиционер, интернет", record.Facilities)
	assert.Equal(t, domain.ToiletCombined, record.Toilet)
	assert.Equal(t, "душевая кабина", record.Bathroom)
	assert.Equal(t, "семье", record.RentalOptions)

	require.NotNil(t, record.PostedAt)
	assert.Equal(t, "2024-02-12", record.PostedAt.Format("2006-01-02"))

	assert.Empty(t, record.Photos)
	assert.NotNil(t, record.Promotions)
	assert.Equal(t, domain.SourceParser, record.Source)
	assert.Equal(t, domain.AdTypeRentOut, record.AdType)
	assert.Equal(t, domain.HouseTypeFlat, record.HouseType)
}

func TestToAdDetails_Failures(t *testing.T) {
	t.Parallel()

	now := time.Now()

	t.Run("no gallery image", func(t *testing.T) {
		t.Parallel()

		snap := loadSnapshot(t)
		snap.HTML = strings.Replace(snap.HTML, `<img src=`, `<img data-src=`, 1)

		_, _, err := toAdDetails(snap, rentConfig(), now)
		assert.ErrorIs(t, err, domain.ErrNoPhotos)
	})

	t.Run("url without id", func(t *testing.T) {
		t.Parallel()

		snap := loadSnapshot(t)
		snap.URL = "https://krisha.kz/a/681234567"

		_, _, err := toAdDetails(snap, rentConfig(), now)
		assert.ErrorIs(t, err, domain.ErrMissingAdID)
	})

	t.Run("no price", func(t *testing.T) {
		t.Parallel()

		snap := loadSnapshot(t)
		snap.HTML = strings.Replace(snap.HTML, "18 000 〒", "договорная", 1)

		_, _, err := toAdDetails(snap, rentConfig(), now)
		assert.ErrorIs(t, err, domain.ErrPriceNotFound)
	})
}

func TestNormalizeToilet(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "совмещенный санузел", domain.NormalizeToilet("совмещен"))
	assert.Equal(t, "раздельный санузел", domain.NormalizeToilet("раздельный"))
	assert.Equal(t, "раздельный санузел", domain.NormalizeToilet("2 с/у и более"))
	assert.Equal(t, "раздельный санузел", domain.NormalizeToilet(""))
}

func TestParseFloorAndArea(t *testing.T) {
	t.Parallel()

	floor := parseFloor("5 из 12")
	require.NotNil(t, floor)
	assert.Equal(t, domain.Floor{Current: 5, Total: 12}, *floor)
	assert.Nil(t, parseFloor("цокольный"))

	area := parseArea("120 м²")
	require.NotNil(t, area)
	assert.Equal(t, 120, *area)
	assert.Nil(t, parseArea("не указана"))
}
