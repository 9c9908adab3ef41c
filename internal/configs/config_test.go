package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"krisha-parser-service/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSearchConfig(t *testing.T) {
	t.Run("numbers and strings in rooms", func(t *testing.T) {
		cfg, err := ParseSearchConfig([]byte(`{
			"base_url": "https://krisha.kz/",
			"params": {
				"type": "arenda",
				"space": "kvartiry",
				"has_photos": true,
				"from_owner": false,
				"rooms": [1, "2", 3],
				"cities": ["almaty", "astana"]
			},
			"max_ads_per_city": 20
		}`))
		require.NoError(t, err)

		assert.Equal(t, "https://krisha.kz", cfg.BaseURL)
		assert.Equal(t, []domain.RoomValue{"1", "2", "3"}, cfg.Params.Rooms)
		assert.Equal(t, []string{"almaty", "astana"}, cfg.Params.Cities)
		assert.True(t, cfg.Params.HasPhotos)
		assert.True(t, cfg.IsRent())
		assert.Equal(t, 20, cfg.MaxAdsPerCity)
	})

	invalid := map[string]string{
		"not json":          `{`,
		"missing cities":    `{"base_url": "https://krisha.kz", "params": {"type": "arenda", "space": "kvartiry"}, "max_ads_per_city": 1}`,
		"empty cities":      `{"base_url": "https://krisha.kz", "params": {"type": "arenda", "space": "kvartiry", "cities": []}, "max_ads_per_city": 1}`,
		"zero quota":        `{"base_url": "https://krisha.kz", "params": {"type": "arenda", "space": "kvartiry", "cities": ["almaty"]}, "max_ads_per_city": 0}`,
		"bad base url":      `{"base_url": "krisha.kz", "params": {"type": "arenda", "space": "kvartiry", "cities": ["almaty"]}, "max_ads_per_city": 1}`,
		"room is an object": `{"base_url": "https://krisha.kz", "params": {"type": "arenda", "space": "kvartiry", "rooms": [{}], "cities": ["almaty"]}, "max_ads_per_city": 1}`,
	}
	for name, doc := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSearchConfig([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadSearchConfig_MissingFile(t *testing.T) {
	_, err := LoadSearchConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("DATABASE_URL=postgres://u:p@localhost:5432/krisha\nFETCH_RETRY_DELAY=1500\n"), 0o644))

	// t.Setenv восстановит значения после теста, а Unsetenv дает godotenv их выставить
	for _, key := range []string{"DATABASE_URL", "FETCH_RETRY_DELAY"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AD_PAUSE", "2s")
	t.Setenv("RUN_ON_START", "true")

	cfg, err := LoadConfig(envPath)
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@localhost:5432/krisha", cfg.Database.URL)
	assert.Equal(t, 1500*time.Millisecond, cfg.Crawler.FetchRetryDelay)
	assert.Equal(t, 2*time.Second, cfg.Crawler.AdPause)
	assert.True(t, cfg.Scheduler.RunOnStart)
	assert.Equal(t, "10 0 * * *", cfg.Scheduler.CronSchedule)
	assert.Equal(t, 3, cfg.Crawler.FetchRetries)
	assert.Empty(t, cfg.RabbitMQ.URL)
}
