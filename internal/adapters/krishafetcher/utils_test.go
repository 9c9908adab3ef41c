package krishafetcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePostedAt(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.March, 5, 14, 0, 0, 0, time.UTC)

	t.Run("trailing day and month", func(t *testing.T) {
		t.Parallel()
		got := ParsePostedAt("Просмотров 120, обновлено 12 февраля", now)
		require.NotNil(t, got)
		assert.Equal(t, "2024-02-12", got.Format("2006-01-02"))
	})

	t.Run("capitalised month", func(t *testing.T) {
		t.Parallel()
		got := ParsePostedAt("3 Марта", now)
		require.NotNil(t, got)
		assert.Equal(t, "2024-03-03", got.Format("2006-01-02"))
	})

	t.Run("unparseable text", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, ParsePostedAt("сегодня", now))
		assert.Nil(t, ParsePostedAt("вчера днем", now))
		assert.Nil(t, ParsePostedAt("", now))
	})

	t.Run("impossible date", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, ParsePostedAt("31 июня", now))
	})
}

func TestFirstChar(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2", FirstChar("2-комнатная квартира, 54 м², 3/9 этаж"))
	assert.Equal(t, "К", FirstChar("Квартира посуточно"))
	assert.Empty(t, FirstChar(""))
}
