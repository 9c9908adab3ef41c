package postgres

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"krisha-parser-service/internal/contextkeys"
	"krisha-parser-service/internal/core/domain"
	"krisha-parser-service/internal/core/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// errorCountingLogger считает вызовы Error, остальное игнорирует
type errorCountingLogger struct {
	errCount atomic.Int32
}

func (l *errorCountingLogger) Info(string, port.Fields)  {}
func (l *errorCountingLogger) Warn(string, port.Fields)  {}
func (l *errorCountingLogger) Debug(string, port.Fields) {}
func (l *errorCountingLogger) Error(string, error, port.Fields) {
	l.errCount.Add(1)
}
func (l *errorCountingLogger) WithFields(port.Fields) port.LoggerPort { return l }

type fakeRow struct {
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if p, ok := dest[0].(*int); ok {
		*p = 1
	}
	return nil
}

type fakeDB struct {
	rowErr error

	execTag pgconn.CommandTag
	execErr error

	lastSQL  string
	lastArgs []any
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.lastSQL, f.lastArgs = sql, args
	return fakeRow{err: f.rowErr}
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.lastSQL, f.lastArgs = sql, args
	return f.execTag, f.execErr
}

func TestPostgresAdsRepository_Exists(t *testing.T) {
	t.Parallel()

	t.Run("row found", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{}
		repo, err := NewPostgresAdsRepository(db)
		require.NoError(t, err)

		exists, err := repo.Exists(context.Background(), "681234567")
		require.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, []any{"681234567"}, db.lastArgs)
	})

	t.Run("no rows means unknown ad", func(t *testing.T) {
		t.Parallel()

		repo, err := NewPostgresAdsRepository(&fakeDB{rowErr: pgx.ErrNoRows})
		require.NoError(t, err)

		exists, err := repo.Exists(context.Background(), "1")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("driver error is returned", func(t *testing.T) {
		t.Parallel()

		driverErr := errors.New("connection refused")
		repo, err := NewPostgresAdsRepository(&fakeDB{rowErr: driverErr})
		require.NoError(t, err)

		_, err = repo.Exists(context.Background(), "1")
		assert.ErrorIs(t, err, driverErr)
	})

	t.Run("driver error is left to the caller to log", func(t *testing.T) {
		t.Parallel()

		repo, err := NewPostgresAdsRepository(&fakeDB{rowErr: errors.New("connection refused")})
		require.NoError(t, err)

		logger := &errorCountingLogger{}
		ctx := contextkeys.ContextWithLogger(context.Background(), logger)

		_, err = repo.Exists(ctx, "1")
		require.Error(t, err)
		assert.Zero(t, logger.errCount.Load())
	})
}

func TestPostgresAdsRepository_Save(t *testing.T) {
	t.Parallel()

	area := 54
	posted := time.Date(2024, time.February, 12, 0, 0, 0, 0, time.UTC)
	ad := &domain.AdDetails{
		AdID:       "681234567",
		AdURL:      "https://krisha.kz/a/show/681234567",
		Title:      "2-комнатная квартира, 54 м², Абая 150",
		Price:      250000,
		Floor:      &domain.Floor{Current: 3, Total: 9},
		Area:       &area,
		Duration:   domain.DurationLongTerm,
		PostedAt:   &posted,
		Photos:     []string{"https://cdn/1-full.webp", "https://cdn/2-full.webp"},
		Promotions: []domain.PromotionTag{domain.PromotionHot},
		Source:     domain.SourceParser,
		AdType:     domain.AdTypeRentOut,
	}

	t.Run("inserts with ignore on conflict", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{execTag: pgconn.NewCommandTag("INSERT 0 1")}
		repo, err := NewPostgresAdsRepository(db)
		require.NoError(t, err)

		require.NoError(t, repo.Save(context.Background(), ad))
		assert.Contains(t, db.lastSQL, "ON CONFLICT (ad_id) DO NOTHING")
		require.Len(t, db.lastArgs, 27)

		assert.Equal(t, "681234567", db.lastArgs[0])
		assert.Equal(t, 3, *db.lastArgs[8].(*int))
		assert.Equal(t, 9, *db.lastArgs[9].(*int))
		assert.JSONEq(t, `["https://cdn/1-full.webp","https://cdn/2-full.webp"]`, string(db.lastArgs[22].([]byte)))
		assert.JSONEq(t, `["hot"]`, string(db.lastArgs[23].([]byte)))
	})

	t.Run("duplicate is not an error", func(t *testing.T) {
		t.Parallel()

		repo, err := NewPostgresAdsRepository(&fakeDB{execTag: pgconn.NewCommandTag("INSERT 0 0")})
		require.NoError(t, err)

		assert.NoError(t, repo.Save(context.Background(), ad))
	})

	t.Run("exec error is returned", func(t *testing.T) {
		t.Parallel()

		execErr := errors.New("deadlock detected")
		repo, err := NewPostgresAdsRepository(&fakeDB{execErr: execErr})
		require.NoError(t, err)

		logger := &errorCountingLogger{}
		ctx := contextkeys.ContextWithLogger(context.Background(), logger)

		assert.ErrorIs(t, repo.Save(ctx, ad), execErr)
		assert.Zero(t, logger.errCount.Load())
	})
}

func TestInsertArgs_EmptyCollections(t *testing.T) {
	t.Parallel()

	args, err := insertArgs(&domain.AdDetails{AdID: "1"})
	require.NoError(t, err)

	assert.Nil(t, args[8].(*int))
	assert.Nil(t, args[9].(*int))
	assert.Equal(t, "[]", string(args[22].([]byte)))
	assert.Equal(t, "[]", string(args[23].([]byte)))
}
