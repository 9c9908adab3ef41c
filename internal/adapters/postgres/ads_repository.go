package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"krisha-parser-service/internal/contextkeys"
	"krisha-parser-service/internal/core/domain"
	"krisha-parser-service/internal/core/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// dbExecutor - часть *pgxpool.Pool, которая нужна репозиторию
type dbExecutor interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresAdsRepository реализует AdsStoragePort для PostgreSQL
type PostgresAdsRepository struct {
	db dbExecutor
}

// NewPostgresAdsRepository создает новый экземпляр PostgresAdsRepository
func NewPostgresAdsRepository(db dbExecutor) (*PostgresAdsRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("postgres ads repository: db cannot be nil")
	}
	return &PostgresAdsRepository{db: db}, nil
}

const existsQuery = `SELECT 1 FROM ads WHERE ad_id = $1 LIMIT 1`

// Exists проверяет, сохранено ли объявление раньше.
// Ошибку драйвера не логирует: ее логирует вызывающий вместе с решением пропустить объявление.
func (r *PostgresAdsRepository) Exists(ctx context.Context, adID string) (bool, error) {
	var one int
	err := r.db.QueryRow(ctx, existsQuery, adID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("PostgresAdsRepo: error checking ad '%s': %w", adID, err)
	}

	return true, nil
}

const insertAdQuery = `
	INSERT INTO ads (
		ad_id, ad_url, title, address, city, district, rooms, price,
		floor_current, floor_total, area, duration, condition, phone, author, description,
		furniture, facilities, toilet, bathroom, rental_options, posted_at,
		photos, promotions, source, ad_type, house_type
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8,
		$9, $10, $11, $12, $13, $14, $15, $16,
		$17, $18, $19, $20, $21, $22,
		$23, $24, $25, $26, $27
	)
	ON CONFLICT (ad_id) DO NOTHING
`

// Save вставляет объявление. Повторная вставка того же ad_id ничего не делает.
// Ошибки возвращаются без записи в лог, как и в Exists.
func (r *PostgresAdsRepository) Save(ctx context.Context, ad *domain.AdDetails) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresAdsRepository",
		"method":    "Save",
		"ad_id":     ad.AdID,
	})

	args, err := insertArgs(ad)
	if err != nil {
		return fmt.Errorf("PostgresAdsRepo: error preparing ad '%s': %w", ad.AdID, err)
	}

	tag, err := r.db.Exec(ctx, insertAdQuery, args...)
	if err != nil {
		return fmt.Errorf("PostgresAdsRepo: error inserting ad '%s': %w", ad.AdID, err)
	}

	if tag.RowsAffected() == 0 {
		repoLogger.Debug("Ad already exists, insert ignored", nil)
		return nil
	}
	repoLogger.Debug("Ad inserted", nil)
	return nil
}

// insertArgs раскладывает запись по колонкам в порядке insertAdQuery
func insertArgs(ad *domain.AdDetails) ([]any, error) {
	photos := ad.Photos
	if photos == nil {
		photos = []string{}
	}
	photosJSON, err := json.Marshal(photos)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal photos: %w", err)
	}

	promotions := ad.Promotions
	if promotions == nil {
		promotions = []domain.PromotionTag{}
	}
	promotionsJSON, err := json.Marshal(promotions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal promotions: %w", err)
	}

	var floorCurrent, floorTotal *int
	if ad.Floor != nil {
		floorCurrent, floorTotal = &ad.Floor.Current, &ad.Floor.Total
	}

	return []any{
		ad.AdID, ad.AdURL, ad.Title, ad.Address, ad.City, ad.District, ad.Rooms, ad.Price,
		floorCurrent, floorTotal, ad.Area, ad.Duration, ad.Condition, ad.Phone, ad.Author, ad.Description,
		ad.Furniture, ad.Facilities, ad.Toilet, ad.Bathroom, ad.RentalOptions, ad.PostedAt,
		photosJSON, promotionsJSON, ad.Source, ad.AdType, ad.HouseType,
	}, nil
}
