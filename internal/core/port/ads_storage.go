package port

import (
	"context"
	"krisha-parser-service/internal/core/domain"
)

// AdsStoragePort - хранилище объявлений. Save идемпотентен по AdID:
// повторная запись того же объявления ничего не делает и не является ошибкой.
type AdsStoragePort interface {
	Exists(ctx context.Context, adID string) (bool, error)
	Save(ctx context.Context, ad *domain.AdDetails) error
}
