package port

import (
	"context"
	"krisha-parser-service/internal/core/domain"
)

// KrishaFetcherPort объединяет все операции, которые можно выполнить
// с сайтом krisha.kz.
type KrishaFetcherPort interface {
	// BuildSearchURL строит адрес страницы выдачи для города и номера страницы (с 1).
	BuildSearchURL(page int, city string) string

	// FetchPage загружает страницу с повторными попытками.
	// ok == false означает, что страница недоступна; это не ошибка.
	FetchPage(ctx context.Context, pageURL string) (body []byte, ok bool)

	// FetchLinks извлекает ссылки на объявления со страницы выдачи в порядке документа.
	FetchLinks(ctx context.Context, html []byte) ([]domain.AdLink, error)

	// FetchAdDetails открывает объявление в браузере и собирает полную запись.
	FetchAdDetails(ctx context.Context, adURL string) (*domain.AdDetails, error)
}
