package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"krisha-parser-service/internal/core/domain"
)

type fakeFetcher struct {
	mu sync.Mutex

	// pages - ссылки по адресу страницы; отсутствие страницы - пустая выдача
	pages map[string][]domain.AdLink
	// unavailable - страницы, загрузка которых всегда падает
	unavailable map[string]bool
	detailsErr  map[string]error

	fetchedPages  []string
	detailsCalled []string
}

func pageURL(city string, page int) string {
	return fmt.Sprintf("https://krisha.kz/arenda/kvartiry/%s/?page=%d", city, page)
}

func (f *fakeFetcher) BuildSearchURL(page int, city string) string {
	return pageURL(city, page)
}

func (f *fakeFetcher) FetchPage(_ context.Context, url string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetchedPages = append(f.fetchedPages, url)
	if f.unavailable[url] {
		return nil, false
	}
	return []byte(url), true
}

func (f *fakeFetcher) FetchLinks(_ context.Context, html []byte) ([]domain.AdLink, error) {
	// Тело "страницы" - ее адрес
	return f.pages[string(html)], nil
}

func (f *fakeFetcher) FetchAdDetails(_ context.Context, adURL string) (*domain.AdDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.detailsCalled = append(f.detailsCalled, adURL)
	if err := f.detailsErr[adURL]; err != nil {
		return nil, err
	}
	return &domain.AdDetails{
		AdID:       domain.ExtractAdID(adURL),
		AdURL:      adURL,
		Promotions: []domain.PromotionTag{},
	}, nil
}

type fakeStorage struct {
	mu sync.Mutex

	known     map[string]bool
	existsErr error
	saveErr   error

	existsCalls []string
	saved       []*domain.AdDetails
}

func (s *fakeStorage) Exists(_ context.Context, adID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.existsCalls = append(s.existsCalls, adID)
	if s.existsErr != nil {
		return false, s.existsErr
	}
	return s.known[adID], nil
}

func (s *fakeStorage) Save(_ context.Context, ad *domain.AdDetails) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveErr != nil {
		return s.saveErr
	}
	if s.known == nil {
		s.known = make(map[string]bool)
	}
	s.known[ad.AdID] = true
	s.saved = append(s.saved, ad)
	return nil
}

// pauseRecorder считает паузы вместо того, чтобы спать
type pauseRecorder struct {
	mu     sync.Mutex
	pauses []time.Duration
}

func (p *pauseRecorder) sleep(_ context.Context, d time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pauses = append(p.pauses, d)
	return nil
}

func adLink(id int, promotions ...domain.PromotionTag) domain.AdLink {
	if promotions == nil {
		promotions = []domain.PromotionTag{}
	}
	return domain.AdLink{
		URL:        fmt.Sprintf("https://krisha.kz/a/show/%d", id),
		Promotions: promotions,
	}
}
