package krishafetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T, opts Options) *KrishaFetcherAdapter {
	t.Helper()

	adapter, err := NewKrishaFetcherAdapter(rentConfig(), opts, NewPhotoProber(&stubChecker{}, ""))
	require.NoError(t, err)
	return adapter
}

func TestFetchPage(t *testing.T) {
	t.Parallel()

	t.Run("always failing url exhausts retries", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		delay := 50 * time.Millisecond
		adapter := newTestAdapter(t, Options{FetchRetries: 3, FetchRetryDelay: delay, FetchTimeout: time.Second})

		started := time.Now()
		body, ok := adapter.FetchPage(context.Background(), server.URL+"/arenda/kvartiry/almaty/")
		elapsed := time.Since(started)

		assert.False(t, ok)
		assert.Nil(t, body)
		assert.Equal(t, int32(3), hits.Load())
		assert.GreaterOrEqual(t, elapsed, 2*delay)
	})

	t.Run("recovers on second attempt", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if hits.Add(1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte("<html>ok</html>"))
		}))
		defer server.Close()

		adapter := newTestAdapter(t, Options{FetchRetries: 3, FetchRetryDelay: 10 * time.Millisecond, FetchTimeout: time.Second})

		body, ok := adapter.FetchPage(context.Background(), server.URL)

		require.True(t, ok)
		assert.Equal(t, "<html>ok</html>", string(body))
		assert.Equal(t, int32(2), hits.Load())
	})

	t.Run("sends a browser user agent", func(t *testing.T) {
		t.Parallel()

		var userAgent atomic.Value
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userAgent.Store(r.UserAgent())
			_, _ = w.Write([]byte("ok"))
		}))
		defer server.Close()

		adapter := newTestAdapter(t, Options{FetchTimeout: time.Second})

		_, ok := adapter.FetchPage(context.Background(), server.URL)

		require.True(t, ok)
		ua, _ := userAgent.Load().(string)
		assert.NotEmpty(t, ua)
		assert.NotContains(t, ua, "colly")
	})

	t.Run("cancelled context stops waiting between attempts", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		adapter := newTestAdapter(t, Options{FetchRetries: 3, FetchRetryDelay: time.Hour, FetchTimeout: time.Second})

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		_, ok := adapter.FetchPage(ctx, server.URL)
		assert.False(t, ok)
	})
}
