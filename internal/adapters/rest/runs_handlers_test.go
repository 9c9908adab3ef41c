package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"krisha-parser-service/internal/contextkeys"
	"krisha-parser-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTrigger struct {
	runID   uuid.UUID
	err     error
	running bool
}

func (s *stubTrigger) RunOnce(_ context.Context) error { return s.err }

func (s *stubTrigger) StartRun(_ context.Context) (uuid.UUID, error) {
	return s.runID, s.err
}

func (s *stubTrigger) IsRunning() bool { return s.running }

func newTestRouter(trigger *stubTrigger) http.Handler {
	logger := contextkeys.LoggerFromContext(context.Background())
	return NewRouter(NewRunsHandler(context.Background(), trigger), logger)
}

func TestRunsHandler_StartRun(t *testing.T) {
	t.Parallel()

	t.Run("accepted", func(t *testing.T) {
		t.Parallel()

		runID := uuid.New()
		router := newTestRouter(&stubTrigger{runID: runID})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/runs", nil))

		require.Equal(t, http.StatusAccepted, rec.Code)
		var body startRunResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, runID.String(), body.RunID)
	})

	t.Run("conflict when run in progress", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(&stubTrigger{err: domain.ErrRunInProgress})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/runs", nil))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "already in progress")
	})

	t.Run("internal error", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(&stubTrigger{err: errors.New("boom")})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/runs", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(&stubTrigger{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestRunsHandler_Health(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&stubTrigger{running: true})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","run_running":true}`, rec.Body.String())
}
