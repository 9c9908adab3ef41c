package rest

import (
	"context"
	"errors"
	"net/http"

	"krisha-parser-service/internal/contextkeys"
	"krisha-parser-service/internal/core/domain"
	"krisha-parser-service/internal/core/port"
	usecases_port "krisha-parser-service/internal/core/port/usecases"
)

type RunsHandler struct {
	triggerUC usecases_port.TriggerRunPort
	// runCtx - контекст приложения. Фоновый запуск не должен обрываться вместе с HTTP-запросом.
	runCtx context.Context
}

func NewRunsHandler(runCtx context.Context, triggerUC usecases_port.TriggerRunPort) *RunsHandler {
	return &RunsHandler{
		triggerUC: triggerUC,
		runCtx:    runCtx,
	}
}

type startRunResponse struct {
	RunID string `json:"run_id"`
}

type healthResponse struct {
	Status     string `json:"status"`
	RunRunning bool   `json:"run_running"`
}

// StartRun - POST /api/v1/runs
func (h *RunsHandler) StartRun(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())
	handlerLogger := logger.WithFields(port.Fields{"handler": "StartRun"})

	ctx := contextkeys.ContextWithLogger(h.runCtx, logger)
	runID, err := h.triggerUC.StartRun(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrRunInProgress) {
			handlerLogger.Warn("Run already in progress", nil)
			WriteJSONError(w, http.StatusConflict, "parsing run is already in progress")
			return
		}
		handlerLogger.Error("Failed to start run", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "failed to start parsing run")
		return
	}

	handlerLogger.Info("Run started", port.Fields{"run_id": runID.String()})
	RespondWithJSON(w, http.StatusAccepted, startRunResponse{RunID: runID.String()})
}

// Health - GET /healthz
func (h *RunsHandler) Health(w http.ResponseWriter, _ *http.Request) {
	RespondWithJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		RunRunning: h.triggerUC.IsRunning(),
	})
}
