package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"krisha-parser-service/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	httpServer *http.Server
	logger     port.LoggerPort
}

func NewServer(httpPort string, runsHandler *RunsHandler, baseLogger port.LoggerPort) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + httpPort,
			Handler:           NewRouter(runsHandler, baseLogger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: baseLogger,
	}
}

// NewRouter собирает маршруты сервиса
func NewRouter(runsHandler *RunsHandler, baseLogger port.LoggerPort) http.Handler {
	r := chi.NewRouter()
	r.Use(LoggerMiddleware(baseLogger), middleware.Recoverer)

	r.Get("/healthz", runsHandler.Health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/runs", runsHandler.StartRun)
	})

	return r
}

// Start блокируется до остановки сервера. Штатная остановка не считается ошибкой.
func (s *Server) Start() error {
	s.logger.Info("Starting REST server", port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST server...", nil)
	return s.httpServer.Shutdown(ctx)
}
