package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/slice/discord-package-exporter/internal/progress"
)

// StatusSource exposes the progress of the running import.
type StatusSource interface {
	Snapshot() progress.Snapshot
}

type Server struct {
	router *chi.Mux
	http   *http.Server
	runID  string
	status StatusSource
}

func NewServer(port int, runID string, status StatusSource) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		http:   &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: router},
		runID:  runID,
		status: status,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/import/status", s.importStatus)

	return s
}

func (s *Server) Start() error {
	slog.Info("status server starting", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type statusResponse struct {
	RunID string `json:"run_id"`
	progress.Snapshot
}

func (s *Server) importStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(statusResponse{
		RunID:    s.runID,
		Snapshot: s.status.Snapshot(),
	})
}
