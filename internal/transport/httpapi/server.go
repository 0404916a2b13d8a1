// Package httpapi exposes the admin HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"NewsDebate/internal/domain"
	"NewsDebate/internal/ports"
)

const maxBatchSize = 100

// BatchProcessor is the slice of the pipeline the API drives.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, size int) (domain.BatchResult, error)
	ProcessNext(ctx context.Context) (*domain.ArticleOutcome, error)
}

// Server routes admin requests to the pipeline and the article store.
type Server struct {
	pipeline    BatchProcessor
	articles    ports.ArticleStore
	defaultSize int
	logger      *slog.Logger
}

// NewServer wires the handlers.
func NewServer(pipeline BatchProcessor, articles ports.ArticleStore, defaultSize int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultSize <= 0 {
		defaultSize = 10
	}
	return &Server{pipeline: pipeline, articles: articles, defaultSize: defaultSize, logger: logger}
}

// Routes builds the router.
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.healthHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.loggingMiddleware)
	api.HandleFunc("/batches", s.batchHandler).Methods(http.MethodPost)
	api.HandleFunc("/articles/next", s.nextHandler).Methods(http.MethodPost)
	api.HandleFunc("/articles/reset-stuck", s.resetStuckHandler).Methods(http.MethodPost)
	api.HandleFunc("/stats", s.statsHandler).Methods(http.MethodGet)

	return r
}

// HTTPServer returns an http.Server for addr with conservative timeouts.
// Batches can run for minutes, so the write timeout is generous.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) batchHandler(w http.ResponseWriter, r *http.Request) {
	size := s.defaultSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxBatchSize {
			writeError(w, http.StatusBadRequest, "size must be between 1 and "+strconv.Itoa(maxBatchSize))
			return
		}
		size = n
	}

	result, err := s.pipeline.ProcessBatch(r.Context(), size)
	if err != nil {
		s.fail(w, "process batch", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) nextHandler(w http.ResponseWriter, r *http.Request) {
	outcome, err := s.pipeline.ProcessNext(r.Context())
	if err != nil {
		s.fail(w, "process next", err)
		return
	}
	if outcome == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) resetStuckHandler(w http.ResponseWriter, r *http.Request) {
	n, err := s.articles.ResetStuck(r.Context())
	if err != nil {
		s.fail(w, "reset stuck", err)
		return
	}
	s.logger.Info("reset stuck articles", "count", n)
	writeJSON(w, http.StatusOK, map[string]int{"reset": n})
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := s.articles.Stats(r.Context())
	if err != nil {
		s.fail(w, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op, "error", err)
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrClaim) {
		status = http.StatusServiceUnavailable
	}
	writeError(w, status, err.Error())
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
