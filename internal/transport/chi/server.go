// Package chi exposes the chat and health endpoints over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/chatvat/chatvat/internal/domain"
	logpkg "github.com/chatvat/chatvat/internal/logger"
	"github.com/chatvat/chatvat/internal/metrics"
	chatuc "github.com/chatvat/chatvat/internal/usecase/chat"
	healthuc "github.com/chatvat/chatvat/internal/usecase/health"
	"github.com/chatvat/chatvat/internal/version"
)

// Server handles the HTTP API.
type Server struct {
	chat   *chatuc.Service
	health *healthuc.Service
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(chat *chatuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	return &Server{chat: chat, health: health, logger: logger}
}

// Router assembles the route tree with middleware.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(s.logger))
	r.Use(metrics.Middleware())

	r.Post("/chat", s.handleChat)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Message string `json:"message"`
}

type healthResponse struct {
	Status  string          `json:"status"`
	Version string          `json:"version"`
	Checks  map[string]bool `json:"checks"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleChat answers POST /chat.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "message is required")
		return
	}

	answer, err := s.chat.Answer(r.Context(), req.Message)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Message: answer})
}

// handleHealth answers GET /health. Returns 200 immediately so platform
// probes pass even while ingestion is still warming up.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  string(report.Status),
		Version: version.Version,
		Checks:  report.Checks,
	})
}

// handleDomainError maps sentinel errors to HTTP statuses. Logs through
// the request-scoped logger so the entry carries the request ID.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logpkg.FromContext(r.Context()).Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err))

	switch {
	case errors.Is(err, domain.ErrProviderError):
		writeError(w, http.StatusBadGateway, "provider_error", "upstream provider failed")
	case errors.Is(err, domain.ErrStoreUnavailable):
		writeError(w, http.StatusBadGateway, "store_unavailable", "knowledge store unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
