package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spigell/scheme-navigator/internal/catalog"
	"github.com/spigell/scheme-navigator/internal/conversation"
	"github.com/spigell/scheme-navigator/internal/dialog"
	"github.com/spigell/scheme-navigator/internal/profile"
)

type Server struct {
	svc    *conversation.Service
	logger *zap.Logger
}

// New returns the HTTP handler exposing the conversation service.
func New(svc *conversation.Service, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{svc: svc, logger: logger}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /conversation/start", s.handleStart)
	mux.HandleFunc("POST /conversation/{id}/message", s.handleMessage)
	mux.HandleFunc("GET /conversation/{id}", s.handleGetConversation)
	mux.HandleFunc("DELETE /conversation/{id}", s.handleEndConversation)

	mux.HandleFunc("GET /schemes", s.handleListSchemes)
	mux.HandleFunc("GET /schemes/{id}", s.handleGetScheme)
	mux.HandleFunc("POST /schemes/search", s.handleSearch)
	mux.HandleFunc("POST /schemes/check-eligibility", s.handleCheckEligibility)
	mux.HandleFunc("GET /schemes/stats/summary", s.handleStats)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s.logRequests(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)),
		)
	})
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, dialog.ErrSessionNotFound), errors.Is(err, catalog.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, profile.ErrInvalidValue),
		errors.Is(err, conversation.ErrInvalidRequest),
		errors.Is(err, dialog.ErrIncomplete):
		status = http.StatusBadRequest
	default:
		s.logger.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Detail: err.Error()})
}

func badRequest(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Detail: detail})
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
