// Package api exposes the flatten pipeline and the result store over HTTP.
//
// Routes:
//
//	POST /v1/flatten       flatten a trace document from the request body
//	GET  /v1/results       list saved results
//	GET  /v1/results/{id}  fetch a saved result
//	DELETE /v1/results/{id} delete a saved result
//	GET  /healthz          liveness check
package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	tterrors "github.com/epitools/tracetab/pkg/errors"
	"github.com/epitools/tracetab/pkg/pipeline"
	"github.com/epitools/tracetab/pkg/store"
)

// maxBodyBytes caps the request body for flatten requests (16 MiB).
const maxBodyBytes = 16 << 20

// Server handles HTTP requests against the pipeline and the store.
type Server struct {
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger
}

// New builds the HTTP handler. The store may be nil, in which case the
// results routes respond 501.
func New(runner *pipeline.Runner, st store.Store, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{runner: runner, store: st, logger: logger}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/flatten", s.handleFlatten)
		r.Get("/results", s.handleListResults)
		r.Get("/results/{id}", s.handleGetResult)
		r.Delete("/results/{id}", s.handleDeleteResult)
	})

	return r
}

// =============================================================================
// Middleware
// =============================================================================

// requestID assigns a UUID to every request, echoed in X-Request-ID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Millisecond),
			"request_id", w.Header().Get("X-Request-ID"))
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// flattenRequest wraps the trace envelope with request-level options.
type flattenRequest struct {
	Label   string          `json:"label,omitempty"`
	Save    bool            `json:"save,omitempty"`
	Refresh bool            `json:"refresh,omitempty"`
	Traces  json.RawMessage `json:"traces"`
}

// flattenResponse is the body returned by POST /v1/flatten.
type flattenResponse struct {
	ResultID string          `json:"result_id,omitempty"`
	RowCount int             `json:"row_count"`
	Cached   bool            `json:"cached"`
	Rows     json.RawMessage `json:"rows"`
}

func (s *Server) handleFlatten(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req flattenRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.writeError(w, r, tterrors.Wrap(tterrors.ErrCodeInvalidInput, err, "malformed request body"))
		return
	}
	if len(req.Traces) == 0 {
		s.writeError(w, r, tterrors.New(tterrors.ErrCodeInvalidInput, "missing traces document"))
		return
	}
	if req.Label != "" {
		if err := tterrors.ValidateLabel(req.Label); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	result, err := s.runner.Execute(r.Context(), pipeline.Options{
		Reader:  bytesReader(req.Traces),
		Label:   req.Label,
		Save:    req.Save,
		Refresh: req.Refresh,
		Formats: []string{pipeline.FormatJSON},
		Logger:  s.logger,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, flattenResponse{
		ResultID: result.ResultID,
		RowCount: result.Table.Len(),
		Cached:   result.CacheInfo.TableHit,
		Rows:     extractRows(result.Artifacts[pipeline.FormatJSON]),
	})
}

func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, tterrors.New(tterrors.ErrCodeUnsupported, "no result store configured"))
		return
	}
	summaries, err := s.store.ListResults(r.Context(), parseLimit(r))
	if err != nil {
		s.writeError(w, r, tterrors.Wrap(tterrors.ErrCodeStore, err, "list results"))
		return
	}
	if summaries == nil {
		summaries = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": summaries})
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, tterrors.New(tterrors.ErrCodeUnsupported, "no result store configured"))
		return
	}
	id := chi.URLParam(r, "id")
	result, err := s.store.GetResult(r.Context(), id)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			s.writeError(w, r, tterrors.New(tterrors.ErrCodeResultNotFound, "no result with ID %q", id))
			return
		}
		s.writeError(w, r, tterrors.Wrap(tterrors.ErrCodeStore, err, "get result"))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDeleteResult(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, tterrors.New(tterrors.ErrCodeUnsupported, "no result store configured"))
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteResult(r.Context(), id); err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			s.writeError(w, r, tterrors.New(tterrors.ErrCodeResultNotFound, "no result with ID %q", id))
			return
		}
		s.writeError(w, r, tterrors.Wrap(tterrors.ErrCodeStore, err, "delete result"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
