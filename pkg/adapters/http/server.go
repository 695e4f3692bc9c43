// Package http exposes a read-only inspection API over an engine: the loaded
// types, export closures, import journals and Prometheus metrics.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aretw0/transit/internal/discovery"
	"github.com/aretw0/transit/internal/logging"
	"github.com/aretw0/transit/internal/presentation/graph"
	"github.com/aretw0/transit/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APIVersion is the version of the route layout.
const APIVersion = "0.1.0"

// Engine is the part of the transit engine the API reads from.
type Engine interface {
	Types() []string
	Def(typeName string) (domain.DependencyDef, error)
	Roots(ctx context.Context, typeName string, scope domain.Scope) ([]domain.Dependency, error)
	Lookup(ctx context.Context, typeName, id string) (domain.Dependency, error)
	Discover(ctx context.Context, root domain.Dependency) (*discovery.Closure, error)
}

// Journals gives access to the transaction logs of past imports.
type Journals interface {
	List(ctx context.Context) ([]string, error)
	Read(ctx context.Context, operationID string) ([]domain.LogEntry, error)
}

// Server serves the inspection routes.
type Server struct {
	Engine   Engine
	Journals Journals
	// Gatherer backs /metrics. The route is not mounted when nil.
	Gatherer prometheus.Gatherer
	Version  string
	Logger   *slog.Logger
}

// ClosureResponse is the body of GET /closure.
type ClosureResponse struct {
	Closure *discovery.Closure `json:"closure"`
	Errors  []string           `json:"errors,omitempty"`
}

// NewHandler creates the HTTP handler for s.
func NewHandler(s *Server) http.Handler {
	if s.Logger == nil {
		s.Logger = logging.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)
	r.Get("/info", s.info)

	if s.Engine != nil {
		r.Get("/types", s.listTypes)
		r.Get("/types/{type}", s.getType)
		r.Get("/types/{type}/roots", s.listRoots)
		r.Get("/closure", s.getClosure)
	}
	if s.Journals != nil {
		r.Get("/journals", s.listJournals)
		r.Get("/journals/{id}", s.getJournal)
	}
	if s.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) info(w http.ResponseWriter, r *http.Request) {
	version := s.Version
	if version == "" {
		version = "dev"
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "transit-http",
		"version":     version,
		"api_version": APIVersion,
	})
}

func (s *Server) listTypes(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Engine.Types())
}

func (s *Server) getType(w http.ResponseWriter, r *http.Request) {
	def, err := s.Engine.Def(chi.URLParam(r, "type"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, def)
}

// listRoots handles GET /types/{type}/roots?parent_id=&include_users=.
func (s *Server) listRoots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	scope := domain.Scope{ParentID: q.Get("parent_id")}
	if v := q.Get("include_users"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "include_users must be a boolean", http.StatusBadRequest)
			return
		}
		scope.IncludeUsers = b
	}

	roots, err := s.Engine.Roots(r.Context(), chi.URLParam(r, "type"), scope)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, roots)
}

// getClosure handles GET /closure?type=&id=[&format=mermaid].
// Ids are passed as query parameters because they may contain slashes.
func (s *Server) getClosure(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	typeName, id := q.Get("type"), q.Get("id")
	if typeName == "" || id == "" {
		http.Error(w, "type and id are required", http.StatusBadRequest)
		return
	}

	root, err := s.Engine.Lookup(r.Context(), typeName, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	closure, walkErr := s.Engine.Discover(r.Context(), root)
	if closure == nil {
		s.writeError(w, walkErr)
		return
	}

	if q.Get("format") == "mermaid" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(graph.GenerateMermaid(closure, nil)))
		return
	}

	resp := ClosureResponse{Closure: closure}
	for _, e := range unwrapJoined(walkErr) {
		resp.Errors = append(resp.Errors, e.Error())
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listJournals(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Journals.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ids)
}

func (s *Server) getJournal(w http.ResponseWriter, r *http.Request) {
	entries, err := s.Journals.Read(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

// -- Helpers --

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("Failed to encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrJournalNotFound), errors.Is(err, domain.ErrConfiguration):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrIllegalArgument), errors.Is(err, domain.ErrWrongFormat):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.Logger.Error("Request failed", "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func unwrapJoined(err error) []error {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
