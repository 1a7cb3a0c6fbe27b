// Package chi serves the searchsync HTTP API on a chi router.
package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	domdoc "github.com/kailas-cloud/searchsync/internal/domain/document"
	domrec "github.com/kailas-cloud/searchsync/internal/domain/record"
	"github.com/kailas-cloud/searchsync/internal/logger"
	"github.com/kailas-cloud/searchsync/internal/metrics"
	"github.com/kailas-cloud/searchsync/internal/registry"
	healthuc "github.com/kailas-cloud/searchsync/internal/usecase/health"
	"github.com/kailas-cloud/searchsync/internal/usecase/query"
	"github.com/kailas-cloud/searchsync/internal/usecase/rebuild"
)

const (
	conditionParamPrefix = "cond."
	maxBodyBytes         = 1 << 20
)

// TypeRegistry lists and resolves registered record types.
type TypeRegistry interface {
	Types() []string
	Lookup(typeName string) (registry.Config, error)
}

// Completer answers prefix-match queries.
type Completer interface {
	PrefixMatch(ctx context.Context, typeName, q string, opts query.Options) ([]domdoc.Document, error)
}

// Rebuilder reindexes every record of a type and reports the last rebuild.
type Rebuilder interface {
	Rebuild(ctx context.Context, typeName string) (rebuild.Summary, error)
	LastRebuilt(ctx context.Context, typeName string) (time.Time, bool, error)
}

// RecordStore writes records through the index lifecycle.
type RecordStore interface {
	Create(ctx context.Context, typeName string, attrs map[string]any) (*domrec.Row, error)
	Update(ctx context.Context, typeName, id string, attrs map[string]any) (*domrec.Row, error)
	Destroy(ctx context.Context, typeName, id string) error
}

// HealthChecker reports backing store health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server serves the HTTP API.
type Server struct {
	types     TypeRegistry
	query     Completer
	rebuilder Rebuilder
	records   RecordStore
	health    HealthChecker
	logger    *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	types TypeRegistry,
	q Completer,
	rebuilder Rebuilder,
	records RecordStore,
	health HealthChecker,
	log *zap.Logger,
) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		types:     types,
		query:     q,
		rebuilder: rebuilder,
		records:   records,
		health:    health,
		logger:    log,
	}
}

// Router builds the chi router with the full middleware stack.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chimw.RequestID)
	r.Use(WideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeBadRequest, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/types", func(r chi.Router) {
		r.Get("/", s.ListTypes)
		r.Route("/{type}", func(r chi.Router) {
			r.Use(s.requireType)
			r.Get("/complete", s.Complete)
			r.Get("/rebuild", s.RebuildStatus)
			r.Post("/rebuild", s.Rebuild)
			r.Post("/records", s.CreateRecord)
			r.Patch("/records/{id}", s.UpdateRecord)
			r.Delete("/records/{id}", s.DestroyRecord)
		})
	})
	return r
}

// requireType rejects unregistered types before any handler runs.
func (s *Server) requireType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		typeName := chi.URLParam(r, "type")
		if _, err := s.types.Lookup(typeName); err != nil {
			handleDomainError(w, r, err)
			return
		}
		ctx := logger.With(r.Context(), zap.String("type", typeName))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{Status: report.Status, Checks: report.Checks})
}

// ListTypes handles GET /types.
func (s *Server) ListTypes(w http.ResponseWriter, r *http.Request) {
	names := s.types.Types()
	items := make([]typeResponse, 0, len(names))
	for _, name := range names {
		cfg, err := s.types.Lookup(name)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		items = append(items, typeToResponse(cfg))
	}
	writeJSON(w, http.StatusOK, typeListResponse{Items: items})
}

// Complete handles GET /types/{type}/complete.
func (s *Server) Complete(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	opts := query.Options{}
	if raw := params.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "limit must be an integer")
			return
		}
		opts.Limit = limit
	}
	for key, values := range params {
		field, ok := strings.CutPrefix(key, conditionParamPrefix)
		if !ok || len(values) == 0 {
			continue
		}
		if opts.Conditions == nil {
			opts.Conditions = make(map[string]string)
		}
		opts.Conditions[field] = values[0]
	}

	docs, err := s.query.PrefixMatch(r.Context(), chi.URLParam(r, "type"), params.Get("q"), opts)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	items := make([]documentResponse, len(docs))
	for i := range docs {
		items[i] = documentToResponse(&docs[i])
	}
	writeJSON(w, http.StatusOK, completeResponse{Items: items})
}

// Rebuild handles POST /types/{type}/rebuild.
func (s *Server) Rebuild(w http.ResponseWriter, r *http.Request) {
	sum, err := s.rebuilder.Rebuild(r.Context(), chi.URLParam(r, "type"))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryToResponse(sum))
}

// RebuildStatus handles GET /types/{type}/rebuild.
func (s *Server) RebuildStatus(w http.ResponseWriter, r *http.Request) {
	typeName := chi.URLParam(r, "type")
	at, ok, err := s.rebuilder.LastRebuilt(r.Context(), typeName)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	resp := rebuildStatusResponse{Type: typeName}
	if ok {
		resp.RebuiltAt = &at
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateRecord handles POST /types/{type}/records.
func (s *Server) CreateRecord(w http.ResponseWriter, r *http.Request) {
	attrs, ok := decodeAttributes(w, r)
	if !ok {
		return
	}
	typeName := chi.URLParam(r, "type")

	row, err := s.records.Create(r.Context(), typeName, attrs)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/types/%s/records/%s", typeName, row.RecordID()))
	writeJSON(w, http.StatusCreated, rowToResponse(row))
}

// UpdateRecord handles PATCH /types/{type}/records/{id}.
func (s *Server) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	attrs, ok := decodeAttributes(w, r)
	if !ok {
		return
	}

	row, err := s.records.Update(r.Context(), chi.URLParam(r, "type"), chi.URLParam(r, "id"), attrs)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rowToResponse(row))
}

// DestroyRecord handles DELETE /types/{type}/records/{id}.
func (s *Server) DestroyRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.records.Destroy(r.Context(), chi.URLParam(r, "type"), chi.URLParam(r, "id")); err != nil {
		handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeAttributes(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var req recordRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return nil, false
	}
	if len(req.Attributes) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "attributes are required")
		return nil, false
	}
	return req.Attributes, true
}
