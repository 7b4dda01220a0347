// Package chi exposes the recipe knowledge store over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tastebase/recipedex/internal/codec"
	"github.com/tastebase/recipedex/internal/domain"
	"github.com/tastebase/recipedex/internal/domain/search/filter"
	"github.com/tastebase/recipedex/internal/metrics"
	healthuc "github.com/tastebase/recipedex/internal/usecase/health"
	ingestuc "github.com/tastebase/recipedex/internal/usecase/ingest"
	searchuc "github.com/tastebase/recipedex/internal/usecase/search"
)

// PageConfig bounds list and search pagination.
type PageConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the recipedex HTTP API.
type Server struct {
	recipes       *ingestuc.Service
	search        *searchuc.Service
	health        *healthuc.Service
	pages         PageConfig
	apiKeys       []string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	recipes *ingestuc.Service,
	search *searchuc.Service,
	health *healthuc.Service,
	pages PageConfig,
	apiKeys []string,
	logger *zap.Logger,
) *Server {
	if pages.DefaultPageSize <= 0 {
		pages.DefaultPageSize = 20
	}
	if pages.MaxPageSize <= 0 {
		pages.MaxPageSize = 100
	}
	s := &Server{
		recipes: recipes,
		search:  search,
		health:  health,
		pages:   pages,
		apiKeys: apiKeys,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrRecipeNotFound, http.StatusNotFound, CodeRecipeNotFound),
		sentinelHandler(domain.ErrMalformedRecord, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidFilter, http.StatusBadRequest, CodeInvalidFilter),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProvider),
		sentinelHandler(domain.ErrBackendUnavailable, http.StatusServiceUnavailable, CodeBackendUnavailable),
	}
	return s
}

// Router builds the chi router with middleware and all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())
	r.Use(BearerAuthMiddleware(s.apiKeys))

	r.Get("/health", s.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/recipes", func(r chi.Router) {
		r.Post("/", s.CreateRecipe)
		r.Get("/", s.ListRecipes)
		r.Get("/{id}", s.GetRecipe)
		r.Delete("/{id}", s.DeleteRecipe)
	})
	r.Post("/search", s.Search)

	return r
}

// CreateRecipe handles POST /recipes. The body is a raw recipe record;
// dietary tags are inferred and merged before storage.
func (s *Server) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body: "+err.Error())
		return
	}

	rec, err := s.recipes.Ingest(r.Context(), raw)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, codec.ToDTO(&rec))
}

// GetRecipe handles GET /recipes/{id}.
func (s *Server) GetRecipe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := s.recipes.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, codec.ToDTO(&rec))
}

// ListRecipes handles GET /recipes with cursor pagination.
func (s *Server) ListRecipes(w http.ResponseWriter, r *http.Request) {
	cursor := r.URL.Query().Get("cursor")
	limit := s.pageLimit(r.URL.Query().Get("limit"))

	recipes, next, err := s.recipes.List(r.Context(), cursor, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ListResponse{
		Items:      recipesToDTO(recipes),
		NextCursor: next,
	})
}

// DeleteRecipe handles DELETE /recipes/{id}.
func (s *Server) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.recipes.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body: "+err.Error())
		return
	}

	f, err := filter.FromMap(req.Filters)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.pages.DefaultPageSize
	}
	if limit > s.pages.MaxPageSize {
		limit = s.pages.MaxPageSize
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	recipes, total, err := s.search.Search(r.Context(), f, limit, offset)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Items: recipesToDTO(recipes),
		Total: total,
	})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for name, res := range report.Checks {
		checks[name] = string(res)
	}

	// Degraded still serves traffic; the body carries the detail.
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

func (s *Server) pageLimit(raw string) int {
	limit := s.pages.DefaultPageSize
	if raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > s.pages.MaxPageSize {
		limit = s.pages.MaxPageSize
	}
	return limit
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

// safeDomainMessage returns the sentinel text for known errors and a generic
// message otherwise, so internal details never leak to clients.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrRecipeNotFound,
		domain.ErrMalformedRecord,
		domain.ErrInvalidFilter,
		domain.ErrEmbeddingProviderError,
		domain.ErrBackendUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
