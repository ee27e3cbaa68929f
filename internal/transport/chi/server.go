package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/geodex-io/geodex/internal/domain"
	"github.com/geodex-io/geodex/internal/domain/geo"
	domlst "github.com/geodex-io/geodex/internal/domain/listing"
	"github.com/geodex-io/geodex/internal/domain/search/filter"
	"github.com/geodex-io/geodex/internal/domain/search/mode"
	"github.com/geodex-io/geodex/internal/domain/search/request"
	healthuc "github.com/geodex-io/geodex/internal/usecase/health"
	indexeruc "github.com/geodex-io/geodex/internal/usecase/indexer"
	searchuc "github.com/geodex-io/geodex/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the search and listing APIs over HTTP.
type Server struct {
	search        *searchuc.Service
	indexer       *indexeruc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	maxRadius     float64
	queryTimeout  time.Duration
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	indexer *indexeruc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:  search,
		indexer: indexer,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidCoordinate, http.StatusBadRequest, codeInvalidCoordinate),
		sentinelHandler(domain.ErrInvalidRadius, http.StatusBadRequest, codeInvalidRadius),
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, codeEmptyQuery),
		sentinelHandler(domain.ErrInvalidCursor, http.StatusBadRequest, codeInvalidCursor),
		sentinelHandler(domain.ErrListingNotFound, http.StatusNotFound, codeListingNotFound),
	}
	return s
}

// WithSearchLimits configures the radius cap and per-query deadline.
func (s *Server) WithSearchLimits(maxRadiusMiles float64, queryTimeout time.Duration) *Server {
	s.maxRadius = maxRadiusMiles
	s.queryTimeout = queryTimeout
	return s
}

// Register mounts all routes on the given router.
func (s *Server) Register(r chi.Router) {
	r.Post("/v1/search", s.Search)
	r.Route("/v1/listings/{id}", func(r chi.Router) {
		r.Put("/", s.UpsertListing)
		r.Get("/", s.GetListing)
		r.Delete("/", s.DeleteListing)
	})
	r.Get("/health", s.Health)
	r.Get("/metrics", s.Metrics)
}

// Search handles POST /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var body searchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	req, err := s.toDomainRequest(&body)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	ctx := r.Context()
	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	page, err := s.search.Search(ctx, req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pageToResponse(page))
}

// UpsertListing handles PUT /v1/listings/{id}.
func (s *Server) UpsertListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body listingPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if body.ID != "" && body.ID != id {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "body id does not match path id")
		return
	}

	l, err := domlst.New(
		id, body.Name, body.Description,
		domlst.Category(body.Category),
		body.Lat, body.Lon,
		body.City, body.State,
		body.Active, body.Approved,
		body.Certifications, body.Rating,
	)
	if err != nil {
		s.handleValidationError(w, err)
		return
	}

	if err := s.indexer.Upsert(r.Context(), l); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listingToPayload(&l))
}

// GetListing handles GET /v1/listings/{id}.
func (s *Server) GetListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	l, err := s.indexer.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listingToPayload(&l))
}

// DeleteListing handles DELETE /v1/listings/{id}.
func (s *Server) DeleteListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.indexer.Remove(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for name, res := range report.Checks {
		checks[name] = string(res)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// toDomainRequest maps the JSON payload onto the validated domain request.
func (s *Server) toDomainRequest(body *searchRequest) (*request.Request, error) {
	var origin *geo.Point
	if body.Lat != nil || body.Lon != nil {
		if body.Lat == nil || body.Lon == nil {
			return nil, fmt.Errorf("both lat and lon are required: %w", domain.ErrInvalidCoordinate)
		}
		p, err := geo.NewPoint(*body.Lat, *body.Lon)
		if err != nil {
			return nil, err
		}
		origin = &p
	}

	categories := make([]domlst.Category, 0, len(body.Filters.Categories))
	for _, c := range body.Filters.Categories {
		categories = append(categories, domlst.Category(c))
	}

	filters, err := filter.New(
		body.Filters.Active, body.Filters.Approved,
		categories, body.Filters.Certifications,
		body.Filters.City, body.Filters.State,
	)
	if err != nil {
		return nil, err
	}

	req, err := request.New(
		body.Query, origin, body.RadiusMiles,
		filters, mode.Sort(body.Sort),
		body.PageSize, body.Offset, body.Cursor,
		body.MinSimilarity, s.maxRadius,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidCoordinate,
		domain.ErrInvalidRadius,
		domain.ErrEmptyQuery,
		domain.ErrInvalidCursor,
		domain.ErrListingNotFound,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
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
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

// handleValidationError reports constructor failures with the full
// message. Listing validation errors are safe to echo to the caller.
func (s *Server) handleValidationError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrInvalidCoordinate) {
		writeError(w, http.StatusBadRequest, codeInvalidCoordinate, err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
}
