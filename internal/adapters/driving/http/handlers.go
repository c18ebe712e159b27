package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/swaggo/swag"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// ReadyResponse reports the state of each backing service
// @Description Readiness response
type ReadyResponse struct {
	Status string            `json:"status" example:"ready"`
	Checks map[string]string `json:"checks,omitempty"`
}

// SearchFailure is returned when no provider produced results. The partial
// response carries per-provider errors.
// @Description Failed search with per-provider errors
type SearchFailure struct {
	Error    string                 `json:"error" example:"provider failed and fallback is disabled"`
	Response *domain.SearchResponse `json:"response,omitempty"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Pings the configured backing services (PostgreSQL, Redis)
// @Tags         Health
// @Produce      json
// @Success      200  {object}  ReadyResponse
// @Failure      503  {object}  ReadyResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := ReadyResponse{Status: "ready", Checks: make(map[string]string, len(s.checks))}
	status := http.StatusOK
	for name, p := range s.checks {
		if p == nil {
			continue
		}
		if err := p.Ping(r.Context()); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	writeJSON(w, status, resp)
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: s.version})
}

func (s *Server) handleSwaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		writeError(w, http.StatusNotFound, "api documentation not registered")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(doc))
}

// Auth endpoints

// handleIssueToken godoc
// @Summary      Issue token
// @Description  Exchange the API key for a bearer token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.TokenRequest  true  "Client credentials"
// @Success      200      {object}  domain.TokenResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid credentials"
// @Failure      404      {object}  ErrorResponse  "Authentication disabled"
// @Router       /auth/token [post]
func (s *Server) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	if s.authService == nil {
		writeError(w, http.StatusNotFound, "authentication is disabled")
		return
	}

	var req domain.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.IssueToken(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "client_id and api_key are required")
		case errors.Is(err, domain.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		default:
			s.logger.Error("failed to issue token", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to issue token")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Research endpoints

// handleResearch godoc
// @Summary      Research the web
// @Description  Runs the reasoning loop: searches, extracts the best pages and optionally memorizes the findings. Results may come from cache.
// @Tags         Research
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      domain.ResearchRequest  true  "Research request"
// @Success      200      {object}  domain.ResearchResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      500      {object}  ErrorResponse  "Research failed"
// @Router       /research [post]
func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var req domain.ResearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.researchService.Research(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, "research", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// searchRequest represents a search request
type searchRequest struct {
	Query      string              `json:"query" example:"golang context cancellation"`
	Sources    []domain.ProviderID `json:"sources,omitempty"`
	MaxResults int                 `json:"max_results,omitempty" example:"10"`
	Fallback   *bool               `json:"fallback,omitempty"`
}

// handleSearch godoc
// @Summary      Search the web
// @Description  Runs one search across the provider chain, falling back to the next provider when one fails. Results are deduplicated by URL.
// @Tags         Research
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      searchRequest  true  "Search query"
// @Success      200      {object}  domain.SearchResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request or missing query"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      502      {object}  SearchFailure  "All providers failed"
// @Router       /search [post]
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	query := domain.SearchQuery{
		Text:       req.Query,
		Sources:    req.Sources,
		MaxResults: req.MaxResults,
		Fallback:   req.Fallback,
	}

	resp, err := s.researchService.Search(r.Context(), query)
	if err != nil {
		if resp != nil && isProviderError(err) {
			writeJSON(w, http.StatusBadGateway, SearchFailure{Error: err.Error(), Response: resp})
			return
		}
		s.writeServiceError(w, "search", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// extractRequest represents an extraction request
type extractRequest struct {
	URL string `json:"url" example:"https://go.dev/blog/pipelines"`
}

// handleExtract godoc
// @Summary      Extract a page
// @Description  Fetches one page and returns its readable content, code blocks, links and images
// @Tags         Research
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      extractRequest  true  "Page to extract"
// @Success      200      {object}  domain.ExtractedDocument
// @Failure      400      {object}  ErrorResponse  "Invalid request or missing url"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      502      {object}  ErrorResponse  "Page could not be fetched or parsed"
// @Router       /extract [post]
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	doc, err := s.researchService.Extract(r.Context(), req.URL)
	if err != nil {
		s.writeServiceError(w, "extract", err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// Cache endpoints

// handleCacheStats godoc
// @Summary      Cache statistics
// @Description  Reports entry counts and size of both cache tiers
// @Tags         Cache
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.CacheStats
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Router       /cache/stats [get]
func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.researchService.CacheStats(r.Context()))
}

// handleClearCache godoc
// @Summary      Clear cache
// @Description  Empties both cache tiers
// @Tags         Cache
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  StatusResponse
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      500  {object}  ErrorResponse  "Failed to clear cache"
// @Router       /cache [delete]
func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if err := s.researchService.ClearCache(r.Context()); err != nil {
		s.logger.Error("failed to clear cache", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear cache")
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "cleared"})
}

// Helper functions

func isProviderError(err error) bool {
	return errors.Is(err, domain.ErrProviderUnavailable) ||
		errors.Is(err, domain.ErrMissingCredentials) ||
		errors.Is(err, domain.ErrFallbackDisabled)
}

// writeServiceError maps domain errors onto HTTP statuses
func (s *Server) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case isProviderError(err), errors.Is(err, domain.ErrExtractionFailed):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, domain.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, op+" timed out")
	default:
		s.logger.Error(op+" failed", "error", err)
		writeError(w, http.StatusInternalServerError, op+" failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
