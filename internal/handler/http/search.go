package http

import (
	"log/slog"
	"net/http"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/pagination"
	"github.com/utafrali/storefront/pkg/validator"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/search"
	"github.com/utafrali/storefront/internal/session"
)

// SearchHandler serves a session's search state.
type SearchHandler struct {
	sessions *session.Manager
	logger   *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(sessions *session.Manager, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{sessions: sessions, logger: logger}
}

// --- Request DTOs ---

// UpdateSortRequest is the JSON request body for changing the sort key.
type UpdateSortRequest struct {
	SortBy domain.SortKey `json:"sort_by" validate:"required"`
}

// SearchRequest is the JSON request body for a text search.
type SearchRequest struct {
	Query string `json:"query" validate:"max=200"`
}

// --- Responses ---

type searchResponse struct {
	Filters         domain.FilterCriteria             `json:"filters"`
	SortBy          domain.SortKey                    `json:"sort_by"`
	Results         pagination.Result[domain.Product] `json:"results"`
	SearchHistory   []string                          `json:"search_history"`
	Location        string                            `json:"location"`
	LocationPending bool                              `json:"location_pending"`
}

type initResponse struct {
	Applied bool `json:"applied"`
	searchResponse
}

func newSearchResponse(s *session.Session, snap search.Snapshot, page pagination.Params) searchResponse {
	return searchResponse{
		Filters:         snap.Criteria,
		SortBy:          snap.Sort,
		Results:         pagination.Paginate(snap.Results, page),
		SearchHistory:   snap.History,
		Location:        s.Location.Current(),
		LocationPending: s.Sync.Pending(),
	}
}

// --- Handlers ---

// Get handles GET /api/v1/session/search
func (h *SearchHandler) Get(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(r.Context(), h.sessions)
	httputil.WriteData(w, http.StatusOK, newSearchResponse(s, s.State.Snapshot(), pagination.FromQuery(r.URL.Query())))
}

// Init handles POST /api/v1/session/search/init?<location query>. Only the
// first call of a session applies its parameters.
func (h *SearchHandler) Init(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(r.Context(), h.sessions)
	applied, snap := s.Init(r.Context(), r.URL.RawQuery)
	httputil.WriteData(w, http.StatusOK, initResponse{
		Applied:        applied,
		searchResponse: newSearchResponse(s, snap, pagination.DefaultParams()),
	})
}

// UpdateFilters handles PATCH /api/v1/session/search/filters
func (h *SearchHandler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	var patch domain.FilterPatch
	if err := httputil.DecodeJSON(w, r, &patch); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := validatePatch(patch); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	s := sessionFor(r.Context(), h.sessions)
	snap := s.UpdateFilters(patch)
	httputil.WriteData(w, http.StatusOK, newSearchResponse(s, snap, pagination.DefaultParams()))
}

// ClearFilters handles DELETE /api/v1/session/search/filters
func (h *SearchHandler) ClearFilters(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(r.Context(), h.sessions)
	snap := s.ClearFilters()
	httputil.WriteData(w, http.StatusOK, newSearchResponse(s, snap, pagination.DefaultParams()))
}

// UpdateSort handles PUT /api/v1/session/search/sort
func (h *SearchHandler) UpdateSort(w http.ResponseWriter, r *http.Request) {
	var req UpdateSortRequest
	if err := httputil.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	s := sessionFor(r.Context(), h.sessions)
	snap, err := s.UpdateSort(req.SortBy)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newSearchResponse(s, snap, pagination.DefaultParams()))
}

// Search handles POST /api/v1/session/search/query
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := httputil.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	s := sessionFor(r.Context(), h.sessions)
	snap := s.Search(req.Query)
	httputil.WriteData(w, http.StatusOK, newSearchResponse(s, snap, pagination.DefaultParams()))
}

// EndSession handles DELETE /api/v1/session. Ending an unknown session is
// not an error.
func (h *SearchHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	id := logger.SessionIDFromContext(r.Context())
	if _, err := h.sessions.End(r.Context(), id); err != nil {
		logger.FromContext(r.Context()).WarnContext(r.Context(), "session ended with unsaved state",
			slog.String("error", err.Error()),
		)
	}
	w.WriteHeader(http.StatusNoContent)
}

// validatePatch rejects values the location codec would never produce.
// Ratings above the maximum are clamped when applied.
func validatePatch(p domain.FilterPatch) error {
	if p.Category != nil && *p.Category != "" && !p.Category.Valid() {
		return apperrors.InvalidInput("unknown category " + string(*p.Category))
	}
	if p.PriceRange != nil && (p.PriceRange.Min < 0 || p.PriceRange.Max < 0) {
		return apperrors.InvalidInput("price range must not be negative")
	}
	if p.Rating != nil && *p.Rating < 0 {
		return apperrors.InvalidInput("rating must not be negative")
	}
	if p.Query != nil {
		return validator.Validate(SearchRequest{Query: *p.Query})
	}
	return nil
}
