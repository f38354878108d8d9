package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/pagination"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/engine"
	"github.com/utafrali/storefront/internal/review"
	"github.com/utafrali/storefront/internal/urlsync"
)

// ProductHandler serves the stateless catalog endpoints.
type ProductHandler struct {
	catalog *catalog.Store
	reviews *review.Store
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(products *catalog.Store, reviews *review.Store, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{catalog: products, reviews: reviews, logger: logger}
}

type productListResponse struct {
	Filters domain.FilterCriteria             `json:"filters"`
	SortBy  domain.SortKey                    `json:"sort_by"`
	Results pagination.Result[domain.Product] `json:"results"`
}

type productResponse struct {
	domain.Product
	ReviewSummary domain.ReviewSummary `json:"review_summary"`
}

type suggestionsResponse struct {
	Query       string   `json:"query"`
	Suggestions []string `json:"suggestions"`
}

type facetsResponse struct {
	catalog.Facets
	Subcategories map[domain.Category][]string `json:"subcategories"`
}

// List handles GET /api/v1/products. Filters use the location query
// parameters; malformed values are ignored like on the search page, and
// max_price=0 means no upper bound.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	key, ok := domain.ParseSortKey(q.Get("sort"))
	if !ok {
		httputil.WriteError(w, r, apperrors.InvalidInput("unknown sort key "+q.Get("sort")), h.logger)
		return
	}

	criteria := domain.DefaultCriteria()
	if patch, ok := urlsync.Decode(q); ok {
		criteria = criteria.Apply(patch)
	}

	results := engine.Apply(h.catalog.All(), criteria, key)
	httputil.WriteData(w, http.StatusOK, productListResponse{
		Filters: criteria,
		SortBy:  key,
		Results: pagination.Paginate(results, pagination.FromQuery(q)),
	})
}

// Get handles GET /api/v1/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Get(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, productResponse{
		Product:       p,
		ReviewSummary: h.reviews.Summary(p.ID),
	})
}

// Facets handles GET /api/v1/products/facets
func (h *ProductHandler) Facets(w http.ResponseWriter, r *http.Request) {
	resp := facetsResponse{
		Facets:        h.catalog.Facets(),
		Subcategories: make(map[domain.Category][]string, len(domain.Categories)),
	}
	for _, c := range domain.Categories {
		resp.Subcategories[c] = h.catalog.Subcategories(c)
	}
	httputil.WriteData(w, http.StatusOK, resp)
}

// Suggestions handles GET /api/v1/products/suggestions?q=
func (h *ProductHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	httputil.WriteData(w, http.StatusOK, suggestionsResponse{
		Query:       query,
		Suggestions: h.catalog.Suggestions(query),
	})
}
