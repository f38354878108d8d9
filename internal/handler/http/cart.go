package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"

	"github.com/utafrali/storefront/internal/cart"
	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/session"
)

// CartHandler handles HTTP requests for the session cart.
type CartHandler struct {
	catalog  *catalog.Store
	sessions *session.Manager
	logger   *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(products *catalog.Store, sessions *session.Manager, logger *slog.Logger) *CartHandler {
	return &CartHandler{catalog: products, sessions: sessions, logger: logger}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding a product to the cart.
// Quantity defaults to 1.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,gte=1,lte=100"`
}

// UpdateQuantityRequest is the JSON request body for setting a quantity. Zero
// removes the item.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,lte=100"`
}

type cartResponse struct {
	Items  []domain.CartItem `json:"items"`
	Totals domain.CartTotals `json:"totals"`
}

func newCartResponse(c *cart.Store) cartResponse {
	return cartResponse{Items: c.Items(), Totals: c.Totals()}
}

// --- Handlers ---

// Get handles GET /api/v1/session/cart
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(r.Context(), h.sessions)
	httputil.WriteData(w, http.StatusOK, newCartResponse(s.Cart))
}

// AddItem handles POST /api/v1/session/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := httputil.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	p, err := h.catalog.Get(req.ProductID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	s := sessionFor(r.Context(), h.sessions)
	if _, err := s.Cart.AddItem(r.Context(), domain.RefOf(p), req.Quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, newCartResponse(s.Cart))
}

// UpdateQuantity handles PATCH /api/v1/session/cart/items/{id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := httputil.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	id := chi.URLParam(r, "id")
	s := sessionFor(r.Context(), h.sessions)
	found, err := s.Cart.UpdateQuantity(r.Context(), id, *req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if !found {
		httputil.WriteError(w, r, apperrors.NotFound("cart item", id), h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newCartResponse(s.Cart))
}

// RemoveItem handles DELETE /api/v1/session/cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s := sessionFor(r.Context(), h.sessions)
	if !s.Cart.RemoveItem(r.Context(), id) {
		httputil.WriteError(w, r, apperrors.NotFound("cart item", id), h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newCartResponse(s.Cart))
}

// Clear handles DELETE /api/v1/session/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(r.Context(), h.sessions)
	s.Cart.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
