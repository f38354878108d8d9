package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/internal/wishlist"
)

// WishlistHandler handles HTTP requests for the session wishlist.
type WishlistHandler struct {
	catalog  *catalog.Store
	sessions *session.Manager
	logger   *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(products *catalog.Store, sessions *session.Manager, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{catalog: products, sessions: sessions, logger: logger}
}

// --- Request DTOs ---

// AddWishlistItemRequest is the JSON request body for saving a product.
type AddWishlistItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// MoveToCartRequest is the optional JSON request body for moving a saved
// product into the cart. Quantity defaults to 1.
type MoveToCartRequest struct {
	Quantity           int  `json:"quantity" validate:"omitempty,gte=1,lte=100"`
	RemoveFromWishlist bool `json:"remove_from_wishlist"`
}

type wishlistResponse struct {
	Items []domain.WishlistItem `json:"items"`
	Count int                   `json:"count"`
}

type wishlistChangeResponse struct {
	ProductID  string `json:"product_id"`
	InWishlist bool   `json:"in_wishlist"`
	Changed    bool   `json:"changed"`
	wishlistResponse
}

type moveToCartResponse struct {
	Item     domain.CartItem  `json:"item"`
	Cart     cartResponse     `json:"cart"`
	Wishlist wishlistResponse `json:"wishlist"`
}

func newWishlistResponse(wl *wishlist.Store) wishlistResponse {
	items := wl.Items()
	return wishlistResponse{Items: items, Count: len(items)}
}

// --- Handlers ---

// Get handles GET /api/v1/session/wishlist
func (h *WishlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(r.Context(), h.sessions)
	httputil.WriteData(w, http.StatusOK, newWishlistResponse(s.Wishlist))
}

// Add handles POST /api/v1/session/wishlist/items. Saving a product twice is
// a no-op answered with 200 instead of 201.
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddWishlistItemRequest
	if err := httputil.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	p, err := h.catalog.Get(req.ProductID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	s := sessionFor(r.Context(), h.sessions)
	added, err := s.Wishlist.Add(r.Context(), domain.RefOf(p))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	httputil.WriteData(w, status, wishlistChangeResponse{
		ProductID:        p.ID,
		InWishlist:       true,
		Changed:          added,
		wishlistResponse: newWishlistResponse(s.Wishlist),
	})
}

// Toggle handles POST /api/v1/session/wishlist/items/{id}/toggle
func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s := sessionFor(r.Context(), h.sessions)

	// A saved product can be removed even after it left the catalog.
	var ref domain.ProductRef
	if entry, ok := s.Wishlist.Get(id); ok {
		ref = entry.ProductRef
	} else {
		p, err := h.catalog.Get(id)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		ref = domain.RefOf(p)
	}

	in, err := s.Wishlist.Toggle(r.Context(), ref)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, wishlistChangeResponse{
		ProductID:        id,
		InWishlist:       in,
		Changed:          true,
		wishlistResponse: newWishlistResponse(s.Wishlist),
	})
}

// MoveToCart handles POST /api/v1/session/wishlist/items/{id}/move-to-cart
func (h *WishlistHandler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	var req MoveToCartRequest
	if hasBody(r) {
		if err := httputil.DecodeAndValidate(w, r, &req); err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	s := sessionFor(r.Context(), h.sessions)
	item, err := s.MoveToCart(r.Context(), chi.URLParam(r, "id"), req.Quantity, req.RemoveFromWishlist)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, moveToCartResponse{
		Item:     item,
		Cart:     newCartResponse(s.Cart),
		Wishlist: newWishlistResponse(s.Wishlist),
	})
}

// Remove handles DELETE /api/v1/session/wishlist/items/{id}
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s := sessionFor(r.Context(), h.sessions)
	if !s.Wishlist.Remove(r.Context(), id) {
		httputil.WriteError(w, r, apperrors.NotFound("wishlist item", id), h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newWishlistResponse(s.Wishlist))
}

// Clear handles DELETE /api/v1/session/wishlist
func (h *WishlistHandler) Clear(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(r.Context(), h.sessions)
	s.Wishlist.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
