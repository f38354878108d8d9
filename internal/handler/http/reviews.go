package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/review"
)

// ReviewHandler handles HTTP requests for reviews and moderation.
type ReviewHandler struct {
	catalog *catalog.Store
	reviews *review.Store
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(products *catalog.Store, reviews *review.Store, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{catalog: products, reviews: reviews, logger: logger}
}

// --- Request DTOs ---

// VoteRequest is the JSON request body for a helpfulness vote.
type VoteRequest struct {
	Helpful *bool `json:"helpful" validate:"required"`
}

// ModerateRequest is the JSON request body for a moderation decision.
type ModerateRequest struct {
	Status domain.ReviewStatus `json:"status" validate:"required,oneof=approved rejected"`
	Notes  string              `json:"notes" validate:"max=1000"`
}

// --- Responses ---

type productReviewsResponse struct {
	ProductID string               `json:"product_id"`
	Filter    review.Filter        `json:"filter"`
	Sort      review.Sort          `json:"sort"`
	Reviews   []domain.Review      `json:"reviews"`
	Summary   domain.ReviewSummary `json:"summary"`
}

type userReviewsResponse struct {
	UserID  string          `json:"user_id"`
	Reviews []domain.Review `json:"reviews"`
}

type queueResponse struct {
	Status  domain.ReviewStatus         `json:"status,omitempty"`
	Reviews []domain.Review             `json:"reviews"`
	Counts  map[domain.ReviewStatus]int `json:"counts"`
}

// --- Handlers ---

// ListForProduct handles GET /api/v1/products/{id}/reviews
func (h *ReviewHandler) ListForProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Get(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	q := r.URL.Query()
	filter, err := review.ParseFilter(q.Get("filter"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	order, err := review.ParseSort(q.Get("sort"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, productReviewsResponse{
		ProductID: p.ID,
		Filter:    filter,
		Sort:      order,
		Reviews:   h.reviews.ProductReviews(p.ID, filter, order),
		Summary:   h.reviews.Summary(p.ID),
	})
}

// Submit handles POST /api/v1/products/{id}/reviews. Field-level validation
// failures are answered with 400 and a message per field.
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Get(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	var in review.SubmitInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	in.ProductID = p.ID

	created, err := h.reviews.Add(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, created)
}

// Update handles PATCH /api/v1/reviews/{id}
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in review.UpdateInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	updated, err := h.reviews.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/reviews/{id}
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.reviews.Delete(r.Context(), id) {
		httputil.WriteError(w, r, apperrors.NotFound("review", id), h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Vote handles POST /api/v1/reviews/{id}/votes. A vote for an unknown review
// is accepted and ignored.
func (h *ReviewHandler) Vote(w http.ResponseWriter, r *http.Request) {
	var req VoteRequest
	if err := httputil.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	updated, found := h.reviews.Vote(r.Context(), chi.URLParam(r, "id"), *req.Helpful)
	if !found {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httputil.WriteData(w, http.StatusOK, updated)
}

// ListForUser handles GET /api/v1/users/{id}/reviews
func (h *ReviewHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	httputil.WriteData(w, http.StatusOK, userReviewsResponse{
		UserID:  id,
		Reviews: h.reviews.UserReviews(id),
	})
}

// Queue handles GET /api/v1/admin/reviews?status=
func (h *ReviewHandler) Queue(w http.ResponseWriter, r *http.Request) {
	status := domain.ReviewStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		httputil.WriteError(w, r, apperrors.InvalidInput("unknown review status "+string(status)), h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, queueResponse{
		Status:  status,
		Reviews: h.reviews.Queue(status),
		Counts:  h.reviews.Counts(),
	})
}

// Moderate handles POST /api/v1/admin/reviews/{id}/moderation. Moderating an
// unknown review is accepted and ignored; a review that was already moderated
// is a conflict.
func (h *ReviewHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	var req ModerateRequest
	if err := httputil.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	updated, found, err := h.reviews.Moderate(r.Context(), chi.URLParam(r, "id"), req.Status, req.Notes)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if !found {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httputil.WriteData(w, http.StatusOK, updated)
}
