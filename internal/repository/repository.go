package repository

import (
	"context"
	"errors"

	"github.com/utafrali/storefront/internal/domain"
)

// ErrCorruptData is wrapped by repositories when a stored document cannot be
// decoded. Callers treat the collection as empty.
var ErrCorruptData = errors.New("corrupt persisted data")

// Key prefixes shared by every backend.
const (
	KeyPrefix         = "storefront:"
	CartKeyPrefix     = KeyPrefix + "cart:"
	WishlistKeyPrefix = KeyPrefix + "wishlist:"
	ReviewsKey        = KeyPrefix + "reviews"
)

// CartRepository persists one cart per session.
type CartRepository interface {
	// Get returns the stored items, or a not-found error when the session has
	// no cart.
	Get(ctx context.Context, sessionID string) ([]domain.CartItem, error)

	// Save overwrites the session's cart.
	Save(ctx context.Context, sessionID string, items []domain.CartItem) error

	// Delete removes the session's cart.
	Delete(ctx context.Context, sessionID string) error
}

// WishlistRepository persists one wishlist per session.
type WishlistRepository interface {
	Get(ctx context.Context, sessionID string) ([]domain.WishlistItem, error)
	Save(ctx context.Context, sessionID string, items []domain.WishlistItem) error
	Delete(ctx context.Context, sessionID string) error
}

// ReviewRepository persists the shared review collection as one document.
type ReviewRepository interface {
	// Load returns every stored review. A missing document is an empty
	// collection, not an error.
	Load(ctx context.Context) ([]domain.Review, error)

	// Save overwrites the stored collection.
	Save(ctx context.Context, reviews []domain.Review) error
}
