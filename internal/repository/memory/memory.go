// Package memory provides process-local repositories for development and
// tests. Documents are kept JSON-encoded so behavior matches the Redis
// backend, corrupt-data handling included.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	apperrors "github.com/utafrali/storefront/pkg/errors"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
)

// Store is a thread-safe key-value map shared by the memory repositories.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Set stores raw bytes under key.
func (s *Store) Set(key string, raw []byte) {
	s.mu.Lock()
	s.data[key] = raw
	s.mu.Unlock()
}

// Raw returns the bytes stored under key.
func (s *Store) Raw(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.data[key]
	return raw, ok
}

func (s *Store) delete(key string) {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
}

func getJSON[T any](s *Store, key, resource, id string) (T, error) {
	var out T
	raw, ok := s.Raw(key)
	if !ok {
		return out, apperrors.NotFound(resource, id)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("unmarshal %s: %w: %v", resource, repository.ErrCorruptData, err)
	}
	return out, nil
}

func setJSON(s *Store, key, resource string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", resource, err)
	}
	s.Set(key, raw)
	return nil
}

// CartRepository implements repository.CartRepository in memory.
type CartRepository struct{ store *Store }

// NewCartRepository creates a cart repository on store.
func NewCartRepository(store *Store) *CartRepository { return &CartRepository{store: store} }

func (r *CartRepository) Get(_ context.Context, sessionID string) ([]domain.CartItem, error) {
	return getJSON[[]domain.CartItem](r.store, repository.CartKeyPrefix+sessionID, "cart", sessionID)
}

func (r *CartRepository) Save(_ context.Context, sessionID string, items []domain.CartItem) error {
	return setJSON(r.store, repository.CartKeyPrefix+sessionID, "cart", items)
}

func (r *CartRepository) Delete(_ context.Context, sessionID string) error {
	r.store.delete(repository.CartKeyPrefix + sessionID)
	return nil
}

// WishlistRepository implements repository.WishlistRepository in memory.
type WishlistRepository struct{ store *Store }

// NewWishlistRepository creates a wishlist repository on store.
func NewWishlistRepository(store *Store) *WishlistRepository {
	return &WishlistRepository{store: store}
}

func (r *WishlistRepository) Get(_ context.Context, sessionID string) ([]domain.WishlistItem, error) {
	return getJSON[[]domain.WishlistItem](r.store, repository.WishlistKeyPrefix+sessionID, "wishlist", sessionID)
}

func (r *WishlistRepository) Save(_ context.Context, sessionID string, items []domain.WishlistItem) error {
	return setJSON(r.store, repository.WishlistKeyPrefix+sessionID, "wishlist", items)
}

func (r *WishlistRepository) Delete(_ context.Context, sessionID string) error {
	r.store.delete(repository.WishlistKeyPrefix + sessionID)
	return nil
}

// ReviewRepository implements repository.ReviewRepository in memory.
type ReviewRepository struct{ store *Store }

// NewReviewRepository creates a review repository on store.
func NewReviewRepository(store *Store) *ReviewRepository { return &ReviewRepository{store: store} }

func (r *ReviewRepository) Load(_ context.Context) ([]domain.Review, error) {
	reviews, err := getJSON[[]domain.Review](r.store, repository.ReviewsKey, "reviews", "all")
	if errors.Is(err, apperrors.ErrNotFound) {
		return []domain.Review{}, nil
	}
	return reviews, err
}

func (r *ReviewRepository) Save(_ context.Context, reviews []domain.Review) error {
	return setJSON(r.store, repository.ReviewsKey, "reviews", reviews)
}
