package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/utafrali/storefront/pkg/errors"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
)

// getJSON loads and decodes the document at key. A missing key is reported as
// a not-found error for resource/id; undecodable data wraps ErrCorruptData.
func getJSON[T any](ctx context.Context, client *redis.Client, key, resource, id string) (T, error) {
	var out T

	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return out, apperrors.NotFound(resource, id)
		}
		return out, fmt.Errorf("redis get %s: %w", resource, err)
	}

	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("unmarshal %s: %w: %v", resource, repository.ErrCorruptData, err)
	}
	return out, nil
}

func setJSON(ctx context.Context, client *redis.Client, key, resource string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", resource, err)
	}
	if err := client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", resource, err)
	}
	return nil
}

func del(ctx context.Context, client *redis.Client, key, resource string) error {
	if err := client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", resource, err)
	}
	return nil
}

// CartRepository implements repository.CartRepository using Redis.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartRepository creates a Redis-backed cart repository. Carts expire after
// ttl without writes; zero keeps them forever.
func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{client: client, ttl: ttl}
}

// Get retrieves a session's cart items.
func (r *CartRepository) Get(ctx context.Context, sessionID string) ([]domain.CartItem, error) {
	return getJSON[[]domain.CartItem](ctx, r.client, repository.CartKeyPrefix+sessionID, "cart", sessionID)
}

// Save overwrites a session's cart items and refreshes the TTL.
func (r *CartRepository) Save(ctx context.Context, sessionID string, items []domain.CartItem) error {
	return setJSON(ctx, r.client, repository.CartKeyPrefix+sessionID, "cart", items, r.ttl)
}

// Delete removes a session's cart.
func (r *CartRepository) Delete(ctx context.Context, sessionID string) error {
	return del(ctx, r.client, repository.CartKeyPrefix+sessionID, "cart")
}

// WishlistRepository implements repository.WishlistRepository using Redis.
type WishlistRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewWishlistRepository creates a Redis-backed wishlist repository.
func NewWishlistRepository(client *redis.Client, ttl time.Duration) *WishlistRepository {
	return &WishlistRepository{client: client, ttl: ttl}
}

// Get retrieves a session's wishlist items.
func (r *WishlistRepository) Get(ctx context.Context, sessionID string) ([]domain.WishlistItem, error) {
	return getJSON[[]domain.WishlistItem](ctx, r.client, repository.WishlistKeyPrefix+sessionID, "wishlist", sessionID)
}

// Save overwrites a session's wishlist items and refreshes the TTL.
func (r *WishlistRepository) Save(ctx context.Context, sessionID string, items []domain.WishlistItem) error {
	return setJSON(ctx, r.client, repository.WishlistKeyPrefix+sessionID, "wishlist", items, r.ttl)
}

// Delete removes a session's wishlist.
func (r *WishlistRepository) Delete(ctx context.Context, sessionID string) error {
	return del(ctx, r.client, repository.WishlistKeyPrefix+sessionID, "wishlist")
}

// ReviewRepository implements repository.ReviewRepository using Redis. The
// collection is one JSON document without expiry.
type ReviewRepository struct {
	client *redis.Client
}

// NewReviewRepository creates a Redis-backed review repository.
func NewReviewRepository(client *redis.Client) *ReviewRepository {
	return &ReviewRepository{client: client}
}

// Load retrieves every stored review.
func (r *ReviewRepository) Load(ctx context.Context) ([]domain.Review, error) {
	reviews, err := getJSON[[]domain.Review](ctx, r.client, repository.ReviewsKey, "reviews", "all")
	if errors.Is(err, apperrors.ErrNotFound) {
		return []domain.Review{}, nil
	}
	return reviews, err
}

// Save overwrites the stored collection.
func (r *ReviewRepository) Save(ctx context.Context, reviews []domain.Review) error {
	return setJSON(ctx, r.client, repository.ReviewsKey, "reviews", reviews, 0)
}
