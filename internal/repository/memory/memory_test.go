package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
)

// Compile-time interface checks.
var (
	_ repository.CartRepository     = (*CartRepository)(nil)
	_ repository.WishlistRepository = (*WishlistRepository)(nil)
	_ repository.ReviewRepository   = (*ReviewRepository)(nil)
)

func TestCartRepository(t *testing.T) {
	store := NewStore()
	repo := NewCartRepository(store)
	ctx := context.Background()

	_, err := repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	items := []domain.CartItem{{ProductRef: domain.ProductRef{ProductID: "p1", Name: "P1", Price: 10}, Quantity: 3}}
	require.NoError(t, repo.Save(ctx, "s1", items))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, items, got)

	// Stored value is a copy, not the caller's slice.
	items[0].Quantity = 99
	got, err = repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, got[0].Quantity)

	require.NoError(t, repo.Delete(ctx, "s1"))
	_, ok := store.Raw("storefront:cart:s1")
	assert.False(t, ok)
}

func TestWishlistRepository_Corrupt(t *testing.T) {
	store := NewStore()
	repo := NewWishlistRepository(store)
	store.Set("storefront:wishlist:s1", []byte("[{"))

	_, err := repo.Get(context.Background(), "s1")
	assert.ErrorIs(t, err, repository.ErrCorruptData)
}

func TestReviewRepository(t *testing.T) {
	store := NewStore()
	repo := NewReviewRepository(store)
	ctx := context.Background()

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, repo.Save(ctx, []domain.Review{{ID: "r1", Rating: 4, Status: domain.ReviewPending}}))
	got, err = repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].ID)
}
