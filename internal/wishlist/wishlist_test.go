package wishlist

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/validator"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/repository/memory"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func necklace() domain.ProductRef {
	return domain.ProductRef{ProductID: "gold-chain-necklace", Name: "Gold Chain Necklace", Price: 899, Category: domain.CategoryNecklaces}
}

func bracelet() domain.ProductRef {
	return domain.ProductRef{ProductID: "tennis-bracelet", Name: "Tennis Bracelet", Price: 1599, Category: domain.CategoryBracelets}
}

func newTestStore(t *testing.T) (*Store, *memory.WishlistRepository) {
	t.Helper()
	repo := memory.NewWishlistRepository(memory.NewStore())
	s := NewStore("sess-1", repo, newTestLogger(), func() time.Time { return fixedNow })
	s.Load(context.Background())
	return s, repo
}

func TestAdd_DuplicateIsNoop(t *testing.T) {
	s, repo := newTestStore(t)
	ctx := context.Background()

	added, err := s.Add(ctx, necklace())
	require.NoError(t, err)
	assert.True(t, added)

	changed := necklace()
	changed.Price = 1
	added, err = s.Add(ctx, changed)
	require.NoError(t, err)
	assert.False(t, added)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 899.0, items[0].Price, "existing entry untouched")
	assert.Equal(t, fixedNow, items[0].DateAdded)

	stored, err := repo.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestAdd_Invalid(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Add(context.Background(), domain.ProductRef{ProductID: "x"})

	var valErr *validator.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields(), "name")
	assert.Zero(t, s.Len())
}

func TestRemove(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, necklace())
	require.NoError(t, err)

	assert.True(t, s.Remove(ctx, necklace().ProductID))
	assert.False(t, s.Remove(ctx, necklace().ProductID))
	assert.False(t, s.Contains(necklace().ProductID))
}

func TestToggle(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	in, err := s.Toggle(ctx, bracelet())
	require.NoError(t, err)
	assert.True(t, in)
	assert.True(t, s.Contains(bracelet().ProductID))

	in, err = s.Toggle(ctx, bracelet())
	require.NoError(t, err)
	assert.False(t, in)
	assert.Zero(t, s.Len())
}

func TestToggle_ConcurrentTogglesEachFlip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	const toggles = 20
	var added atomic.Int32
	var wg sync.WaitGroup
	for range toggles {
		wg.Add(1)
		go func() {
			defer wg.Done()
			in, err := s.Toggle(ctx, bracelet())
			assert.NoError(t, err)
			if in {
				added.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(toggles/2), added.Load())
	assert.False(t, s.Contains(bracelet().ProductID))
}

func TestToggle_InvalidRef(t *testing.T) {
	s, _ := newTestStore(t)

	in, err := s.Toggle(context.Background(), domain.ProductRef{ProductID: "no-name"})
	var valErr *validator.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.False(t, in)
	assert.Zero(t, s.Len())
}

func TestClear_DeletesDocument(t *testing.T) {
	s, repo := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, necklace())
	require.NoError(t, err)
	_, err = s.Add(ctx, bracelet())
	require.NoError(t, err)

	s.Clear(ctx)
	assert.Empty(t, s.Items())

	_, err = repo.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLoad_RestoresOrder(t *testing.T) {
	kv := memory.NewStore()
	repo := memory.NewWishlistRepository(kv)
	ctx := context.Background()

	first := NewStore("sess-1", repo, newTestLogger(), nil)
	_, err := first.Add(ctx, bracelet())
	require.NoError(t, err)
	_, err = first.Add(ctx, necklace())
	require.NoError(t, err)

	second := NewStore("sess-1", repo, newTestLogger(), nil)
	second.Load(ctx)

	items := second.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "tennis-bracelet", items[0].ProductID)
	assert.Equal(t, "gold-chain-necklace", items[1].ProductID)

	got, ok := second.Get("gold-chain-necklace")
	require.True(t, ok)
	assert.Equal(t, "Gold Chain Necklace", got.Name)
}

func TestLoad_CorruptDataStartsEmpty(t *testing.T) {
	kv := memory.NewStore()
	kv.Set(repository.WishlistKeyPrefix+"sess-1", []byte("not json"))

	s := NewStore("sess-1", memory.NewWishlistRepository(kv), newTestLogger(), nil)
	s.Load(context.Background())

	assert.Zero(t, s.Len())

	_, err := s.Add(context.Background(), necklace())
	require.NoError(t, err)
	raw, ok := kv.Raw(repository.WishlistKeyPrefix + "sess-1")
	require.True(t, ok)
	assert.Contains(t, string(raw), "gold-chain-necklace")
}
