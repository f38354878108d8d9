// Package session owns the per-visitor state objects: search state, URL
// synchronizer, location, cart and wishlist. Nothing here is global; every
// session gets its own injectable set.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/multierr"

	apperrors "github.com/utafrali/storefront/pkg/errors"

	"github.com/utafrali/storefront/internal/cart"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/search"
	"github.com/utafrali/storefront/internal/urlsync"
	"github.com/utafrali/storefront/internal/wishlist"
)

// Session is one visitor's state.
type Session struct {
	ID       string
	State    *search.State
	Sync     *urlsync.Synchronizer
	Location *urlsync.Location
	Cart     *cart.Store
	Wishlist *wishlist.Store

	mu       sync.Mutex
	lastSeen time.Time
	closed   bool
}

// Init applies the filters of the initial location. It only has an effect
// before any other search mutation.
func (s *Session) Init(ctx context.Context, rawQuery string) (bool, search.Snapshot) {
	applied := s.Sync.Inbound(ctx, rawQuery)
	return applied, s.State.Snapshot()
}

// UpdateFilters merges patch into the criteria. The outbound location update
// is debounced.
func (s *Session) UpdateFilters(patch domain.FilterPatch) search.Snapshot {
	s.Sync.EnsureInitialized()
	return s.State.UpdateFilters(patch)
}

// ClearFilters resets the criteria and writes the location at once.
func (s *Session) ClearFilters() search.Snapshot {
	s.Sync.EnsureInitialized()
	snap := s.State.ClearFilters()
	s.Sync.Flush()
	return snap
}

// UpdateSort changes the sort key. Sorting is not part of the location.
func (s *Session) UpdateSort(key domain.SortKey) (search.Snapshot, error) {
	s.Sync.EnsureInitialized()
	return s.State.UpdateSort(key)
}

// Search records query in the history and filters by it.
func (s *Session) Search(query string) search.Snapshot {
	s.Sync.EnsureInitialized()
	return s.State.Search(query)
}

// MoveToCart adds qty of a wishlist product to the cart, optionally removing
// it from the wishlist.
func (s *Session) MoveToCart(ctx context.Context, productID string, qty int, remove bool) (domain.CartItem, error) {
	entry, ok := s.Wishlist.Get(productID)
	if !ok {
		return domain.CartItem{}, apperrors.NotFound("wishlist item", productID)
	}

	item, err := s.Cart.AddItem(ctx, entry.ProductRef, qty)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("move to cart: %w", err)
	}
	if remove {
		s.Wishlist.Remove(ctx, productID)
	}
	return item, nil
}

// LastSeen returns when the session was last retrieved.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// close cancels the pending location update and writes the cart and wishlist
// one last time. It is idempotent.
func (s *Session) close(ctx context.Context, logger *slog.Logger) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.Sync.Close()

	err := multierr.Combine(
		s.Cart.Flush(ctx),
		s.Wishlist.Flush(ctx),
	)
	if err != nil {
		logger.WarnContext(ctx, "session closed with unsaved state",
			slog.String("session_id", s.ID),
			slog.String("error", err.Error()),
		)
	}
	return err
}
