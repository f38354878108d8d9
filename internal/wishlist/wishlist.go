// Package wishlist holds one session's saved products.
package wishlist

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/validator"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
)

// Store is the wishlist of a single session. It holds at most one entry per
// product.
type Store struct {
	sessionID string
	repo      repository.WishlistRepository
	persister *repository.Persister[[]domain.WishlistItem]
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.RWMutex
	items   []domain.WishlistItem
	version uint64
}

// NewStore creates an empty wishlist for sessionID. now defaults to the UTC
// wall clock.
func NewStore(sessionID string, repo repository.WishlistRepository, logger *slog.Logger, now func() time.Time) *Store {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	s := &Store{
		sessionID: sessionID,
		repo:      repo,
		logger:    logger,
		now:       now,
		items:     []domain.WishlistItem{},
	}
	s.persister = repository.NewPersister("wishlist", s.save, logger)
	return s
}

// Load reads the persisted wishlist. Unreadable data is logged and
// discarded.
func (s *Store) Load(ctx context.Context) {
	items, err := s.repo.Get(ctx, s.sessionID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		level := slog.LevelError
		if errors.Is(err, repository.ErrCorruptData) {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "failed to load wishlist, starting empty",
			slog.String("session_id", s.sessionID),
			slog.String("error", err.Error()),
		)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make([]domain.WishlistItem, 0, len(items))
	for _, item := range items {
		if !slices.ContainsFunc(s.items, sameProduct(item.ProductID)) {
			s.items = append(s.items, item)
		}
	}
}

// Add saves ref and reports whether it was added. A product already on the
// wishlist is left untouched.
func (s *Store) Add(ctx context.Context, ref domain.ProductRef) (bool, error) {
	if err := validator.Validate(ref); err != nil {
		return false, err
	}

	s.mu.Lock()
	if slices.ContainsFunc(s.items, sameProduct(ref.ProductID)) {
		s.mu.Unlock()
		return false, nil
	}
	s.items = append(s.items, domain.WishlistItem{ProductRef: ref, DateAdded: s.now()})
	version, snapshot := s.bumpLocked()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "item added to wishlist",
		slog.String("session_id", s.sessionID),
		slog.String("product_id", ref.ProductID),
	)
	_ = s.persister.Persist(ctx, version, snapshot)
	return true, nil
}

// Remove deletes a product and reports whether it was present.
func (s *Store) Remove(ctx context.Context, productID string) bool {
	s.mu.Lock()
	i := slices.IndexFunc(s.items, sameProduct(productID))
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	version, snapshot := s.bumpLocked()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "item removed from wishlist",
		slog.String("session_id", s.sessionID),
		slog.String("product_id", productID),
	)
	_ = s.persister.Persist(ctx, version, snapshot)
	return true
}

// Toggle removes ref when present and adds it otherwise. It returns whether
// the product is on the wishlist afterwards. The check and the change happen
// under one lock, so concurrent toggles each flip the entry.
func (s *Store) Toggle(ctx context.Context, ref domain.ProductRef) (bool, error) {
	s.mu.Lock()
	in := false
	if i := slices.IndexFunc(s.items, sameProduct(ref.ProductID)); i >= 0 {
		s.items = slices.Delete(s.items, i, i+1)
	} else {
		if err := validator.Validate(ref); err != nil {
			s.mu.Unlock()
			return false, err
		}
		s.items = append(s.items, domain.WishlistItem{ProductRef: ref, DateAdded: s.now()})
		in = true
	}
	version, snapshot := s.bumpLocked()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "wishlist item toggled",
		slog.String("session_id", s.sessionID),
		slog.String("product_id", ref.ProductID),
		slog.Bool("in_wishlist", in),
	)
	_ = s.persister.Persist(ctx, version, snapshot)
	return in, nil
}

// Clear empties the wishlist.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = []domain.WishlistItem{}
	version, snapshot := s.bumpLocked()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "wishlist cleared", slog.String("session_id", s.sessionID))
	_ = s.persister.Persist(ctx, version, snapshot)
}

// Contains reports whether productID is on the wishlist.
func (s *Store) Contains(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.ContainsFunc(s.items, sameProduct(productID))
}

// Get returns the entry for productID.
func (s *Store) Get(productID string) (domain.WishlistItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.items, sameProduct(productID))
	if i < 0 {
		return domain.WishlistItem{}, false
	}
	return s.items[i], true
}

// Items returns a copy of the wishlist in insertion order.
func (s *Store) Items() []domain.WishlistItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Len returns the number of saved products.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Flush writes the current contents regardless of earlier save failures.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	version, snapshot := s.bumpLocked()
	s.mu.Unlock()
	return s.persister.Persist(ctx, version, snapshot)
}

func (s *Store) bumpLocked() (uint64, []domain.WishlistItem) {
	s.version++
	return s.version, slices.Clone(s.items)
}

func (s *Store) save(ctx context.Context, items []domain.WishlistItem) error {
	if len(items) == 0 {
		return s.repo.Delete(ctx, s.sessionID)
	}
	return s.repo.Save(ctx, s.sessionID, items)
}

func sameProduct(productID string) func(domain.WishlistItem) bool {
	return func(item domain.WishlistItem) bool { return item.ProductID == productID }
}
