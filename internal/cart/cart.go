// Package cart holds one session's shopping cart.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/validator"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
)

// Cart operation upper-bound limits to prevent abuse.
const (
	// MaxQuantityPerItem is the maximum quantity allowed for a single cart line.
	MaxQuantityPerItem = 100
	// MaxItemsPerCart is the maximum number of distinct products in a cart.
	MaxItemsPerCart = 50
)

// Publisher receives cart domain events.
type Publisher interface {
	PublishCartUpdated(ctx context.Context, sessionID string, items []domain.CartItem, totals domain.CartTotals) error
	PublishCartCleared(ctx context.Context, sessionID string) error
}

// Store is the cart of a single session. Every mutation persists the full
// contents; a failed save is logged and the in-memory cart stays
// authoritative.
type Store struct {
	sessionID string
	repo      repository.CartRepository
	persister *repository.Persister[[]domain.CartItem]
	publisher Publisher
	logger    *slog.Logger

	mu      sync.RWMutex
	items   []domain.CartItem
	version uint64
}

// NewStore creates an empty cart for sessionID. publisher may be nil.
func NewStore(sessionID string, repo repository.CartRepository, publisher Publisher, logger *slog.Logger) *Store {
	s := &Store{
		sessionID: sessionID,
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		items:     []domain.CartItem{},
	}
	s.persister = repository.NewPersister("cart", s.save, logger)
	return s
}

// Load reads the persisted cart. A missing cart is empty; unreadable data is
// logged and discarded.
func (s *Store) Load(ctx context.Context) {
	items, err := s.repo.Get(ctx, s.sessionID)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrNotFound):
		items = nil
	case errors.Is(err, repository.ErrCorruptData):
		s.logger.WarnContext(ctx, "discarding corrupt cart",
			slog.String("session_id", s.sessionID),
			slog.String("error", err.Error()),
		)
		items = nil
	default:
		s.logger.ErrorContext(ctx, "failed to load cart, starting empty",
			slog.String("session_id", s.sessionID),
			slog.String("error", err.Error()),
		)
		items = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make([]domain.CartItem, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 || slices.ContainsFunc(s.items, sameProduct(item.ProductID)) {
			continue
		}
		s.items = append(s.items, item)
	}
}

// AddItem adds qty of the referenced product. A product already in the cart
// has its quantity increased and its snapshot refreshed.
func (s *Store) AddItem(ctx context.Context, ref domain.ProductRef, qty int) (domain.CartItem, error) {
	if err := validator.Validate(ref); err != nil {
		return domain.CartItem{}, err
	}
	if qty < 1 {
		return domain.CartItem{}, apperrors.InvalidInput("quantity must be greater than 0")
	}
	if qty > MaxQuantityPerItem {
		return domain.CartItem{}, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	s.mu.Lock()
	var item domain.CartItem
	if i := slices.IndexFunc(s.items, sameProduct(ref.ProductID)); i >= 0 {
		newQty := s.items[i].Quantity + qty
		if newQty > MaxQuantityPerItem {
			s.mu.Unlock()
			return domain.CartItem{}, apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerItem))
		}
		s.items[i] = domain.CartItem{ProductRef: ref, Quantity: newQty}
		item = s.items[i]
	} else {
		if len(s.items) >= MaxItemsPerCart {
			s.mu.Unlock()
			return domain.CartItem{}, apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d items", MaxItemsPerCart))
		}
		item = domain.CartItem{ProductRef: ref, Quantity: qty}
		s.items = append(s.items, item)
	}
	version, snapshot := s.bumpLocked()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("session_id", s.sessionID),
		slog.String("product_id", ref.ProductID),
		slog.Int("quantity", qty),
	)
	s.commit(ctx, version, snapshot)
	return item, nil
}

// UpdateQuantity sets the quantity of a cart line. A quantity of zero or less
// removes the line. found is false when the product is not in the cart.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, qty int) (found bool, err error) {
	if qty > MaxQuantityPerItem {
		return false, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	s.mu.Lock()
	i := slices.IndexFunc(s.items, sameProduct(productID))
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}
	if qty <= 0 {
		s.items = slices.Delete(s.items, i, i+1)
	} else {
		s.items[i].Quantity = qty
	}
	version, snapshot := s.bumpLocked()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "cart item quantity updated",
		slog.String("session_id", s.sessionID),
		slog.String("product_id", productID),
		slog.Int("quantity", max(qty, 0)),
	)
	s.commit(ctx, version, snapshot)
	return true, nil
}

// RemoveItem removes a product and reports whether it was present.
func (s *Store) RemoveItem(ctx context.Context, productID string) bool {
	s.mu.Lock()
	i := slices.IndexFunc(s.items, sameProduct(productID))
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	version, snapshot := s.bumpLocked()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("session_id", s.sessionID),
		slog.String("product_id", productID),
	)
	s.commit(ctx, version, snapshot)
	return true
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = []domain.CartItem{}
	version, snapshot := s.bumpLocked()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "cart cleared", slog.String("session_id", s.sessionID))
	_ = s.persister.Persist(ctx, version, snapshot)
	if s.publisher != nil {
		if err := s.publisher.PublishCartCleared(ctx, s.sessionID); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
				slog.String("session_id", s.sessionID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Contains reports whether productID is in the cart.
func (s *Store) Contains(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.ContainsFunc(s.items, sameProduct(productID))
}

// ItemCount returns the sum of all quantities.
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return itemCount(s.items)
}

// Items returns a copy of the cart lines in insertion order.
func (s *Store) Items() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Totals prices the current cart.
func (s *Store) Totals() domain.CartTotals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ComputeTotals(s.items)
}

// Flush writes the current contents regardless of earlier save failures.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	version, snapshot := s.bumpLocked()
	s.mu.Unlock()
	return s.persister.Persist(ctx, version, snapshot)
}

// SessionID returns the owning session.
func (s *Store) SessionID() string { return s.sessionID }

func (s *Store) bumpLocked() (uint64, []domain.CartItem) {
	s.version++
	return s.version, slices.Clone(s.items)
}

func (s *Store) commit(ctx context.Context, version uint64, snapshot []domain.CartItem) {
	_ = s.persister.Persist(ctx, version, snapshot)
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishCartUpdated(ctx, s.sessionID, snapshot, ComputeTotals(snapshot)); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("session_id", s.sessionID),
			slog.String("error", err.Error()),
		)
	}
}

// save deletes the document of an empty cart instead of storing an empty list.
func (s *Store) save(ctx context.Context, items []domain.CartItem) error {
	if len(items) == 0 {
		return s.repo.Delete(ctx, s.sessionID)
	}
	return s.repo.Save(ctx, s.sessionID, items)
}

func sameProduct(productID string) func(domain.CartItem) bool {
	return func(item domain.CartItem) bool { return item.ProductID == productID }
}

func itemCount(items []domain.CartItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}
