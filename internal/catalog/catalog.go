package catalog

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/slug"

	"github.com/utafrali/storefront/internal/domain"
)

// MaxSuggestions caps the number of entries Suggestions returns.
const MaxSuggestions = 8

// Store holds the immutable product catalog in memory.
// Thread-safe via sync.RWMutex so the catalog can be swapped on reload.
type Store struct {
	mu       sync.RWMutex
	products []domain.Product
	byID     map[string]int
}

// New validates products and builds a store. Products without an id get one
// derived from their name. Any invalid product fails the whole load.
func New(products []domain.Product) (*Store, error) {
	s := &Store{}
	if err := s.Replace(products); err != nil {
		return nil, err
	}
	return s, nil
}

// Replace swaps the catalog contents after validating the new product list.
// On error the current contents are kept.
func (s *Store) Replace(products []domain.Product) error {
	list := make([]domain.Product, len(products))
	byID := make(map[string]int, len(products))

	for i, p := range products {
		if p.ID == "" {
			p.ID = slug.Generate(p.Name)
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("catalog product %d: %w", i, err)
		}
		if _, dup := byID[p.ID]; dup {
			return fmt.Errorf("catalog product %d: duplicate id %q", i, p.ID)
		}
		if p.Tags == nil {
			p.Tags = []string{}
		}
		byID[p.ID] = i
		list[i] = p
	}

	s.mu.Lock()
	s.products = list
	s.byID = byID
	s.mu.Unlock()
	return nil
}

// All returns a copy of the catalog in load order.
func (s *Store) All() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.products)
}

// Len returns the number of products.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// Get returns the product with the given id.
func (s *Store) Get(id string) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return domain.Product{}, apperrors.NotFound("product", id)
	}
	return s.products[i], nil
}

// Facets lists the distinct values of each filterable attribute.
type Facets struct {
	Categories []string   `json:"categories"`
	Metals     []string   `json:"metals"`
	Gemstones  []string   `json:"gemstones"`
	Sizes      []string   `json:"sizes"`
	Brands     []string   `json:"brands"`
	PriceRange [2]float64 `json:"price_range"`
}

// Facets computes the facet lists. Every list is sorted and free of blanks.
// The price range is [min, max] of catalog prices, or [0, 0] when empty.
func (s *Store) Facets() Facets {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f := Facets{
		Categories: distinct(s.products, func(p domain.Product) string { return string(p.Category) }),
		Metals:     distinct(s.products, func(p domain.Product) string { return p.Metal }),
		Gemstones:  distinct(s.products, func(p domain.Product) string { return p.Gemstone }),
		Sizes:      distinct(s.products, func(p domain.Product) string { return p.Size }),
		Brands:     distinct(s.products, func(p domain.Product) string { return p.Brand }),
	}

	for i, p := range s.products {
		if i == 0 || p.Price < f.PriceRange[0] {
			f.PriceRange[0] = p.Price
		}
		if i == 0 || p.Price > f.PriceRange[1] {
			f.PriceRange[1] = p.Price
		}
	}
	return f
}

// Subcategories lists the distinct subcategories within a category.
func (s *Store) Subcategories(category domain.Category) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return distinct(s.products, func(p domain.Product) string {
		if p.Category != category {
			return ""
		}
		return p.Subcategory
	})
}

// Suggestions returns up to MaxSuggestions distinct names, categories, tags,
// metals and gemstones that contain query, case-insensitively, in catalog
// order. A blank query has no suggestions.
func (s *Store) Suggestions(query string) []string {
	if strings.TrimSpace(query) == "" {
		return []string{}
	}
	needle := strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, MaxSuggestions)
	add := func(v string) {
		if v != "" && strings.Contains(strings.ToLower(v), needle) && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}

	for _, p := range s.products {
		add(p.Name)
		add(string(p.Category))
		for _, tag := range p.Tags {
			add(tag)
		}
		add(p.Metal)
		add(p.Gemstone)
		if len(out) >= MaxSuggestions {
			break
		}
	}

	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

func distinct(products []domain.Product, value func(domain.Product) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range products {
		v := value(p)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
