// Package engine evaluates filter criteria and a sort key against a product
// list. Evaluation is pure: the input slice is never modified.
package engine

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/utafrali/storefront/internal/domain"
)

// Apply returns the products that satisfy every predicate of c, ordered by key.
// The sort is stable, so ties keep their catalog order. An unknown key keeps
// the filtered products in input order.
func Apply(products []domain.Product, c domain.FilterCriteria, key domain.SortKey) []domain.Product {
	queryLower := strings.ToLower(c.Query)

	matched := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if Matches(p, c, queryLower) {
			matched = append(matched, p)
		}
	}

	Sort(matched, key)
	return matched
}

// Matches reports whether p satisfies all predicates of c. queryLower must be
// the lower-cased c.Query.
func Matches(p domain.Product, c domain.FilterCriteria, queryLower string) bool {
	// Text containment over the searchable fields.
	if queryLower != "" && !strings.Contains(haystack(p), queryLower) {
		return false
	}

	if c.Category != "" && p.Category != c.Category {
		return false
	}
	if c.Subcategory != "" && p.Subcategory != c.Subcategory {
		return false
	}
	if !c.PriceRange.Contains(p.Price) {
		return false
	}

	// Attribute sets. A product lacking the attribute never matches a
	// non-empty selection.
	if !inSelection(c.Metals, p.Metal) ||
		!inSelection(c.Gemstones, p.Gemstone) ||
		!inSelection(c.Sizes, p.Size) ||
		!inSelection(c.Brands, p.Brand) {
		return false
	}

	if c.Rating > 0 && p.Rating < float64(c.Rating) {
		return false
	}

	// Toggles only constrain when switched on.
	if c.InStock && !p.InStock {
		return false
	}
	if c.IsNew && !p.IsNew {
		return false
	}
	if c.IsSale && !p.IsSale {
		return false
	}
	if c.IsFeatured && !p.IsFeatured {
		return false
	}

	return true
}

// Sort orders products in place by key with a stable sort.
func Sort(products []domain.Product, key domain.SortKey) {
	switch key {
	case domain.SortPriceLow:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return cmp.Compare(a.Price, b.Price)
		})
	case domain.SortPriceHigh:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return cmp.Compare(b.Price, a.Price)
		})
	case domain.SortNameAsc, domain.SortNameDesc:
		// Collators keep internal buffers, so each sort gets its own.
		col := collate.New(language.English)
		sign := 1
		if key == domain.SortNameDesc {
			sign = -1
		}
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return sign * col.CompareString(a.Name, b.Name)
		})
	case domain.SortRating:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return cmp.Compare(b.Rating, a.Rating)
		})
	case domain.SortNewest:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	case domain.SortPopularity:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return cmp.Compare(b.ReviewCount, a.ReviewCount)
		})
	case domain.SortFeatured:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return cmp.Compare(rank(b.IsFeatured), rank(a.IsFeatured))
		})
	default:
		// Unknown key: keep input order.
	}
}

func haystack(p domain.Product) string {
	var b strings.Builder
	for _, field := range []string{p.Name, p.Description, string(p.Category), p.Metal, p.Gemstone} {
		b.WriteString(field)
		b.WriteByte(' ')
	}
	b.WriteString(strings.Join(p.Tags, " "))
	return strings.ToLower(b.String())
}

func inSelection(selected []string, value string) bool {
	if len(selected) == 0 {
		return true
	}
	return value != "" && slices.Contains(selected, value)
}

func rank(b bool) int {
	if b {
		return 1
	}
	return 0
}
