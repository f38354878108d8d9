package domain

import (
	"slices"
	"strings"
)

// MaxRatingThreshold is the highest minimum-rating filter value.
const MaxRatingThreshold = 5

// ListSeparator joins list filter values in a location query string. A list
// value never contains it: Apply splits such values into separate entries.
const ListSeparator = ","

// PriceRange bounds product prices in whole currency units, inclusive.
// Max == 0 means no upper bound, so the zero range matches every price.
type PriceRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// Contains reports whether price falls inside the range.
func (r PriceRange) Contains(price float64) bool {
	if price < float64(r.Min) {
		return false
	}
	return r.Max == 0 || price <= float64(r.Max)
}

// IsZero reports whether the range is unset.
func (r PriceRange) IsZero() bool {
	return r.Min == 0 && r.Max == 0
}

// FilterCriteria is the full set of active filter dimensions. The zero value
// of every field means "unset", and the zero FilterCriteria matches the whole
// catalog.
type FilterCriteria struct {
	Query       string     `json:"query"`
	Category    Category   `json:"category"`
	Subcategory string     `json:"subcategory"`
	PriceRange  PriceRange `json:"price_range"`
	Metals      []string   `json:"metals"`
	Gemstones   []string   `json:"gemstones"`
	Sizes       []string   `json:"sizes"`
	Brands      []string   `json:"brands"`
	Rating      int        `json:"rating"`
	InStock     bool       `json:"in_stock"`
	IsNew       bool       `json:"is_new"`
	IsSale      bool       `json:"is_sale"`
	IsFeatured  bool       `json:"is_featured"`
}

// DefaultCriteria returns the all-unset criteria.
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{
		Metals:    []string{},
		Gemstones: []string{},
		Sizes:     []string{},
		Brands:    []string{},
	}
}

// IsDefault reports whether every dimension is unset.
func (c FilterCriteria) IsDefault() bool {
	return c.Equal(DefaultCriteria())
}

// Equal compares two criteria field by field. Nil and empty lists are equal.
func (c FilterCriteria) Equal(o FilterCriteria) bool {
	return c.Query == o.Query &&
		c.Category == o.Category &&
		c.Subcategory == o.Subcategory &&
		c.PriceRange == o.PriceRange &&
		slices.Equal(c.Metals, o.Metals) &&
		slices.Equal(c.Gemstones, o.Gemstones) &&
		slices.Equal(c.Sizes, o.Sizes) &&
		slices.Equal(c.Brands, o.Brands) &&
		c.Rating == o.Rating &&
		c.InStock == o.InStock &&
		c.IsNew == o.IsNew &&
		c.IsSale == o.IsSale &&
		c.IsFeatured == o.IsFeatured
}

// Clone returns a deep copy of c.
func (c FilterCriteria) Clone() FilterCriteria {
	c.Metals = cloneList(c.Metals)
	c.Gemstones = cloneList(c.Gemstones)
	c.Sizes = cloneList(c.Sizes)
	c.Brands = cloneList(c.Brands)
	return c
}

// FilterPatch is a partial update of FilterCriteria. A nil field leaves the
// corresponding dimension untouched. For the list fields nil means untouched
// and an empty non-nil slice clears the selection.
type FilterPatch struct {
	Query       *string     `json:"query,omitempty"`
	Category    *Category   `json:"category,omitempty"`
	Subcategory *string     `json:"subcategory,omitempty"`
	PriceRange  *PriceRange `json:"price_range,omitempty"`
	Metals      []string    `json:"metals,omitempty"`
	Gemstones   []string    `json:"gemstones,omitempty"`
	Sizes       []string    `json:"sizes,omitempty"`
	Brands      []string    `json:"brands,omitempty"`
	Rating      *int        `json:"rating,omitempty"`
	InStock     *bool       `json:"in_stock,omitempty"`
	IsNew       *bool       `json:"is_new,omitempty"`
	IsSale      *bool       `json:"is_sale,omitempty"`
	IsFeatured  *bool       `json:"is_featured,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p FilterPatch) IsEmpty() bool {
	return p.Query == nil && p.Category == nil && p.Subcategory == nil &&
		p.PriceRange == nil && p.Metals == nil && p.Gemstones == nil &&
		p.Sizes == nil && p.Brands == nil && p.Rating == nil &&
		p.InStock == nil && p.IsNew == nil && p.IsSale == nil && p.IsFeatured == nil
}

// Apply returns c with the fields present in p merged in. Lists are trimmed
// and de-duplicated, and a rating outside 0..5 is clamped.
func (c FilterCriteria) Apply(p FilterPatch) FilterCriteria {
	out := c.Clone()

	if p.Query != nil {
		out.Query = *p.Query
	}
	if p.Category != nil {
		out.Category = *p.Category
	}
	if p.Subcategory != nil {
		out.Subcategory = *p.Subcategory
	}
	if p.PriceRange != nil {
		out.PriceRange = *p.PriceRange
	}
	if p.Metals != nil {
		out.Metals = normalizeList(p.Metals)
	}
	if p.Gemstones != nil {
		out.Gemstones = normalizeList(p.Gemstones)
	}
	if p.Sizes != nil {
		out.Sizes = normalizeList(p.Sizes)
	}
	if p.Brands != nil {
		out.Brands = normalizeList(p.Brands)
	}
	if p.Rating != nil {
		out.Rating = min(max(*p.Rating, 0), MaxRatingThreshold)
	}
	if p.InStock != nil {
		out.InStock = *p.InStock
	}
	if p.IsNew != nil {
		out.IsNew = *p.IsNew
	}
	if p.IsSale != nil {
		out.IsSale = *p.IsSale
	}
	if p.IsFeatured != nil {
		out.IsFeatured = *p.IsFeatured
	}

	return out
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, entry := range in {
		for _, v := range strings.Split(entry, ListSeparator) {
			v = strings.TrimSpace(v)
			if v == "" || slices.Contains(out, v) {
				continue
			}
			out = append(out, v)
		}
	}
	return out
}

func cloneList(in []string) []string {
	if in == nil {
		return []string{}
	}
	return slices.Clone(in)
}
