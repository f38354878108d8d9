package domain

// SortKey selects the ordering of a result list.
type SortKey string

const (
	SortFeatured   SortKey = "featured"
	SortNewest     SortKey = "newest"
	SortPriceLow   SortKey = "price-low"
	SortPriceHigh  SortKey = "price-high"
	SortNameAsc    SortKey = "name-asc"
	SortNameDesc   SortKey = "name-desc"
	SortRating     SortKey = "rating"
	SortPopularity SortKey = "popularity"
)

// DefaultSort is the ordering used when none is chosen.
const DefaultSort = SortFeatured

// SortKeys lists every valid sort key.
var SortKeys = []SortKey{
	SortFeatured, SortNewest, SortPriceLow, SortPriceHigh,
	SortNameAsc, SortNameDesc, SortRating, SortPopularity,
}

// Valid reports whether k is a known sort key.
func (k SortKey) Valid() bool {
	for _, known := range SortKeys {
		if k == known {
			return true
		}
	}
	return false
}

// ParseSortKey returns the sort key named by s. Empty input yields the default.
func ParseSortKey(s string) (SortKey, bool) {
	if s == "" {
		return DefaultSort, true
	}
	k := SortKey(s)
	return k, k.Valid()
}
