package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

// ============================================================================
// Product
// ============================================================================

func validProduct() Product {
	return Product{
		ID:       "ruby-cocktail-ring",
		Name:     "Ruby Cocktail Ring",
		Price:    799,
		Category: CategoryRings,
		Rating:   4.5,
	}
}

func TestProductValidate_Success(t *testing.T) {
	p := validProduct()
	assert.NoError(t, p.Validate())
}

func TestProductValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Product)
		want   string
	}{
		{"missing id", func(p *Product) { p.ID = "" }, "id is required"},
		{"missing name", func(p *Product) { p.Name = "" }, "name is required"},
		{"negative price", func(p *Product) { p.Price = -1 }, "price must not be negative"},
		{"negative original price", func(p *Product) { p.OriginalPrice = ptr(-5.0) }, "original price"},
		{"unknown category", func(p *Product) { p.Category = "watches" }, "unknown category"},
		{"rating too high", func(p *Product) { p.Rating = 5.5 }, "outside 0..5"},
		{"negative stock", func(p *Product) { p.StockCount = -1 }, "counts must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProduct()
			tt.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseSortKey(t *testing.T) {
	k, ok := ParseSortKey("")
	assert.True(t, ok)
	assert.Equal(t, SortFeatured, k)

	k, ok = ParseSortKey("price-high")
	assert.True(t, ok)
	assert.Equal(t, SortPriceHigh, k)

	_, ok = ParseSortKey("cheapest")
	assert.False(t, ok)
}

// ============================================================================
// FilterCriteria
// ============================================================================

func TestPriceRange_Contains(t *testing.T) {
	assert.True(t, PriceRange{}.Contains(25000), "zero range is unbounded")
	assert.True(t, PriceRange{Min: 500, Max: 1000}.Contains(500))
	assert.True(t, PriceRange{Min: 500, Max: 1000}.Contains(1000))
	assert.False(t, PriceRange{Min: 500, Max: 1000}.Contains(1000.5))
	assert.False(t, PriceRange{Min: 500}.Contains(499))
	assert.True(t, PriceRange{Min: 500}.Contains(99999))
}

func TestDefaultCriteria_IsDefault(t *testing.T) {
	assert.True(t, DefaultCriteria().IsDefault())
	assert.True(t, FilterCriteria{}.IsDefault(), "nil lists compare equal to empty lists")

	c := DefaultCriteria()
	c.InStock = true
	assert.False(t, c.IsDefault())
}

func TestApply_MergesOnlyPresentFields(t *testing.T) {
	start := DefaultCriteria().Apply(FilterPatch{
		Category: ptr(CategoryRings),
		Metals:   []string{"Platinum"},
	})

	got := start.Apply(FilterPatch{InStock: ptr(true)})

	assert.Equal(t, CategoryRings, got.Category)
	assert.Equal(t, []string{"Platinum"}, got.Metals)
	assert.True(t, got.InStock)
	assert.Empty(t, got.Gemstones)
}

func TestApply_EmptyListClears(t *testing.T) {
	c := DefaultCriteria().Apply(FilterPatch{Gemstones: []string{"Diamond"}})
	c = c.Apply(FilterPatch{Gemstones: []string{}})
	assert.Empty(t, c.Gemstones)
}

func TestApply_NormalizesLists(t *testing.T) {
	c := DefaultCriteria().Apply(FilterPatch{Sizes: []string{" 7", "", "6", "7"}})
	assert.Equal(t, []string{"7", "6"}, c.Sizes)
}

func TestApply_SplitsSeparatorInListValues(t *testing.T) {
	c := DefaultCriteria().Apply(FilterPatch{Brands: []string{"Tiffany, Co", "Co"}})
	assert.Equal(t, []string{"Tiffany", "Co"}, c.Brands)
}

func TestApply_ClampsRating(t *testing.T) {
	assert.Equal(t, 5, DefaultCriteria().Apply(FilterPatch{Rating: ptr(9)}).Rating)
	assert.Equal(t, 0, DefaultCriteria().Apply(FilterPatch{Rating: ptr(-2)}).Rating)
}

func TestApply_DoesNotAliasInput(t *testing.T) {
	metals := []string{"Rose Gold"}
	base := DefaultCriteria().Apply(FilterPatch{Metals: metals})
	next := base.Apply(FilterPatch{InStock: ptr(true)})
	next.Metals[0] = "changed"

	assert.Equal(t, "Rose Gold", base.Metals[0])
	assert.Equal(t, "Rose Gold", metals[0])
}

func TestFilterPatch_IsEmpty(t *testing.T) {
	assert.True(t, FilterPatch{}.IsEmpty())
	assert.False(t, FilterPatch{Brands: []string{}}.IsEmpty())
	assert.False(t, FilterPatch{IsSale: ptr(false)}.IsEmpty())
}

// ============================================================================
// Review status and summaries
// ============================================================================

func TestReviewStatus_Transitions(t *testing.T) {
	assert.True(t, ReviewPending.CanTransitionTo(ReviewApproved))
	assert.True(t, ReviewPending.CanTransitionTo(ReviewRejected))
	assert.False(t, ReviewPending.CanTransitionTo(ReviewPending))
	assert.False(t, ReviewApproved.CanTransitionTo(ReviewRejected))
	assert.False(t, ReviewRejected.CanTransitionTo(ReviewApproved))
	assert.False(t, ReviewRejected.CanTransitionTo(ReviewPending))
}

func TestBuildSummaries_ApprovedOnly(t *testing.T) {
	now := time.Now()
	reviews := []Review{
		{ProductID: "p1", Rating: 5, Verified: true, Status: ReviewApproved, CreatedAt: now},
		{ProductID: "p1", Rating: 4, Status: ReviewApproved, CreatedAt: now},
		{ProductID: "p1", Rating: 1, Status: ReviewPending, CreatedAt: now},
		{ProductID: "p1", Rating: 1, Status: ReviewRejected, CreatedAt: now},
		{ProductID: "p2", Rating: 2, Status: ReviewPending, CreatedAt: now},
	}

	got := BuildSummaries(reviews)

	require.Contains(t, got, "p1")
	assert.NotContains(t, got, "p2")

	s := got["p1"]
	assert.Equal(t, 2, s.TotalReviews)
	assert.InDelta(t, 4.5, s.AverageRating, 1e-9)
	assert.Equal(t, 1, s.VerifiedPurchases)
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 0, 4: 1, 5: 1}, s.RatingDistribution)
}

func TestBuildSummaries_DistributionSumsToTotal(t *testing.T) {
	var reviews []Review
	for i := 0; i < 23; i++ {
		reviews = append(reviews, Review{ProductID: "p", Rating: i%5 + 1, Status: ReviewApproved})
	}

	s := BuildSummaries(reviews)["p"]

	sum := 0
	for _, n := range s.RatingDistribution {
		sum += n
	}
	assert.Equal(t, s.TotalReviews, sum)
	assert.Equal(t, 23, sum)
}

func TestBuildSummaries_IgnoresOutOfRangeRatings(t *testing.T) {
	reviews := []Review{
		{ProductID: "p", Rating: 7, Status: ReviewApproved},
		{ProductID: "p", Rating: 0, Status: ReviewApproved},
		{ProductID: "p", Rating: 4, Status: ReviewApproved},
	}

	s := BuildSummaries(reviews)["p"]

	assert.Equal(t, 1, s.TotalReviews)
	assert.Equal(t, 4.0, s.AverageRating)
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 0, 4: 1, 5: 0}, s.RatingDistribution)
}

func TestEmptyReviewSummary(t *testing.T) {
	s := EmptyReviewSummary("p")
	assert.Equal(t, 0, s.TotalReviews)
	assert.Len(t, s.RatingDistribution, 5)
}

func TestRefOf(t *testing.T) {
	p := validProduct()
	p.Metal = "Rose Gold"
	p.Size = "6"
	ref := RefOf(p)
	assert.Equal(t, "ruby-cocktail-ring", ref.ProductID)
	assert.Equal(t, "Rose Gold", ref.Metal)
	assert.Equal(t, 799.0, ref.Price)
}
