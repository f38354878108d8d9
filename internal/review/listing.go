package review

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	apperrors "github.com/utafrali/storefront/pkg/errors"

	"github.com/utafrali/storefront/internal/domain"
)

// Filter narrows a product's review list.
type Filter string

// FilterAll and FilterVerified are the non-rating filters. Rating filters
// are "1-star" through "5-star".
const (
	FilterAll      Filter = "all"
	FilterVerified Filter = "verified"
)

// Sort orders a review list.
type Sort string

const (
	SortNewest  Sort = "newest"
	SortOldest  Sort = "oldest"
	SortHighest Sort = "highest"
	SortLowest  Sort = "lowest"
	SortHelpful Sort = "helpful"
)

// ParseFilter validates a filter name. Empty input selects FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); {
	case s == "":
		return FilterAll, nil
	case f == FilterAll, f == FilterVerified:
		return f, nil
	case starRating(f) > 0:
		return f, nil
	default:
		return "", apperrors.InvalidInput("unknown review filter " + s)
	}
}

// ParseSort validates a sort name. Empty input selects SortNewest.
func ParseSort(s string) (Sort, error) {
	switch o := Sort(s); o {
	case "":
		return SortNewest, nil
	case SortNewest, SortOldest, SortHighest, SortLowest, SortHelpful:
		return o, nil
	default:
		return "", apperrors.InvalidInput("unknown review sort " + s)
	}
}

// starRating returns N for an "N-star" filter, or 0.
func starRating(f Filter) int {
	n, ok := strings.CutSuffix(string(f), "-star")
	if !ok {
		return 0
	}
	r, err := strconv.Atoi(n)
	if err != nil || r < 1 || r > 5 {
		return 0
	}
	return r
}

func (f Filter) matches(r domain.Review) bool {
	switch f {
	case FilterAll, "":
		return true
	case FilterVerified:
		return r.Verified
	default:
		return r.Rating == starRating(f)
	}
}

// ProductReviews returns the approved reviews of a product, filtered and
// sorted. Ties keep insertion order.
func (s *Store) ProductReviews(productID string, filter Filter, order Sort) []domain.Review {
	return s.collect(func(r domain.Review) bool {
		return r.ProductID == productID && r.Status == domain.ReviewApproved && filter.matches(r)
	}, order)
}

// UserReviews returns every review written by userID, newest first, in any
// moderation state.
func (s *Store) UserReviews(userID string) []domain.Review {
	return s.collect(func(r domain.Review) bool { return r.UserID == userID }, SortNewest)
}

// Queue returns the reviews in the given status, oldest first so moderators
// work in submission order. An empty status returns every review.
func (s *Store) Queue(status domain.ReviewStatus) []domain.Review {
	return s.collect(func(r domain.Review) bool {
		return status == "" || r.Status == status
	}, SortOldest)
}

// Counts returns the number of reviews per moderation status.
func (s *Store) Counts() map[domain.ReviewStatus]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := map[domain.ReviewStatus]int{
		domain.ReviewPending:  0,
		domain.ReviewApproved: 0,
		domain.ReviewRejected: 0,
	}
	for _, r := range s.reviews {
		counts[r.Status]++
	}
	return counts
}

func (s *Store) collect(keep func(domain.Review) bool, order Sort) []domain.Review {
	s.mu.RLock()
	out := make([]domain.Review, 0)
	for _, r := range s.reviews {
		if keep(r) {
			out = append(out, cloneReview(r))
		}
	}
	s.mu.RUnlock()

	sortReviews(out, order)
	return out
}

func sortReviews(reviews []domain.Review, order Sort) {
	switch order {
	case SortNewest:
		slices.SortStableFunc(reviews, func(a, b domain.Review) int { return b.CreatedAt.Compare(a.CreatedAt) })
	case SortOldest:
		slices.SortStableFunc(reviews, func(a, b domain.Review) int { return a.CreatedAt.Compare(b.CreatedAt) })
	case SortHighest:
		slices.SortStableFunc(reviews, func(a, b domain.Review) int { return cmp.Compare(b.Rating, a.Rating) })
	case SortLowest:
		slices.SortStableFunc(reviews, func(a, b domain.Review) int { return cmp.Compare(a.Rating, b.Rating) })
	case SortHelpful:
		slices.SortStableFunc(reviews, func(a, b domain.Review) int { return cmp.Compare(b.Helpful, a.Helpful) })
	}
}
