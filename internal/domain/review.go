package domain

import "time"

// ReviewStatus is the moderation state of a review.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// Review ratings are whole stars in this range.
const (
	MinRating = 1
	MaxRating = 5
)

// ValidRating reports whether rating is a whole star count in range.
func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

// Valid reports whether s is a known status.
func (s ReviewStatus) Valid() bool {
	return s == ReviewPending || s == ReviewApproved || s == ReviewRejected
}

// Terminal reports whether s accepts no further moderation.
func (s ReviewStatus) Terminal() bool {
	return s == ReviewApproved || s == ReviewRejected
}

// CanTransitionTo reports whether moderation may move a review from s to next.
// Only pending reviews move, and only to a terminal status.
func (s ReviewStatus) CanTransitionTo(next ReviewStatus) bool {
	return s == ReviewPending && next.Terminal()
}

// Review is a customer review of a product.
type Review struct {
	ID             string       `json:"id"`
	ProductID      string       `json:"product_id"`
	UserID         string       `json:"user_id"`
	UserName       string       `json:"user_name"`
	UserEmail      string       `json:"user_email"`
	Rating         int          `json:"rating"`
	Title          string       `json:"title"`
	Comment        string       `json:"comment"`
	Images         []string     `json:"images,omitempty"`
	Verified       bool         `json:"verified"`
	Helpful        int          `json:"helpful"`
	NotHelpful     int          `json:"not_helpful"`
	Status         ReviewStatus `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	ModeratorNotes string       `json:"moderator_notes,omitempty"`
}

// ReviewSummary is the per-product projection over approved reviews.
type ReviewSummary struct {
	ProductID          string      `json:"product_id"`
	AverageRating      float64     `json:"average_rating"`
	TotalReviews       int         `json:"total_reviews"`
	RatingDistribution map[int]int `json:"rating_distribution"`
	VerifiedPurchases  int         `json:"verified_purchases"`
}

// EmptyReviewSummary is the summary of a product without approved reviews.
func EmptyReviewSummary(productID string) ReviewSummary {
	return ReviewSummary{
		ProductID:          productID,
		RatingDistribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}
}

// BuildSummaries computes every product's summary from scratch. Only approved
// reviews with an in-range rating count. Products without such reviews are
// absent from the result.
func BuildSummaries(reviews []Review) map[string]ReviewSummary {
	summaries := make(map[string]ReviewSummary)
	totals := make(map[string]int)

	for _, r := range reviews {
		if r.Status != ReviewApproved || !ValidRating(r.Rating) {
			continue
		}
		s, ok := summaries[r.ProductID]
		if !ok {
			s = EmptyReviewSummary(r.ProductID)
		}
		s.TotalReviews++
		s.RatingDistribution[r.Rating]++
		if r.Verified {
			s.VerifiedPurchases++
		}
		totals[r.ProductID] += r.Rating
		summaries[r.ProductID] = s
	}

	for id, s := range summaries {
		s.AverageRating = float64(totals[id]) / float64(s.TotalReviews)
		summaries[id] = s
	}
	return summaries
}
