package review

import (
	"time"

	"github.com/utafrali/storefront/internal/domain"
)

// DemoReviews returns the approved reviews seeded into an empty store when
// demo data is enabled. Product ids refer to the embedded catalog.
func DemoReviews() []domain.Review {
	at := func(s string) time.Time {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			panic(err)
		}
		return t
	}

	return []domain.Review{
		{
			ID:        "review-1",
			ProductID: "diamond-solitaire-ring",
			UserID:    "user-1",
			UserName:  "Sarah Johnson",
			UserEmail: "sarah@example.com",
			Rating:    5,
			Title:     "Absolutely stunning!",
			Comment:   "This ring exceeded all my expectations. The diamond is brilliant and the setting is perfect. My fiancé did an amazing job picking this out!",
			Verified:  true,
			Helpful:   12,
			Status:    domain.ReviewApproved,
			CreatedAt: at("2024-03-10T10:00:00Z"),
			UpdatedAt: at("2024-03-10T10:00:00Z"),
		},
		{
			ID:         "review-2",
			ProductID:  "diamond-solitaire-ring",
			UserID:     "user-2",
			UserName:   "Emily Chen",
			UserEmail:  "emily@example.com",
			Rating:     4,
			Title:      "Beautiful ring, great quality",
			Comment:    "The ring is gorgeous and well-made. The only reason I'm giving 4 stars instead of 5 is that it took a bit longer to arrive than expected.",
			Verified:   true,
			Helpful:    8,
			NotHelpful: 1,
			Status:     domain.ReviewApproved,
			CreatedAt:  at("2024-03-08T14:30:00Z"),
			UpdatedAt:  at("2024-03-08T14:30:00Z"),
		},
		{
			ID:        "review-3",
			ProductID: "pearl-drop-earrings",
			UserID:    "user-3",
			UserName:  "Jessica Williams",
			UserEmail: "jessica@example.com",
			Rating:    5,
			Title:     "Perfect for special occasions",
			Comment:   "These pearl earrings are elegant and sophisticated. I've worn them to several formal events and always receive compliments.",
			Verified:  true,
			Helpful:   6,
			Status:    domain.ReviewApproved,
			CreatedAt: at("2024-03-05T16:45:00Z"),
			UpdatedAt: at("2024-03-05T16:45:00Z"),
		},
		{
			ID:         "review-4",
			ProductID:  "gold-chain-necklace",
			UserID:     "user-4",
			UserName:   "Michael Brown",
			UserEmail:  "michael@example.com",
			Rating:     3,
			Title:      "Good quality but not as expected",
			Comment:    "The necklace is well-made but the gold color is slightly different from what I expected from the photos.",
			Helpful:    3,
			NotHelpful: 2,
			Status:     domain.ReviewApproved,
			CreatedAt:  at("2024-03-03T09:15:00Z"),
			UpdatedAt:  at("2024-03-03T09:15:00Z"),
		},
	}
}
