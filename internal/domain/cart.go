package domain

import "time"

// ProductRef is the denormalized product snapshot stored with cart and
// wishlist entries so they render without a catalog lookup.
type ProductRef struct {
	ProductID     string   `json:"product_id" validate:"required"`
	Name          string   `json:"name" validate:"required"`
	Price         float64  `json:"price" validate:"gte=0"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	Image         string   `json:"image"`
	Category      Category `json:"category"`
	Metal         string   `json:"metal,omitempty"`
	Size          string   `json:"size,omitempty"`
}

// RefOf snapshots p.
func RefOf(p Product) ProductRef {
	return ProductRef{
		ProductID:     p.ID,
		Name:          p.Name,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Image:         p.Image,
		Category:      p.Category,
		Metal:         p.Metal,
		Size:          p.Size,
	}
}

// CartItem is one line of a cart. Quantity is at least 1.
type CartItem struct {
	ProductRef
	Quantity int `json:"quantity"`
}

// WishlistItem is one saved product.
type WishlistItem struct {
	ProductRef
	DateAdded time.Time `json:"date_added"`
}

// CartTotals is the priced summary of a cart, in decimal strings.
type CartTotals struct {
	ItemCount int    `json:"item_count"`
	Subtotal  string `json:"subtotal"`
	Shipping  string `json:"shipping"`
	Tax       string `json:"tax"`
	Total     string `json:"total"`
}
