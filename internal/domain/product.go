package domain

import (
	"fmt"
	"time"
)

// Category is one of the fixed top-level catalog departments.
type Category string

const (
	CategoryRings     Category = "rings"
	CategoryNecklaces Category = "necklaces"
	CategoryEarrings  Category = "earrings"
	CategoryBracelets Category = "bracelets"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryRings, CategoryNecklaces, CategoryEarrings, CategoryBracelets}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Product is a catalog entry. Products are immutable once the catalog is loaded.
type Product struct {
	ID            string    `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	Price         float64   `json:"price" yaml:"price"`
	OriginalPrice *float64  `json:"original_price,omitempty" yaml:"original_price,omitempty"`
	Image         string    `json:"image" yaml:"image"`
	Images        []string  `json:"images,omitempty" yaml:"images,omitempty"`
	Category      Category  `json:"category" yaml:"category"`
	Subcategory   string    `json:"subcategory,omitempty" yaml:"subcategory,omitempty"`
	Metal         string    `json:"metal" yaml:"metal"`
	Gemstone      string    `json:"gemstone,omitempty" yaml:"gemstone,omitempty"`
	Size          string    `json:"size,omitempty" yaml:"size,omitempty"`
	Brand         string    `json:"brand,omitempty" yaml:"brand,omitempty"`
	Description   string    `json:"description" yaml:"description"`
	Features      []string  `json:"features,omitempty" yaml:"features,omitempty"`
	Tags          []string  `json:"tags" yaml:"tags"`
	InStock       bool      `json:"in_stock" yaml:"in_stock"`
	StockCount    int       `json:"stock_count" yaml:"stock_count"`
	Rating        float64   `json:"rating" yaml:"rating"`
	ReviewCount   int       `json:"review_count" yaml:"review_count"`
	IsNew         bool      `json:"is_new" yaml:"is_new"`
	IsSale        bool      `json:"is_sale" yaml:"is_sale"`
	IsFeatured    bool      `json:"is_featured" yaml:"is_featured"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
}

// Validate checks the invariants a product must satisfy to enter the catalog.
func (p *Product) Validate() error {
	switch {
	case p.ID == "":
		return fmt.Errorf("product %q: id is required", p.Name)
	case p.Name == "":
		return fmt.Errorf("product %s: name is required", p.ID)
	case p.Price < 0:
		return fmt.Errorf("product %s: price must not be negative", p.ID)
	case p.OriginalPrice != nil && *p.OriginalPrice < 0:
		return fmt.Errorf("product %s: original price must not be negative", p.ID)
	case !p.Category.Valid():
		return fmt.Errorf("product %s: unknown category %q", p.ID, p.Category)
	case p.Rating < 0 || p.Rating > 5:
		return fmt.Errorf("product %s: rating %.1f outside 0..5", p.ID, p.Rating)
	case p.StockCount < 0 || p.ReviewCount < 0:
		return fmt.Errorf("product %s: counts must not be negative", p.ID)
	}
	return nil
}
