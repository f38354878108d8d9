package cart

import (
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
)

var (
	// FreeShippingThreshold is the subtotal above which shipping is free.
	FreeShippingThreshold = decimal.NewFromInt(500)
	// FlatShipping is charged on non-empty carts at or below the threshold.
	FlatShipping = decimal.NewFromInt(25)
	// TaxRate applies to the subtotal.
	TaxRate = decimal.RequireFromString("0.08")
)

// ComputeTotals prices items. Amounts are rounded half away from zero to cents.
func ComputeTotals(items []domain.CartItem) domain.CartTotals {
	subtotal := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
	}
	subtotal = subtotal.Round(2)

	shipping := decimal.Zero
	if len(items) > 0 && !subtotal.GreaterThan(FreeShippingThreshold) {
		shipping = FlatShipping
	}
	tax := subtotal.Mul(TaxRate).Round(2)
	total := subtotal.Add(shipping).Add(tax)

	return domain.CartTotals{
		ItemCount: itemCount(items),
		Subtotal:  subtotal.StringFixed(2),
		Shipping:  shipping.StringFixed(2),
		Tax:       tax.StringFixed(2),
		Total:     total.StringFixed(2),
	}
}
