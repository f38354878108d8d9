package urlsync

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/utafrali/storefront/internal/domain"
)

// Query-string parameter names. Prices are whole currency units; max_price=0
// (or an absent max_price) leaves the upper bound open. List parameters are
// comma-separated.
const (
	ParamQuery       = "q"
	ParamQueryAlias  = "query"
	ParamCategory    = "category"
	ParamSubcategory = "subcategory"
	ParamMinPrice    = "min_price"
	ParamMaxPrice    = "max_price"
	ParamMetals      = "metals"
	ParamGemstones   = "gemstones"
	ParamSizes       = "sizes"
	ParamBrands      = "brands"
	ParamRating      = "rating"
	ParamInStock     = "in_stock"
	ParamNew         = "new"
	ParamSale        = "sale"
	ParamFeatured    = "featured"
)

// Encode serializes the non-default fields of c. Default fields are omitted,
// so the all-unset criteria encodes to no parameters. Lists are joined with
// domain.ListSeparator; criteria built through Apply never hold a value
// containing it. max_price is only written when positive, since a zero
// upper bound means unbounded.
func Encode(c domain.FilterCriteria) url.Values {
	v := url.Values{}

	setString(v, ParamQuery, c.Query)
	setString(v, ParamCategory, string(c.Category))
	setString(v, ParamSubcategory, c.Subcategory)

	if c.PriceRange.Min > 0 {
		v.Set(ParamMinPrice, strconv.FormatInt(c.PriceRange.Min, 10))
	}
	if c.PriceRange.Max > 0 {
		v.Set(ParamMaxPrice, strconv.FormatInt(c.PriceRange.Max, 10))
	}

	setList(v, ParamMetals, c.Metals)
	setList(v, ParamGemstones, c.Gemstones)
	setList(v, ParamSizes, c.Sizes)
	setList(v, ParamBrands, c.Brands)

	if c.Rating > 0 {
		v.Set(ParamRating, strconv.Itoa(c.Rating))
	}

	setFlag(v, ParamInStock, c.InStock)
	setFlag(v, ParamNew, c.IsNew)
	setFlag(v, ParamSale, c.IsSale)
	setFlag(v, ParamFeatured, c.IsFeatured)

	return v
}

// Decode parses the recognized parameters into a patch. Absent, empty or
// malformed parameters leave their field untouched and never produce an
// error. The second result reports whether any field was recognized.
func Decode(v url.Values) (domain.FilterPatch, bool) {
	var p domain.FilterPatch

	if q := first(v, ParamQuery, ParamQueryAlias); q != "" {
		p.Query = &q
	}
	if c := domain.Category(v.Get(ParamCategory)); c.Valid() {
		p.Category = &c
	}
	if s := v.Get(ParamSubcategory); s != "" {
		p.Subcategory = &s
	}

	minPrice, minOK := parsePrice(v.Get(ParamMinPrice))
	maxPrice, maxOK := parsePrice(v.Get(ParamMaxPrice))
	if minOK || maxOK {
		p.PriceRange = &domain.PriceRange{Min: minPrice, Max: maxPrice}
	}

	p.Metals = parseList(v.Get(ParamMetals))
	p.Gemstones = parseList(v.Get(ParamGemstones))
	p.Sizes = parseList(v.Get(ParamSizes))
	p.Brands = parseList(v.Get(ParamBrands))

	if r, err := strconv.Atoi(v.Get(ParamRating)); err == nil && r >= 0 && r <= domain.MaxRatingThreshold {
		p.Rating = &r
	}

	p.InStock = parseFlag(v.Get(ParamInStock))
	p.IsNew = parseFlag(v.Get(ParamNew))
	p.IsSale = parseFlag(v.Get(ParamSale))
	p.IsFeatured = parseFlag(v.Get(ParamFeatured))

	return p, !p.IsEmpty()
}

// BuildLocation joins path and the encoded criteria. Without parameters the
// bare path is returned.
func BuildLocation(path string, c domain.FilterCriteria) string {
	params := Encode(c)
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}

func first(v url.Values, keys ...string) string {
	for _, k := range keys {
		if s := v.Get(k); s != "" {
			return s
		}
	}
	return ""
}

func parsePrice(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, domain.ListSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseFlag(s string) *bool {
	if s == "" {
		return nil
	}
	b := s == "true"
	return &b
}

func setString(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func setList(v url.Values, key string, values []string) {
	if len(values) > 0 {
		v.Set(key, strings.Join(values, domain.ListSeparator))
	}
}

func setFlag(v url.Values, key string, on bool) {
	if on {
		v.Set(key, "true")
	}
}
