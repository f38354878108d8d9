package pagination

import (
	"net/url"
	"strconv"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Params selects one page of an already materialized result list.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// DefaultParams returns page 1 with the default page size.
func DefaultParams() Params {
	return Params{Page: 1, PerPage: DefaultPerPage}
}

// FromQuery reads page and per_page. Missing or out-of-range values keep the defaults.
func FromQuery(q url.Values) Params {
	p := DefaultParams()

	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(q.Get("per_page")); err == nil && v > 0 && v <= MaxPerPage {
		p.PerPage = v
	}

	return p
}

// Offset is the index of the first item of the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Result is one page plus the totals needed to render page controls.
type Result[T any] struct {
	Items      []T  `json:"items"`
	TotalCount int  `json:"total_count"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// Paginate slices items to the requested page. A page past the end is empty.
func Paginate[T any](items []T, p Params) Result[T] {
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.Page <= 0 {
		p.Page = 1
	}

	total := len(items)
	totalPages := total / p.PerPage
	if total%p.PerPage > 0 {
		totalPages++
	}

	start := min(p.Offset(), total)
	end := min(start+p.PerPage, total)

	page := make([]T, end-start)
	copy(page, items[start:end])

	return Result[T]{
		Items:      page,
		TotalCount: total,
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1,
	}
}
