package domain

import (
	"errors"
	"fmt"
	"math"
)

// Listing bounds.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Pagination errors.
var (
	ErrInvalidPage  = errors.New("page must be at least 1")
	ErrInvalidLimit = fmt.Errorf("limit must be between 1 and %d", MaxLimit)
	ErrPageTooLarge = errors.New("page is too large")
)

// Pagination is a validated page request.
type Pagination struct {
	Page  int
	Limit int
}

// NewPagination applies defaults to absent values and rejects out-of-range ones.
func NewPagination(page, limit *int) (Pagination, error) {
	p := Pagination{Page: DefaultPage, Limit: DefaultLimit}
	if page != nil {
		if *page < 1 {
			return Pagination{}, ErrInvalidPage
		}
		p.Page = *page
	}
	if limit != nil {
		if *limit < 1 || *limit > MaxLimit {
			return Pagination{}, ErrInvalidLimit
		}
		p.Limit = *limit
	}
	// Offset must stay representable.
	if p.Page-1 > math.MaxInt/p.Limit {
		return Pagination{}, ErrPageTooLarge
	}
	return p, nil
}

// Offset is the number of rows skipped before this page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages returns ceil(total/limit); zero rows give zero pages.
func (p Pagination) TotalPages(total int) int {
	if total <= 0 || p.Limit <= 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}
