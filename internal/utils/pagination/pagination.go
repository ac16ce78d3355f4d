// Package pagination normalizes page/limit query parameters.
package pagination

import (
	"strconv"

	"github.com/SscSPs/exchange_desk/internal/apperrors"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params is a validated page/limit pair. Page is 1-based.
type Params struct {
	Page  int
	Limit int
}

// Normalize applies defaults to zero values and rejects out of range input.
func Normalize(page, limit int) (Params, error) {
	if page == 0 {
		page = DefaultPage
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if page < 1 {
		return Params{}, apperrors.NewValidationError("page must be at least 1, got %d", page)
	}
	if limit < 1 || limit > MaxLimit {
		return Params{}, apperrors.NewValidationError("limit must be between 1 and %d, got %d", MaxLimit, limit)
	}
	return Params{Page: page, Limit: limit}, nil
}

// Parse reads page and limit from query strings. Empty strings take the defaults.
func Parse(page, limit string) (Params, error) {
	p, err := atoiOrZero(page, "page")
	if err != nil {
		return Params{}, err
	}
	l, err := atoiOrZero(limit, "limit")
	if err != nil {
		return Params{}, err
	}
	return Normalize(p, l)
}

// Offset is the number of items before this page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages is the number of pages needed for total items.
func (p Params) TotalPages(total int) int {
	if total <= 0 || p.Limit <= 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}

func atoiOrZero(s, name string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid %s %q", name, s)
	}
	return n, nil
}
