package store

import (
	"strconv"
	"strings"
)

const (
	// DefaultPageSize is used when a caller does not specify one.
	DefaultPageSize = 10

	// MaxPageSize caps the page window; the saved-question and tag
	// views historically requested up to 1000 rows per page.
	MaxPageSize = 1000
)

// Pagination is a 1-based page window over a filtered listing.
type Pagination struct {
	Page     int
	PageSize int
}

// CoercePage parses a raw page token. Non-numeric, zero or negative
// input degrades to page 1 rather than failing.
func CoercePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func (p Pagination) normalized() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset is the number of rows to skip for this window.
func (p Pagination) Offset() int {
	p = p.normalized()
	return (p.Page - 1) * p.PageSize
}

// Limit is the number of rows this window holds.
func (p Pagination) Limit() int {
	return p.normalized().PageSize
}

// hasNextByCount reports whether matching rows exist beyond the
// current window, given the total count of rows matching the same
// filter. Used by listings that issue a companion COUNT query.
func hasNextByCount(total, offset, fetched int) bool {
	return total > offset+fetched
}

// trimOverfetch implements the limit+1 strategy: rows were fetched
// with one extra slot, so a full over-read means another page exists.
func trimOverfetch[T any](rows []T, limit int) ([]T, bool) {
	if len(rows) > limit {
		return rows[:limit], true
	}
	return rows, false
}
