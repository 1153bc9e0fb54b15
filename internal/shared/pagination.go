package shared

import (
	"net/http"
	"strconv"
)

// ListFilters represents standard list page filters.
type ListFilters struct {
	Page   int
	Limit  int
	Search string
}

// ParseListFilters reads page/size/q query parameters with sane bounds.
func ParseListFilters(r *http.Request, defaultLimit int) ListFilters {
	f := ListFilters{Page: 1, Limit: defaultLimit, Search: r.URL.Query().Get("q")}
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && page > 0 {
		f.Page = page
	}
	if size, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil && size > 0 && size <= 100 {
		f.Limit = size
	}
	return f
}

// Offset returns the SQL offset for the current page.
func (f ListFilters) Offset() int {
	offset := (f.Page - 1) * f.Limit
	if offset < 0 {
		return 0
	}
	return offset
}

// Pages returns the number of pages for a total row count.
func (f ListFilters) Pages(total int) int {
	if f.Limit <= 0 {
		return 1
	}
	pages := (total + f.Limit - 1) / f.Limit
	if pages < 1 {
		return 1
	}
	return pages
}
