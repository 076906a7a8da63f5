package utils

import (
	"net/http"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// PageQuery holds the parsed pagination and sorting parameters shared by
// every listing endpoint.
type PageQuery struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder int // 1 asc, -1 desc
}

func (q PageQuery) Skip() int64 {
	return int64((q.Page - 1) * q.Limit)
}

// ParsePageQuery reads page, limit, sortBy and sortOrder from the request,
// falling back to page 1, limit 10, createdAt descending.
func ParsePageQuery(r *http.Request) PageQuery {
	q := PageQuery{Page: DefaultPage, Limit: DefaultLimit, SortBy: "createdAt", SortOrder: -1}

	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		q.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		q.Limit = v
	}
	if s := r.URL.Query().Get("sortBy"); s != "" {
		q.SortBy = s
	}
	if r.URL.Query().Get("sortOrder") == "asc" {
		q.SortOrder = 1
	}
	return q
}
