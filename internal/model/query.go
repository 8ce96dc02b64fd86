package model

import (
	"net/url"
	"strconv"
)

// SortField selects the server-side sort column for todo listings.
// SortNone leaves the server's natural order in effect.
type SortField string

const (
	SortNone      SortField = ""
	SortAuthor    SortField = "author"
	SortEmail     SortField = "email"
	SortCompleted SortField = "completed"
)

// SortOrder is the listing direction.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Query holds the pagination and sorting parameters for todo listings.
// Changing any field invalidates the currently displayed page until the
// next successful fetch.
type Query struct {
	Page     int
	PageSize int
	Sort     SortField
	Order    SortOrder
}

// DefaultQuery returns the initial listing parameters.
func DefaultQuery() Query {
	return Query{
		Page:     1,
		PageSize: 3,
		Sort:     SortNone,
		Order:    OrderAsc,
	}
}

// Values encodes the query as URL parameters. Sort is omitted when no
// sort field is selected; the retained order value is still sent.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("pageSize", strconv.Itoa(q.PageSize))
	if q.Sort != SortNone {
		v.Set("sort", string(q.Sort))
	}
	if q.Order != "" {
		v.Set("order", string(q.Order))
	}
	return v
}
