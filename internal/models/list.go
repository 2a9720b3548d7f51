package models

import (
	"strings"
	"time"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 1000
)

// ListQuery is a filtered, searched, paged and sorted list request.
// Sort is a field name, prefixed with "-" for descending order.
type ListQuery struct {
	Filters map[string]string
	Search  string
	From    *time.Time
	To      *time.Time
	Page    int
	Limit   int
	Sort    string
}

// Normalize clamps paging values.
func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	q.Search = strings.TrimSpace(q.Search)
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// SortField splits Sort into field name and direction.
func (q ListQuery) SortField() (string, bool) {
	if strings.HasPrefix(q.Sort, "-") {
		return q.Sort[1:], true
	}
	return q.Sort, false
}

type Page[T any] struct {
	OK    bool `json:"ok"`
	Total int  `json:"total"`
	Page  int  `json:"page"`
	Limit int  `json:"limit"`
	Rows  []T  `json:"rows"`
}
