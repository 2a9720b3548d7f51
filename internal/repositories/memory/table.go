package memory

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/store"
	"github.com/hshy1839/seongji-erp-server/internal/timeutil"
)

// table keeps rows in insertion order.
type table[T any] struct {
	rows  map[uuid.UUID]T
	order []uuid.UUID
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[uuid.UUID]T)}
}

func (t *table[T]) clone(copyRow func(T) T) *table[T] {
	c := &table[T]{rows: make(map[uuid.UUID]T, len(t.rows)), order: append([]uuid.UUID(nil), t.order...)}
	for id, row := range t.rows {
		c.rows[id] = copyRow(row)
	}
	return c
}

func (t *table[T]) get(id uuid.UUID) (T, error) {
	row, ok := t.rows[id]
	if !ok {
		return row, store.ErrNotFound
	}
	return row, nil
}

func (t *table[T]) put(id uuid.UUID, row T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = row
}

func (t *table[T]) remove(id uuid.UUID) error {
	if _, ok := t.rows[id]; !ok {
		return store.ErrNotFound
	}
	delete(t.rows, id)
	for i, o := range t.order {
		if o == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}

func (t *table[T]) all() []T {
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.rows[id])
	}
	return out
}

// find returns the first row in insertion order that satisfies match.
func (t *table[T]) find(match func(T) bool) (T, bool) {
	for _, id := range t.order {
		if row := t.rows[id]; match(row) {
			return row, true
		}
	}
	var zero T
	return zero, false
}

func (t *table[T]) removeWhere(match func(T) bool) int64 {
	var n int64
	for _, id := range append([]uuid.UUID(nil), t.order...) {
		if match(t.rows[id]) {
			_ = t.remove(id)
			n++
		}
	}
	return n
}

func between(ts, start, end time.Time) bool {
	return !ts.Before(start) && ts.Before(end)
}

// listSpec mirrors the SQL list whitelist with field accessors.
type listSpec[T any] struct {
	partial     map[string]func(T) string
	exact       map[string]func(T) string
	search      []func(T) string
	date        func(T) time.Time
	sorts       map[string]func(a, b T) int
	defaultSort string
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func (s listSpec[T]) apply(rows []T, q models.ListQuery) ([]T, int) {
	var out []T
	for _, row := range rows {
		if s.match(row, q) {
			out = append(out, row)
		}
	}

	field, desc := q.SortField()
	cmp, ok := s.sorts[field]
	if !ok {
		q.Sort = s.defaultSort
		field, desc = q.SortField()
		cmp = s.sorts[field]
	}
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return cmp(out[i], out[j]) > 0
		}
		return cmp(out[i], out[j]) < 0
	})

	total := len(out)
	start := q.Offset()
	if start >= total {
		return []T{}, total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	return out[start:end], total
}

func (s listSpec[T]) match(row T, q models.ListQuery) bool {
	for f, v := range q.Filters {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if get, ok := s.exact[f]; ok && get(row) != v {
			return false
		}
		if get, ok := s.partial[f]; ok && !contains(get(row), v) {
			return false
		}
	}
	if q.Search != "" && len(s.search) > 0 {
		hit := false
		for _, get := range s.search {
			if contains(get(row), q.Search) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if s.date != nil {
		d := s.date(row)
		if q.From != nil && d.Before(*q.From) {
			return false
		}
		if q.To != nil && d.After(timeutil.EndOfDay(*q.To)) {
			return false
		}
	}
	return true
}

func byString[T any](get func(T) string) func(a, b T) int {
	return func(a, b T) int { return strings.Compare(get(a), get(b)) }
}

func byTime[T any](get func(T) time.Time) func(a, b T) int {
	return func(a, b T) int { return get(a).Compare(get(b)) }
}

func byInt[T any](get func(T) int) func(a, b T) int {
	return func(a, b T) int { return get(a) - get(b) }
}
