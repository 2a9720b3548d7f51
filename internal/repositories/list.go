package repositories

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/timeutil"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// listSpec whitelists what a list query may filter, search and sort on.
type listSpec struct {
	table       string
	columns     string
	partial     map[string]string // query field -> column, case-insensitive contains
	exact       map[string]string // query field -> column, equality
	search      []string
	dateColumn  string
	sorts       map[string]string
	defaultSort string
}

// build renders the WHERE and ORDER BY clauses with positional args.
func (s listSpec) build(q models.ListQuery) (string, string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	fields := make([]string, 0, len(q.Filters))
	for f := range q.Filters {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		v := strings.TrimSpace(q.Filters[f])
		if v == "" {
			continue
		}
		if col, ok := s.exact[f]; ok {
			conds = append(conds, col+" = "+arg(v))
		} else if col, ok := s.partial[f]; ok {
			conds = append(conds, col+" ILIKE "+arg("%"+likeEscaper.Replace(v)+"%"))
		}
	}

	if q.Search != "" && len(s.search) > 0 {
		p := arg("%" + likeEscaper.Replace(q.Search) + "%")
		ors := make([]string, len(s.search))
		for i, col := range s.search {
			ors[i] = col + " ILIKE " + p
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}

	if s.dateColumn != "" {
		if q.From != nil {
			conds = append(conds, s.dateColumn+" >= "+arg(*q.From))
		}
		if q.To != nil {
			conds = append(conds, s.dateColumn+" <= "+arg(timeutil.EndOfDay(*q.To)))
		}
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	field, desc := q.SortField()
	col, ok := s.sorts[field]
	if !ok {
		q.Sort = s.defaultSort
		field, desc = q.SortField()
		col = s.sorts[field]
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	return where, fmt.Sprintf(" ORDER BY %s %s, id", col, dir), args
}

func (s listSpec) selectSQL(q models.ListQuery) (string, string, []any) {
	where, order, args := s.build(q)
	count := "SELECT COUNT(*) FROM " + s.table + where
	n := len(args)
	query := fmt.Sprintf("SELECT %s FROM %s%s%s LIMIT $%d OFFSET $%d", s.columns, s.table, where, order, n+1, n+2)
	return query, count, append(args, q.Limit, q.Offset())
}
