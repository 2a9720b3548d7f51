package repositories

import (
	"strings"
	"testing"
	"time"

	"github.com/hshy1839/seongji-erp-server/internal/models"
)

func TestListSpecFiltersAndPaging(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	q := models.ListQuery{
		Filters: map[string]string{"itemCode": "A_1%", "status": "WAIT", "bogus": "x"},
		Search:  "bolt",
		From:    &from,
		To:      &to,
		Sort:    "-quantity",
	}
	q.Normalize()

	query, count, args := orderList.selectSQL(q)

	if !strings.Contains(query, "item_code ILIKE $1") {
		t.Errorf("expected partial item_code filter, got %s", query)
	}
	if !strings.Contains(query, "status = $2") {
		t.Errorf("expected exact status filter, got %s", query)
	}
	if strings.Contains(query, "bogus") {
		t.Errorf("unknown filter leaked into query: %s", query)
	}
	if !strings.Contains(query, "ORDER BY quantity DESC, id") {
		t.Errorf("unexpected ordering: %s", query)
	}
	if !strings.HasSuffix(query, "LIMIT $6 OFFSET $7") {
		t.Errorf("unexpected paging clause: %s", query)
	}
	if strings.Contains(count, "LIMIT") {
		t.Errorf("count query must not page: %s", count)
	}
	if got := args[0]; got != `%A\_1\%%` {
		t.Errorf("expected escaped pattern, got %v", got)
	}
	if got := args[4].(time.Time); !got.After(to) {
		t.Errorf("upper date bound should cover the whole day, got %v", got)
	}
	if args[5] != models.DefaultPageLimit || args[6] != 0 {
		t.Errorf("unexpected paging args %v %v", args[5], args[6])
	}
}

func TestListSpecUnknownSortFallsBack(t *testing.T) {
	q := models.ListQuery{Sort: "password", Page: 3, Limit: 10}
	q.Normalize()

	query, _, args := deliveryList.selectSQL(q)

	if !strings.Contains(query, "ORDER BY delivery_date DESC, id") {
		t.Errorf("expected default ordering, got %s", query)
	}
	if len(args) != 2 || args[0] != 10 || args[1] != 20 {
		t.Errorf("unexpected args %v", args)
	}
}
