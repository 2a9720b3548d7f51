package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decp(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestStockRequestApplyRecomputes(t *testing.T) {
	s := NewStock(StockKey{PartNumber: "P-1"}, time.Now())
	s.OpeningQty, s.InboundQty, s.UsedQty = dec("10"), dec("5"), dec("3")
	s.Recompute()

	req := StockRequest{StockKey: s.StockKey, UsedQty: decp("7.5")}
	req.Apply(s)

	if !s.CurrentQty.Equal(dec("7.5")) {
		t.Fatalf("expected current 7.5, got %s", s.CurrentQty)
	}
	if !s.Consistent() {
		t.Fatal("stock should be consistent after Apply")
	}
	if s.UOM != DefaultUOM {
		t.Fatalf("expected default uom, got %q", s.UOM)
	}
}

func TestStockConsistentDetectsDrift(t *testing.T) {
	s := &Stock{OpeningQty: dec("1"), InboundQty: dec("2"), UsedQty: dec("0"), CurrentQty: dec("9")}
	if s.Consistent() {
		t.Fatal("expected drift to be detected")
	}
	s.Recompute()
	if !s.CurrentQty.Equal(dec("3")) {
		t.Fatalf("expected 3, got %s", s.CurrentQty)
	}
}

func TestProductionAggregates(t *testing.T) {
	p := ProductionItem{
		RequiredQty: dec("100"),
		Inbounds: []ProductionInbound{
			{Quantity: dec("60"), Defects: dec("2"), Loss: dec("1")},
			{Quantity: dec("30"), Increase: dec("4")},
		},
	}
	if got := p.InboundTotal(); !got.Equal(dec("90")) {
		t.Errorf("InboundTotal = %s, want 90", got)
	}
	if got := p.DefectsTotal(); !got.Equal(dec("2")) {
		t.Errorf("DefectsTotal = %s, want 2", got)
	}
	if got := p.StockTotal(); !got.Equal(dec("91")) {
		t.Errorf("StockTotal = %s, want 91", got)
	}
	if got := p.Shortage(); !got.Equal(dec("-9")) {
		t.Errorf("Shortage = %s, want -9", got)
	}

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"shortage":"-9"`) {
		t.Errorf("expected virtual shortage in %s", raw)
	}
}

func TestProductionUpsertModes(t *testing.T) {
	p := &ProductionItem{RequiredQty: dec("10")}
	(&ProductionUpsert{RequiredQty: dec("5"), Mode: ProductionIncrement}).Apply(p)
	if !p.RequiredQty.Equal(dec("15")) {
		t.Fatalf("INC: expected 15, got %s", p.RequiredQty)
	}
	(&ProductionUpsert{RequiredQty: dec("4"), Mode: ProductionReplace}).Apply(p)
	if !p.RequiredQty.Equal(dec("4")) {
		t.Fatalf("REPLACE: expected 4, got %s", p.RequiredQty)
	}
}

func TestParseStatus(t *testing.T) {
	tests := map[string]Status{
		"완료":       StatusComplete,
		"출하 완료":    StatusComplete,
		"Complete": StatusComplete,
		"대기":       StatusWaiting,
		"":         StatusWaiting,
	}
	for in, want := range tests {
		if got := ParseStatus(in); got != want {
			t.Errorf("ParseStatus(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestUpsertReportFail(t *testing.T) {
	r := &UpsertReport{}
	r.Add(2, RowQueued)
	r.Add(3, RowQueued)
	r.Fail(3, "boom")
	if r.Success != 1 || r.Failed != 1 || r.Results[1].Status != RowFailed || len(r.Errors) != 1 {
		t.Fatalf("unexpected report: %+v", r)
	}

	r.Fail(9, "bad cell")
	if r.Success != 1 || r.Failed != 2 || len(r.Results) != 2 {
		t.Fatalf("a row that was never added must not touch results: %+v", r)
	}
}

func TestUpsertReportUpserted(t *testing.T) {
	r := &UpsertReport{}
	for row := 2; row < 2002; row++ {
		r.Add(row, RowQueued)
	}
	id := uuid.New()
	r.Upserted(1500, id)
	got := r.Results[1498]
	if got.RowIndex != 1500 || got.Status != RowUpserted || got.ID == nil || *got.ID != id {
		t.Fatalf("unexpected result: %+v", got)
	}
	r.Upserted(5000, id)
	if r.Success != 2000 {
		t.Errorf("success = %d, want 2000", r.Success)
	}
}
