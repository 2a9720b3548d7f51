package spreadsheet

import (
	"errors"
	"regexp"
	"testing"
)

func shippingSchema() *Schema {
	return &Schema{
		Resource: "shipments",
		Fields: []Field{
			{Name: "shippingCompany", Aliases: []string{"납품처", "출하처"}},
			{Name: "shippingDate", Aliases: []string{"출하일", "일자"}},
			{Name: "quantity", Aliases: []string{"수량", "출하량"}},
		},
		Profiles: []Profile{
			{Name: "standard", Probe: []string{"shippingCompany", "shippingDate", "quantity"}, MinHits: 2},
		},
		ScanRows:   30,
		SheetNames: []string{"출하수량"},
		SheetBonus: regexp.MustCompile(`(?i)출하|납품|ship`),
	}
}

func TestSelectSheetByName(t *testing.T) {
	wb := &Workbook{Sheets: []Sheet{
		{Name: "요약", Rows: [][]string{{"출하처", "출하일", "수량"}}},
		{Name: "3월 출하수량", Rows: [][]string{{"x"}}},
	}}
	sh, err := shippingSchema().SelectSheet(wb)
	if err != nil {
		t.Fatal(err)
	}
	if sh.Name != "3월 출하수량" {
		t.Fatalf("expected name match, got %q", sh.Name)
	}
}

func TestSelectSheetByScore(t *testing.T) {
	tests := []struct {
		name   string
		sheets []Sheet
		want   string
	}{
		{
			name: "header hits win",
			sheets: []Sheet{
				{Name: "notes", Rows: [][]string{{"memo"}}},
				{Name: "data", Rows: [][]string{{"title"}, {"출하처", "출하일", "수량"}}},
			},
			want: "data",
		},
		{
			name: "name bonus breaks equal hits",
			sheets: []Sheet{
				{Name: "A", Rows: [][]string{{"출하처", "수량"}}},
				{Name: "Shipping", Rows: [][]string{{"출하처", "수량"}}},
			},
			want: "Shipping",
		},
		{
			name: "tie keeps first sheet",
			sheets: []Sheet{
				{Name: "first", Rows: [][]string{{"a"}}},
				{Name: "second", Rows: [][]string{{"b"}}},
			},
			want: "first",
		},
		{
			name: "empty sheets score zero",
			sheets: []Sheet{
				{Name: "blank"},
				{Name: "filled", Rows: [][]string{{"납품처", "일자"}}},
			},
			want: "filled",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sh, err := shippingSchema().SelectSheet(&Workbook{Sheets: tt.sheets})
			if err != nil {
				t.Fatal(err)
			}
			if sh.Name != tt.want {
				t.Errorf("selected %q, want %q", sh.Name, tt.want)
			}
		})
	}
}

func TestSelectSheetNoSheets(t *testing.T) {
	if _, err := shippingSchema().SelectSheet(&Workbook{}); !errors.Is(err, ErrNoSheets) {
		t.Fatalf("expected ErrNoSheets, got %v", err)
	}
}
