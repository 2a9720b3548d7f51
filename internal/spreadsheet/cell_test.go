package spreadsheet

import (
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Quantity ", "quantity"},
		{"총 발주수량", "총발주수량"},
		{"품번(모비스)", "품번모비스"},
		{"[Part No]", "partno"},
		{"납품\u00a0일자", "납품일자"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Key(tt.in); got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"1,234", 1234, true},
		{" 12 000 ", 12000, true},
		{"-3.5", -3.5, true},
		{"", 0, false},
		{"abc", 0, false},
		{"Inf", 0, false},
		{"NaN", 0, false},
	}
	for _, tt := range tests {
		got, ok := Number(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Number(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestLooseNumber(t *testing.T) {
	got, ok := LooseNumber("1,200 EA")
	if !ok || got != 1200 {
		t.Fatalf("expected 1200, got %v (ok=%v)", got, ok)
	}
	if _, ok := LooseNumber("none"); ok {
		t.Fatalf("expected no number in %q", "none")
	}
}

func TestDecimal(t *testing.T) {
	got, ok := Decimal("1,234.5")
	if !ok || got.String() != "1234.5" {
		t.Fatalf("expected 1234.5, got %s (ok=%v)", got, ok)
	}
	if _, ok := Decimal("x"); ok {
		t.Fatal("expected failure for non-numeric input")
	}
}

func TestUTCDateEquivalentForms(t *testing.T) {
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	inputs := []string{
		"45356",      // spreadsheet serial
		"45356.75",   // serial with a time part
		"2024-03-05", // ISO
		"2024/03/05",
		"2024.03.05",
		"2024.3.5.",
		" 2024-03-05 13:45:00 ",
		"2024-03-05T10:00:00Z",
	}
	for _, in := range inputs {
		got, ok := UTCDate(in)
		if !ok {
			t.Errorf("UTCDate(%q) failed", in)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("UTCDate(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestUTCDateInvalid(t *testing.T) {
	for _, in := range []string{"", "   ", "tomorrow", "2024-13-45", "-5"} {
		if got, ok := UTCDate(in); ok {
			t.Errorf("UTCDate(%q) = %v, expected failure", in, got)
		}
	}
}

func TestIsBlank(t *testing.T) {
	if !IsBlank([]string{"", "  ", "\t"}) {
		t.Error("expected whitespace row to be blank")
	}
	if !IsBlank(nil) {
		t.Error("expected nil row to be blank")
	}
	if IsBlank([]string{"", "x"}) {
		t.Error("expected row with a value to be non-blank")
	}
}
