package spreadsheet

import (
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if _, err := f.NewSheet("납품"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("납품", "A1", &[]interface{}{"납품처", "납품일", "수량"}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("납품", "A2", &[]interface{}{"A사", 45356, 1200}); err != nil {
		t.Fatal(err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	wb, err := Read(buf.Bytes(), "upload.xlsx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(wb.Sheets) != 2 {
		t.Fatalf("expected 2 sheets, got %d", len(wb.Sheets))
	}
	sh := wb.Sheets[1]
	if sh.Name != "납품" || len(sh.Rows) != 2 {
		t.Fatalf("unexpected sheet %q with %d rows", sh.Name, len(sh.Rows))
	}
	got, ok := UTCDate(sh.Rows[1][1])
	if !ok || !got.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected serial date to decode, got %v (ok=%v) from %q", got, ok, sh.Rows[1][1])
	}
	if n, ok := Number(sh.Rows[1][2]); !ok || n != 1200 {
		t.Fatalf("expected 1200, got %v", n)
	}
}

func TestReadCSV(t *testing.T) {
	data := []byte("\xEF\xBB\xBF품번,수량\nP-1,\"1,000\"\n")
	wb, err := Read(data, "/tmp/재고.csv")
	if err != nil {
		t.Fatal(err)
	}
	if len(wb.Sheets) != 1 || wb.Sheets[0].Name != "재고" {
		t.Fatalf("unexpected sheets: %+v", wb.Sheets)
	}
	rows := wb.Sheets[0].Rows
	if rows[0][0] != "품번" {
		t.Fatalf("BOM not stripped: %q", rows[0][0])
	}
	if n, _ := Number(rows[1][1]); n != 1000 {
		t.Fatalf("expected 1000, got %v", n)
	}
}

func TestReadRejectsLegacyXLS(t *testing.T) {
	_, err := Read([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1}, "old.xls")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestReadEmpty(t *testing.T) {
	if _, err := Read(nil, "x.xlsx"); !errors.Is(err, ErrEmptySheet) {
		t.Fatalf("expected ErrEmptySheet, got %v", err)
	}
}
