package spreadsheet

import (
	"time"

	"github.com/shopspring/decimal"
)

// Row is one data row read through a resolved header.
type Row struct {
	Number int
	cells  []string
	header *Header
}

// Cell returns the raw value of a field; false when the column is absent from the header.
func (r Row) Cell(field string) (string, bool) {
	col, ok := r.header.Index[field]
	if !ok {
		return "", false
	}
	if col >= len(r.cells) {
		return "", true
	}
	return r.cells[col], true
}

func (r Row) Text(field string) string {
	v, _ := r.Cell(field)
	return Text(v)
}

func (r Row) Float(field string) (float64, bool) {
	v, _ := r.Cell(field)
	return Number(v)
}

func (r Row) LooseNumber(field string) (float64, bool) {
	v, _ := r.Cell(field)
	return LooseNumber(v)
}

func (r Row) Decimal(field string) (decimal.Decimal, bool) {
	v, _ := r.Cell(field)
	return Decimal(v)
}

func (r Row) Date(field string) (time.Time, bool) {
	v, _ := r.Cell(field)
	return UTCDate(v)
}

// DataRows calls fn for every non-blank row below the header, in sheet order, and returns how
// many rows were visited. Row numbers are 1-based sheet rows.
func (h *Header) DataRows(rows [][]string, fn func(Row)) int {
	visited := 0
	for i := h.Row + 1; i < len(rows); i++ {
		if IsBlank(rows[i]) {
			continue
		}
		visited++
		fn(Row{Number: i + 1, cells: rows[i], header: h})
	}
	return visited
}
