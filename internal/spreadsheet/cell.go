package spreadsheet

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// maxSerial is the spreadsheet serial for 9999-12-31.
const maxSerial = 2958465

var (
	keyStripper    = strings.NewReplacer("(", "", ")", "", "[", "", "]", "", "\u00a0", "")
	numberStripper = strings.NewReplacer(",", "", " ", "", "\u00a0", "")
	dateSeparators = strings.NewReplacer(".", "-", "/", "-")
	numericToken   = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
)

var dateLayouts = []string{
	"2006-1-2",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	time.RFC3339,
	"2006-1-2T15:04:05",
	"1-2-2006",
	"1-2-06",
	"20060102",
}

// Text trims a raw cell.
func Text(cell string) string {
	return strings.TrimSpace(cell)
}

// Key folds header text for alias comparison: no whitespace, no brackets, lower case.
// Keys are never stored.
func Key(s string) string {
	s = keyStripper.Replace(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Number parses a cell tolerating thousands separators and spaces.
func Number(cell string) (float64, bool) {
	s := numberStripper.Replace(strings.TrimSpace(cell))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// LooseNumber falls back to the first numeric token when Number fails ("1,200 EA" -> 1200).
func LooseNumber(cell string) (float64, bool) {
	if f, ok := Number(cell); ok {
		return f, true
	}
	tok := numericToken.FindString(numberStripper.Replace(cell))
	if tok == "" {
		return 0, false
	}
	return Number(tok)
}

// Decimal is Number for quantities that must not pick up float rounding.
func Decimal(cell string) (decimal.Decimal, bool) {
	s := numberStripper.Replace(strings.TrimSpace(cell))
	if _, ok := Number(s); !ok {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		f, _ := Number(s)
		return decimal.NewFromFloat(f), true
	}
	return d, true
}

// UTCDate reads either a spreadsheet date serial or a textual date and truncates it to UTC midnight.
// Unparseable input reports false.
func UTCDate(cell string) (time.Time, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return time.Time{}, false
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 && f <= maxSerial {
		t, err := excelize.ExcelDateToTime(f, false)
		if err != nil {
			return time.Time{}, false
		}
		return midnight(t), true
	}

	s = strings.TrimRight(dateSeparators.Replace(s), "-")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return midnight(t), true
		}
	}
	return time.Time{}, false
}

func midnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// IsBlank reports whether every cell of the row is empty after trimming.
func IsBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
