package spreadsheet

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const defaultScanRows = 20

var (
	ErrNoSheets   = errors.New("workbook has no sheets")
	ErrEmptySheet = errors.New("sheet is empty")
)

// Field is a logical column and the header spellings accepted for it.
type Field struct {
	Name    string
	Aliases []string
}

// Profile is one accepted header layout. A row is a header under the profile when at least
// MinHits of the Probe fields match one of its cells.
type Profile struct {
	Name     string
	Probe    []string
	MinHits  int
	Required []string
}

// Schema describes the sheet layout of one resource.
type Schema struct {
	Resource   string
	Fields     []Field
	Profiles   []Profile
	ScanRows   int
	SheetNames []string
	SheetBonus *regexp.Regexp
}

// Header is a resolved header row.
type Header struct {
	Row     int
	Profile Profile
	Raw     []string
	Norm    []string
	Index   map[string]int
	Matched map[string]string
}

// Has reports whether the field was found in the header.
func (h *Header) Has(field string) bool {
	_, ok := h.Index[field]
	return ok
}

// HeaderError is raised when the active profile's required fields are not all present.
type HeaderError struct {
	Resource   string
	Profile    string
	Missing    []string
	Row        int
	Raw        []string
	Diagnostic string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("missing required headers: %s. header row=%d, headers=%s (see server log)",
		strings.Join(e.Missing, ", "), e.Row, dumpCells(e.Raw))
}

func dumpCells(cells []string) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = "[" + c + "]"
	}
	return strings.Join(parts, ", ")
}

func (s *Schema) field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (s *Schema) scanLimit(n int) int {
	limit := s.ScanRows
	if limit <= 0 {
		limit = defaultScanRows
	}
	if n < limit {
		return n
	}
	return limit
}

func normalizeRow(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = Key(Text(c))
	}
	return out
}

func fieldHit(f Field, norm []string) bool {
	for _, a := range f.Aliases {
		k := Key(a)
		if k == "" {
			continue
		}
		for _, h := range norm {
			if strings.Contains(h, k) {
				return true
			}
		}
	}
	return false
}

// Hits counts how many of the named fields have an alias contained in some cell of row.
func (s *Schema) Hits(row []string, fields []string) int {
	norm := normalizeRow(row)
	hits := 0
	for _, name := range fields {
		if f, ok := s.field(name); ok && fieldHit(f, norm) {
			hits++
		}
	}
	return hits
}

// DetectHeader tries each profile in order and returns the first scanned row reaching the
// profile's threshold. Row 0 under the first profile is the fallback.
func (s *Schema) DetectHeader(rows [][]string) (int, Profile) {
	limit := s.scanLimit(len(rows))
	for _, p := range s.Profiles {
		for r := 0; r < limit; r++ {
			if s.Hits(rows[r], p.Probe) >= p.MinHits {
				return r, p
			}
		}
	}
	if len(s.Profiles) == 0 {
		return 0, Profile{}
	}
	return 0, s.Profiles[0]
}

// BuildIndex maps each field to its column. A cell equal to an alias wins over an earlier
// cell that merely contains one.
func (s *Schema) BuildIndex(raw []string) *Header {
	h := &Header{
		Raw:     make([]string, len(raw)),
		Index:   make(map[string]int),
		Matched: make(map[string]string),
	}
	for i, c := range raw {
		h.Raw[i] = Text(c)
	}
	h.Norm = normalizeRow(raw)

	for _, f := range s.Fields {
		if col, alias, ok := locate(f, h.Norm, func(cell, key string) bool { return cell == key }); ok {
			h.Index[f.Name], h.Matched[f.Name] = col, alias
			continue
		}
		if col, alias, ok := locate(f, h.Norm, strings.Contains); ok {
			h.Index[f.Name], h.Matched[f.Name] = col, alias
		}
	}
	return h
}

func locate(f Field, norm []string, match func(cell, key string) bool) (int, string, bool) {
	for i, cell := range norm {
		if cell == "" {
			continue
		}
		for _, a := range f.Aliases {
			k := Key(a)
			if k != "" && match(cell, k) {
				return i, a, true
			}
		}
	}
	return -1, "", false
}

// Resolve detects the header row, indexes it and checks the active profile's required fields.
// Fields listed in waive may be absent. On a *HeaderError the partially resolved header is
// still returned.
func (s *Schema) Resolve(rows [][]string, waive ...string) (*Header, error) {
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}
	row, profile := s.DetectHeader(rows)
	h := s.BuildIndex(rows[row])
	h.Row, h.Profile = row, profile

	var missing []string
	for _, name := range profile.Required {
		if h.Has(name) || contains(waive, name) {
			continue
		}
		missing = append(missing, name)
	}
	if len(missing) > 0 {
		return h, &HeaderError{
			Resource:   s.Resource,
			Profile:    profile.Name,
			Missing:    missing,
			Row:        row,
			Raw:        h.Raw,
			Diagnostic: s.Diagnose(rows, h),
		}
	}
	return h, nil
}

// Diagnose renders the operator-facing dump of a header resolution.
func (s *Schema) Diagnose(rows [][]string, h *Header) string {
	var b strings.Builder
	b.WriteString("=== [Excel Header Debug] =================================\n")
	fmt.Fprintf(&b, "- resource   : %s\n", s.Resource)
	fmt.Fprintf(&b, "- profile    : %s\n", h.Profile.Name)
	fmt.Fprintf(&b, "- headerRow  : %d\n", h.Row)
	fmt.Fprintf(&b, "- headerRaw  : %q\n", h.Raw)
	fmt.Fprintf(&b, "- headerNorm : %q\n", h.Norm)
	b.WriteString("- field -> foundIndex / matchedAlias\n")
	for _, f := range s.Fields {
		if col, ok := h.Index[f.Name]; ok {
			fmt.Fprintf(&b, "  · %-14s: %2d / %q\n", f.Name, col, h.Matched[f.Name])
		} else {
			fmt.Fprintf(&b, "  · %-14s: (NOT FOUND)  tried=%q\n", f.Name, f.Aliases)
		}
	}
	b.WriteString("- first data rows (preview up to 3):\n")
	for i := 0; i < 3 && h.Row+1+i < len(rows); i++ {
		fmt.Fprintf(&b, "  [%d] %q\n", i, rows[h.Row+1+i])
	}
	b.WriteString("===========================================================")
	return b.String()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
