package spreadsheet

import "strings"

// Sheet is one worksheet as a grid of raw cell values.
type Sheet struct {
	Name string
	Rows [][]string
}

// Workbook is an ordered list of sheets.
type Workbook struct {
	Sheets []Sheet
}

// SelectSheet picks the sheet holding the resource's data.
//
// Preferred names are tried in order, each matched case-insensitively first as the whole
// sheet name and then as a substring of it. Without a name match every sheet is scored by the
// header hits of its detected header row, plus 0.5 when the sheet name matches SheetBonus.
// The first sheet wins ties.
func (s *Schema) SelectSheet(wb *Workbook) (*Sheet, error) {
	if wb == nil || len(wb.Sheets) == 0 {
		return nil, ErrNoSheets
	}

	for _, want := range s.SheetNames {
		w := strings.ToLower(strings.TrimSpace(want))
		if w == "" {
			continue
		}
		for i := range wb.Sheets {
			if strings.ToLower(strings.TrimSpace(wb.Sheets[i].Name)) == w {
				return &wb.Sheets[i], nil
			}
		}
		for i := range wb.Sheets {
			if strings.Contains(strings.ToLower(wb.Sheets[i].Name), w) {
				return &wb.Sheets[i], nil
			}
		}
	}

	best, bestScore := 0, -1.0
	for i := range wb.Sheets {
		score := s.sheetScore(&wb.Sheets[i])
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return &wb.Sheets[best], nil
}

func (s *Schema) sheetScore(sh *Sheet) float64 {
	score := 0.0
	if len(sh.Rows) > 0 {
		row, profile := s.DetectHeader(sh.Rows)
		score = float64(s.Hits(sh.Rows[row], profile.Probe))
	}
	if s.SheetBonus != nil && s.SheetBonus.MatchString(sh.Name) {
		score += 0.5
	}
	return score
}
