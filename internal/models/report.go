package models

import "github.com/google/uuid"

// RowError is a row-level failure; Row is the 1-based sheet row.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// LedgerOutcome counts what reconciliation did to the derived ledger.
type LedgerOutcome struct {
	Applied   int `json:"applied"`
	Created   int `json:"created"`
	Reversed  int `json:"reversed"`
	Unmatched int `json:"unmatched"`
}

// IngestReport is the result of an insert-based ingestion.
type IngestReport struct {
	OK                      bool           `json:"ok"`
	Resource                string         `json:"resource"`
	DryRun                  bool           `json:"dryRun"`
	Sheet                   string         `json:"sheet"`
	Profile                 string         `json:"profile,omitempty"`
	TotalRows               int            `json:"totalRows"`
	Success                 int            `json:"success"`
	Failed                  int            `json:"failed"`
	Errors                  []RowError     `json:"errors"`
	InsertedIDs             []uuid.UUID    `json:"insertedIds"`
	OverwriteByCreatedAtDay bool           `json:"overwriteByCreatedAtDay"`
	OverwriteDayKey         string         `json:"overwriteDayKey"`
	Ledger                  *LedgerOutcome `json:"ledger,omitempty"`
}

// Upsert row statuses.
const (
	RowQueued    = "queued"
	RowValidated = "validated"
	RowUpserted  = "upserted"
	RowFailed    = "error"
)

type UpsertResult struct {
	RowIndex int        `json:"rowIndex"`
	Status   string     `json:"status"`
	ID       *uuid.UUID `json:"id,omitempty"`
}

type UpsertError struct {
	RowIndex int    `json:"rowIndex"`
	Message  string `json:"message"`
}

// UpsertReport is the result of a bulk-upsert ingestion.
type UpsertReport struct {
	OK                      bool                `json:"ok"`
	Resource                string              `json:"resource"`
	DryRun                  bool                `json:"dryRun"`
	Sheet                   string              `json:"sheet"`
	TotalRows               int                 `json:"totalRows"`
	Success                 int                 `json:"success"`
	Failed                  int                 `json:"failed"`
	Results                 []UpsertResult      `json:"results"`
	Errors                  []UpsertError       `json:"errors"`
	OverwriteByCreatedAtDay bool                `json:"overwriteByCreatedAtDay,omitempty"`
	OverwriteDayKey         string              `json:"overwriteDayKey,omitempty"`
	MonthKey                string              `json:"monthKey,omitempty"`
	Mode                    ProductionMode      `json:"mode,omitempty"`
	Summary                 []ProductionSummary `json:"summary,omitempty"`

	// row number -> position in Results
	index map[int]int
}

// Add records a row that passed validation with the given status and counts it as a success.
func (r *UpsertReport) Add(row int, status string) {
	if r.index == nil {
		r.index = make(map[int]int)
	}
	r.index[row] = len(r.Results)
	r.Results = append(r.Results, UpsertResult{RowIndex: row, Status: status})
	r.Success++
}

func (r *UpsertReport) result(row int) *UpsertResult {
	i, ok := r.index[row]
	if !ok {
		return nil
	}
	return &r.Results[i]
}

// Upserted marks an added row as written.
func (r *UpsertReport) Upserted(row int, id uuid.UUID) {
	if res := r.result(row); res != nil {
		res.Status = RowUpserted
		res.ID = &id
	}
}

// Fail records a row error, marking its result entry when the row was added.
func (r *UpsertReport) Fail(row int, msg string) {
	r.Failed++
	r.Errors = append(r.Errors, UpsertError{RowIndex: row, Message: msg})
	if res := r.result(row); res != nil {
		res.Status = RowFailed
		r.Success--
	}
}
