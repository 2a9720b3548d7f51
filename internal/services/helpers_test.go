package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/repositories/memory"
)

// testNow is 12:00 KST on 2024-03-05.
var testNow = time.Date(2024, 3, 5, 3, 0, 0, 0, time.UTC)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func fixedNow() time.Time { return testNow }

func newIngest(st *memory.Store) *IngestService {
	log := quietLogger()
	svc := NewIngestService(st, NewLedger(log), nil, log, IngestDefaults{
		OrderCompany:    "모비스",
		Requester:       "미지정",
		TZOffsetMinutes: 540,
		BatchSize:       2,
	})
	svc.Now = fixedNow
	return svc
}

// workbook writes rows into a sheet of a new xlsx file.
func workbook(t *testing.T, sheet string, rows ...[]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		t.Fatal(err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func allOrders(t *testing.T, st *memory.Store) []models.Order {
	t.Helper()
	rows, _, err := st.Orders().List(context.Background(), models.ListQuery{Page: 1, Limit: models.MaxPageLimit})
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func allStocks(t *testing.T, st *memory.Store) []models.Stock {
	t.Helper()
	rows, _, err := st.Stocks().List(context.Background(), models.ListQuery{Page: 1, Limit: models.MaxPageLimit})
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func countDeliveries(t *testing.T, st *memory.Store) int {
	t.Helper()
	_, total, err := st.Deliveries().List(context.Background(), models.ListQuery{Page: 1, Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	return total
}
