package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/repositories/memory"
	"github.com/hshy1839/seongji-erp-server/internal/services"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func orderWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]interface{}{
		{"발주처", "발주일", "품번", "품명", "수량"},
		{"현대", "2024-03-01", "P1", "브라켓", 10},
		{"기아", "2024-03-02", "P2", "커버", 0},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func uploadRequest(t *testing.T, target string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "orders.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	part.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newUploadHandler(st *memory.Store) *UploadHandler {
	log := quietLogger()
	svc := services.NewIngestService(st, services.NewLedger(log), nil, log, services.IngestDefaults{
		OrderCompany:    "모비스",
		Requester:       "미지정",
		TZOffsetMinutes: 540,
		BatchSize:       100,
	})
	return NewUploadHandler(svc, log, 5)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind services.Kind
		want int
	}{
		{services.KindStructural, http.StatusBadRequest},
		{services.KindValidation, http.StatusBadRequest},
		{services.KindInvalidID, http.StatusBadRequest},
		{services.KindUnauthorized, http.StatusUnauthorized},
		{services.KindNotFound, http.StatusNotFound},
		{services.KindConflict, http.StatusConflict},
		{services.KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.kind); got != tt.want {
			t.Errorf("statusFor(%s) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestParseListQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/orders?q=brk&itemCode=P1&from=2024-03-01&to=2024-03-31&page=2&limit=5000&sort=-quantity", nil)
	q, err := parseListQuery(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Search != "brk" || q.Filters["itemCode"] != "P1" || len(q.Filters) != 1 {
		t.Errorf("unexpected filters: %+v search %q", q.Filters, q.Search)
	}
	if q.Page != 2 || q.Limit != models.MaxPageLimit {
		t.Errorf("page/limit = %d/%d, want 2/%d", q.Page, q.Limit, models.MaxPageLimit)
	}
	if q.From == nil || q.To == nil || q.From.Day() != 1 || q.To.Day() != 31 {
		t.Errorf("unexpected range %v - %v", q.From, q.To)
	}
	if field, desc := q.SortField(); field != "quantity" || !desc {
		t.Errorf("sort = %s desc=%v", field, desc)
	}

	bad := httptest.NewRequest(http.MethodGet, "/api/orders?from=yesterday", nil)
	if _, err := parseListQuery(bad); err == nil {
		t.Error("expected error for malformed from")
	}
}

func TestUploadOrders(t *testing.T) {
	st := memory.New()
	h := newUploadHandler(st)

	rec := httptest.NewRecorder()
	h.UploadOrders(rec, uploadRequest(t, "/api/orders/upload?dryRun=true", orderWorkbook(t)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var report models.IngestReport
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if !report.DryRun || report.Success != 1 || report.Failed != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
	if len(report.Errors) != 1 || report.Errors[0].Row != 3 {
		t.Errorf("expected an error on row 3, got %+v", report.Errors)
	}

	rec = httptest.NewRecorder()
	h.UploadOrders(rec, uploadRequest(t, "/api/orders/upload", orderWorkbook(t)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = httptest.NewRecorder()
	orders := NewOrderHandler(services.NewOrderService(st), quietLogger())
	orders.List(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))
	var page models.Page[models.Order]
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 || len(page.Rows) != 1 || page.Rows[0].ItemCode != "P1" {
		t.Errorf("unexpected page: %+v", page)
	}
}

func TestUploadRejects(t *testing.T) {
	h := newUploadHandler(memory.New())

	tests := []struct {
		name   string
		req    *http.Request
		status int
		kind   services.Kind
	}{
		{
			name:   "no file",
			req:    httptest.NewRequest(http.MethodPost, "/api/orders/upload", nil),
			status: http.StatusBadRequest,
			kind:   services.KindValidation,
		},
		{
			name:   "bad option",
			req:    uploadRequest(t, "/api/orders/upload?tzOffsetMin=abc", orderWorkbook(t)),
			status: http.StatusBadRequest,
			kind:   services.KindValidation,
		},
		{
			name:   "not a workbook",
			req:    uploadRequest(t, "/api/orders/upload", []byte("hello")),
			status: http.StatusBadRequest,
			kind:   services.KindStructural,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.UploadOrders(rec, tt.req)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			var body errorBody
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.OK || body.Type != tt.kind {
				t.Errorf("body = %+v, want type %s", body, tt.kind)
			}
		})
	}
}

func TestStockGetErrors(t *testing.T) {
	h := NewStockHandler(services.NewStockService(memory.New(), quietLogger()), quietLogger())

	tests := []struct {
		id     string
		status int
	}{
		{"not-a-uuid", http.StatusBadRequest},
		{"7b0f3c5e-8a8e-4d0c-9d7a-1f1b2c3d4e5f", http.StatusNotFound},
	}
	for _, tt := range tests {
		req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/stocks/"+tt.id, nil), map[string]string{"id": tt.id})
		rec := httptest.NewRecorder()
		h.Get(rec, req)
		if rec.Code != tt.status {
			t.Errorf("GET %s = %d, want %d", tt.id, rec.Code, tt.status)
		}
	}
}
