package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestPanicRecovery(t *testing.T) {
	log, hook := test.NewNullLogger()
	h := PanicRecovery(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	e := hook.LastEntry()
	if e == nil || e.Level != logrus.ErrorLevel || e.Data["stack"] == nil {
		t.Errorf("expected an error entry with a stack, got %+v", e)
	}
}

func TestRequestLogger(t *testing.T) {
	log, hook := test.NewNullLogger()
	var seen string
	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/1", nil))
	if seen == "" || rec.Header().Get(RequestIDHeader) != seen {
		t.Errorf("request id %q not echoed (header %q)", seen, rec.Header().Get(RequestIDHeader))
	}
	e := hook.LastEntry()
	if e == nil || e.Level != logrus.WarnLevel || e.Data["status"] != http.StatusNotFound {
		t.Errorf("unexpected entry: %+v", e)
	}

	hook.Reset()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "given")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "given" {
		t.Errorf("incoming request id not kept: %q", seen)
	}
	if len(hook.Entries) != 0 {
		t.Errorf("health probe was logged: %+v", hook.Entries)
	}
}

func TestBearer(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cookie string
		want   string
		ok     bool
	}{
		{"header", "Bearer abc", "", "abc", true},
		{"case insensitive", "bearer abc", "", "abc", true},
		{"cookie", "", "xyz", "xyz", true},
		{"wrong scheme", "Basic abc", "xyz", "", false},
		{"none", "", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tt.cookie})
			}
			got, ok := bearer(req)
			if got != tt.want || ok != tt.ok {
				t.Errorf("bearer() = %q, %v, want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
