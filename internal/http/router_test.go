package http

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/hshy1839/seongji-erp-server/internal/auth"
	"github.com/hshy1839/seongji-erp-server/internal/config"
	"github.com/hshy1839/seongji-erp-server/internal/handlers"
	"github.com/hshy1839/seongji-erp-server/internal/health"
	"github.com/hshy1839/seongji-erp-server/internal/middleware"
	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/repositories/memory"
	"github.com/hshy1839/seongji-erp-server/internal/services"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func newTestRouter(t *testing.T) (http.Handler, *services.UserService) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpirationHours = 1
	cfg.JWT.Issuer = "seongji-erp"

	st := memory.New()
	jwtManager := auth.NewJWTManager(cfg)
	ledger := services.NewLedger(log)
	users := services.NewUserService(st, jwtManager, log)
	ingest := services.NewIngestService(st, ledger, nil, log, services.IngestDefaults{TZOffsetMinutes: 540})

	h := Handlers{
		Auth:        handlers.NewAuthHandler(users, log, jwtManager.TTL()),
		Health:      handlers.NewHealthHandler(health.NewHealthChecker(okPinger{}, nil)),
		Upload:      handlers.NewUploadHandler(ingest, log, 5),
		Orders:      handlers.NewOrderHandler(services.NewOrderService(st), log),
		Deliveries:  handlers.NewDeliveryHandler(services.NewDeliveryService(st, ledger, log), log),
		Shipments:   handlers.NewShipmentHandler(services.NewShipmentService(st, ledger, log), log),
		Stocks:      handlers.NewStockHandler(services.NewStockService(st, log), log),
		Shortages:   handlers.NewShortageHandler(services.NewShortageService(st), log),
		Productions: handlers.NewProductionHandler(services.NewProductionService(st), log, 540),
	}
	return NewRouter(h, middleware.NewAuthMiddleware(jwtManager, st.Users())), users
}

func login(t *testing.T, r http.Handler, username, password string) *http.Cookie {
	t.Helper()
	body := `{"username":"` + username + `","password":"` + password + `"}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.TokenCookie {
			return c
		}
	}
	t.Fatal("login did not set the token cookie")
	return nil
}

func TestPublicRoutes(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, path := range []string{"/health", "/health/detailed", "/metrics"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

func TestAPIRequiresToken(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"malformed", "Token abc"},
		{"invalid", "Bearer not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestLoginCookieAndRoles(t *testing.T) {
	r, users := newTestRouter(t)
	ctx := context.Background()
	if _, err := users.CreateUser(ctx, &models.CreateUserRequest{Username: "staff1", Password: "password1"}); err != nil {
		t.Fatal(err)
	}
	if _, err := users.CreateUser(ctx, &models.CreateUserRequest{Username: "admin1", Password: "password1", Role: models.RoleAdmin}); err != nil {
		t.Fatal(err)
	}

	staff := login(t, r, "staff1", "password1")

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(staff)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"username":"staff1"`) {
		t.Fatalf("GET /api/me = %d %s", rec.Code, rec.Body.String())
	}

	newUser := []byte(`{"username":"other","password":"password2"}`)
	req = httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader(newUser))
	req.AddCookie(staff)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("staff creating a user: expected 403, got %d", rec.Code)
	}

	admin := login(t, r, "admin1", "password1")
	req = httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader(newUser))
	req.Header.Set("Authorization", "Bearer "+admin.Value)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Errorf("admin creating a user: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestWrongPasswordIsUnauthorized(t *testing.T) {
	r, users := newTestRouter(t)
	if _, err := users.CreateUser(context.Background(), &models.CreateUserRequest{Username: "staff1", Password: "password1"}); err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"staff1","password":"nope"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestProductionSummaryRoute(t *testing.T) {
	r, users := newTestRouter(t)
	if _, err := users.CreateUser(context.Background(), &models.CreateUserRequest{Username: "staff1", Password: "password1"}); err != nil {
		t.Fatal(err)
	}
	cookie := login(t, r, "staff1", "password1")

	req := httptest.NewRequest(http.MethodGet, "/api/productions/summary?month=2024-03", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"monthKey":"2024-03"`) {
		t.Errorf("GET summary = %d %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/productions/summary?month=March", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad month: expected 400, got %d", rec.Code)
	}
}
