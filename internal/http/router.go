package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hshy1839/seongji-erp-server/internal/handlers"
	"github.com/hshy1839/seongji-erp-server/internal/middleware"
	"github.com/hshy1839/seongji-erp-server/internal/models"
)

// Handlers is everything the router mounts.
type Handlers struct {
	Auth        *handlers.AuthHandler
	Health      *handlers.HealthHandler
	Upload      *handlers.UploadHandler
	Orders      *handlers.OrderHandler
	Deliveries  *handlers.DeliveryHandler
	Shipments   *handlers.ShipmentHandler
	Stocks      *handlers.StockHandler
	Shortages   *handlers.ShortageHandler
	Productions *handlers.ProductionHandler
}

type crudHandler interface {
	Get(http.ResponseWriter, *http.Request)
	Update(http.ResponseWriter, *http.Request)
	Delete(http.ResponseWriter, *http.Request)
	List(http.ResponseWriter, *http.Request)
}

// mountCRUD registers list, get, update and delete; create and upload differ per resource.
func mountCRUD(api *mux.Router, prefix string, h crudHandler) {
	api.HandleFunc(prefix, h.List).Methods("GET")
	api.HandleFunc(prefix+"/{id}", h.Get).Methods("GET")
	api.HandleFunc(prefix+"/{id}", h.Update).Methods("PUT")
	api.HandleFunc(prefix+"/{id}", h.Delete).Methods("DELETE")
}

func NewRouter(h Handlers, authMiddleware *middleware.AuthMiddleware) *mux.Router {
	r := mux.NewRouter()
	// Runs after route matching so the route template is the metrics label.
	r.Use(middleware.MetricsMiddleware)

	// Public routes
	r.HandleFunc("/auth/login", h.Auth.Login).Methods("POST")
	r.HandleFunc("/auth/logout", h.Auth.Logout).Methods("POST")

	r.HandleFunc("/health", h.Health.BasicHealth).Methods("GET")
	r.HandleFunc("/health/detailed", h.Health.DetailedHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Everything under /api requires a token
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/me", h.Auth.Me).Methods("GET")

	adminOnly := middleware.RequireRole(models.RoleAdmin)
	api.Handle("/users", adminOnly(http.HandlerFunc(h.Auth.CreateUser))).Methods("POST")

	// Orders
	api.HandleFunc("/orders/upload", h.Upload.UploadOrders).Methods("POST")
	api.HandleFunc("/orders", h.Orders.Create).Methods("POST")
	mountCRUD(api, "/orders", h.Orders)

	// Deliveries (move stock)
	api.HandleFunc("/deliveries/upload", h.Upload.UploadDeliveries).Methods("POST")
	api.HandleFunc("/deliveries", h.Deliveries.Create).Methods("POST")
	mountCRUD(api, "/deliveries", h.Deliveries)

	// Shipments (allocate orders)
	api.HandleFunc("/shipments/upload", h.Upload.UploadShipments).Methods("POST")
	api.HandleFunc("/shipments", h.Shipments.Create).Methods("POST")
	mountCRUD(api, "/shipments", h.Shipments)

	// Stocks
	api.HandleFunc("/stocks/upload", h.Upload.UploadStocks).Methods("POST")
	api.HandleFunc("/stocks/upsert", h.Stocks.Upsert).Methods("POST")
	api.HandleFunc("/stocks/inbound", h.Stocks.Inbound).Methods("POST")
	api.HandleFunc("/stocks/consume", h.Stocks.Consume).Methods("POST")
	api.HandleFunc("/stocks", h.Stocks.Create).Methods("POST")
	mountCRUD(api, "/stocks", h.Stocks)

	// Shortages are written by key, never edited by id
	api.HandleFunc("/shortages/upload", h.Upload.UploadShortages).Methods("POST")
	api.HandleFunc("/shortages", h.Shortages.Upsert).Methods("POST")
	api.HandleFunc("/shortages", h.Shortages.List).Methods("GET")
	api.HandleFunc("/shortages/{id}", h.Shortages.Get).Methods("GET")
	api.HandleFunc("/shortages/{id}", h.Shortages.Delete).Methods("DELETE")

	// Productions
	api.HandleFunc("/productions/upload", h.Upload.UploadProductions).Methods("POST")
	api.HandleFunc("/productions/summary", h.Productions.Summary).Methods("GET")
	api.HandleFunc("/productions/{id}/inbounds", h.Productions.AddInbound).Methods("POST")
	api.HandleFunc("/productions", h.Productions.Create).Methods("POST")
	mountCRUD(api, "/productions", h.Productions)

	return r
}
