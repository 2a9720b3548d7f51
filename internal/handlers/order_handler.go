package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hshy1839/seongji-erp-server/internal/cache"
	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/services"
)

const ordersResource = "orders"

type OrderHandler struct {
	service *services.OrderService
	log     logrus.FieldLogger
}

func NewOrderHandler(service *services.OrderService, log logrus.FieldLogger) *OrderHandler {
	return &OrderHandler{service: service, log: log}
}

// Create handles POST /api/orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.OrderRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	order, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, "order.create", err)
		return
	}
	cache.InvalidateResource(r.Context(), ordersResource)
	writeJSON(w, http.StatusCreated, order)
}

// Get handles GET /api/orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.log, "order.get", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// Update handles PUT /api/orders/{id}
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.OrderRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	order, err := h.service.Update(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		writeError(w, h.log, "order.update", err)
		return
	}
	cache.InvalidateResource(r.Context(), ordersResource)
	writeJSON(w, http.StatusOK, order)
}

// Delete handles DELETE /api/orders/{id}
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, h.log, "order.delete", err)
		return
	}
	cache.InvalidateResource(r.Context(), ordersResource)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// List handles GET /api/orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, h.log, ordersResource, h.service.List)
}
