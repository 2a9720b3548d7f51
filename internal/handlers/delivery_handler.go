package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hshy1839/seongji-erp-server/internal/cache"
	"github.com/hshy1839/seongji-erp-server/internal/middleware"
	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/services"
)

const deliveriesResource = "deliveries"

// DeliveryHandler serves deliveries. Every write also moves the stock ledger, so the stock
// list cache is cleared with it.
type DeliveryHandler struct {
	service *services.DeliveryService
	log     logrus.FieldLogger
}

func NewDeliveryHandler(service *services.DeliveryService, log logrus.FieldLogger) *DeliveryHandler {
	return &DeliveryHandler{service: service, log: log}
}

// Create handles POST /api/deliveries
func (h *DeliveryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.DeliveryRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	createdBy, _ := middleware.GetUsernameFromContext(r.Context())
	delivery, err := h.service.Create(r.Context(), &req, createdBy)
	if err != nil {
		writeError(w, h.log, "delivery.create", err)
		return
	}
	cache.InvalidateResource(r.Context(), deliveriesResource)
	writeJSON(w, http.StatusCreated, delivery)
}

// Get handles GET /api/deliveries/{id}
func (h *DeliveryHandler) Get(w http.ResponseWriter, r *http.Request) {
	delivery, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.log, "delivery.get", err)
		return
	}
	writeJSON(w, http.StatusOK, delivery)
}

// Update handles PUT /api/deliveries/{id}
func (h *DeliveryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.DeliveryRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	delivery, err := h.service.Update(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		writeError(w, h.log, "delivery.update", err)
		return
	}
	cache.InvalidateResource(r.Context(), deliveriesResource)
	writeJSON(w, http.StatusOK, delivery)
}

// Delete handles DELETE /api/deliveries/{id}
func (h *DeliveryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, h.log, "delivery.delete", err)
		return
	}
	cache.InvalidateResource(r.Context(), deliveriesResource)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// List handles GET /api/deliveries
func (h *DeliveryHandler) List(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, h.log, deliveriesResource, h.service.List)
}
