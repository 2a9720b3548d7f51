package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hshy1839/seongji-erp-server/internal/cache"
	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/services"
)

const shipmentsResource = "shipments"

type ShipmentHandler struct {
	service *services.ShipmentService
	log     logrus.FieldLogger
}

func NewShipmentHandler(service *services.ShipmentService, log logrus.FieldLogger) *ShipmentHandler {
	return &ShipmentHandler{service: service, log: log}
}

// Create handles POST /api/shipments
func (h *ShipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.ShipmentRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	shipment, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, "shipment.create", err)
		return
	}
	cache.InvalidateResource(r.Context(), shipmentsResource)
	writeJSON(w, http.StatusCreated, shipment)
}

// Get handles GET /api/shipments/{id}
func (h *ShipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	shipment, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.log, "shipment.get", err)
		return
	}
	writeJSON(w, http.StatusOK, shipment)
}

// Update handles PUT /api/shipments/{id}
func (h *ShipmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.ShipmentRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	shipment, err := h.service.Update(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		writeError(w, h.log, "shipment.update", err)
		return
	}
	cache.InvalidateResource(r.Context(), shipmentsResource)
	writeJSON(w, http.StatusOK, shipment)
}

// Delete handles DELETE /api/shipments/{id}
func (h *ShipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, h.log, "shipment.delete", err)
		return
	}
	cache.InvalidateResource(r.Context(), shipmentsResource)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// List handles GET /api/shipments
func (h *ShipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, h.log, shipmentsResource, h.service.List)
}
