package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hshy1839/seongji-erp-server/internal/cache"
	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/services"
)

const stocksResource = "stocks"

type StockHandler struct {
	service *services.StockService
	log     logrus.FieldLogger
}

func NewStockHandler(service *services.StockService, log logrus.FieldLogger) *StockHandler {
	return &StockHandler{service: service, log: log}
}

func (h *StockHandler) write(w http.ResponseWriter, r *http.Request, op string, status int, stock *models.Stock, err error) {
	if err != nil {
		writeError(w, h.log, op, err)
		return
	}
	cache.InvalidateResource(r.Context(), stocksResource)
	writeJSON(w, status, stock)
}

// Create handles POST /api/stocks; a duplicate key is a conflict.
func (h *StockHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.StockRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	stock, err := h.service.Create(r.Context(), &req)
	h.write(w, r, "stock.create", http.StatusCreated, stock, err)
}

// Upsert handles POST /api/stocks/upsert
func (h *StockHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req models.StockRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	stock, err := h.service.Upsert(r.Context(), &req)
	h.write(w, r, "stock.upsert", http.StatusOK, stock, err)
}

// Inbound handles POST /api/stocks/inbound
func (h *StockHandler) Inbound(w http.ResponseWriter, r *http.Request) {
	var mv models.StockMovement
	if err := decodeBody(r, &mv); err != nil {
		badRequest(w, err.Error())
		return
	}
	stock, err := h.service.AddInbound(r.Context(), &mv)
	h.write(w, r, "stock.inbound", http.StatusOK, stock, err)
}

// Consume handles POST /api/stocks/consume
func (h *StockHandler) Consume(w http.ResponseWriter, r *http.Request) {
	var mv models.StockMovement
	if err := decodeBody(r, &mv); err != nil {
		badRequest(w, err.Error())
		return
	}
	stock, err := h.service.ConsumeByProduction(r.Context(), &mv)
	h.write(w, r, "stock.consume", http.StatusOK, stock, err)
}

// Get handles GET /api/stocks/{id}
func (h *StockHandler) Get(w http.ResponseWriter, r *http.Request) {
	stock, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.log, "stock.get", err)
		return
	}
	writeJSON(w, http.StatusOK, stock)
}

// Update handles PUT /api/stocks/{id}
func (h *StockHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.StockRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	stock, err := h.service.Update(r.Context(), mux.Vars(r)["id"], &req)
	h.write(w, r, "stock.update", http.StatusOK, stock, err)
}

// Delete handles DELETE /api/stocks/{id}
func (h *StockHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, h.log, "stock.delete", err)
		return
	}
	cache.InvalidateResource(r.Context(), stocksResource)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// List handles GET /api/stocks
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, h.log, stocksResource, h.service.List)
}
