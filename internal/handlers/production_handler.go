package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hshy1839/seongji-erp-server/internal/cache"
	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/services"
	"github.com/hshy1839/seongji-erp-server/internal/timeutil"
)

const productionsResource = "productions"

type ProductionHandler struct {
	service  *services.ProductionService
	log      logrus.FieldLogger
	tzOffset int
}

func NewProductionHandler(service *services.ProductionService, log logrus.FieldLogger, tzOffsetMinutes int) *ProductionHandler {
	return &ProductionHandler{service: service, log: log, tzOffset: tzOffsetMinutes}
}

// Create handles POST /api/productions
func (h *ProductionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.ProductionRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	item, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, "production.create", err)
		return
	}
	cache.InvalidateResource(r.Context(), productionsResource)
	writeJSON(w, http.StatusCreated, item)
}

// Get handles GET /api/productions/{id}
func (h *ProductionHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.log, "production.get", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Update handles PUT /api/productions/{id}
func (h *ProductionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.ProductionRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	item, err := h.service.Update(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		writeError(w, h.log, "production.update", err)
		return
	}
	cache.InvalidateResource(r.Context(), productionsResource)
	writeJSON(w, http.StatusOK, item)
}

// AddInbound handles POST /api/productions/{id}/inbounds
func (h *ProductionHandler) AddInbound(w http.ResponseWriter, r *http.Request) {
	var line models.ProductionInbound
	if err := decodeBody(r, &line); err != nil {
		badRequest(w, err.Error())
		return
	}
	item, err := h.service.AddInbound(r.Context(), mux.Vars(r)["id"], line)
	if err != nil {
		writeError(w, h.log, "production.inbound", err)
		return
	}
	cache.InvalidateResource(r.Context(), productionsResource)
	writeJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /api/productions/{id}
func (h *ProductionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, h.log, "production.delete", err)
		return
	}
	cache.InvalidateResource(r.Context(), productionsResource)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// List handles GET /api/productions
func (h *ProductionHandler) List(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, h.log, productionsResource, h.service.List)
}

// Summary handles GET /api/productions/summary?month=YYYY-MM; the month defaults to the current one.
func (h *ProductionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		month = timeutil.MonthKey(time.Now(), h.tzOffset)
	}
	summary, err := h.service.MonthlySummary(r.Context(), month)
	if err != nil {
		writeError(w, h.log, "production.summary", err)
		return
	}
	if summary == nil {
		summary = []models.ProductionSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "monthKey": month, "summary": summary})
}
