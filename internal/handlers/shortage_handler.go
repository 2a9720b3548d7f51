package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hshy1839/seongji-erp-server/internal/cache"
	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/services"
)

const shortagesResource = "shortages"

type ShortageHandler struct {
	service *services.ShortageService
	log     logrus.FieldLogger
}

func NewShortageHandler(service *services.ShortageService, log logrus.FieldLogger) *ShortageHandler {
	return &ShortageHandler{service: service, log: log}
}

// Upsert handles POST /api/shortages
func (h *ShortageHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req models.ShortageUpsert
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	item, err := h.service.Upsert(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, "shortage.upsert", err)
		return
	}
	cache.InvalidateResource(r.Context(), shortagesResource)
	writeJSON(w, http.StatusOK, item)
}

// Get handles GET /api/shortages/{id}
func (h *ShortageHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.log, "shortage.get", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /api/shortages/{id}
func (h *ShortageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, h.log, "shortage.delete", err)
		return
	}
	cache.InvalidateResource(r.Context(), shortagesResource)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// List handles GET /api/shortages
func (h *ShortageHandler) List(w http.ResponseWriter, r *http.Request) {
	serveList(w, r, h.log, shortagesResource, h.service.List)
}
