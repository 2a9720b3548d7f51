package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hshy1839/seongji-erp-server/internal/cache"
	"github.com/hshy1839/seongji-erp-server/internal/middleware"
	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/services"
)

// UploadHandler accepts spreadsheet uploads for every ingestible resource.
type UploadHandler struct {
	ingest   *services.IngestService
	log      logrus.FieldLogger
	maxBytes int64
}

func NewUploadHandler(ingest *services.IngestService, log logrus.FieldLogger, maxUploadMB int64) *UploadHandler {
	if maxUploadMB < 1 {
		maxUploadMB = 20
	}
	return &UploadHandler{ingest: ingest, log: log, maxBytes: maxUploadMB << 20}
}

type ingestFunc[R any] func(ctx context.Context, data []byte, filename string, opts services.IngestOptions) (R, error)

// serveUpload reads the multipart "file" field, runs fn and renders the report.
func serveUpload[R any](h *UploadHandler, w http.ResponseWriter, r *http.Request, resource string, fn ingestFunc[R]) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		badRequest(w, "invalid multipart upload: "+err.Error())
		return
	}
	file, fh, err := r.FormFile("file")
	if err != nil {
		badRequest(w, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		badRequest(w, "failed to read upload")
		return
	}

	opts, err := parseIngestOptions(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	report, err := fn(r.Context(), data, fh.Filename, opts)
	if err != nil {
		writeError(w, h.log, resource+".upload", err)
		return
	}
	if !opts.DryRun {
		cache.InvalidateResource(r.Context(), resource)
	}
	writeJSON(w, http.StatusOK, report)
}

func queryBool(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(strings.TrimSpace(raw))
}

// parseIngestOptions reads the shared and resource-specific upload switches.
func parseIngestOptions(r *http.Request) (services.IngestOptions, error) {
	values := r.URL.Query()
	var opts services.IngestOptions
	var err error

	if opts.DryRun, err = queryBool(values.Get("dryRun")); err != nil {
		return opts, fmt.Errorf("invalid dryRun: %q", values.Get("dryRun"))
	}
	if raw := values.Get("tzOffsetMin"); raw != "" {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || n < -720 || n > 840 {
			return opts, fmt.Errorf("invalid tzOffsetMin: %q", raw)
		}
		opts.TZOffsetMinutes = &n
	}
	opts.DefaultCompany = strings.TrimSpace(values.Get("defaultCompany"))
	if raw := values.Get("defaultShippingDate"); raw != "" {
		d, err := optionalDate(raw)
		if err != nil {
			return opts, fmt.Errorf("invalid defaultShippingDate: %q", raw)
		}
		opts.DefaultShippingDate = d
	}
	if raw := values.Get("openAsOpening"); raw != "" {
		b, err := queryBool(raw)
		if err != nil {
			return opts, fmt.Errorf("invalid openAsOpening: %q", raw)
		}
		opts.OpenAsOpening = &b
	}
	if opts.OverwriteToday, err = queryBool(values.Get("overwriteToday")); err != nil {
		return opts, fmt.Errorf("invalid overwriteToday: %q", values.Get("overwriteToday"))
	}
	opts.Mode = models.ProductionMode(strings.ToUpper(strings.TrimSpace(values.Get("mode"))))
	opts.Month = strings.TrimSpace(values.Get("month"))

	if name, ok := middleware.GetUsernameFromContext(r.Context()); ok {
		opts.CreatedBy = name
	}
	return opts, nil
}

// UploadOrders handles POST /api/orders/upload
func (h *UploadHandler) UploadOrders(w http.ResponseWriter, r *http.Request) {
	serveUpload(h, w, r, "orders", h.ingest.IngestOrders)
}

// UploadDeliveries handles POST /api/deliveries/upload
func (h *UploadHandler) UploadDeliveries(w http.ResponseWriter, r *http.Request) {
	serveUpload(h, w, r, "deliveries", h.ingest.IngestDeliveries)
}

// UploadShipments handles POST /api/shipments/upload
func (h *UploadHandler) UploadShipments(w http.ResponseWriter, r *http.Request) {
	serveUpload(h, w, r, "shipments", h.ingest.IngestShipments)
}

// UploadStocks handles POST /api/stocks/upload
func (h *UploadHandler) UploadStocks(w http.ResponseWriter, r *http.Request) {
	serveUpload(h, w, r, "stocks", h.ingest.IngestStocks)
}

// UploadShortages handles POST /api/shortages/upload
func (h *UploadHandler) UploadShortages(w http.ResponseWriter, r *http.Request) {
	serveUpload(h, w, r, "shortages", h.ingest.IngestShortages)
}

// UploadProductions handles POST /api/productions/upload
func (h *UploadHandler) UploadProductions(w http.ResponseWriter, r *http.Request) {
	serveUpload(h, w, r, "productions", h.ingest.IngestProductions)
}
