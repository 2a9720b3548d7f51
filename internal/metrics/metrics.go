// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "erp_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "erp_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	IngestRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "erp_ingest_runs_total",
		Help: "Spreadsheet ingestions by resource and result (ok, dry_run, structural, failed).",
	}, []string{"resource", "result"})

	IngestRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "erp_ingest_rows_total",
		Help: "Ingested spreadsheet rows by resource and outcome.",
	}, []string{"resource", "outcome"})

	IngestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "erp_ingest_duration_seconds",
		Help:    "Time spent in one ingestion call.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"resource"})

	LedgerAdjustments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "erp_ledger_adjustments_total",
		Help: "Derived-ledger adjustments by ledger (stock, order) and action.",
	}, []string{"ledger", "action"})

	StockAuditRepairs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "erp_stock_audit_repairs_total",
		Help: "Stock rows whose current quantity was rewritten by the audit.",
	})
)
