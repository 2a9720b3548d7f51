package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hshy1839/seongji-erp-server/internal/app"
	"github.com/hshy1839/seongji-erp-server/internal/cache"
	"github.com/hshy1839/seongji-erp-server/internal/config"
	"github.com/hshy1839/seongji-erp-server/internal/handlers"
	"github.com/hshy1839/seongji-erp-server/internal/health"
	h "github.com/hshy1839/seongji-erp-server/internal/http"
	"github.com/hshy1839/seongji-erp-server/internal/jobs"
	"github.com/hshy1839/seongji-erp-server/internal/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := config.NewLogger(cfg.Log.Level)
	if cfg.JWT.Secret == "" {
		log.Fatal("[Config] JWT_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("[Server] startup failed")
	}
	defer a.Close()

	var redisCheck func() bool
	if cfg.Redis.Enabled {
		redisCheck = cache.IsHealthy
	}

	router := h.NewRouter(h.Handlers{
		Auth:        handlers.NewAuthHandler(a.Users, log, a.JWT.TTL()),
		Health:      handlers.NewHealthHandler(health.NewHealthChecker(a.Pool, redisCheck)),
		Upload:      handlers.NewUploadHandler(a.Ingest, log, cfg.Server.MaxUploadMB),
		Orders:      handlers.NewOrderHandler(a.Orders, log),
		Deliveries:  handlers.NewDeliveryHandler(a.Deliveries, log),
		Shipments:   handlers.NewShipmentHandler(a.Shipments, log),
		Stocks:      handlers.NewStockHandler(a.Stocks, log),
		Shortages:   handlers.NewShortageHandler(a.Shortages, log),
		Productions: handlers.NewProductionHandler(a.Productions, log, cfg.Ingest.TZOffsetMinutes),
	}, middleware.NewAuthMiddleware(a.JWT, a.Store.Users()))

	// Wrap with panic recovery, request logging and CORS
	handler := middleware.PanicRecovery(log)(middleware.RequestLogger(log)(middleware.NewCORS(cfg)(router)))

	scheduler := jobs.NewScheduler(log)
	if cfg.Jobs.StockAuditCron != "" {
		if err := scheduler.Add(jobs.StockAudit(cfg.Jobs.StockAuditCron, a.Stocks, log)); err != nil {
			log.WithError(err).Fatal("[Jobs] invalid schedule")
		}
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Large workbooks take a while to upload and ingest.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("[Server] listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("[Server] failed to start")
		}
	}()

	<-ctx.Done()
	log.Info("[Server] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("[Server] graceful shutdown failed")
	}
	scheduler.Stop(shutdownCtx)
}
