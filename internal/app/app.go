// Package app wires configuration, storage and services for the server and the operator CLI.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/hshy1839/seongji-erp-server/internal/auth"
	"github.com/hshy1839/seongji-erp-server/internal/cache"
	"github.com/hshy1839/seongji-erp-server/internal/config"
	"github.com/hshy1839/seongji-erp-server/internal/database"
	"github.com/hshy1839/seongji-erp-server/internal/db"
	"github.com/hshy1839/seongji-erp-server/internal/repositories"
	"github.com/hshy1839/seongji-erp-server/internal/services"
	"github.com/hshy1839/seongji-erp-server/internal/storage"
)

type App struct {
	Cfg     *config.Config
	Log     *logrus.Logger
	Pool    *pgxpool.Pool
	Store   *repositories.Store
	Archive *storage.S3Archive
	JWT     *auth.JWTManager

	Ledger      *services.Ledger
	Ingest      *services.IngestService
	Users       *services.UserService
	Orders      *services.OrderService
	Deliveries  *services.DeliveryService
	Shipments   *services.ShipmentService
	Stocks      *services.StockService
	Shortages   *services.ShortageService
	Productions *services.ProductionService
}

// New connects to PostgreSQL, applies migrations, and builds the services. Redis and the
// upload archive are optional: without Redis uploads lock in-process and lists are not cached.
func New(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("[DB] connected")

	if err := database.NewMigrator(pool, log).RunMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	a := &App{Cfg: cfg, Log: log, Pool: pool, Store: repositories.NewStore(pool), JWT: auth.NewJWTManager(cfg)}

	var locker services.Locker = cache.NewLocalLocker()
	if cfg.Redis.Enabled {
		if err := cache.Init(cfg); err != nil {
			log.WithError(err).Warn("[Redis] unavailable, using in-process upload lock and no list cache")
		} else {
			log.WithField("addr", cfg.Redis.Addr).Info("[Redis] connected")
			locker = cache.NewRedisLocker(cache.GetClient(), cfg.LockTTL(), log)
		}
	}

	if cfg.Archive.Enabled {
		archive, err := storage.NewS3Archive(ctx, cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to init upload archive: %w", err)
		}
		a.Archive = archive
		log.WithField("bucket", cfg.Archive.Bucket).Info("[Archive] enabled")
	}

	a.Ledger = services.NewLedger(log)
	a.Ingest = services.NewIngestService(a.Store, a.Ledger, locker, log, services.IngestDefaults{
		OrderCompany:    cfg.Ingest.DefaultOrderCompany,
		Requester:       cfg.Ingest.DefaultRequester,
		TZOffsetMinutes: cfg.Ingest.TZOffsetMinutes,
		BatchSize:       cfg.Ingest.BatchSize,
	})
	if a.Archive != nil {
		a.Ingest.Archiver = a.Archive
	}
	a.Users = services.NewUserService(a.Store, a.JWT, log)
	a.Orders = services.NewOrderService(a.Store)
	a.Deliveries = services.NewDeliveryService(a.Store, a.Ledger, log)
	a.Shipments = services.NewShipmentService(a.Store, a.Ledger, log)
	a.Stocks = services.NewStockService(a.Store, log)
	a.Shortages = services.NewShortageService(a.Store)
	a.Productions = services.NewProductionService(a.Store)
	return a, nil
}

func (a *App) Close() {
	cache.Close()
	a.Pool.Close()
}
