// Package store declares the persistence contract shared by the PostgreSQL repositories and the
// in-memory store used in tests.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hshy1839/seongji-erp-server/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record with the same key already exists")
)

// Batch is the insert-many and upload-day surface of a resource filled by spreadsheet uploads.
type Batch[T any] interface {
	InsertMany(ctx context.Context, records []T) ([]uuid.UUID, error)
	ListCreatedBetween(ctx context.Context, start, end time.Time) ([]T, error)
	DeleteCreatedBetween(ctx context.Context, start, end time.Time) (int64, error)
}

type OrderRepository interface {
	Batch[models.Order]
	Create(ctx context.Context, o *models.Order) error
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Update(ctx context.Context, o *models.Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q models.ListQuery) ([]models.Order, int, error)
	// FindOpenByItem returns the order a shipment of (division, itemCode) is booked against:
	// waiting orders first, then the oldest order date.
	FindOpenByItem(ctx context.Context, division, itemCode string) (*models.Order, error)
	// AdjustQuantity adds delta to the order's quantity.
	AdjustQuantity(ctx context.Context, id uuid.UUID, delta int, at time.Time) (*models.Order, error)
}

type DeliveryRepository interface {
	Batch[models.Delivery]
	Create(ctx context.Context, d *models.Delivery) error
	Get(ctx context.Context, id uuid.UUID) (*models.Delivery, error)
	Update(ctx context.Context, d *models.Delivery) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q models.ListQuery) ([]models.Delivery, int, error)
}

type ShipmentRepository interface {
	Batch[models.Shipment]
	Create(ctx context.Context, s *models.Shipment) error
	Get(ctx context.Context, id uuid.UUID) (*models.Shipment, error)
	Update(ctx context.Context, s *models.Shipment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q models.ListQuery) ([]models.Shipment, int, error)
}

type StockRepository interface {
	Create(ctx context.Context, s *models.Stock) error
	Get(ctx context.Context, id uuid.UUID) (*models.Stock, error)
	Update(ctx context.Context, s *models.Stock) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q models.ListQuery) ([]models.Stock, int, error)
	FindByKey(ctx context.Context, key models.StockKey) (*models.Stock, error)
	// FindForItem returns the oldest stock row of (division, materialCode).
	FindForItem(ctx context.Context, division, materialCode string) (*models.Stock, error)
	ListInconsistent(ctx context.Context) ([]models.Stock, error)
}

type ShortageRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*models.ShortageItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q models.ListQuery) ([]models.ShortageItem, int, error)
	Upsert(ctx context.Context, u *models.ShortageUpsert) (uuid.UUID, error)
	DeleteCreatedBetween(ctx context.Context, start, end time.Time) (int64, error)
}

type ProductionRepository interface {
	Create(ctx context.Context, p *models.ProductionItem) error
	Get(ctx context.Context, id uuid.UUID) (*models.ProductionItem, error)
	Update(ctx context.Context, p *models.ProductionItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q models.ListQuery) ([]models.ProductionItem, int, error)
	ListByMonth(ctx context.Context, monthKey string) ([]models.ProductionItem, error)
	Upsert(ctx context.Context, u *models.ProductionUpsert) (uuid.UUID, error)
	// UpsertMany writes ups as one bulk write and returns their ids in order. It is all or
	// nothing: on error no row of ups was written.
	UpsertMany(ctx context.Context, ups []*models.ProductionUpsert) ([]uuid.UUID, error)
}

type UserRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
}

// Repositories is the set of resource repositories bound to one connection or transaction.
type Repositories interface {
	Orders() OrderRepository
	Deliveries() DeliveryRepository
	Shipments() ShipmentRepository
	Stocks() StockRepository
	Shortages() ShortageRepository
	Productions() ProductionRepository
}

// Store is the persistent record store.
type Store interface {
	Repositories
	Users() UserRepository
	// WithTx runs fn in one transaction. Writes made through tx commit only when fn returns nil.
	WithTx(ctx context.Context, fn func(tx Repositories) error) error
}
