package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hshy1839/seongji-erp-server/internal/store"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type scanner interface {
	Scan(dest ...any) error
}

// Store is the PostgreSQL record store.
type Store struct {
	DB *pgxpool.Pool
	repos
}

type repos struct {
	orders      *OrderRepository
	deliveries  *DeliveryRepository
	shipments   *ShipmentRepository
	stocks      *StockRepository
	shortages   *ShortageRepository
	productions *ProductionRepository
}

var _ store.Store = (*Store)(nil)

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db, repos: newRepos(db, false)}
}

// Rows read inside a transaction are locked with FOR UPDATE by the lookups that feed a write.
func newRepos(db DBTX, inTx bool) repos {
	return repos{
		orders:      &OrderRepository{DB: db, lock: inTx},
		deliveries:  &DeliveryRepository{DB: db, lock: inTx},
		shipments:   &ShipmentRepository{DB: db, lock: inTx},
		stocks:      &StockRepository{DB: db, lock: inTx},
		shortages:   &ShortageRepository{DB: db, savepoint: inTx},
		productions: &ProductionRepository{DB: db, lock: inTx},
	}
}

func (r repos) Orders() store.OrderRepository { return r.orders }
func (r repos) Deliveries() store.DeliveryRepository { return r.deliveries }
func (r repos) Shipments() store.ShipmentRepository { return r.shipments }
func (r repos) Stocks() store.StockRepository { return r.stocks }
func (r repos) Shortages() store.ShortageRepository { return r.shortages }
func (r repos) Productions() store.ProductionRepository { return r.productions }

func (s *Store) Users() store.UserRepository {
	return NewUserRepository(s.DB)
}

// WithTx runs fn inside a transaction, committing only when fn succeeds.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Repositories) error) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(newRepos(tx, true)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func forUpdate(lock bool) string {
	if lock {
		return " FOR UPDATE"
	}
	return ""
}

// notFound maps pgx.ErrNoRows onto store.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// conflict maps unique violations onto store.ErrConflict.
func conflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", store.ErrConflict, pgErr.ConstraintName)
	}
	return err
}

func affected(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
