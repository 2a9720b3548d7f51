// Package memory is an in-process store.Store used by tests and dry runs.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/store"
)

type state struct {
	orders      *table[models.Order]
	deliveries  *table[models.Delivery]
	shipments   *table[models.Shipment]
	stocks      *table[models.Stock]
	shortages   *table[models.ShortageItem]
	productions *table[models.ProductionItem]
	users       *table[models.User]
}

func newState() *state {
	return &state{
		orders:      newTable[models.Order](),
		deliveries:  newTable[models.Delivery](),
		shipments:   newTable[models.Shipment](),
		stocks:      newTable[models.Stock](),
		shortages:   newTable[models.ShortageItem](),
		productions: newTable[models.ProductionItem](),
		users:       newTable[models.User](),
	}
}

func (s *state) clone() *state {
	return &state{
		orders:      s.orders.clone(same[models.Order]),
		deliveries:  s.deliveries.clone(same[models.Delivery]),
		shipments:   s.shipments.clone(copyShipment),
		stocks:      s.stocks.clone(same[models.Stock]),
		shortages:   s.shortages.clone(same[models.ShortageItem]),
		productions: s.productions.clone(copyProduction),
		users:       s.users.clone(same[models.User]),
	}
}

func same[T any](v T) T { return v }

func copyShipment(s models.Shipment) models.Shipment {
	s.Allocations = append([]models.ShipmentAllocation(nil), s.Allocations...)
	return s
}

func copyProduction(p models.ProductionItem) models.ProductionItem {
	p.Inbounds = append([]models.ProductionInbound(nil), p.Inbounds...)
	return p
}

// Store is a mutex-guarded store.Store. Transactions run serially on a copy of the state that
// replaces the live state only when the callback succeeds.
type Store struct {
	mu     sync.Mutex
	st     *state
	faults map[string]error
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{st: newState(), faults: make(map[string]error)}
}

// FailOn makes every later call of op ("orders.InsertMany", "stocks.Update", ...) return err.
// A nil err clears the fault.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

func (s *Store) WithTx(ctx context.Context, fn func(tx store.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.st.clone()
	if err := fn(repos{s: s, st: draft, inTx: true}); err != nil {
		return err
	}
	s.st = draft
	return nil
}

func (s *Store) view() repos { return repos{s: s} }

func (s *Store) Orders() store.OrderRepository { return s.view().Orders() }
func (s *Store) Deliveries() store.DeliveryRepository { return s.view().Deliveries() }
func (s *Store) Shipments() store.ShipmentRepository { return s.view().Shipments() }
func (s *Store) Stocks() store.StockRepository { return s.view().Stocks() }
func (s *Store) Shortages() store.ShortageRepository { return s.view().Shortages() }
func (s *Store) Productions() store.ProductionRepository { return s.view().Productions() }
func (s *Store) Users() store.UserRepository { return userRepo{s.view()} }

// repos binds repositories either to the live state, locking per call, or to a transaction
// draft whose lock is already held.
type repos struct {
	s    *Store
	st   *state
	inTx bool
}

func (r repos) Orders() store.OrderRepository { return orderRepo{r} }
func (r repos) Deliveries() store.DeliveryRepository { return deliveryRepo{r} }
func (r repos) Shipments() store.ShipmentRepository { return shipmentRepo{r} }
func (r repos) Stocks() store.StockRepository { return stockRepo{r} }
func (r repos) Shortages() store.ShortageRepository { return shortageRepo{r} }
func (r repos) Productions() store.ProductionRepository { return productionRepo{r} }

func (r repos) do(op string, fn func(st *state) error) error {
	if !r.inTx {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
	}
	if err := r.s.faults[op]; err != nil {
		return err
	}
	st := r.st
	if st == nil {
		st = r.s.st
	}
	return fn(st)
}

func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
