package services

import (
	"context"
	"time"

	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/store"
)

// OrderService is plain CRUD; order quantities otherwise move only through the Ledger.
type OrderService struct {
	Store store.Store
	Now   func() time.Time
}

func NewOrderService(st store.Store) *OrderService {
	return &OrderService{Store: st, Now: utcNow}
}

func (s *OrderService) Create(ctx context.Context, req *models.OrderRequest) (*models.Order, error) {
	const op = "order.create"
	if err := Validate(op, req); err != nil {
		return nil, err
	}
	now := s.Now()
	o := &models.Order{CreatedAt: now, UpdatedAt: now}
	req.Apply(o)
	if err := s.Store.Orders().Create(ctx, o); err != nil {
		return nil, classify(op, err)
	}
	return o, nil
}

func (s *OrderService) Update(ctx context.Context, rawID string, req *models.OrderRequest) (*models.Order, error) {
	const op = "order.update"
	id, err := ParseID(op, rawID)
	if err != nil {
		return nil, err
	}
	if err := Validate(op, req); err != nil {
		return nil, err
	}

	var o *models.Order
	err = s.Store.WithTx(ctx, func(tx store.Repositories) error {
		o, err = tx.Orders().Get(ctx, id)
		if err != nil {
			return err
		}
		req.Apply(o)
		o.UpdatedAt = s.Now()
		return tx.Orders().Update(ctx, o)
	})
	if err != nil {
		return nil, classify(op, err)
	}
	return o, nil
}

func (s *OrderService) Delete(ctx context.Context, rawID string) error {
	const op = "order.delete"
	id, err := ParseID(op, rawID)
	if err != nil {
		return err
	}
	return classify(op, s.Store.Orders().Delete(ctx, id))
}

func (s *OrderService) Get(ctx context.Context, rawID string) (*models.Order, error) {
	const op = "order.get"
	id, err := ParseID(op, rawID)
	if err != nil {
		return nil, err
	}
	o, err := s.Store.Orders().Get(ctx, id)
	if err != nil {
		return nil, classify(op, err)
	}
	return o, nil
}

func (s *OrderService) List(ctx context.Context, q models.ListQuery) (*models.Page[models.Order], error) {
	q.Normalize()
	rows, total, err := s.Store.Orders().List(ctx, q)
	if err != nil {
		return nil, classify("order.list", err)
	}
	return page(rows, total, q), nil
}
