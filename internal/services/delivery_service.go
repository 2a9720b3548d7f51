package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/store"
)

// DeliveryService writes deliveries together with their stock bookings.
type DeliveryService struct {
	Store  store.Store
	Ledger *Ledger
	Log    logrus.FieldLogger
	Now    func() time.Time
}

func NewDeliveryService(st store.Store, ledger *Ledger, log logrus.FieldLogger) *DeliveryService {
	return &DeliveryService{Store: st, Ledger: ledger, Log: log, Now: utcNow}
}

func utcNow() time.Time { return time.Now().UTC() }

func (s *DeliveryService) Create(ctx context.Context, req *models.DeliveryRequest, createdBy string) (*models.Delivery, error) {
	const op = "delivery.create"
	if err := Validate(op, req); err != nil {
		return nil, err
	}

	now := s.Now()
	d := &models.Delivery{CreatedBy: createdBy, CreatedAt: now, UpdatedAt: now}
	req.Apply(d)

	err := s.Store.WithTx(ctx, func(tx store.Repositories) error {
		if err := s.Ledger.ApplyDelivery(ctx, tx, d, now, nil); err != nil {
			return err
		}
		return tx.Deliveries().Create(ctx, d)
	})
	if err != nil {
		return nil, classify(op, err)
	}
	return d, nil
}

// Update reverses the stored delivery's booking and books the edited one.
func (s *DeliveryService) Update(ctx context.Context, rawID string, req *models.DeliveryRequest) (*models.Delivery, error) {
	const op = "delivery.update"
	id, err := ParseID(op, rawID)
	if err != nil {
		return nil, err
	}
	if err := Validate(op, req); err != nil {
		return nil, err
	}

	now := s.Now()
	var updated models.Delivery
	err = s.Store.WithTx(ctx, func(tx store.Repositories) error {
		old, err := tx.Deliveries().Get(ctx, id)
		if err != nil {
			return err
		}
		if err := s.Ledger.ReverseDelivery(ctx, tx, old, now, nil); err != nil {
			return err
		}

		updated = *old
		req.Apply(&updated)
		updated.UpdatedAt = now
		if err := s.Ledger.ApplyDelivery(ctx, tx, &updated, now, nil); err != nil {
			return err
		}
		return tx.Deliveries().Update(ctx, &updated)
	})
	if err != nil {
		return nil, classify(op, err)
	}
	return &updated, nil
}

func (s *DeliveryService) Delete(ctx context.Context, rawID string) error {
	const op = "delivery.delete"
	id, err := ParseID(op, rawID)
	if err != nil {
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Repositories) error {
		d, err := tx.Deliveries().Get(ctx, id)
		if err != nil {
			return err
		}
		if err := s.Ledger.ReverseDelivery(ctx, tx, d, s.Now(), nil); err != nil {
			return err
		}
		return tx.Deliveries().Delete(ctx, id)
	})
	return classify(op, err)
}

func (s *DeliveryService) Get(ctx context.Context, rawID string) (*models.Delivery, error) {
	const op = "delivery.get"
	id, err := ParseID(op, rawID)
	if err != nil {
		return nil, err
	}
	d, err := s.Store.Deliveries().Get(ctx, id)
	if err != nil {
		return nil, classify(op, err)
	}
	return d, nil
}

func (s *DeliveryService) List(ctx context.Context, q models.ListQuery) (*models.Page[models.Delivery], error) {
	q.Normalize()
	rows, total, err := s.Store.Deliveries().List(ctx, q)
	if err != nil {
		return nil, classify("delivery.list", err)
	}
	return page(rows, total, q), nil
}

func page[T any](rows []T, total int, q models.ListQuery) *models.Page[T] {
	if rows == nil {
		rows = []T{}
	}
	return &models.Page[T]{OK: true, Total: total, Page: q.Page, Limit: q.Limit, Rows: rows}
}
