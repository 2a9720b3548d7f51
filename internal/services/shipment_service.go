package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/store"
)

// ShipmentService writes shipments together with the order quantities they draw down.
type ShipmentService struct {
	Store  store.Store
	Ledger *Ledger
	Log    logrus.FieldLogger
	Now    func() time.Time
}

func NewShipmentService(st store.Store, ledger *Ledger, log logrus.FieldLogger) *ShipmentService {
	return &ShipmentService{Store: st, Ledger: ledger, Log: log, Now: utcNow}
}

func (s *ShipmentService) Create(ctx context.Context, req *models.ShipmentRequest) (*models.Shipment, error) {
	const op = "shipment.create"
	if err := Validate(op, req); err != nil {
		return nil, err
	}

	now := s.Now()
	sh := &models.Shipment{CreatedAt: now, UpdatedAt: now}
	req.Apply(sh)

	err := s.Store.WithTx(ctx, func(tx store.Repositories) error {
		if err := s.Ledger.ApplyShipment(ctx, tx, sh, now, nil); err != nil {
			return err
		}
		return tx.Shipments().Create(ctx, sh)
	})
	if err != nil {
		return nil, classify(op, err)
	}
	return sh, nil
}

// Update gives the stored shipment's allocations back before allocating the edited shipment.
func (s *ShipmentService) Update(ctx context.Context, rawID string, req *models.ShipmentRequest) (*models.Shipment, error) {
	const op = "shipment.update"
	id, err := ParseID(op, rawID)
	if err != nil {
		return nil, err
	}
	if err := Validate(op, req); err != nil {
		return nil, err
	}

	now := s.Now()
	var updated models.Shipment
	err = s.Store.WithTx(ctx, func(tx store.Repositories) error {
		old, err := tx.Shipments().Get(ctx, id)
		if err != nil {
			return err
		}
		updated = *old
		if err := s.Ledger.ReverseShipment(ctx, tx, &updated, now, nil); err != nil {
			return err
		}

		req.Apply(&updated)
		updated.UpdatedAt = now
		if err := s.Ledger.ApplyShipment(ctx, tx, &updated, now, nil); err != nil {
			return err
		}
		return tx.Shipments().Update(ctx, &updated)
	})
	if err != nil {
		return nil, classify(op, err)
	}
	return &updated, nil
}

func (s *ShipmentService) Delete(ctx context.Context, rawID string) error {
	const op = "shipment.delete"
	id, err := ParseID(op, rawID)
	if err != nil {
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Repositories) error {
		sh, err := tx.Shipments().Get(ctx, id)
		if err != nil {
			return err
		}
		if err := s.Ledger.ReverseShipment(ctx, tx, sh, s.Now(), nil); err != nil {
			return err
		}
		return tx.Shipments().Delete(ctx, id)
	})
	return classify(op, err)
}

func (s *ShipmentService) Get(ctx context.Context, rawID string) (*models.Shipment, error) {
	const op = "shipment.get"
	id, err := ParseID(op, rawID)
	if err != nil {
		return nil, err
	}
	sh, err := s.Store.Shipments().Get(ctx, id)
	if err != nil {
		return nil, classify(op, err)
	}
	return sh, nil
}

func (s *ShipmentService) List(ctx context.Context, q models.ListQuery) (*models.Page[models.Shipment], error) {
	q.Normalize()
	rows, total, err := s.Store.Shipments().List(ctx, q)
	if err != nil {
		return nil, classify("shipment.list", err)
	}
	return page(rows, total, q), nil
}
