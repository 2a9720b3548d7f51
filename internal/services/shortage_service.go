package services

import (
	"context"
	"time"

	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/store"
)

type ShortageService struct {
	Store store.Store
	Now   func() time.Time
}

func NewShortageService(st store.Store) *ShortageService {
	return &ShortageService{Store: st, Now: utcNow}
}

// Upsert writes the row of u's key and returns it.
func (s *ShortageService) Upsert(ctx context.Context, u *models.ShortageUpsert) (*models.ShortageItem, error) {
	const op = "shortage.upsert"
	if err := Validate(op, u); err != nil {
		return nil, err
	}
	u.At = s.Now()
	id, err := s.Store.Shortages().Upsert(ctx, u)
	if err != nil {
		return nil, classify(op, err)
	}
	item, err := s.Store.Shortages().Get(ctx, id)
	if err != nil {
		return nil, classify(op, err)
	}
	return item, nil
}

func (s *ShortageService) Get(ctx context.Context, rawID string) (*models.ShortageItem, error) {
	const op = "shortage.get"
	id, err := ParseID(op, rawID)
	if err != nil {
		return nil, err
	}
	item, err := s.Store.Shortages().Get(ctx, id)
	if err != nil {
		return nil, classify(op, err)
	}
	return item, nil
}

func (s *ShortageService) Delete(ctx context.Context, rawID string) error {
	const op = "shortage.delete"
	id, err := ParseID(op, rawID)
	if err != nil {
		return err
	}
	return classify(op, s.Store.Shortages().Delete(ctx, id))
}

func (s *ShortageService) List(ctx context.Context, q models.ListQuery) (*models.Page[models.ShortageItem], error) {
	q.Normalize()
	rows, total, err := s.Store.Shortages().List(ctx, q)
	if err != nil {
		return nil, classify("shortage.list", err)
	}
	return page(rows, total, q), nil
}
