package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/store"
	"github.com/hshy1839/seongji-erp-server/internal/timeutil"
)

type ProductionService struct {
	Store store.Store
	Now   func() time.Time
}

func NewProductionService(st store.Store) *ProductionService {
	return &ProductionService{Store: st, Now: utcNow}
}

func validMonth(op, month string) error {
	if _, err := time.Parse(timeutil.MonthLayout, month); err != nil {
		return &Error{Kind: KindValidation, Op: op, Err: errors.New("month must be YYYY-MM")}
	}
	return nil
}

func (s *ProductionService) Create(ctx context.Context, req *models.ProductionRequest) (*models.ProductionItem, error) {
	const op = "production.create"
	if err := Validate(op, req); err != nil {
		return nil, err
	}
	if err := validMonth(op, req.MonthKey); err != nil {
		return nil, err
	}
	now := s.Now()
	p := &models.ProductionItem{
		ProductionKey: req.ProductionKey,
		RequiredQty:   req.RequiredQty,
		Remark:        req.Remark,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Store.Productions().Create(ctx, p); err != nil {
		return nil, classify(op, err)
	}
	return p, nil
}

func (s *ProductionService) Update(ctx context.Context, rawID string, req *models.ProductionRequest) (*models.ProductionItem, error) {
	const op = "production.update"
	id, err := ParseID(op, rawID)
	if err != nil {
		return nil, err
	}
	if err := Validate(op, req); err != nil {
		return nil, err
	}
	if err := validMonth(op, req.MonthKey); err != nil {
		return nil, err
	}

	var p *models.ProductionItem
	err = s.Store.WithTx(ctx, func(tx store.Repositories) error {
		p, err = tx.Productions().Get(ctx, id)
		if err != nil {
			return err
		}
		p.ProductionKey = req.ProductionKey
		p.RequiredQty = req.RequiredQty
		p.Remark = req.Remark
		p.UpdatedAt = s.Now()
		return tx.Productions().Update(ctx, p)
	})
	if err != nil {
		return nil, classify(op, err)
	}
	return p, nil
}

// AddInbound appends an inbound-adjustment line to the item.
func (s *ProductionService) AddInbound(ctx context.Context, rawID string, line models.ProductionInbound) (*models.ProductionItem, error) {
	const op = "production.inbound"
	id, err := ParseID(op, rawID)
	if err != nil {
		return nil, err
	}
	if line.Quantity.IsNegative() || line.Defects.IsNegative() || line.Loss.IsNegative() || line.Increase.IsNegative() {
		return nil, &Error{Kind: KindValidation, Op: op, Err: errors.New("inbound counts must not be negative")}
	}

	now := s.Now()
	if line.Date.IsZero() {
		line.Date = timeutil.MidnightUTC(now)
	}
	var p *models.ProductionItem
	err = s.Store.WithTx(ctx, func(tx store.Repositories) error {
		p, err = tx.Productions().Get(ctx, id)
		if err != nil {
			return err
		}
		p.Inbounds = append(p.Inbounds, line)
		p.UpdatedAt = now
		return tx.Productions().Update(ctx, p)
	})
	if err != nil {
		return nil, classify(op, err)
	}
	return p, nil
}

func (s *ProductionService) Delete(ctx context.Context, rawID string) error {
	const op = "production.delete"
	id, err := ParseID(op, rawID)
	if err != nil {
		return err
	}
	return classify(op, s.Store.Productions().Delete(ctx, id))
}

func (s *ProductionService) Get(ctx context.Context, rawID string) (*models.ProductionItem, error) {
	const op = "production.get"
	id, err := ParseID(op, rawID)
	if err != nil {
		return nil, err
	}
	p, err := s.Store.Productions().Get(ctx, id)
	if err != nil {
		return nil, classify(op, err)
	}
	return p, nil
}

func (s *ProductionService) List(ctx context.Context, q models.ListQuery) (*models.Page[models.ProductionItem], error) {
	q.Normalize()
	rows, total, err := s.Store.Productions().List(ctx, q)
	if err != nil {
		return nil, classify("production.list", err)
	}
	return page(rows, total, q), nil
}

// MonthlySummary totals a month's items per division, ordered by division.
func (s *ProductionService) MonthlySummary(ctx context.Context, month string) ([]models.ProductionSummary, error) {
	const op = "production.summary"
	if err := validMonth(op, month); err != nil {
		return nil, err
	}
	items, err := s.Store.Productions().ListByMonth(ctx, month)
	if err != nil {
		return nil, classify(op, err)
	}
	return summarize(items), nil
}

func summarize(items []models.ProductionItem) []models.ProductionSummary {
	byDivision := make(map[string]*models.ProductionSummary)
	for i := range items {
		p := &items[i]
		sum, ok := byDivision[p.Division]
		if !ok {
			sum = &models.ProductionSummary{
				Division:    p.Division,
				RequiredQty: decimal.Zero,
				InboundQty:  decimal.Zero,
				DefectsQty:  decimal.Zero,
				StockTotal:  decimal.Zero,
				Shortage:    decimal.Zero,
			}
			byDivision[p.Division] = sum
		}
		sum.Items++
		sum.RequiredQty = sum.RequiredQty.Add(p.RequiredQty)
		sum.InboundQty = sum.InboundQty.Add(p.InboundTotal())
		sum.DefectsQty = sum.DefectsQty.Add(p.DefectsTotal())
		sum.StockTotal = sum.StockTotal.Add(p.StockTotal())
		sum.Shortage = sum.Shortage.Add(p.Shortage())
	}

	out := make([]models.ProductionSummary, 0, len(byDivision))
	for _, sum := range byDivision {
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Division < out[j].Division })
	return out
}
