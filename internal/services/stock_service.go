package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/hshy1839/seongji-erp-server/internal/metrics"
	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/store"
)

// StockService owns every write to stock rows outside the Ledger. Each write path recomputes
// the current quantity before saving.
type StockService struct {
	Store store.Store
	Log   logrus.FieldLogger
	Now   func() time.Time
}

func NewStockService(st store.Store, log logrus.FieldLogger) *StockService {
	return &StockService{Store: st, Log: log, Now: utcNow}
}

func (s *StockService) Create(ctx context.Context, req *models.StockRequest) (*models.Stock, error) {
	const op = "stock.create"
	if req.MaterialCode == "" {
		return nil, &Error{Kind: KindValidation, Op: op, Err: errors.New("materialCode is required")}
	}
	stock := models.NewStock(req.StockKey, s.Now())
	req.Apply(stock)
	if err := s.Store.Stocks().Create(ctx, stock); err != nil {
		return nil, classify(op, err)
	}
	return stock, nil
}

// Update applies a direct edit. Nil quantities keep their stored values.
func (s *StockService) Update(ctx context.Context, rawID string, req *models.StockRequest) (*models.Stock, error) {
	const op = "stock.update"
	id, err := ParseID(op, rawID)
	if err != nil {
		return nil, err
	}

	var stock *models.Stock
	err = s.Store.WithTx(ctx, func(tx store.Repositories) error {
		stock, err = tx.Stocks().Get(ctx, id)
		if err != nil {
			return err
		}
		if req.MaterialCode == "" {
			req.StockKey = stock.StockKey
		}
		req.Apply(stock)
		stock.UpdatedAt = s.Now()
		return tx.Stocks().Update(ctx, stock)
	})
	if err != nil {
		return nil, classify(op, err)
	}
	return stock, nil
}

// Upsert writes the row of req's key, creating it when missing.
func (s *StockService) Upsert(ctx context.Context, req *models.StockRequest) (*models.Stock, error) {
	const op = "stock.upsert"
	if req.MaterialCode == "" {
		return nil, &Error{Kind: KindValidation, Op: op, Err: errors.New("materialCode is required")}
	}
	var stock *models.Stock
	err := s.Store.WithTx(ctx, func(tx store.Repositories) (err error) {
		stock, err = upsertStock(ctx, tx, req, s.Now())
		return err
	})
	if err != nil {
		return nil, classify(op, err)
	}
	return stock, nil
}

func upsertStock(ctx context.Context, tx store.Repositories, req *models.StockRequest, now time.Time) (*models.Stock, error) {
	stock, err := tx.Stocks().FindByKey(ctx, req.StockKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
		stock = models.NewStock(req.StockKey, now)
		req.Apply(stock)
		stock.Touch(now)
		return stock, tx.Stocks().Create(ctx, stock)
	case err != nil:
		return nil, err
	}
	req.Apply(stock)
	stock.Touch(now)
	return stock, tx.Stocks().Update(ctx, stock)
}

// AddInbound adds qty to the inbound counter of the key's row.
func (s *StockService) AddInbound(ctx context.Context, mv *models.StockMovement) (*models.Stock, error) {
	return s.move(ctx, "stock.inbound", mv, func(st *models.Stock, qty decimal.Decimal) {
		st.InboundQty = st.InboundQty.Add(qty)
	})
}

// ConsumeByProduction adds qty to the used counter of the key's row.
func (s *StockService) ConsumeByProduction(ctx context.Context, mv *models.StockMovement) (*models.Stock, error) {
	return s.move(ctx, "stock.consume", mv, func(st *models.Stock, qty decimal.Decimal) {
		st.UsedQty = st.UsedQty.Add(qty)
	})
}

func (s *StockService) move(ctx context.Context, op string, mv *models.StockMovement, apply func(*models.Stock, decimal.Decimal)) (*models.Stock, error) {
	if mv.MaterialCode == "" {
		return nil, &Error{Kind: KindValidation, Op: op, Err: errors.New("materialCode is required")}
	}
	if !mv.Quantity.IsPositive() {
		return nil, &Error{Kind: KindValidation, Op: op, Err: errors.New("quantity must be positive")}
	}

	now := s.Now()
	var stock *models.Stock
	err := s.Store.WithTx(ctx, func(tx store.Repositories) error {
		var err error
		stock, err = tx.Stocks().FindByKey(ctx, mv.StockKey)
		create := errors.Is(err, store.ErrNotFound)
		if create {
			stock = models.NewStock(mv.StockKey, now)
			stock.MaterialName = mv.MaterialName
		} else if err != nil {
			return err
		}

		apply(stock, mv.Quantity)
		stock.Recompute()
		stock.Touch(now)
		if create {
			return tx.Stocks().Create(ctx, stock)
		}
		return tx.Stocks().Update(ctx, stock)
	})
	if err != nil {
		return nil, classify(op, err)
	}
	if stock.CurrentQty.IsNegative() {
		s.Log.WithFields(logrus.Fields{"stockId": stock.ID, "currentQty": stock.CurrentQty.String()}).
			Warn("[Stock] current quantity went negative")
	}
	return stock, nil
}

func (s *StockService) Delete(ctx context.Context, rawID string) error {
	const op = "stock.delete"
	id, err := ParseID(op, rawID)
	if err != nil {
		return err
	}
	return classify(op, s.Store.Stocks().Delete(ctx, id))
}

func (s *StockService) Get(ctx context.Context, rawID string) (*models.Stock, error) {
	const op = "stock.get"
	id, err := ParseID(op, rawID)
	if err != nil {
		return nil, err
	}
	stock, err := s.Store.Stocks().Get(ctx, id)
	if err != nil {
		return nil, classify(op, err)
	}
	return stock, nil
}

func (s *StockService) List(ctx context.Context, q models.ListQuery) (*models.Page[models.Stock], error) {
	q.Normalize()
	rows, total, err := s.Store.Stocks().List(ctx, q)
	if err != nil {
		return nil, classify("stock.list", err)
	}
	return page(rows, total, q), nil
}

// AuditCurrentQty rewrites every row whose stored current quantity drifted from its counters
// and returns how many were repaired.
func (s *StockService) AuditCurrentQty(ctx context.Context) (int, error) {
	const op = "stock.audit"
	repaired := 0
	err := s.Store.WithTx(ctx, func(tx store.Repositories) error {
		drifted, err := tx.Stocks().ListInconsistent(ctx)
		if err != nil {
			return err
		}
		for i := range drifted {
			st := &drifted[i]
			was := st.CurrentQty
			st.Recompute()
			st.UpdatedAt = s.Now()
			if err := tx.Stocks().Update(ctx, st); err != nil {
				return fmt.Errorf("failed to repair stock %s: %w", st.ID, err)
			}
			s.Log.WithFields(logrus.Fields{
				"stockId": st.ID,
				"was":     was.String(),
				"now":     st.CurrentQty.String(),
			}).Warn("[Stock] repaired drifted current quantity")
			repaired++
		}
		return nil
	})
	if err != nil {
		return 0, classify(op, err)
	}
	metrics.StockAuditRepairs.Add(float64(repaired))
	return repaired, nil
}
