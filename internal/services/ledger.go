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

// Ledger keeps the derived aggregates in step with deliveries and shipments: a delivery adds
// its quantity to a stock row's inbound counter and a shipment draws its quantity down from a
// matching order. Every method runs on the repositories of the caller's transaction.
//
// A missing target is not an error. The movement is counted as unmatched and logged so an
// operator can correct the data later.
type Ledger struct {
	Log logrus.FieldLogger
}

func NewLedger(log logrus.FieldLogger) *Ledger {
	return &Ledger{Log: log}
}

func count(out *models.LedgerOutcome, ledger, action string) {
	metrics.LedgerAdjustments.WithLabelValues(ledger, action).Inc()
	if out == nil {
		return
	}
	switch action {
	case "applied":
		out.Applied++
	case "created":
		out.Created++
	case "reversed":
		out.Reversed++
	case "unmatched":
		out.Unmatched++
	}
}

// ApplyDelivery books d into stock and records the stock row on d.StockID.
func (l *Ledger) ApplyDelivery(ctx context.Context, tx store.Repositories, d *models.Delivery, now time.Time, out *models.LedgerOutcome) error {
	d.StockID = nil
	if d.ItemCode == "" {
		l.Log.WithFields(logrus.Fields{"division": d.Division, "itemName": d.ItemName}).
			Info("[Reconcile] delivery has no item code, stock untouched")
		count(out, "stock", "unmatched")
		return nil
	}

	qty := decimal.NewFromInt(int64(d.Quantity))
	stock, err := tx.Stocks().FindForItem(ctx, d.Division, d.ItemCode)
	switch {
	case errors.Is(err, store.ErrNotFound):
		stock = models.NewStock(models.StockKey{Division: d.Division, MaterialCode: d.ItemCode, CarType: d.CarType}, now)
		stock.MaterialName = d.ItemName
		stock.InboundQty = qty
		stock.Recompute()
		stock.Touch(now)
		if err := tx.Stocks().Create(ctx, stock); err != nil {
			return fmt.Errorf("failed to create stock for %s/%s: %w", d.Division, d.ItemCode, err)
		}
		count(out, "stock", "created")
	case err != nil:
		return fmt.Errorf("failed to find stock for %s/%s: %w", d.Division, d.ItemCode, err)
	default:
		stock.InboundQty = stock.InboundQty.Add(qty)
		stock.Recompute()
		stock.Touch(now)
		if err := tx.Stocks().Update(ctx, stock); err != nil {
			return fmt.Errorf("failed to update stock %s: %w", stock.ID, err)
		}
		count(out, "stock", "applied")
	}

	id := stock.ID
	d.StockID = &id
	l.warnNegativeStock(stock)
	return nil
}

// ReverseDelivery takes d's quantity back out of the stock row it was booked into.
func (l *Ledger) ReverseDelivery(ctx context.Context, tx store.Repositories, d *models.Delivery, now time.Time, out *models.LedgerOutcome) error {
	if d.StockID == nil {
		l.Log.WithField("deliveryId", d.ID).Info("[Reconcile] delivery was never booked into stock, nothing to reverse")
		count(out, "stock", "unmatched")
		return nil
	}

	stock, err := tx.Stocks().Get(ctx, *d.StockID)
	if errors.Is(err, store.ErrNotFound) {
		l.Log.WithFields(logrus.Fields{"deliveryId": d.ID, "stockId": *d.StockID}).
			Info("[Reconcile] stock row of delivery no longer exists, nothing to reverse")
		count(out, "stock", "unmatched")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load stock %s: %w", *d.StockID, err)
	}

	stock.InboundQty = stock.InboundQty.Sub(decimal.NewFromInt(int64(d.Quantity)))
	stock.Recompute()
	stock.Touch(now)
	if err := tx.Stocks().Update(ctx, stock); err != nil {
		return fmt.Errorf("failed to update stock %s: %w", stock.ID, err)
	}
	count(out, "stock", "reversed")
	l.warnNegativeStock(stock)
	return nil
}

func (l *Ledger) warnNegativeStock(s *models.Stock) {
	if s.CurrentQty.IsNegative() || s.InboundQty.IsNegative() {
		l.Log.WithFields(logrus.Fields{
			"stockId":      s.ID,
			"division":     s.Division,
			"materialCode": s.MaterialCode,
			"inboundQty":   s.InboundQty.String(),
			"currentQty":   s.CurrentQty.String(),
		}).Warn("[Reconcile] stock went negative")
	}
}

// ApplyShipment draws s down from the open order of its (division, item code) and records the
// allocation on s.
func (l *Ledger) ApplyShipment(ctx context.Context, tx store.Repositories, s *models.Shipment, now time.Time, out *models.LedgerOutcome) error {
	s.Allocations = nil
	fields := logrus.Fields{"division": s.Division, "itemCode": s.ItemCode, "quantity": s.Quantity}
	if s.ItemCode == "" {
		l.Log.WithFields(fields).Info("[Reconcile] shipment has no item code, no order adjusted")
		count(out, "order", "unmatched")
		return nil
	}

	order, err := tx.Orders().FindOpenByItem(ctx, s.Division, s.ItemCode)
	if errors.Is(err, store.ErrNotFound) {
		l.Log.WithFields(fields).Info("[Reconcile] no matching order for shipment")
		count(out, "order", "unmatched")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find order for %s/%s: %w", s.Division, s.ItemCode, err)
	}

	updated, err := tx.Orders().AdjustQuantity(ctx, order.ID, -s.Quantity, now)
	if err != nil {
		return fmt.Errorf("failed to adjust order %s: %w", order.ID, err)
	}
	s.Allocations = []models.ShipmentAllocation{{OrderID: order.ID, Quantity: s.Quantity}}
	count(out, "order", "applied")

	if updated.Quantity < 0 {
		l.Log.WithFields(fields).WithFields(logrus.Fields{
			"orderId":  updated.ID,
			"quantity": updated.Quantity,
		}).Warn("[Reconcile] order over-shipped")
	}
	return nil
}

// ReverseShipment gives every allocation of s back to its order and clears the allocations.
func (l *Ledger) ReverseShipment(ctx context.Context, tx store.Repositories, s *models.Shipment, now time.Time, out *models.LedgerOutcome) error {
	if len(s.Allocations) == 0 {
		count(out, "order", "unmatched")
		return nil
	}
	for _, a := range s.Allocations {
		_, err := tx.Orders().AdjustQuantity(ctx, a.OrderID, a.Quantity, now)
		if errors.Is(err, store.ErrNotFound) {
			l.Log.WithFields(logrus.Fields{"shipmentId": s.ID, "orderId": a.OrderID}).
				Info("[Reconcile] allocated order no longer exists, nothing to give back")
			count(out, "order", "unmatched")
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to restore order %s: %w", a.OrderID, err)
		}
		count(out, "order", "reversed")
	}
	s.Allocations = nil
	return nil
}
