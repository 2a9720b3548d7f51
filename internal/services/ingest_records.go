package services

import (
	"context"
	"math"
	"time"

	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/spreadsheet"
	"github.com/hshy1839/seongji-erp-server/internal/store"
	"github.com/hshy1839/seongji-erp-server/internal/timeutil"
)

// quantity reads a positive whole quantity.
func quantity(r spreadsheet.Row, field string) (int, error) {
	raw := r.Text(field)
	if raw == "" {
		return 0, rowErr("quantity is required")
	}
	q, ok := r.Float(field)
	if !ok {
		return 0, rowErr("invalid quantity %q", raw)
	}
	if q <= 0 || q != math.Trunc(q) {
		return 0, rowErr("quantity must be a positive whole number, got %q", raw)
	}
	return int(q), nil
}

// optionalDate is the zero time for an empty cell and an error for an unparseable one.
func optionalDate(r spreadsheet.Row, field string) (time.Time, error) {
	raw := r.Text(field)
	if raw == "" {
		return time.Time{}, nil
	}
	d, ok := r.Date(field)
	if !ok {
		return time.Time{}, rowErr("invalid %s %q", field, raw)
	}
	return d, nil
}

func rowItem(r spreadsheet.Row) (models.Item, error) {
	it := models.Item{
		ItemCode: r.Text("itemCode"),
		ItemName: r.Text("itemName"),
		Category: r.Text("category"),
		ItemType: r.Text("itemType"),
		CarType:  r.Text("carType"),
		Division: r.Text("division"),
	}
	if it.ItemCode == "" && it.ItemName == "" {
		return it, rowErr("itemCode or itemName is required")
	}
	return it, nil
}

func stampOrder(o *models.Order, now time.Time)       { o.CreatedAt, o.UpdatedAt = now, now }
func stampDelivery(d *models.Delivery, now time.Time) { d.CreatedAt, d.UpdatedAt = now, now }
func stampShipment(s *models.Shipment, now time.Time) { s.CreatedAt, s.UpdatedAt = now, now }

func mapOrder(c *rowContext, r spreadsheet.Row) (models.Order, error) {
	var o models.Order
	item, err := rowItem(r)
	if err != nil {
		return o, err
	}
	if item.Division == "" && (c.Header.Profile.Name == "mobis-simple" || c.Header.Has("division")) {
		return o, rowErr("skip: no division")
	}
	qty, err := quantity(r, "quantity")
	if err != nil {
		return o, err
	}
	date, err := optionalDate(r, "orderDate")
	if err != nil {
		return o, err
	}
	if date.IsZero() {
		date = c.DayDate()
	}

	company := r.Text("orderCompany")
	if company == "" {
		company = c.Opts.DefaultCompany
	}
	if company == "" {
		company = c.Defaults.OrderCompany
	}
	if company == "" {
		return o, rowErr("orderCompany is required")
	}
	requester := r.Text("requester")
	if requester == "" {
		requester = c.Defaults.Requester
	}

	o = models.Order{
		Item:         item,
		OrderCompany: company,
		Quantity:     qty,
		OrderDate:    date,
		Requester:    requester,
		Status:       models.ParseStatus(r.Text("status")),
		Remark:       r.Text("remark"),
	}
	return o, nil
}

func mapDelivery(c *rowContext, r spreadsheet.Row) (models.Delivery, error) {
	var d models.Delivery
	item, err := rowItem(r)
	if err != nil {
		return d, err
	}
	company := r.Text("deliveryCompany")
	if company == "" {
		return d, rowErr("deliveryCompany is required")
	}
	date, err := optionalDate(r, "deliveryDate")
	if err != nil {
		return d, err
	}
	if date.IsZero() {
		return d, rowErr("deliveryDate is required")
	}
	qty, err := quantity(r, "quantity")
	if err != nil {
		return d, err
	}
	requester := r.Text("requester")
	if requester == "" {
		requester = c.Defaults.Requester
	}

	d = models.Delivery{
		Item:            item,
		DeliveryCompany: company,
		Quantity:        qty,
		DeliveryDate:    date,
		Requester:       requester,
		Status:          models.ParseStatus(r.Text("status")),
		Remark:          r.Text("remark"),
		CreatedBy:       c.Opts.CreatedBy,
	}
	return d, nil
}

func mapShipment(c *rowContext, r spreadsheet.Row) (models.Shipment, error) {
	var s models.Shipment
	item, err := rowItem(r)
	if err != nil {
		return s, err
	}
	if item.ItemName == "" {
		item.ItemName = item.ItemCode
	}
	company := r.Text("shippingCompany")
	if company == "" {
		return s, rowErr("shippingCompany is required")
	}
	qty, err := quantity(r, "quantity")
	if err != nil {
		return s, err
	}
	date, err := optionalDate(r, "shippingDate")
	if err != nil {
		return s, err
	}
	if date.IsZero() {
		if c.Opts.DefaultShippingDate == nil {
			return s, rowErr("shippingDate is required")
		}
		date = timeutil.MidnightUTC(*c.Opts.DefaultShippingDate)
	}
	requester := r.Text("requester")
	if requester == "" {
		requester = c.Defaults.Requester
	}

	s = models.Shipment{
		Item:            item,
		ShippingCompany: company,
		Quantity:        qty,
		ShippingDate:    date,
		Requester:       requester,
		Status:          models.ParseStatus(r.Text("status")),
		Remark:          r.Text("remark"),
	}
	return s, nil
}

// IngestOrders replaces today's uploaded orders with the sheet's rows.
func (s *IngestService) IngestOrders(ctx context.Context, data []byte, filename string, opts IngestOptions) (*models.IngestReport, error) {
	return runInsert(ctx, s, insertPlan[models.Order]{
		resource: "orders",
		schema:   orderSchema(),
		mapRow:   mapOrder,
		repo:     func(tx store.Repositories) store.Batch[models.Order] { return tx.Orders() },
		stamp:    stampOrder,
	}, data, filename, opts)
}

// IngestDeliveries replaces today's uploaded deliveries and moves their quantities between
// stock rows accordingly.
func (s *IngestService) IngestDeliveries(ctx context.Context, data []byte, filename string, opts IngestOptions) (*models.IngestReport, error) {
	return runInsert(ctx, s, insertPlan[models.Delivery]{
		resource: "deliveries",
		schema:   deliverySchema(),
		mapRow:   mapDelivery,
		repo:     func(tx store.Repositories) store.Batch[models.Delivery] { return tx.Deliveries() },
		stamp:    stampDelivery,
		reverse: func(ctx context.Context, tx store.Repositories, old []models.Delivery, now time.Time, out *models.LedgerOutcome) error {
			for i := range old {
				if err := s.Ledger.ReverseDelivery(ctx, tx, &old[i], now, out); err != nil {
					return err
				}
			}
			return nil
		},
		apply: func(ctx context.Context, tx store.Repositories, recs []models.Delivery, now time.Time, out *models.LedgerOutcome) error {
			for i := range recs {
				if err := s.Ledger.ApplyDelivery(ctx, tx, &recs[i], now, out); err != nil {
					return err
				}
			}
			return nil
		},
	}, data, filename, opts)
}

// IngestShipments replaces today's uploaded shipments, giving back their order allocations and
// allocating the new rows.
func (s *IngestService) IngestShipments(ctx context.Context, data []byte, filename string, opts IngestOptions) (*models.IngestReport, error) {
	var waive []string
	if opts.DefaultShippingDate != nil {
		waive = []string{"shippingDate"}
	}
	return runInsert(ctx, s, insertPlan[models.Shipment]{
		resource: "shipments",
		schema:   shipmentSchema(),
		waive:    waive,
		mapRow:   mapShipment,
		repo:     func(tx store.Repositories) store.Batch[models.Shipment] { return tx.Shipments() },
		stamp:    stampShipment,
		reverse: func(ctx context.Context, tx store.Repositories, old []models.Shipment, now time.Time, out *models.LedgerOutcome) error {
			for i := range old {
				if err := s.Ledger.ReverseShipment(ctx, tx, &old[i], now, out); err != nil {
					return err
				}
			}
			return nil
		},
		apply: func(ctx context.Context, tx store.Repositories, recs []models.Shipment, now time.Time, out *models.LedgerOutcome) error {
			for i := range recs {
				if err := s.Ledger.ApplyShipment(ctx, tx, &recs[i], now, out); err != nil {
					return err
				}
			}
			return nil
		},
	}, data, filename, opts)
}
