package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/store"
)

var itemFilters = map[string]func(models.Item) string{
	"itemCode": func(i models.Item) string { return i.ItemCode },
	"itemName": func(i models.Item) string { return i.ItemName },
	"category": func(i models.Item) string { return i.Category },
	"itemType": func(i models.Item) string { return i.ItemType },
	"carType":  func(i models.Item) string { return i.CarType },
	"division": func(i models.Item) string { return i.Division },
}

func itemPartial[T any](item func(T) models.Item, extra map[string]func(T) string) map[string]func(T) string {
	out := make(map[string]func(T) string, len(itemFilters)+len(extra))
	for name, get := range itemFilters {
		get := get
		out[name] = func(v T) string { return get(item(v)) }
	}
	for name, get := range extra {
		out[name] = get
	}
	return out
}

var orderList = listSpec[models.Order]{
	partial: itemPartial(func(o models.Order) models.Item { return o.Item }, map[string]func(models.Order) string{
		"orderCompany": func(o models.Order) string { return o.OrderCompany },
		"requester":    func(o models.Order) string { return o.Requester },
	}),
	exact: map[string]func(models.Order) string{"status": func(o models.Order) string { return string(o.Status) }},
	search: []func(models.Order) string{
		func(o models.Order) string { return o.ItemCode },
		func(o models.Order) string { return o.ItemName },
		func(o models.Order) string { return o.OrderCompany },
		func(o models.Order) string { return o.Requester },
		func(o models.Order) string { return o.Remark },
	},
	date: func(o models.Order) time.Time { return o.OrderDate },
	sorts: map[string]func(a, b models.Order) int{
		"orderDate":    byTime(func(o models.Order) time.Time { return o.OrderDate }),
		"createdAt":    byTime(func(o models.Order) time.Time { return o.CreatedAt }),
		"quantity":     byInt(func(o models.Order) int { return o.Quantity }),
		"itemCode":     byString(func(o models.Order) string { return o.ItemCode }),
		"orderCompany": byString(func(o models.Order) string { return o.OrderCompany }),
	},
	defaultSort: "-orderDate",
}

type orderRepo struct{ repos }

func (r orderRepo) Create(ctx context.Context, o *models.Order) error {
	return r.do("orders.Create", func(st *state) error {
		assignID(&o.ID)
		st.orders.put(o.ID, *o)
		return nil
	})
}

func (r orderRepo) InsertMany(ctx context.Context, orders []models.Order) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.do("orders.InsertMany", func(st *state) error {
		for i := range orders {
			assignID(&orders[i].ID)
			st.orders.put(orders[i].ID, orders[i])
			ids = append(ids, orders[i].ID)
		}
		return nil
	})
	return ids, err
}

func (r orderRepo) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var out models.Order
	err := r.do("orders.Get", func(st *state) (err error) {
		out, err = st.orders.get(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r orderRepo) Update(ctx context.Context, o *models.Order) error {
	return r.do("orders.Update", func(st *state) error {
		if _, err := st.orders.get(o.ID); err != nil {
			return err
		}
		st.orders.put(o.ID, *o)
		return nil
	})
}

func (r orderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.do("orders.Delete", func(st *state) error { return st.orders.remove(id) })
}

func (r orderRepo) List(ctx context.Context, q models.ListQuery) ([]models.Order, int, error) {
	var (
		rows  []models.Order
		total int
	)
	err := r.do("orders.List", func(st *state) error {
		rows, total = orderList.apply(st.orders.all(), q)
		return nil
	})
	return rows, total, err
}

func (r orderRepo) ListCreatedBetween(ctx context.Context, start, end time.Time) ([]models.Order, error) {
	var out []models.Order
	err := r.do("orders.ListCreatedBetween", func(st *state) error {
		for _, o := range st.orders.all() {
			if between(o.CreatedAt, start, end) {
				out = append(out, o)
			}
		}
		return nil
	})
	return out, err
}

func (r orderRepo) DeleteCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var n int64
	err := r.do("orders.DeleteCreatedBetween", func(st *state) error {
		n = st.orders.removeWhere(func(o models.Order) bool { return between(o.CreatedAt, start, end) })
		return nil
	})
	return n, err
}

func (r orderRepo) FindOpenByItem(ctx context.Context, division, itemCode string) (*models.Order, error) {
	var best *models.Order
	err := r.do("orders.FindOpenByItem", func(st *state) error {
		for _, o := range st.orders.all() {
			if o.Division != division || o.ItemCode != itemCode {
				continue
			}
			o := o
			if best == nil || openBefore(&o, best) {
				best = &o
			}
		}
		if best == nil {
			return store.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return best, nil
}

// openBefore orders waiting orders first, then by order date. Ties keep insertion order.
func openBefore(a, b *models.Order) bool {
	aw, bw := a.Status == models.StatusWaiting, b.Status == models.StatusWaiting
	if aw != bw {
		return aw
	}
	return a.OrderDate.Before(b.OrderDate)
}

func (r orderRepo) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int, at time.Time) (*models.Order, error) {
	var out models.Order
	err := r.do("orders.AdjustQuantity", func(st *state) error {
		o, err := st.orders.get(id)
		if err != nil {
			return err
		}
		o.Quantity += delta
		o.UpdatedAt = at
		st.orders.put(id, o)
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

var deliveryList = listSpec[models.Delivery]{
	partial: itemPartial(func(d models.Delivery) models.Item { return d.Item }, map[string]func(models.Delivery) string{
		"deliveryCompany": func(d models.Delivery) string { return d.DeliveryCompany },
		"requester":       func(d models.Delivery) string { return d.Requester },
		"createdBy":       func(d models.Delivery) string { return d.CreatedBy },
	}),
	exact: map[string]func(models.Delivery) string{"status": func(d models.Delivery) string { return string(d.Status) }},
	search: []func(models.Delivery) string{
		func(d models.Delivery) string { return d.ItemCode },
		func(d models.Delivery) string { return d.ItemName },
		func(d models.Delivery) string { return d.DeliveryCompany },
		func(d models.Delivery) string { return d.Requester },
		func(d models.Delivery) string { return d.Remark },
	},
	date: func(d models.Delivery) time.Time { return d.DeliveryDate },
	sorts: map[string]func(a, b models.Delivery) int{
		"deliveryDate":    byTime(func(d models.Delivery) time.Time { return d.DeliveryDate }),
		"createdAt":       byTime(func(d models.Delivery) time.Time { return d.CreatedAt }),
		"quantity":        byInt(func(d models.Delivery) int { return d.Quantity }),
		"itemCode":        byString(func(d models.Delivery) string { return d.ItemCode }),
		"deliveryCompany": byString(func(d models.Delivery) string { return d.DeliveryCompany }),
	},
	defaultSort: "-deliveryDate",
}

type deliveryRepo struct{ repos }

func (r deliveryRepo) Create(ctx context.Context, d *models.Delivery) error {
	return r.do("deliveries.Create", func(st *state) error {
		assignID(&d.ID)
		st.deliveries.put(d.ID, *d)
		return nil
	})
}

func (r deliveryRepo) InsertMany(ctx context.Context, deliveries []models.Delivery) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.do("deliveries.InsertMany", func(st *state) error {
		for i := range deliveries {
			assignID(&deliveries[i].ID)
			st.deliveries.put(deliveries[i].ID, deliveries[i])
			ids = append(ids, deliveries[i].ID)
		}
		return nil
	})
	return ids, err
}

func (r deliveryRepo) Get(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	var out models.Delivery
	err := r.do("deliveries.Get", func(st *state) (err error) {
		out, err = st.deliveries.get(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r deliveryRepo) Update(ctx context.Context, d *models.Delivery) error {
	return r.do("deliveries.Update", func(st *state) error {
		if _, err := st.deliveries.get(d.ID); err != nil {
			return err
		}
		st.deliveries.put(d.ID, *d)
		return nil
	})
}

func (r deliveryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.do("deliveries.Delete", func(st *state) error { return st.deliveries.remove(id) })
}

func (r deliveryRepo) List(ctx context.Context, q models.ListQuery) ([]models.Delivery, int, error) {
	var (
		rows  []models.Delivery
		total int
	)
	err := r.do("deliveries.List", func(st *state) error {
		rows, total = deliveryList.apply(st.deliveries.all(), q)
		return nil
	})
	return rows, total, err
}

func (r deliveryRepo) ListCreatedBetween(ctx context.Context, start, end time.Time) ([]models.Delivery, error) {
	var out []models.Delivery
	err := r.do("deliveries.ListCreatedBetween", func(st *state) error {
		for _, d := range st.deliveries.all() {
			if between(d.CreatedAt, start, end) {
				out = append(out, d)
			}
		}
		return nil
	})
	return out, err
}

func (r deliveryRepo) DeleteCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var n int64
	err := r.do("deliveries.DeleteCreatedBetween", func(st *state) error {
		n = st.deliveries.removeWhere(func(d models.Delivery) bool { return between(d.CreatedAt, start, end) })
		return nil
	})
	return n, err
}

var shipmentList = listSpec[models.Shipment]{
	partial: itemPartial(func(s models.Shipment) models.Item { return s.Item }, map[string]func(models.Shipment) string{
		"shippingCompany": func(s models.Shipment) string { return s.ShippingCompany },
		"requester":       func(s models.Shipment) string { return s.Requester },
	}),
	exact: map[string]func(models.Shipment) string{"status": func(s models.Shipment) string { return string(s.Status) }},
	search: []func(models.Shipment) string{
		func(s models.Shipment) string { return s.ItemCode },
		func(s models.Shipment) string { return s.ItemName },
		func(s models.Shipment) string { return s.ShippingCompany },
		func(s models.Shipment) string { return s.Requester },
		func(s models.Shipment) string { return s.Remark },
	},
	date: func(s models.Shipment) time.Time { return s.ShippingDate },
	sorts: map[string]func(a, b models.Shipment) int{
		"shippingDate":    byTime(func(s models.Shipment) time.Time { return s.ShippingDate }),
		"createdAt":       byTime(func(s models.Shipment) time.Time { return s.CreatedAt }),
		"quantity":        byInt(func(s models.Shipment) int { return s.Quantity }),
		"itemCode":        byString(func(s models.Shipment) string { return s.ItemCode }),
		"shippingCompany": byString(func(s models.Shipment) string { return s.ShippingCompany }),
	},
	defaultSort: "-shippingDate",
}

type shipmentRepo struct{ repos }

func (r shipmentRepo) Create(ctx context.Context, s *models.Shipment) error {
	return r.do("shipments.Create", func(st *state) error {
		assignID(&s.ID)
		st.shipments.put(s.ID, copyShipment(*s))
		return nil
	})
}

func (r shipmentRepo) InsertMany(ctx context.Context, shipments []models.Shipment) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.do("shipments.InsertMany", func(st *state) error {
		for i := range shipments {
			assignID(&shipments[i].ID)
			st.shipments.put(shipments[i].ID, copyShipment(shipments[i]))
			ids = append(ids, shipments[i].ID)
		}
		return nil
	})
	return ids, err
}

func (r shipmentRepo) Get(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	var out models.Shipment
	err := r.do("shipments.Get", func(st *state) error {
		s, err := st.shipments.get(id)
		out = copyShipment(s)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r shipmentRepo) Update(ctx context.Context, s *models.Shipment) error {
	return r.do("shipments.Update", func(st *state) error {
		if _, err := st.shipments.get(s.ID); err != nil {
			return err
		}
		st.shipments.put(s.ID, copyShipment(*s))
		return nil
	})
}

func (r shipmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.do("shipments.Delete", func(st *state) error { return st.shipments.remove(id) })
}

func (r shipmentRepo) List(ctx context.Context, q models.ListQuery) ([]models.Shipment, int, error) {
	var (
		rows  []models.Shipment
		total int
	)
	err := r.do("shipments.List", func(st *state) error {
		rows, total = shipmentList.apply(st.shipments.all(), q)
		for i := range rows {
			rows[i] = copyShipment(rows[i])
		}
		return nil
	})
	return rows, total, err
}

func (r shipmentRepo) ListCreatedBetween(ctx context.Context, start, end time.Time) ([]models.Shipment, error) {
	var out []models.Shipment
	err := r.do("shipments.ListCreatedBetween", func(st *state) error {
		for _, s := range st.shipments.all() {
			if between(s.CreatedAt, start, end) {
				out = append(out, copyShipment(s))
			}
		}
		return nil
	})
	return out, err
}

func (r shipmentRepo) DeleteCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var n int64
	err := r.do("shipments.DeleteCreatedBetween", func(st *state) error {
		n = st.shipments.removeWhere(func(s models.Shipment) bool { return between(s.CreatedAt, start, end) })
		return nil
	})
	return n, err
}

type userRepo struct{ repos }

func (r userRepo) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var out models.User
	err := r.do("users.Get", func(st *state) (err error) {
		out, err = st.users.get(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var out models.User
	err := r.do("users.GetByUsername", func(st *state) error {
		u, ok := st.users.find(func(u models.User) bool { return u.Username == username })
		if !ok {
			return store.ErrNotFound
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r userRepo) Create(ctx context.Context, u *models.User) error {
	return r.do("users.Create", func(st *state) error {
		if _, ok := st.users.find(func(x models.User) bool { return x.Username == u.Username }); ok {
			return store.ErrConflict
		}
		assignID(&u.ID)
		if u.Role == "" {
			u.Role = "staff"
		}
		now := time.Now().UTC()
		u.CreatedAt, u.UpdatedAt = now, now
		st.users.put(u.ID, *u)
		return nil
	})
}
