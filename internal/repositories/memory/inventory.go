package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hshy1839/seongji-erp-server/internal/models"
	"github.com/hshy1839/seongji-erp-server/internal/store"
)

func byDecimal[T any](get func(T) decimal.Decimal) func(a, b T) int {
	return func(a, b T) int { return get(a).Cmp(get(b)) }
}

var stockList = listSpec[models.Stock]{
	partial: map[string]func(models.Stock) string{
		"customer":     func(s models.Stock) string { return s.Customer },
		"carType":      func(s models.Stock) string { return s.CarType },
		"deliveryTo":   func(s models.Stock) string { return s.DeliveryTo },
		"division":     func(s models.Stock) string { return s.Division },
		"partNumber":   func(s models.Stock) string { return s.PartNumber },
		"materialCode": func(s models.Stock) string { return s.MaterialCode },
		"materialName": func(s models.Stock) string { return s.MaterialName },
	},
	exact: map[string]func(models.Stock) string{"uom": func(s models.Stock) string { return s.UOM }},
	search: []func(models.Stock) string{
		func(s models.Stock) string { return s.MaterialCode },
		func(s models.Stock) string { return s.MaterialName },
		func(s models.Stock) string { return s.PartNumber },
		func(s models.Stock) string { return s.Customer },
		func(s models.Stock) string { return s.Remark },
	},
	date: func(s models.Stock) time.Time { return s.UpdatedAt },
	sorts: map[string]func(a, b models.Stock) int{
		"updatedAt":    byTime(func(s models.Stock) time.Time { return s.UpdatedAt }),
		"createdAt":    byTime(func(s models.Stock) time.Time { return s.CreatedAt }),
		"materialCode": byString(func(s models.Stock) string { return s.MaterialCode }),
		"division":     byString(func(s models.Stock) string { return s.Division }),
		"currentQty":   byDecimal(func(s models.Stock) decimal.Decimal { return s.CurrentQty }),
	},
	defaultSort: "-updatedAt",
}

type stockRepo struct{ repos }

func stockKeyTaken(st *state, s *models.Stock) bool {
	_, taken := st.stocks.find(func(x models.Stock) bool { return x.StockKey == s.StockKey && x.ID != s.ID })
	return taken
}

func (r stockRepo) Create(ctx context.Context, s *models.Stock) error {
	return r.do("stocks.Create", func(st *state) error {
		assignID(&s.ID)
		if stockKeyTaken(st, s) {
			return store.ErrConflict
		}
		st.stocks.put(s.ID, *s)
		return nil
	})
}

func (r stockRepo) Get(ctx context.Context, id uuid.UUID) (*models.Stock, error) {
	var out models.Stock
	err := r.do("stocks.Get", func(st *state) (err error) {
		out, err = st.stocks.get(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r stockRepo) Update(ctx context.Context, s *models.Stock) error {
	return r.do("stocks.Update", func(st *state) error {
		if _, err := st.stocks.get(s.ID); err != nil {
			return err
		}
		if stockKeyTaken(st, s) {
			return store.ErrConflict
		}
		st.stocks.put(s.ID, *s)
		return nil
	})
}

func (r stockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.do("stocks.Delete", func(st *state) error { return st.stocks.remove(id) })
}

func (r stockRepo) List(ctx context.Context, q models.ListQuery) ([]models.Stock, int, error) {
	var (
		rows  []models.Stock
		total int
	)
	err := r.do("stocks.List", func(st *state) error {
		rows, total = stockList.apply(st.stocks.all(), q)
		return nil
	})
	return rows, total, err
}

func (r stockRepo) findOne(op string, match func(models.Stock) bool) (*models.Stock, error) {
	var out models.Stock
	err := r.do(op, func(st *state) error {
		s, ok := st.stocks.find(match)
		if !ok {
			return store.ErrNotFound
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r stockRepo) FindByKey(ctx context.Context, key models.StockKey) (*models.Stock, error) {
	return r.findOne("stocks.FindByKey", func(s models.Stock) bool { return s.StockKey == key })
}

func (r stockRepo) FindForItem(ctx context.Context, division, materialCode string) (*models.Stock, error) {
	return r.findOne("stocks.FindForItem", func(s models.Stock) bool {
		return s.Division == division && s.MaterialCode == materialCode
	})
}

func (r stockRepo) ListInconsistent(ctx context.Context) ([]models.Stock, error) {
	var out []models.Stock
	err := r.do("stocks.ListInconsistent", func(st *state) error {
		for _, s := range st.stocks.all() {
			if !s.Consistent() {
				out = append(out, s)
			}
		}
		return nil
	})
	return out, err
}

var shortageList = listSpec[models.ShortageItem]{
	partial: map[string]func(models.ShortageItem) string{
		"division":     func(s models.ShortageItem) string { return s.Division },
		"material":     func(s models.ShortageItem) string { return s.Material },
		"materialCode": func(s models.ShortageItem) string { return s.MaterialCode },
		"supplier":     func(s models.ShortageItem) string { return s.Supplier },
	},
	search: []func(models.ShortageItem) string{
		func(s models.ShortageItem) string { return s.Material },
		func(s models.ShortageItem) string { return s.MaterialCode },
		func(s models.ShortageItem) string { return s.Supplier },
	},
	date: func(s models.ShortageItem) time.Time { return s.UpdatedAt },
	sorts: map[string]func(a, b models.ShortageItem) int{
		"updatedAt":    byTime(func(s models.ShortageItem) time.Time { return s.UpdatedAt }),
		"createdAt":    byTime(func(s models.ShortageItem) time.Time { return s.CreatedAt }),
		"materialCode": byString(func(s models.ShortageItem) string { return s.MaterialCode }),
		"division":     byString(func(s models.ShortageItem) string { return s.Division }),
		"inQty":        byDecimal(func(s models.ShortageItem) decimal.Decimal { return s.InQty }),
		"stockQty":     byDecimal(func(s models.ShortageItem) decimal.Decimal { return s.StockQty }),
	},
	defaultSort: "-updatedAt",
}

type shortageRepo struct{ repos }

func (r shortageRepo) Get(ctx context.Context, id uuid.UUID) (*models.ShortageItem, error) {
	var out models.ShortageItem
	err := r.do("shortages.Get", func(st *state) (err error) {
		out, err = st.shortages.get(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r shortageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.do("shortages.Delete", func(st *state) error { return st.shortages.remove(id) })
}

func (r shortageRepo) List(ctx context.Context, q models.ListQuery) ([]models.ShortageItem, int, error) {
	var (
		rows  []models.ShortageItem
		total int
	)
	err := r.do("shortages.List", func(st *state) error {
		rows, total = shortageList.apply(st.shortages.all(), q)
		return nil
	})
	return rows, total, err
}

func (r shortageRepo) Upsert(ctx context.Context, u *models.ShortageUpsert) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.do("shortages.Upsert", func(st *state) error {
		item, ok := st.shortages.find(func(s models.ShortageItem) bool { return s.ShortageKey == u.ShortageKey })
		if !ok {
			item = models.ShortageItem{ID: uuid.New(), CreatedAt: u.At}
		}
		u.Apply(&item)
		st.shortages.put(item.ID, item)
		id = item.ID
		return nil
	})
	return id, err
}

func (r shortageRepo) DeleteCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var n int64
	err := r.do("shortages.DeleteCreatedBetween", func(st *state) error {
		n = st.shortages.removeWhere(func(s models.ShortageItem) bool { return between(s.CreatedAt, start, end) })
		return nil
	})
	return n, err
}

var productionList = listSpec[models.ProductionItem]{
	partial: map[string]func(models.ProductionItem) string{
		"customer":  func(p models.ProductionItem) string { return p.Customer },
		"carType":   func(p models.ProductionItem) string { return p.CarType },
		"division":  func(p models.ProductionItem) string { return p.Division },
		"productNo": func(p models.ProductionItem) string { return p.ProductNo },
		"partNo":    func(p models.ProductionItem) string { return p.PartNo },
	},
	exact: map[string]func(models.ProductionItem) string{
		"monthKey": func(p models.ProductionItem) string { return p.MonthKey },
	},
	search: []func(models.ProductionItem) string{
		func(p models.ProductionItem) string { return p.PartNo },
		func(p models.ProductionItem) string { return p.ProductNo },
		func(p models.ProductionItem) string { return p.Customer },
		func(p models.ProductionItem) string { return p.CarType },
		func(p models.ProductionItem) string { return p.Remark },
	},
	date: func(p models.ProductionItem) time.Time { return p.UpdatedAt },
	sorts: map[string]func(a, b models.ProductionItem) int{
		"updatedAt":   byTime(func(p models.ProductionItem) time.Time { return p.UpdatedAt }),
		"createdAt":   byTime(func(p models.ProductionItem) time.Time { return p.CreatedAt }),
		"monthKey":    byString(func(p models.ProductionItem) string { return p.MonthKey }),
		"partNo":      byString(func(p models.ProductionItem) string { return p.PartNo }),
		"division":    byString(func(p models.ProductionItem) string { return p.Division }),
		"requiredQty": byDecimal(func(p models.ProductionItem) decimal.Decimal { return p.RequiredQty }),
	},
	defaultSort: "-updatedAt",
}

type productionRepo struct{ repos }

func productionKeyTaken(st *state, p *models.ProductionItem) bool {
	_, taken := st.productions.find(func(x models.ProductionItem) bool {
		return x.ProductionKey == p.ProductionKey && x.ID != p.ID
	})
	return taken
}

func (r productionRepo) Create(ctx context.Context, p *models.ProductionItem) error {
	return r.do("productions.Create", func(st *state) error {
		assignID(&p.ID)
		if productionKeyTaken(st, p) {
			return store.ErrConflict
		}
		st.productions.put(p.ID, copyProduction(*p))
		return nil
	})
}

func (r productionRepo) Get(ctx context.Context, id uuid.UUID) (*models.ProductionItem, error) {
	var out models.ProductionItem
	err := r.do("productions.Get", func(st *state) error {
		p, err := st.productions.get(id)
		out = copyProduction(p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r productionRepo) Update(ctx context.Context, p *models.ProductionItem) error {
	return r.do("productions.Update", func(st *state) error {
		if _, err := st.productions.get(p.ID); err != nil {
			return err
		}
		if productionKeyTaken(st, p) {
			return store.ErrConflict
		}
		st.productions.put(p.ID, copyProduction(*p))
		return nil
	})
}

func (r productionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.do("productions.Delete", func(st *state) error { return st.productions.remove(id) })
}

func (r productionRepo) List(ctx context.Context, q models.ListQuery) ([]models.ProductionItem, int, error) {
	var (
		rows  []models.ProductionItem
		total int
	)
	err := r.do("productions.List", func(st *state) error {
		rows, total = productionList.apply(st.productions.all(), q)
		for i := range rows {
			rows[i] = copyProduction(rows[i])
		}
		return nil
	})
	return rows, total, err
}

func (r productionRepo) ListByMonth(ctx context.Context, monthKey string) ([]models.ProductionItem, error) {
	var out []models.ProductionItem
	err := r.do("productions.ListByMonth", func(st *state) error {
		for _, p := range st.productions.all() {
			if p.MonthKey == monthKey {
				out = append(out, copyProduction(p))
			}
		}
		return nil
	})
	return out, err
}

func upsertProduction(st *state, u *models.ProductionUpsert) uuid.UUID {
	item, ok := st.productions.find(func(p models.ProductionItem) bool { return p.ProductionKey == u.ProductionKey })
	if !ok {
		item = models.ProductionItem{ID: uuid.New(), CreatedAt: u.At}
	}
	item = copyProduction(item)
	u.Apply(&item)
	st.productions.put(item.ID, item)
	return item.ID
}

func (r productionRepo) Upsert(ctx context.Context, u *models.ProductionUpsert) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.do("productions.Upsert", func(st *state) error {
		id = upsertProduction(st, u)
		return nil
	})
	return id, err
}

func (r productionRepo) UpsertMany(ctx context.Context, ups []*models.ProductionUpsert) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.do("productions.UpsertMany", func(st *state) error {
		for _, u := range ups {
			ids = append(ids, upsertProduction(st, u))
		}
		return nil
	})
	return ids, err
}
