package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/hshy1839/seongji-erp-server/internal/models"
)

const stockColumns = `id, customer, car_type, delivery_to, division, part_number, material_code, material_name,
	opening_qty, inbound_qty, used_qty, current_qty, bom_qty_per, uom, remark, last_movement_at, created_at, updated_at`

var stockList = listSpec{
	table:   "stocks",
	columns: stockColumns,
	partial: map[string]string{
		"customer": "customer", "carType": "car_type", "deliveryTo": "delivery_to", "division": "division",
		"partNumber": "part_number", "materialCode": "material_code", "materialName": "material_name",
	},
	exact:      map[string]string{"uom": "uom"},
	search:     []string{"material_code", "material_name", "part_number", "customer", "remark"},
	dateColumn: "updated_at",
	sorts: map[string]string{
		"updatedAt": "updated_at", "createdAt": "created_at", "materialCode": "material_code",
		"currentQty": "current_qty", "division": "division", "lastMovementAt": "last_movement_at",
	},
	defaultSort: "-updatedAt",
}

// StockRepository persists inventory ledger rows.
type StockRepository struct {
	DB   DBTX
	lock bool
}

func NewStockRepository(db DBTX) *StockRepository {
	return &StockRepository{DB: db}
}

func scanStock(row scanner) (*models.Stock, error) {
	var s models.Stock
	err := row.Scan(&s.ID, &s.Customer, &s.CarType, &s.DeliveryTo, &s.Division, &s.PartNumber, &s.MaterialCode,
		&s.MaterialName, &s.OpeningQty, &s.InboundQty, &s.UsedQty, &s.CurrentQty, &s.BomQtyPer, &s.UOM, &s.Remark,
		&s.LastMovementAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func stockValues(s *models.Stock) []any {
	return []any{s.ID, s.Customer, s.CarType, s.DeliveryTo, s.Division, s.PartNumber, s.MaterialCode,
		s.MaterialName, s.OpeningQty, s.InboundQty, s.UsedQty, s.CurrentQty, s.BomQtyPer, s.UOM, s.Remark,
		s.LastMovementAt, s.CreatedAt, s.UpdatedAt}
}

func (r *StockRepository) Create(ctx context.Context, s *models.Stock) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	_, err := r.DB.Exec(ctx,
		`INSERT INTO stocks(`+stockColumns+`)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		stockValues(s)...)
	return conflict(err)
}

func (r *StockRepository) Get(ctx context.Context, id uuid.UUID) (*models.Stock, error) {
	return scanStock(r.DB.QueryRow(ctx, `SELECT `+stockColumns+` FROM stocks WHERE id=$1`+forUpdate(r.lock), id))
}

func (r *StockRepository) Update(ctx context.Context, s *models.Stock) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE stocks SET customer=$2, car_type=$3, delivery_to=$4, division=$5, part_number=$6, material_code=$7,
		 material_name=$8, opening_qty=$9, inbound_qty=$10, used_qty=$11, current_qty=$12, bom_qty_per=$13,
		 uom=$14, remark=$15, last_movement_at=$16, updated_at=$18
		 WHERE id=$1`,
		stockValues(s)...)
	if err != nil {
		return conflict(err)
	}
	return affected(tag)
}

func (r *StockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM stocks WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return affected(tag)
}

func (r *StockRepository) List(ctx context.Context, q models.ListQuery) ([]models.Stock, int, error) {
	query, count, args := stockList.selectSQL(q)
	var total int
	if err := r.DB.QueryRow(ctx, count, args[:len(args)-2]...).Scan(&total); err != nil {
		return nil, 0, err
	}
	stocks, err := r.collect(ctx, query, args...)
	return stocks, total, err
}

func (r *StockRepository) FindByKey(ctx context.Context, key models.StockKey) (*models.Stock, error) {
	return scanStock(r.DB.QueryRow(ctx,
		`SELECT `+stockColumns+` FROM stocks
		 WHERE customer=$1 AND car_type=$2 AND delivery_to=$3 AND division=$4 AND part_number=$5 AND material_code=$6`+
			forUpdate(r.lock),
		key.Customer, key.CarType, key.DeliveryTo, key.Division, key.PartNumber, key.MaterialCode))
}

func (r *StockRepository) FindForItem(ctx context.Context, division, materialCode string) (*models.Stock, error) {
	return scanStock(r.DB.QueryRow(ctx,
		`SELECT `+stockColumns+` FROM stocks
		 WHERE division=$1 AND material_code=$2
		 ORDER BY created_at, id
		 LIMIT 1`+forUpdate(r.lock),
		division, materialCode))
}

func (r *StockRepository) ListInconsistent(ctx context.Context) ([]models.Stock, error) {
	return r.collect(ctx,
		`SELECT `+stockColumns+` FROM stocks
		 WHERE current_qty <> opening_qty + inbound_qty - used_qty
		 ORDER BY division, material_code`)
}

func (r *StockRepository) collect(ctx context.Context, query string, args ...any) ([]models.Stock, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stocks []models.Stock
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, err
		}
		stocks = append(stocks, *s)
	}
	return stocks, rows.Err()
}
