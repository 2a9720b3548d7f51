package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hshy1839/seongji-erp-server/internal/models"
)

const productionColumns = `id, month_key, customer, car_type, division, product_no, part_no, required_qty, remark,
	inbounds, created_at, updated_at`

var productionList = listSpec{
	table:   "production_items",
	columns: productionColumns,
	partial: map[string]string{
		"customer": "customer", "carType": "car_type", "division": "division",
		"productNo": "product_no", "partNo": "part_no",
	},
	exact:      map[string]string{"monthKey": "month_key"},
	search:     []string{"part_no", "product_no", "customer", "car_type", "remark"},
	dateColumn: "updated_at",
	sorts: map[string]string{
		"updatedAt": "updated_at", "createdAt": "created_at", "monthKey": "month_key", "partNo": "part_no",
		"division": "division", "requiredQty": "required_qty",
	},
	defaultSort: "-updatedAt",
}

type ProductionRepository struct {
	DB   DBTX
	lock bool
}

func NewProductionRepository(db DBTX) *ProductionRepository {
	return &ProductionRepository{DB: db}
}

func scanProduction(row scanner) (*models.ProductionItem, error) {
	var p models.ProductionItem
	err := row.Scan(&p.ID, &p.MonthKey, &p.Customer, &p.CarType, &p.Division, &p.ProductNo, &p.PartNo,
		&p.RequiredQty, &p.Remark, &p.Inbounds, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func productionValues(p *models.ProductionItem) []any {
	inbounds := p.Inbounds
	if inbounds == nil {
		inbounds = []models.ProductionInbound{}
	}
	return []any{p.ID, p.MonthKey, p.Customer, p.CarType, p.Division, p.ProductNo, p.PartNo, p.RequiredQty,
		p.Remark, inbounds, p.CreatedAt, p.UpdatedAt}
}

func (r *ProductionRepository) Create(ctx context.Context, p *models.ProductionItem) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.DB.Exec(ctx,
		`INSERT INTO production_items(`+productionColumns+`) VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		productionValues(p)...)
	return conflict(err)
}

func (r *ProductionRepository) Get(ctx context.Context, id uuid.UUID) (*models.ProductionItem, error) {
	return scanProduction(r.DB.QueryRow(ctx,
		`SELECT `+productionColumns+` FROM production_items WHERE id=$1`+forUpdate(r.lock), id))
}

func (r *ProductionRepository) Update(ctx context.Context, p *models.ProductionItem) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE production_items SET month_key=$2, customer=$3, car_type=$4, division=$5, product_no=$6, part_no=$7,
		 required_qty=$8, remark=$9, inbounds=$10, updated_at=$12
		 WHERE id=$1`,
		productionValues(p)...)
	if err != nil {
		return conflict(err)
	}
	return affected(tag)
}

func (r *ProductionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM production_items WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return affected(tag)
}

func (r *ProductionRepository) List(ctx context.Context, q models.ListQuery) ([]models.ProductionItem, int, error) {
	query, count, args := productionList.selectSQL(q)
	var total int
	if err := r.DB.QueryRow(ctx, count, args[:len(args)-2]...).Scan(&total); err != nil {
		return nil, 0, err
	}
	items, err := r.collect(ctx, query, args...)
	return items, total, err
}

func (r *ProductionRepository) ListByMonth(ctx context.Context, monthKey string) ([]models.ProductionItem, error) {
	return r.collect(ctx,
		`SELECT `+productionColumns+` FROM production_items WHERE month_key=$1 ORDER BY division, part_no, id`,
		monthKey)
}

const productionUpsertSQL = `INSERT INTO production_items(id, month_key, customer, car_type, division, product_no, part_no,
   required_qty, remark, created_at, updated_at)
 VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
 ON CONFLICT ON CONSTRAINT production_items_key DO UPDATE SET
   required_qty = CASE WHEN $11::boolean
                       THEN production_items.required_qty + EXCLUDED.required_qty
                       ELSE EXCLUDED.required_qty END,
   remark       = CASE WHEN EXCLUDED.remark = '' THEN production_items.remark ELSE EXCLUDED.remark END,
   updated_at   = $10
 RETURNING id`

func productionUpsertArgs(u *models.ProductionUpsert) []any {
	return []any{uuid.New(), u.MonthKey, u.Customer, u.CarType, u.Division, u.ProductNo, u.PartNo,
		u.RequiredQty, u.Remark, u.At, u.Mode == models.ProductionIncrement}
}

// Upsert writes the required quantity of u's key, adding to the stored value in INC mode.
func (r *ProductionRepository) Upsert(ctx context.Context, u *models.ProductionUpsert) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.DB.QueryRow(ctx, productionUpsertSQL, productionUpsertArgs(u)...).Scan(&id)
	return id, err
}

// UpsertMany sends every upsert in one round trip. The statements share one implicit
// transaction, so any failure leaves the whole batch unwritten.
func (r *ProductionRepository) UpsertMany(ctx context.Context, ups []*models.ProductionUpsert) ([]uuid.UUID, error) {
	b := &pgx.Batch{}
	for _, u := range ups {
		b.Queue(productionUpsertSQL, productionUpsertArgs(u)...)
	}
	results := r.DB.SendBatch(ctx, b)
	defer results.Close()

	ids := make([]uuid.UUID, len(ups))
	for i := range ups {
		if err := results.QueryRow().Scan(&ids[i]); err != nil {
			return nil, fmt.Errorf("failed to upsert batch row %d: %w", i+1, err)
		}
	}
	if err := results.Close(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *ProductionRepository) collect(ctx context.Context, query string, args ...any) ([]models.ProductionItem, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.ProductionItem
	for rows.Next() {
		p, err := scanProduction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}
