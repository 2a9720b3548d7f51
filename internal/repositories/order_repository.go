package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hshy1839/seongji-erp-server/internal/models"
)

const orderColumns = `id, item_code, item_name, category, item_type, car_type, division,
	order_company, quantity, order_date, requester, status, remark, created_at, updated_at`

var orderCopyColumns = []string{"id", "item_code", "item_name", "category", "item_type", "car_type", "division",
	"order_company", "quantity", "order_date", "requester", "status", "remark", "created_at", "updated_at"}

var orderList = listSpec{
	table:   "orders",
	columns: orderColumns,
	partial: map[string]string{
		"itemCode": "item_code", "itemName": "item_name", "category": "category", "itemType": "item_type",
		"carType": "car_type", "division": "division", "orderCompany": "order_company", "requester": "requester",
	},
	exact:      map[string]string{"status": "status"},
	search:     []string{"item_code", "item_name", "order_company", "requester", "remark"},
	dateColumn: "order_date",
	sorts: map[string]string{
		"orderDate": "order_date", "createdAt": "created_at", "quantity": "quantity",
		"itemCode": "item_code", "orderCompany": "order_company",
	},
	defaultSort: "-orderDate",
}

type OrderRepository struct {
	DB   DBTX
	lock bool
}

func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{DB: db}
}

func scanOrder(row scanner) (*models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.ItemCode, &o.ItemName, &o.Category, &o.ItemType, &o.CarType, &o.Division,
		&o.OrderCompany, &o.Quantity, &o.OrderDate, &o.Requester, &o.Status, &o.Remark, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func orderValues(o *models.Order) []any {
	return []any{o.ID, o.ItemCode, o.ItemName, o.Category, o.ItemType, o.CarType, o.Division,
		o.OrderCompany, o.Quantity, o.OrderDate, o.Requester, string(o.Status), o.Remark, o.CreatedAt, o.UpdatedAt}
}

func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	_, err := r.DB.Exec(ctx,
		`INSERT INTO orders(`+orderColumns+`) VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		orderValues(o)...)
	return conflict(err)
}

// InsertMany bulk-loads orders with COPY; ids are assigned before the load.
func (r *OrderRepository) InsertMany(ctx context.Context, orders []models.Order) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, len(orders))
	rows := make([][]any, len(orders))
	for i := range orders {
		if orders[i].ID == uuid.Nil {
			orders[i].ID = uuid.New()
		}
		ids[i] = orders[i].ID
		rows[i] = orderValues(&orders[i])
	}
	if _, err := r.DB.CopyFrom(ctx, pgx.Identifier{"orders"}, orderCopyColumns, pgx.CopyFromRows(rows)); err != nil {
		return nil, fmt.Errorf("failed to copy orders: %w", conflict(err))
	}
	return ids, nil
}

func (r *OrderRepository) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`+forUpdate(r.lock), id))
}

func (r *OrderRepository) Update(ctx context.Context, o *models.Order) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE orders SET item_code=$2, item_name=$3, category=$4, item_type=$5, car_type=$6, division=$7,
		 order_company=$8, quantity=$9, order_date=$10, requester=$11, status=$12, remark=$13, updated_at=$15
		 WHERE id=$1`,
		orderValues(o)...)
	if err != nil {
		return err
	}
	return affected(tag)
}

func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return affected(tag)
}

func (r *OrderRepository) List(ctx context.Context, q models.ListQuery) ([]models.Order, int, error) {
	query, count, args := orderList.selectSQL(q)
	var total int
	if err := r.DB.QueryRow(ctx, count, args[:len(args)-2]...).Scan(&total); err != nil {
		return nil, 0, err
	}
	orders, err := r.collect(ctx, query, args...)
	return orders, total, err
}

func (r *OrderRepository) ListCreatedBetween(ctx context.Context, start, end time.Time) ([]models.Order, error) {
	return r.collect(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at, id`+forUpdate(r.lock),
		start, end)
}

func (r *OrderRepository) DeleteCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	tag, err := r.DB.Exec(ctx, `DELETE FROM orders WHERE created_at >= $1 AND created_at < $2`, start, end)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *OrderRepository) FindOpenByItem(ctx context.Context, division, itemCode string) (*models.Order, error) {
	return scanOrder(r.DB.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE division=$1 AND item_code=$2
		 ORDER BY (status = 'WAIT') DESC, order_date, created_at, id
		 LIMIT 1`+forUpdate(r.lock),
		division, itemCode))
}

func (r *OrderRepository) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int, at time.Time) (*models.Order, error) {
	return scanOrder(r.DB.QueryRow(ctx,
		`UPDATE orders SET quantity = quantity + $2, updated_at = $3 WHERE id=$1 RETURNING `+orderColumns,
		id, delta, at))
}

func (r *OrderRepository) collect(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}
