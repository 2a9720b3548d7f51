package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hshy1839/seongji-erp-server/internal/models"
)

const deliveryColumns = `id, item_code, item_name, category, item_type, car_type, division, order_id, stock_id,
	delivery_company, quantity, delivery_date, requester, status, remark, created_by, created_at, updated_at`

var deliveryCopyColumns = []string{"id", "item_code", "item_name", "category", "item_type", "car_type", "division",
	"order_id", "stock_id", "delivery_company", "quantity", "delivery_date", "requester", "status", "remark",
	"created_by", "created_at", "updated_at"}

var deliveryList = listSpec{
	table:   "deliveries",
	columns: deliveryColumns,
	partial: map[string]string{
		"itemCode": "item_code", "itemName": "item_name", "category": "category", "itemType": "item_type",
		"carType": "car_type", "division": "division", "deliveryCompany": "delivery_company",
		"requester": "requester", "createdBy": "created_by",
	},
	exact:      map[string]string{"status": "status"},
	search:     []string{"item_code", "item_name", "delivery_company", "requester", "remark"},
	dateColumn: "delivery_date",
	sorts: map[string]string{
		"deliveryDate": "delivery_date", "createdAt": "created_at", "quantity": "quantity",
		"itemCode": "item_code", "deliveryCompany": "delivery_company",
	},
	defaultSort: "-deliveryDate",
}

type DeliveryRepository struct {
	DB   DBTX
	lock bool
}

func NewDeliveryRepository(db DBTX) *DeliveryRepository {
	return &DeliveryRepository{DB: db}
}

func scanDelivery(row scanner) (*models.Delivery, error) {
	var d models.Delivery
	err := row.Scan(&d.ID, &d.ItemCode, &d.ItemName, &d.Category, &d.ItemType, &d.CarType, &d.Division,
		&d.OrderID, &d.StockID, &d.DeliveryCompany, &d.Quantity, &d.DeliveryDate, &d.Requester, &d.Status,
		&d.Remark, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func deliveryValues(d *models.Delivery) []any {
	return []any{d.ID, d.ItemCode, d.ItemName, d.Category, d.ItemType, d.CarType, d.Division, d.OrderID, d.StockID,
		d.DeliveryCompany, d.Quantity, d.DeliveryDate, d.Requester, string(d.Status), d.Remark, d.CreatedBy,
		d.CreatedAt, d.UpdatedAt}
}

func (r *DeliveryRepository) Create(ctx context.Context, d *models.Delivery) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	_, err := r.DB.Exec(ctx,
		`INSERT INTO deliveries(`+deliveryColumns+`)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		deliveryValues(d)...)
	return conflict(err)
}

func (r *DeliveryRepository) InsertMany(ctx context.Context, deliveries []models.Delivery) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, len(deliveries))
	rows := make([][]any, len(deliveries))
	for i := range deliveries {
		if deliveries[i].ID == uuid.Nil {
			deliveries[i].ID = uuid.New()
		}
		ids[i] = deliveries[i].ID
		rows[i] = deliveryValues(&deliveries[i])
	}
	if _, err := r.DB.CopyFrom(ctx, pgx.Identifier{"deliveries"}, deliveryCopyColumns, pgx.CopyFromRows(rows)); err != nil {
		return nil, fmt.Errorf("failed to copy deliveries: %w", conflict(err))
	}
	return ids, nil
}

func (r *DeliveryRepository) Get(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	return scanDelivery(r.DB.QueryRow(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE id=$1`+forUpdate(r.lock), id))
}

func (r *DeliveryRepository) Update(ctx context.Context, d *models.Delivery) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE deliveries SET item_code=$2, item_name=$3, category=$4, item_type=$5, car_type=$6, division=$7,
		 order_id=$8, stock_id=$9, delivery_company=$10, quantity=$11, delivery_date=$12, requester=$13,
		 status=$14, remark=$15, created_by=$16, updated_at=$18
		 WHERE id=$1`,
		deliveryValues(d)...)
	if err != nil {
		return err
	}
	return affected(tag)
}

func (r *DeliveryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM deliveries WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return affected(tag)
}

func (r *DeliveryRepository) List(ctx context.Context, q models.ListQuery) ([]models.Delivery, int, error) {
	query, count, args := deliveryList.selectSQL(q)
	var total int
	if err := r.DB.QueryRow(ctx, count, args[:len(args)-2]...).Scan(&total); err != nil {
		return nil, 0, err
	}
	deliveries, err := r.collect(ctx, query, args...)
	return deliveries, total, err
}

func (r *DeliveryRepository) ListCreatedBetween(ctx context.Context, start, end time.Time) ([]models.Delivery, error) {
	return r.collect(ctx,
		`SELECT `+deliveryColumns+` FROM deliveries WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at, id`+forUpdate(r.lock),
		start, end)
}

func (r *DeliveryRepository) DeleteCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	tag, err := r.DB.Exec(ctx, `DELETE FROM deliveries WHERE created_at >= $1 AND created_at < $2`, start, end)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *DeliveryRepository) collect(ctx context.Context, query string, args ...any) ([]models.Delivery, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deliveries []models.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, *d)
	}
	return deliveries, rows.Err()
}
