package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hshy1839/seongji-erp-server/internal/models"
)

const shipmentColumns = `id, item_code, item_name, category, item_type, car_type, division,
	shipping_company, quantity, shipping_date, requester, status, remark, allocations, created_at, updated_at`

var shipmentCopyColumns = []string{"id", "item_code", "item_name", "category", "item_type", "car_type", "division",
	"shipping_company", "quantity", "shipping_date", "requester", "status", "remark", "allocations",
	"created_at", "updated_at"}

var shipmentList = listSpec{
	table:   "shipments",
	columns: shipmentColumns,
	partial: map[string]string{
		"itemCode": "item_code", "itemName": "item_name", "category": "category", "itemType": "item_type",
		"carType": "car_type", "division": "division", "shippingCompany": "shipping_company",
		"requester": "requester",
	},
	exact:      map[string]string{"status": "status"},
	search:     []string{"item_code", "item_name", "shipping_company", "requester", "remark"},
	dateColumn: "shipping_date",
	sorts: map[string]string{
		"shippingDate": "shipping_date", "createdAt": "created_at", "quantity": "quantity",
		"itemCode": "item_code", "shippingCompany": "shipping_company",
	},
	defaultSort: "-shippingDate",
}

type ShipmentRepository struct {
	DB   DBTX
	lock bool
}

func NewShipmentRepository(db DBTX) *ShipmentRepository {
	return &ShipmentRepository{DB: db}
}

func scanShipment(row scanner) (*models.Shipment, error) {
	var s models.Shipment
	err := row.Scan(&s.ID, &s.ItemCode, &s.ItemName, &s.Category, &s.ItemType, &s.CarType, &s.Division,
		&s.ShippingCompany, &s.Quantity, &s.ShippingDate, &s.Requester, &s.Status, &s.Remark, &s.Allocations,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func shipmentValues(s *models.Shipment) []any {
	allocations := s.Allocations
	if allocations == nil {
		allocations = []models.ShipmentAllocation{}
	}
	return []any{s.ID, s.ItemCode, s.ItemName, s.Category, s.ItemType, s.CarType, s.Division,
		s.ShippingCompany, s.Quantity, s.ShippingDate, s.Requester, string(s.Status), s.Remark, allocations,
		s.CreatedAt, s.UpdatedAt}
}

func (r *ShipmentRepository) Create(ctx context.Context, s *models.Shipment) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	_, err := r.DB.Exec(ctx,
		`INSERT INTO shipments(`+shipmentColumns+`)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		shipmentValues(s)...)
	return conflict(err)
}

func (r *ShipmentRepository) InsertMany(ctx context.Context, shipments []models.Shipment) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, len(shipments))
	rows := make([][]any, len(shipments))
	for i := range shipments {
		if shipments[i].ID == uuid.Nil {
			shipments[i].ID = uuid.New()
		}
		ids[i] = shipments[i].ID
		rows[i] = shipmentValues(&shipments[i])
	}
	if _, err := r.DB.CopyFrom(ctx, pgx.Identifier{"shipments"}, shipmentCopyColumns, pgx.CopyFromRows(rows)); err != nil {
		return nil, fmt.Errorf("failed to copy shipments: %w", conflict(err))
	}
	return ids, nil
}

func (r *ShipmentRepository) Get(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	return scanShipment(r.DB.QueryRow(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE id=$1`+forUpdate(r.lock), id))
}

func (r *ShipmentRepository) Update(ctx context.Context, s *models.Shipment) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE shipments SET item_code=$2, item_name=$3, category=$4, item_type=$5, car_type=$6, division=$7,
		 shipping_company=$8, quantity=$9, shipping_date=$10, requester=$11, status=$12, remark=$13,
		 allocations=$14, updated_at=$16
		 WHERE id=$1`,
		shipmentValues(s)...)
	if err != nil {
		return err
	}
	return affected(tag)
}

func (r *ShipmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM shipments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return affected(tag)
}

func (r *ShipmentRepository) List(ctx context.Context, q models.ListQuery) ([]models.Shipment, int, error) {
	query, count, args := shipmentList.selectSQL(q)
	var total int
	if err := r.DB.QueryRow(ctx, count, args[:len(args)-2]...).Scan(&total); err != nil {
		return nil, 0, err
	}
	shipments, err := r.collect(ctx, query, args...)
	return shipments, total, err
}

func (r *ShipmentRepository) ListCreatedBetween(ctx context.Context, start, end time.Time) ([]models.Shipment, error) {
	return r.collect(ctx,
		`SELECT `+shipmentColumns+` FROM shipments WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at, id`+forUpdate(r.lock),
		start, end)
}

func (r *ShipmentRepository) DeleteCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	tag, err := r.DB.Exec(ctx, `DELETE FROM shipments WHERE created_at >= $1 AND created_at < $2`, start, end)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *ShipmentRepository) collect(ctx context.Context, query string, args ...any) ([]models.Shipment, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shipments []models.Shipment
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		shipments = append(shipments, *s)
	}
	return shipments, rows.Err()
}
