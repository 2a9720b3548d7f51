package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hshy1839/seongji-erp-server/internal/models"
)

const shortageColumns = `id, division, material, material_code, supplier, in_qty, stock_qty, created_at, updated_at`

var shortageList = listSpec{
	table:   "shortage_items",
	columns: shortageColumns,
	partial: map[string]string{
		"division": "division", "material": "material", "materialCode": "material_code", "supplier": "supplier",
	},
	search:     []string{"material", "material_code", "supplier"},
	dateColumn: "updated_at",
	sorts: map[string]string{
		"updatedAt": "updated_at", "createdAt": "created_at", "materialCode": "material_code",
		"division": "division", "inQty": "in_qty", "stockQty": "stock_qty",
	},
	defaultSort: "-updatedAt",
}

// ShortageRepository wraps each upsert in a savepoint when bound to a transaction, so a failed
// row leaves the transaction usable for the rows after it.
type ShortageRepository struct {
	DB        DBTX
	savepoint bool
}

func NewShortageRepository(db DBTX) *ShortageRepository {
	return &ShortageRepository{DB: db}
}

func scanShortage(row scanner) (*models.ShortageItem, error) {
	var s models.ShortageItem
	err := row.Scan(&s.ID, &s.Division, &s.Material, &s.MaterialCode, &s.Supplier, &s.InQty, &s.StockQty,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *ShortageRepository) Get(ctx context.Context, id uuid.UUID) (*models.ShortageItem, error) {
	return scanShortage(r.DB.QueryRow(ctx, `SELECT `+shortageColumns+` FROM shortage_items WHERE id=$1`, id))
}

func (r *ShortageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM shortage_items WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return affected(tag)
}

func (r *ShortageRepository) List(ctx context.Context, q models.ListQuery) ([]models.ShortageItem, int, error) {
	query, count, args := shortageList.selectSQL(q)
	var total int
	if err := r.DB.QueryRow(ctx, count, args[:len(args)-2]...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []models.ShortageItem
	for rows.Next() {
		s, err := scanShortage(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *s)
	}
	return items, total, rows.Err()
}

// Upsert writes the row of u's key. Nil fields keep the stored value, or zero on insert.
func (r *ShortageRepository) Upsert(ctx context.Context, u *models.ShortageUpsert) (uuid.UUID, error) {
	if !r.savepoint {
		return r.upsert(ctx, u)
	}
	if _, err := r.DB.Exec(ctx, `SAVEPOINT shortage_upsert`); err != nil {
		return uuid.Nil, fmt.Errorf("failed to set savepoint: %w", err)
	}
	id, err := r.upsert(ctx, u)
	if err != nil {
		if _, rbErr := r.DB.Exec(ctx, `ROLLBACK TO SAVEPOINT shortage_upsert`); rbErr != nil {
			return uuid.Nil, fmt.Errorf("%w (rollback to savepoint failed: %v)", err, rbErr)
		}
		return uuid.Nil, err
	}
	if _, err := r.DB.Exec(ctx, `RELEASE SAVEPOINT shortage_upsert`); err != nil {
		return uuid.Nil, fmt.Errorf("failed to release savepoint: %w", err)
	}
	return id, nil
}

func (r *ShortageRepository) upsert(ctx context.Context, u *models.ShortageUpsert) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.DB.QueryRow(ctx,
		`INSERT INTO shortage_items(id, division, material, material_code, supplier, in_qty, stock_qty, created_at, updated_at)
		 VALUES($1, $2, $3, $4, COALESCE($5::text, ''), COALESCE($6::numeric, 0), COALESCE($7::numeric, 0), $8, $8)
		 ON CONFLICT ON CONSTRAINT shortage_items_key DO UPDATE SET
		   supplier   = COALESCE($5::text, shortage_items.supplier),
		   in_qty     = COALESCE($6::numeric, shortage_items.in_qty),
		   stock_qty  = COALESCE($7::numeric, shortage_items.stock_qty),
		   updated_at = $8
		 RETURNING id`,
		uuid.New(), u.Division, u.Material, u.MaterialCode, u.Supplier, u.InQty, u.StockQty, u.At,
	).Scan(&id)
	return id, err
}

func (r *ShortageRepository) DeleteCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	tag, err := r.DB.Exec(ctx, `DELETE FROM shortage_items WHERE created_at >= $1 AND created_at < $2`, start, end)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
