package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agritrack/agritrack/internal/platform/db"
)

var (
	// ErrNotFound indicates the item does not exist.
	ErrNotFound = errors.New("inventory: not found")
	// ErrInsufficientQuantity rejects a usage larger than the current stock.
	ErrInsufficientQuantity = errors.New("inventory: insufficient quantity")
)

// Repository provides PostgreSQL backed persistence for inventory items.
type Repository interface {
	List(ctx context.Context, req ListItemsRequest) ([]Item, error)
	Get(ctx context.Context, id int64) (*Item, error)
	Create(ctx context.Context, item Item) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	SoftDelete(ctx context.Context, id int64) error
	// ApplyUsage decrements current quantity with a single conditional
	// update and appends the usage record in the same transaction.
	// Returns the remaining quantity.
	ApplyUsage(ctx context.Context, itemID int64, usage Usage) (float64, error)
	// Restock raises current quantity, lifting initial when current
	// would exceed it. Returns the new current quantity.
	Restock(ctx context.Context, itemID int64, qty float64) (float64, error)
	SaveDerived(ctx context.Context, id int64, status string, alerts Alerts) error
	// ListExpiring returns active items carrying an expiry date, for the
	// alert scan job.
	ListExpiring(ctx context.Context, before time.Time) ([]Item, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const itemColumns = `id, owner_id, farm_id, name, category, description,
quantity_current, quantity_initial, quantity_minimum, unit, unit_price, total_cost, currency,
supplier_name, storage_location, purchase_date, expiry_date, batch_number,
status, alert_low_stock, alert_expiring_soon, alert_expired, is_active, created_at, updated_at`

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.OwnerID, &it.FarmID, &it.Name, &it.Category, &it.Description,
		&it.QuantityCurrent, &it.QuantityInitial, &it.QuantityMinimum, &it.Unit, &it.UnitPrice, &it.TotalCost, &it.Currency,
		&it.SupplierName, &it.StorageLocation, &it.PurchaseDate, &it.ExpiryDate, &it.BatchNumber,
		&it.Status, &it.Alerts.LowStock, &it.Alerts.ExpiringSoon, &it.Alerts.Expired, &it.IsActive, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

func (r *repository) List(ctx context.Context, req ListItemsRequest) ([]Item, error) {
	conditions := []string{"is_active"}
	var args []any
	argPos := 1

	if req.OwnerID != nil {
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", argPos))
		args = append(args, *req.OwnerID)
		argPos++
	}
	if req.FarmID != nil {
		conditions = append(conditions, fmt.Sprintf("farm_id = $%d", argPos))
		args = append(args, *req.FarmID)
		argPos++
	}
	if req.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argPos))
		args = append(args, req.Category)
		argPos++
	}
	if req.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, req.Status)
		argPos++
	}
	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+req.Search+"%")
	}

	query := fmt.Sprintf(`SELECT %s FROM inventory_items WHERE %s ORDER BY created_at DESC`,
		itemColumns, strings.Join(conditions, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Item, error) {
	item, err := scanItem(r.pool.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM inventory_items WHERE id = $1 AND is_active`, id))
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, item_id, used_at, quantity, purpose, crop_id, notes, recorded_by
FROM inventory_usage WHERE item_id = $1 ORDER BY used_at, id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var u Usage
		if err := rows.Scan(&u.ID, &u.ItemID, &u.UsedAt, &u.Quantity, &u.Purpose, &u.CropID, &u.Notes, &u.RecordedBy); err != nil {
			return nil, err
		}
		item.Usage = append(item.Usage, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) Create(ctx context.Context, item Item) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO inventory_items
(owner_id, farm_id, name, category, description, quantity_current, quantity_initial, quantity_minimum,
 unit, unit_price, total_cost, currency, supplier_name, storage_location, purchase_date, expiry_date,
 batch_number, status, alert_low_stock, alert_expiring_soon, alert_expired, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, TRUE, NOW(), NOW())
RETURNING id`,
		item.OwnerID, item.FarmID, item.Name, item.Category, item.Description,
		item.QuantityCurrent, item.QuantityInitial, item.QuantityMinimum,
		item.Unit, item.UnitPrice, item.TotalCost, item.Currency, item.SupplierName, item.StorageLocation,
		item.PurchaseDate, item.ExpiryDate, item.BatchNumber,
		item.Status, item.Alerts.LowStock, item.Alerts.ExpiringSoon, item.Alerts.Expired).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	sets := make([]string, 0, len(updates)+1)
	args := make([]any, 0, len(updates)+1)
	argPos := 1
	for col, val := range updates {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, argPos))
		args = append(args, val)
		argPos++
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`UPDATE inventory_items SET %s WHERE id = $%d AND is_active`,
		strings.Join(sets, ", "), argPos), args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE inventory_items SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyUsage's decrement is a single compare-and-set so two concurrent
// usage recordings can never both pass the availability check.
func (r *repository) ApplyUsage(ctx context.Context, itemID int64, usage Usage) (float64, error) {
	var remaining float64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `UPDATE inventory_items
SET quantity_current = quantity_current - $1, updated_at = NOW()
WHERE id = $2 AND is_active AND quantity_current >= $1
RETURNING quantity_current`, usage.Quantity, itemID).Scan(&remaining)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrInsufficientQuantity
			}
			return err
		}
		_, err = tx.Exec(ctx, `INSERT INTO inventory_usage (item_id, used_at, quantity, purpose, crop_id, notes, recorded_by)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			itemID, usage.UsedAt, usage.Quantity, usage.Purpose, usage.CropID, usage.Notes, usage.RecordedBy)
		return err
	})
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

func (r *repository) Restock(ctx context.Context, itemID int64, qty float64) (float64, error) {
	var current float64
	err := r.pool.QueryRow(ctx, `UPDATE inventory_items
SET quantity_current = quantity_current + $1,
    quantity_initial = GREATEST(quantity_initial, quantity_current + $1),
    updated_at = NOW()
WHERE id = $2 AND is_active
RETURNING quantity_current`, qty, itemID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return current, nil
}

func (r *repository) SaveDerived(ctx context.Context, id int64, status string, alerts Alerts) error {
	tag, err := r.pool.Exec(ctx, `UPDATE inventory_items
SET status = $1, alert_low_stock = $2, alert_expiring_soon = $3, alert_expired = $4, updated_at = NOW()
WHERE id = $5 AND is_active`, status, alerts.LowStock, alerts.ExpiringSoon, alerts.Expired, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) ListExpiring(ctx context.Context, before time.Time) ([]Item, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+itemColumns+` FROM inventory_items WHERE is_active AND expiry_date IS NOT NULL AND expiry_date <= $1`, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}
