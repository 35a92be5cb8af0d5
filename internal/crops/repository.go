package crops

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the crop or a referenced farm does not exist.
var ErrNotFound = errors.New("crops: not found")

// Repository provides PostgreSQL backed persistence for crops and their
// embedded sub-records.
type Repository interface {
	List(ctx context.Context, req ListCropsRequest) ([]Crop, error)
	Get(ctx context.Context, id int64) (*Crop, error)
	Create(ctx context.Context, crop Crop) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	Delete(ctx context.Context, id int64) error
	AddExpense(ctx context.Context, expense Expense) (int64, error)
	AddApplication(ctx context.Context, table string, app Application) (int64, error)
	AddObservation(ctx context.Context, obs Observation) (int64, error)
	SaveFinancials(ctx context.Context, id int64, investment, profit float64) error
	FarmOwner(ctx context.Context, farmID int64) (int64, error)
}

// Application sub-record tables.
const (
	TableFertilizers = "crop_fertilizers"
	TablePesticides  = "crop_pesticides"
)

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const cropColumns = `c.id, c.farm_id, c.owner_id, f.name, c.name, c.variety, c.category, c.field_name,
c.planting_date, c.expected_harvest_date, c.actual_harvest_date, c.growth_stage, c.health_status, c.status,
c.area_value, c.area_unit, c.expected_yield, c.actual_yield, c.yield_unit,
c.revenue_total, c.investment_total, c.profit, c.created_at, c.updated_at`

func scanCrop(row pgx.Row) (*Crop, error) {
	var c Crop
	err := row.Scan(&c.ID, &c.FarmID, &c.OwnerID, &c.FarmName, &c.Name, &c.Variety, &c.Category, &c.FieldName,
		&c.PlantingDate, &c.ExpectedHarvestDate, &c.ActualHarvestDate, &c.GrowthStage, &c.HealthStatus, &c.Status,
		&c.AreaValue, &c.AreaUnit, &c.ExpectedYield, &c.ActualYield, &c.YieldUnit,
		&c.RevenueTotal, &c.InvestmentTotal, &c.Profit, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context, req ListCropsRequest) ([]Crop, error) {
	conditions := []string{"TRUE"}
	var args []any
	argPos := 1

	if req.OwnerID != nil {
		conditions = append(conditions, fmt.Sprintf("c.owner_id = $%d", argPos))
		args = append(args, *req.OwnerID)
		argPos++
	}
	if req.FarmID != nil {
		conditions = append(conditions, fmt.Sprintf("c.farm_id = $%d", argPos))
		args = append(args, *req.FarmID)
		argPos++
	}
	if req.Status != "" {
		conditions = append(conditions, fmt.Sprintf("c.status = $%d", argPos))
		args = append(args, req.Status)
	}

	query := fmt.Sprintf(`SELECT %s FROM crops c JOIN farms f ON f.id = c.farm_id WHERE %s ORDER BY c.created_at DESC`,
		cropColumns, strings.Join(conditions, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var crops []Crop
	for rows.Next() {
		c, err := scanCrop(rows)
		if err != nil {
			return nil, err
		}
		crops = append(crops, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return crops, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Crop, error) {
	crop, err := scanCrop(r.pool.QueryRow(ctx,
		`SELECT `+cropColumns+` FROM crops c JOIN farms f ON f.id = c.farm_id WHERE c.id = $1`, id))
	if err != nil {
		return nil, err
	}

	if crop.Expenses, err = r.listExpenses(ctx, id); err != nil {
		return nil, err
	}
	if crop.Fertilizers, err = r.listApplications(ctx, TableFertilizers, id); err != nil {
		return nil, err
	}
	if crop.Pesticides, err = r.listApplications(ctx, TablePesticides, id); err != nil {
		return nil, err
	}
	if crop.Monitoring, err = r.listObservations(ctx, id); err != nil {
		return nil, err
	}
	return crop, nil
}

func (r *repository) listExpenses(ctx context.Context, cropID int64) ([]Expense, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, crop_id, category, amount, expense_date, notes
FROM crop_expenses WHERE crop_id = $1 ORDER BY expense_date, id`, cropID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var expenses []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.CropID, &e.Category, &e.Amount, &e.Date, &e.Notes); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *repository) listApplications(ctx context.Context, table string, cropID int64) ([]Application, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT id, crop_id, name, kind, target_pest, application_date,
quantity_value, quantity_unit, method, cost FROM %s WHERE crop_id = $1 ORDER BY application_date, id`, table), cropID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var apps []Application
	for rows.Next() {
		var a Application
		if err := rows.Scan(&a.ID, &a.CropID, &a.Name, &a.Kind, &a.TargetPest, &a.ApplicationDate,
			&a.QuantityValue, &a.QuantityUnit, &a.Method, &a.Cost); err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func (r *repository) listObservations(ctx context.Context, cropID int64) ([]Observation, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, crop_id, observed_at, height_cm, health_status, notes
FROM crop_monitoring WHERE crop_id = $1 ORDER BY observed_at, id`, cropID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var observations []Observation
	for rows.Next() {
		var o Observation
		if err := rows.Scan(&o.ID, &o.CropID, &o.ObservedAt, &o.HeightCM, &o.HealthStatus, &o.Notes); err != nil {
			return nil, err
		}
		observations = append(observations, o)
	}
	return observations, rows.Err()
}

func (r *repository) Create(ctx context.Context, crop Crop) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO crops
(farm_id, owner_id, name, variety, category, field_name, planting_date, expected_harvest_date,
 growth_stage, health_status, status, area_value, area_unit, expected_yield, yield_unit,
 revenue_total, investment_total, profit, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, 0, 0, 0, NOW(), NOW())
RETURNING id`,
		crop.FarmID, crop.OwnerID, crop.Name, crop.Variety, crop.Category, crop.FieldName,
		crop.PlantingDate, crop.ExpectedHarvestDate, crop.GrowthStage, crop.HealthStatus, crop.Status,
		crop.AreaValue, crop.AreaUnit, crop.ExpectedYield, crop.YieldUnit).Scan(&id)
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

	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`UPDATE crops SET %s WHERE id = $%d`,
		strings.Join(sets, ", "), argPos), args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM crops WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) AddExpense(ctx context.Context, expense Expense) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO crop_expenses (crop_id, category, amount, expense_date, notes)
VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		expense.CropID, expense.Category, expense.Amount, expense.Date, expense.Notes).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) AddApplication(ctx context.Context, table string, app Application) (int64, error) {
	if table != TableFertilizers && table != TablePesticides {
		return 0, fmt.Errorf("crops: unknown application table %q", table)
	}
	var id int64
	err := r.pool.QueryRow(ctx, fmt.Sprintf(`INSERT INTO %s
(crop_id, name, kind, target_pest, application_date, quantity_value, quantity_unit, method, cost)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`, table),
		app.CropID, app.Name, app.Kind, app.TargetPest, app.ApplicationDate,
		app.QuantityValue, app.QuantityUnit, app.Method, app.Cost).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) AddObservation(ctx context.Context, obs Observation) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO crop_monitoring (crop_id, observed_at, height_cm, health_status, notes)
VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		obs.CropID, obs.ObservedAt, obs.HeightCM, obs.HealthStatus, obs.Notes).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) SaveFinancials(ctx context.Context, id int64, investment, profit float64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE crops SET investment_total = $1, profit = $2, updated_at = NOW() WHERE id = $3`,
		investment, profit, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) FarmOwner(ctx context.Context, farmID int64) (int64, error) {
	var ownerID int64
	err := r.pool.QueryRow(ctx, `SELECT owner_id FROM farms WHERE id = $1 AND is_active`, farmID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return ownerID, nil
}
