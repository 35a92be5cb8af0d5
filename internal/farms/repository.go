package farms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the farm or field does not exist.
var ErrNotFound = errors.New("farms: not found")

// Repository provides PostgreSQL backed persistence for farms.
type Repository interface {
	List(ctx context.Context, req ListFarmsRequest) ([]Farm, int, error)
	Get(ctx context.Context, id int64) (*Farm, error)
	Create(ctx context.Context, farm Farm) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	Delete(ctx context.Context, id int64) error
	AddField(ctx context.Context, field Field) (int64, error)
	UpdateField(ctx context.Context, farmID, fieldID int64, updates map[string]any) error
	CountActiveCrops(ctx context.Context, farmID int64) (int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const farmColumns = `id, owner_id, name, address, latitude, longitude, region, area_value, area_unit,
soil_type, soil_ph, irrigation_system, organic_certified, notes, is_active, created_at, updated_at`

func scanFarm(row pgx.Row) (*Farm, error) {
	var f Farm
	err := row.Scan(&f.ID, &f.OwnerID, &f.Name, &f.Address, &f.Latitude, &f.Longitude, &f.Region,
		&f.AreaValue, &f.AreaUnit, &f.SoilType, &f.SoilPH, &f.IrrigationSystem, &f.OrganicCertified,
		&f.Notes, &f.IsActive, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *repository) List(ctx context.Context, req ListFarmsRequest) ([]Farm, int, error) {
	conditions := []string{"is_active"}
	var args []any
	argPos := 1

	if req.OwnerID != nil {
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", argPos))
		args = append(args, *req.OwnerID)
		argPos++
	}
	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR address ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+req.Search+"%")
		argPos++
	}
	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM farms WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	perPage := req.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}
	query := fmt.Sprintf(`SELECT %s FROM farms WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		farmColumns, where, argPos, argPos+1)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var farms []Farm
	for rows.Next() {
		f, err := scanFarm(rows)
		if err != nil {
			return nil, 0, err
		}
		farms = append(farms, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return farms, total, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Farm, error) {
	farm, err := scanFarm(r.pool.QueryRow(ctx, `SELECT `+farmColumns+` FROM farms WHERE id = $1 AND is_active`, id))
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, farm_id, name, area_value, area_unit, current_crop_id, last_soil_test, soil_ph
FROM farm_fields WHERE farm_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var fl Field
		if err := rows.Scan(&fl.ID, &fl.FarmID, &fl.Name, &fl.AreaValue, &fl.AreaUnit, &fl.CurrentCropID, &fl.LastSoilTest, &fl.SoilPH); err != nil {
			return nil, err
		}
		farm.Fields = append(farm.Fields, fl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return farm, nil
}

func (r *repository) Create(ctx context.Context, farm Farm) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO farms
(owner_id, name, address, latitude, longitude, region, area_value, area_unit, soil_type, soil_ph,
 irrigation_system, organic_certified, notes, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, TRUE, NOW(), NOW()) RETURNING id`,
		farm.OwnerID, farm.Name, farm.Address, farm.Latitude, farm.Longitude, farm.Region,
		farm.AreaValue, farm.AreaUnit, farm.SoilType, farm.SoilPH, farm.IrrigationSystem,
		farm.OrganicCertified, farm.Notes).Scan(&id)
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

	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`UPDATE farms SET %s WHERE id = $%d AND is_active`,
		strings.Join(sets, ", "), argPos), args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete retires the farm instead of removing the row. Crop and
// inventory history keeps referencing it, so a hard DELETE would trip
// their foreign keys even when nothing active remains.
func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE farms SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) AddField(ctx context.Context, field Field) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO farm_fields (farm_id, name, area_value, area_unit, current_crop_id)
VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		field.FarmID, field.Name, field.AreaValue, field.AreaUnit, field.CurrentCropID).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) UpdateField(ctx context.Context, farmID, fieldID int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	sets := make([]string, 0, len(updates))
	args := make([]any, 0, len(updates)+2)
	argPos := 1
	for col, val := range updates {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, argPos))
		args = append(args, val)
		argPos++
	}
	args = append(args, fieldID, farmID)

	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`UPDATE farm_fields SET %s WHERE id = $%d AND farm_id = $%d`,
		strings.Join(sets, ", "), argPos, argPos+1), args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) CountActiveCrops(ctx context.Context, farmID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM crops WHERE farm_id = $1 AND status = 'active'`, farmID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
