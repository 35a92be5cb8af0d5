package weather

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoSnapshot means no stored observation matched the coordinate.
var ErrNoSnapshot = errors.New("weather: no snapshot")

// Repository stores weather snapshots in PostgreSQL.
type Repository interface {
	// FindFresh returns the newest snapshot for a coordinate fetched at
	// or after since.
	FindFresh(ctx context.Context, lat, lon float64, since time.Time) (*Snapshot, error)
	// Latest returns the newest snapshot for a coordinate regardless of age.
	Latest(ctx context.Context, lat, lon float64) (*Snapshot, error)
	Insert(ctx context.Context, snap Snapshot) (int64, error)
	// ListRange returns snapshots for a coordinate inside [from, to],
	// newest first, capped at limit.
	ListRange(ctx context.Context, lat, lon float64, from, to time.Time, limit int) ([]Snapshot, error)
	// PurgeOlderThan deletes snapshots fetched before cutoff and reports
	// how many were removed.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const snapshotColumns = `id, latitude, longitude, city, country,
temp_c, feels_like_c, temp_min_c, temp_max_c, humidity, pressure,
wind_speed, wind_direction, visibility_km, cloud_cover, condition, description, fetched_at`

func scanSnapshot(row pgx.Row) (*Snapshot, error) {
	var s Snapshot
	err := row.Scan(&s.ID, &s.Latitude, &s.Longitude, &s.City, &s.Country,
		&s.TempC, &s.FeelsLikeC, &s.TempMinC, &s.TempMaxC, &s.Humidity, &s.Pressure,
		&s.WindSpeed, &s.WindDirection, &s.VisibilityKM, &s.CloudCover, &s.Condition, &s.Description, &s.FetchedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, err
	}
	return &s, nil
}

// Coordinates are matched to four decimal places, roughly ten meters.
const coordinateMatch = `round(latitude::numeric, 4) = round($1::numeric, 4)
AND round(longitude::numeric, 4) = round($2::numeric, 4)`

func (r *repository) FindFresh(ctx context.Context, lat, lon float64, since time.Time) (*Snapshot, error) {
	return scanSnapshot(r.pool.QueryRow(ctx, `SELECT `+snapshotColumns+`
FROM weather_snapshots WHERE `+coordinateMatch+` AND fetched_at >= $3
ORDER BY fetched_at DESC LIMIT 1`, lat, lon, since))
}

func (r *repository) Latest(ctx context.Context, lat, lon float64) (*Snapshot, error) {
	return scanSnapshot(r.pool.QueryRow(ctx, `SELECT `+snapshotColumns+`
FROM weather_snapshots WHERE `+coordinateMatch+`
ORDER BY fetched_at DESC LIMIT 1`, lat, lon))
}

func (r *repository) Insert(ctx context.Context, snap Snapshot) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO weather_snapshots
(latitude, longitude, city, country, temp_c, feels_like_c, temp_min_c, temp_max_c,
 humidity, pressure, wind_speed, wind_direction, visibility_km, cloud_cover, condition, description, fetched_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
RETURNING id`,
		snap.Latitude, snap.Longitude, snap.City, snap.Country,
		snap.TempC, snap.FeelsLikeC, snap.TempMinC, snap.TempMaxC,
		snap.Humidity, snap.Pressure, snap.WindSpeed, snap.WindDirection,
		snap.VisibilityKM, snap.CloudCover, snap.Condition, snap.Description, snap.FetchedAt).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) ListRange(ctx context.Context, lat, lon float64, from, to time.Time, limit int) ([]Snapshot, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+snapshotColumns+`
FROM weather_snapshots WHERE `+coordinateMatch+` AND fetched_at BETWEEN $3 AND $4
ORDER BY fetched_at DESC LIMIT $5`, lat, lon, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, *s)
	}
	return snaps, rows.Err()
}

func (r *repository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM weather_snapshots WHERE fetched_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
