package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Filter scopes every analytics query. A nil OwnerID means no owner
// restriction (admin view); a nil FarmID spans all farms. CropName
// narrows the yield queries to one crop type and is ignored elsewhere.
// Since is the inclusive lower bound of the requested window.
type Filter struct {
	OwnerID  *int64
	FarmID   *int64
	CropName string
	Since    time.Time
}

// Repository runs the aggregation queries the read models are built from.
type Repository interface {
	FarmSummary(ctx context.Context, f Filter) (farmCount int64, totalArea float64, err error)
	CropCounts(ctx context.Context, f Filter) (total, active int64, err error)
	StatusDistribution(ctx context.Context, f Filter) ([]StatusCount, error)
	RecentCrops(ctx context.Context, f Filter, limit int) ([]RecentCrop, error)
	MonthlyPlantings(ctx context.Context, f Filter) ([]MonthCount, error)
	TypeDistribution(ctx context.Context, f Filter) ([]CropTypeStat, error)
	GrowthStageDistribution(ctx context.Context, f Filter) ([]StatusCount, error)
	HealthDistribution(ctx context.Context, f Filter) ([]StatusCount, error)
	CycleDuration(ctx context.Context, f Filter) (CycleDurationStats, error)
	ExpensesByCategory(ctx context.Context, f Filter) ([]CategoryExpense, error)
	MonthlyFinancials(ctx context.Context, f Filter) ([]MonthlyFinancial, error)
	ProfitAnalysis(ctx context.Context, f Filter) (ProfitAnalysis, error)
	YieldByCropType(ctx context.Context, f Filter) ([]CropYield, error)
	MonthlyYieldTrend(ctx context.Context, f Filter) ([]MonthlyYield, error)
	TopFarmsByYield(ctx context.Context, f Filter, limit int) ([]FarmYieldRank, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository over the shared pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// scopeClause renders the owner and farm restrictions against a crops
// table with the given column prefix ("" or "c."), appending arguments
// as it goes. The returned clause always starts with " AND" so it can
// be spliced into a WHERE chain.
func scopeClause(f Filter, prefix string, args *[]any) string {
	var clause string
	if f.OwnerID != nil {
		*args = append(*args, *f.OwnerID)
		clause += fmt.Sprintf(" AND %sowner_id = $%d", prefix, len(*args))
	}
	if f.FarmID != nil {
		*args = append(*args, *f.FarmID)
		clause += fmt.Sprintf(" AND %sfarm_id = $%d", prefix, len(*args))
	}
	return clause
}

// cropNameClause narrows yield queries to one crop type.
func cropNameClause(f Filter, prefix string, args *[]any) string {
	if f.CropName == "" {
		return ""
	}
	*args = append(*args, f.CropName)
	return fmt.Sprintf(" AND lower(%sname) = lower($%d)", prefix, len(*args))
}

func (r *repository) FarmSummary(ctx context.Context, f Filter) (int64, float64, error) {
	args := []any{}
	query := `SELECT COUNT(*), COALESCE(SUM(area_value), 0) FROM farms WHERE is_active`
	if f.OwnerID != nil {
		args = append(args, *f.OwnerID)
		query += fmt.Sprintf(` AND owner_id = $%d`, len(args))
	}
	if f.FarmID != nil {
		args = append(args, *f.FarmID)
		query += fmt.Sprintf(` AND id = $%d`, len(args))
	}
	var count int64
	var area float64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count, &area); err != nil {
		return 0, 0, err
	}
	return count, area, nil
}

// CropCounts and StatusDistribution cover the owner's whole history.
// Only the monthly planting buckets are cut to the requested window.
func (r *repository) CropCounts(ctx context.Context, f Filter) (int64, int64, error) {
	args := []any{}
	query := `SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'active')
FROM crops WHERE TRUE` + scopeClause(f, "", &args)
	var total, active int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total, &active); err != nil {
		return 0, 0, err
	}
	return total, active, nil
}

func (r *repository) StatusDistribution(ctx context.Context, f Filter) ([]StatusCount, error) {
	args := []any{}
	query := `SELECT status, COUNT(*) FROM crops WHERE TRUE` +
		scopeClause(f, "", &args) +
		` GROUP BY status ORDER BY COUNT(*) DESC`
	return scanStatusCounts(r.pool, ctx, query, args)
}

func (r *repository) RecentCrops(ctx context.Context, f Filter, limit int) ([]RecentCrop, error) {
	args := []any{}
	query := `SELECT c.id, c.name, c.category, c.status, f.name, to_char(c.created_at, 'YYYY-MM-DD')
FROM crops c JOIN farms f ON f.id = c.farm_id WHERE TRUE` +
		scopeClause(f, "c.", &args)
	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY c.created_at DESC LIMIT $%d`, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RecentCrop
	for rows.Next() {
		var rc RecentCrop
		if err := rows.Scan(&rc.ID, &rc.Name, &rc.Category, &rc.Status, &rc.FarmName, &rc.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

func (r *repository) MonthlyPlantings(ctx context.Context, f Filter) ([]MonthCount, error) {
	args := []any{f.Since}
	query := `SELECT to_char(date_trunc('month', planting_date), 'YYYY-MM') AS month, COUNT(*)
FROM crops WHERE planting_date >= $1` + scopeClause(f, "", &args) +
		` GROUP BY month ORDER BY month`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MonthCount
	for rows.Next() {
		var mc MonthCount
		if err := rows.Scan(&mc.Month, &mc.Count); err != nil {
			return nil, err
		}
		out = append(out, mc)
	}
	return out, rows.Err()
}

func (r *repository) TypeDistribution(ctx context.Context, f Filter) ([]CropTypeStat, error) {
	args := []any{f.Since}
	query := `SELECT lower(name), COUNT(*), COALESCE(SUM(area_value), 0)
FROM crops WHERE created_at >= $1` + scopeClause(f, "", &args) +
		` GROUP BY lower(name) ORDER BY COUNT(*) DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CropTypeStat
	for rows.Next() {
		var ct CropTypeStat
		if err := rows.Scan(&ct.Name, &ct.Count, &ct.TotalArea); err != nil {
			return nil, err
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

func (r *repository) GrowthStageDistribution(ctx context.Context, f Filter) ([]StatusCount, error) {
	args := []any{}
	query := `SELECT growth_stage, COUNT(*) FROM crops WHERE status = 'active'` +
		scopeClause(f, "", &args) +
		` GROUP BY growth_stage ORDER BY COUNT(*) DESC`
	return scanStatusCounts(r.pool, ctx, query, args)
}

func (r *repository) HealthDistribution(ctx context.Context, f Filter) ([]StatusCount, error) {
	args := []any{}
	query := `SELECT health_status, COUNT(*) FROM crops WHERE status = 'active'` +
		scopeClause(f, "", &args) +
		` GROUP BY health_status ORDER BY COUNT(*) DESC`
	return scanStatusCounts(r.pool, ctx, query, args)
}

func (r *repository) CycleDuration(ctx context.Context, f Filter) (CycleDurationStats, error) {
	args := []any{f.Since}
	query := `SELECT COALESCE(AVG(actual_harvest_date - planting_date), 0),
COALESCE(MIN(actual_harvest_date - planting_date), 0),
COALESCE(MAX(actual_harvest_date - planting_date), 0),
COUNT(*)
FROM crops WHERE actual_harvest_date IS NOT NULL AND created_at >= $1` +
		scopeClause(f, "", &args)

	var stats CycleDurationStats
	err := r.pool.QueryRow(ctx, query, args...).Scan(&stats.AverageDays, &stats.MinDays, &stats.MaxDays, &stats.CropCount)
	return stats, err
}

func (r *repository) ExpensesByCategory(ctx context.Context, f Filter) ([]CategoryExpense, error) {
	args := []any{f.Since}
	query := `SELECT e.category, COALESCE(SUM(e.amount), 0), COUNT(*)
FROM crop_expenses e JOIN crops c ON c.id = e.crop_id
WHERE e.expense_date >= $1` + scopeClause(f, "c.", &args) +
		` GROUP BY e.category ORDER BY SUM(e.amount) DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CategoryExpense
	for rows.Next() {
		var ce CategoryExpense
		if err := rows.Scan(&ce.Category, &ce.Total, &ce.Count); err != nil {
			return nil, err
		}
		out = append(out, ce)
	}
	return out, rows.Err()
}

func (r *repository) MonthlyFinancials(ctx context.Context, f Filter) ([]MonthlyFinancial, error) {
	args := []any{f.Since}
	owner := scopeClause(f, "c.", &args)
	// Expenses bucket by expense date, revenue by harvest date; a month
	// appears when either side has activity.
	query := `WITH expense_months AS (
	SELECT to_char(date_trunc('month', e.expense_date), 'YYYY-MM') AS month, SUM(e.amount) AS expenses
	FROM crop_expenses e JOIN crops c ON c.id = e.crop_id
	WHERE e.expense_date >= $1` + owner + `
	GROUP BY 1
), revenue_months AS (
	SELECT to_char(date_trunc('month', c.actual_harvest_date), 'YYYY-MM') AS month, SUM(c.revenue_total) AS revenue
	FROM crops c
	WHERE c.actual_harvest_date >= $1` + owner + `
	GROUP BY 1
)
SELECT COALESCE(em.month, rm.month) AS month,
	COALESCE(em.expenses, 0), COALESCE(rm.revenue, 0)
FROM expense_months em FULL OUTER JOIN revenue_months rm ON em.month = rm.month
ORDER BY month`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MonthlyFinancial
	for rows.Next() {
		var mf MonthlyFinancial
		if err := rows.Scan(&mf.Month, &mf.Expenses, &mf.Revenue); err != nil {
			return nil, err
		}
		out = append(out, mf)
	}
	return out, rows.Err()
}

func (r *repository) ProfitAnalysis(ctx context.Context, f Filter) (ProfitAnalysis, error) {
	args := []any{f.Since}
	query := `SELECT COALESCE(SUM(profit), 0), COALESCE(AVG(profit), 0),
COALESCE(SUM(revenue_total), 0), COALESCE(SUM(investment_total), 0),
COUNT(*) FILTER (WHERE profit > 0), COUNT(*)
FROM crops WHERE status = 'completed' AND revenue_total > 0 AND created_at >= $1` +
		scopeClause(f, "", &args)

	var pa ProfitAnalysis
	err := r.pool.QueryRow(ctx, query, args...).Scan(&pa.TotalProfit, &pa.AverageProfit,
		&pa.TotalRevenue, &pa.TotalInvestment, &pa.ProfitableCount, &pa.CropCount)
	return pa, err
}

func (r *repository) YieldByCropType(ctx context.Context, f Filter) ([]CropYield, error) {
	args := []any{f.Since}
	query := `SELECT lower(name),
COALESCE(AVG(actual_yield), 0), COALESCE(SUM(actual_yield), 0),
COALESCE(AVG(expected_yield), 0), COUNT(*)
FROM crops WHERE actual_yield IS NOT NULL AND created_at >= $1` +
		scopeClause(f, "", &args) + cropNameClause(f, "", &args) +
		` GROUP BY lower(name) ORDER BY SUM(actual_yield) DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CropYield
	for rows.Next() {
		var cy CropYield
		if err := rows.Scan(&cy.Name, &cy.AverageActual, &cy.TotalActual, &cy.AverageExpected, &cy.CropCount); err != nil {
			return nil, err
		}
		out = append(out, cy)
	}
	return out, rows.Err()
}

func (r *repository) MonthlyYieldTrend(ctx context.Context, f Filter) ([]MonthlyYield, error) {
	args := []any{f.Since}
	query := `SELECT to_char(date_trunc('month', actual_harvest_date), 'YYYY-MM') AS month,
COALESCE(SUM(actual_yield), 0), COUNT(*)
FROM crops WHERE actual_yield IS NOT NULL AND actual_harvest_date >= $1` +
		scopeClause(f, "", &args) + cropNameClause(f, "", &args) +
		` GROUP BY month ORDER BY month`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MonthlyYield
	for rows.Next() {
		var my MonthlyYield
		if err := rows.Scan(&my.Month, &my.TotalYield, &my.CropCount); err != nil {
			return nil, err
		}
		out = append(out, my)
	}
	return out, rows.Err()
}

func (r *repository) TopFarmsByYield(ctx context.Context, f Filter, limit int) ([]FarmYieldRank, error) {
	args := []any{f.Since}
	query := `SELECT f.id, f.name, COALESCE(AVG(c.actual_yield), 0), COUNT(c.id)
FROM crops c JOIN farms f ON f.id = c.farm_id
WHERE c.actual_yield IS NOT NULL AND c.created_at >= $1` +
		scopeClause(f, "c.", &args) + cropNameClause(f, "c.", &args)
	args = append(args, limit)
	query += fmt.Sprintf(` GROUP BY f.id, f.name ORDER BY AVG(c.actual_yield) DESC LIMIT $%d`, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []FarmYieldRank
	for rows.Next() {
		var fr FarmYieldRank
		if err := rows.Scan(&fr.FarmID, &fr.FarmName, &fr.AverageYield, &fr.CropCount); err != nil {
			return nil, err
		}
		out = append(out, fr)
	}
	return out, rows.Err()
}

func scanStatusCounts(pool *pgxpool.Pool, ctx context.Context, query string, args []any) ([]StatusCount, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StatusCount
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}
