package analytics

// Dashboard is the landing-page read model.
type Dashboard struct {
	Summary            DashboardSummary `json:"summary"`
	StatusDistribution []StatusCount    `json:"status_distribution"`
	RecentCrops        []RecentCrop     `json:"recent_crops"`
	MonthlyPlantings   []MonthCount     `json:"monthly_plantings"`
}

// DashboardSummary carries the headline counters.
type DashboardSummary struct {
	FarmCount       int64   `json:"farm_count"`
	CropCount       int64   `json:"crop_count"`
	ActiveCropCount int64   `json:"active_crop_count"`
	TotalFarmArea   float64 `json:"total_farm_area"`
}

// StatusCount is one bucket of a categorical distribution.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// RecentCrop is a crop annotated with its farm name for the dashboard feed.
type RecentCrop struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Status    string `json:"status"`
	FarmName  string `json:"farm_name"`
	CreatedAt string `json:"created_at"`
}

// MonthCount is a per-month counter bucket, months ascending.
type MonthCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

// CropReport aggregates crop composition and lifecycle statistics.
type CropReport struct {
	TypeDistribution []CropTypeStat     `json:"type_distribution"`
	GrowthStages     []StatusCount      `json:"growth_stages"`
	HealthStatuses   []StatusCount      `json:"health_statuses"`
	CycleDuration    CycleDurationStats `json:"cycle_duration"`
}

// CropTypeStat is one crop type with its count and cultivated area.
type CropTypeStat struct {
	Name      string  `json:"name"`
	Count     int64   `json:"count"`
	TotalArea float64 `json:"total_area"`
}

// CycleDurationStats covers crops with an actual harvest date.
type CycleDurationStats struct {
	AverageDays float64 `json:"average_days"`
	MinDays     int64   `json:"min_days"`
	MaxDays     int64   `json:"max_days"`
	CropCount   int64   `json:"crop_count"`
}

// FinancialReport aggregates expense and profit figures.
type FinancialReport struct {
	ExpensesByCategory []CategoryExpense  `json:"expenses_by_category"`
	MonthlyFinancials  []MonthlyFinancial `json:"monthly_financials"`
	ProfitAnalysis     ProfitAnalysis     `json:"profit_analysis"`
}

// CategoryExpense is one expense category with its total, highest first.
type CategoryExpense struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int64   `json:"count"`
}

// MonthlyFinancial is one month's expense and revenue bucket.
type MonthlyFinancial struct {
	Month    string  `json:"month"`
	Expenses float64 `json:"expenses"`
	Revenue  float64 `json:"revenue"`
}

// ProfitAnalysis covers completed crops with recorded revenue.
type ProfitAnalysis struct {
	TotalProfit     float64 `json:"total_profit"`
	AverageProfit   float64 `json:"average_profit"`
	TotalRevenue    float64 `json:"total_revenue"`
	TotalInvestment float64 `json:"total_investment"`
	ProfitableCount int64   `json:"profitable_count"`
	CropCount       int64   `json:"crop_count"`
}

// YieldReport aggregates harvest output.
type YieldReport struct {
	ByCropType   []CropYield     `json:"by_crop_type"`
	MonthlyTrend []MonthlyYield  `json:"monthly_trend"`
	TopFarms     []FarmYieldRank `json:"top_farms"`
}

// CropYield summarises actual against expected yield for one crop type.
// Efficiency is avgActual/avgExpected as a percentage; zero when no
// expected yield was recorded.
type CropYield struct {
	Name            string  `json:"name"`
	AverageActual   float64 `json:"average_actual"`
	TotalActual     float64 `json:"total_actual"`
	AverageExpected float64 `json:"average_expected"`
	Efficiency      float64 `json:"efficiency"`
	CropCount       int64   `json:"crop_count"`
}

// MonthlyYield is one month's harvest bucket.
type MonthlyYield struct {
	Month      string  `json:"month"`
	TotalYield float64 `json:"total_yield"`
	CropCount  int64   `json:"crop_count"`
}

// FarmYieldRank is one farm in the top-farms ranking, best average first.
type FarmYieldRank struct {
	FarmID       int64   `json:"farm_id"`
	FarmName     string  `json:"farm_name"`
	AverageYield float64 `json:"average_yield"`
	CropCount    int64   `json:"crop_count"`
}
