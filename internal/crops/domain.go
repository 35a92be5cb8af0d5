package crops

import "time"

// Growth stages in progression order.
const (
	StagePlanted     = "planted"
	StageGermination = "germination"
	StageVegetative  = "vegetative"
	StageFlowering   = "flowering"
	StageFruiting    = "fruiting"
	StageMature      = "mature"
	StageHarvested   = "harvested"
)

// Crop lifecycle statuses.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Crop is the canonical crop record. It belongs to exactly one farm and
// one owning user; expenses, applications and observations are embedded
// sub-records.
type Crop struct {
	ID                  int64      `json:"id"`
	FarmID              int64      `json:"farm_id"`
	OwnerID             int64      `json:"owner_id"`
	FarmName            string     `json:"farm_name,omitempty"`
	Name                string     `json:"name"`
	Variety             *string    `json:"variety,omitempty"`
	Category            string     `json:"category"`
	FieldName           *string    `json:"field_name,omitempty"`
	PlantingDate        time.Time  `json:"planting_date"`
	ExpectedHarvestDate time.Time  `json:"expected_harvest_date"`
	ActualHarvestDate   *time.Time `json:"actual_harvest_date,omitempty"`
	GrowthStage         string     `json:"growth_stage"`
	HealthStatus        string     `json:"health_status"`
	Status              string     `json:"status"`
	AreaValue           float64    `json:"area_value"`
	AreaUnit            string     `json:"area_unit"`
	ExpectedYield       *float64   `json:"expected_yield,omitempty"`
	ActualYield         *float64   `json:"actual_yield,omitempty"`
	YieldUnit           *string    `json:"yield_unit,omitempty"`
	RevenueTotal        float64    `json:"revenue_total"`
	InvestmentTotal     float64    `json:"investment_total"`
	Profit              float64    `json:"profit"`
	Expenses            []Expense  `json:"expenses,omitempty"`
	Fertilizers         []Application `json:"fertilizers,omitempty"`
	Pesticides          []Application `json:"pesticides,omitempty"`
	Monitoring          []Observation `json:"monitoring,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Expense is a dated cost entry against a crop.
type Expense struct {
	ID       int64     `json:"id"`
	CropID   int64     `json:"crop_id"`
	Category string    `json:"category"`
	Amount   float64   `json:"amount"`
	Date     time.Time `json:"date"`
	Notes    *string   `json:"notes,omitempty"`
}

// Application records a fertilizer or pesticide treatment.
type Application struct {
	ID              int64     `json:"id"`
	CropID          int64     `json:"crop_id"`
	Name            string    `json:"name"`
	Kind            string    `json:"kind"`
	TargetPest      *string   `json:"target_pest,omitempty"`
	ApplicationDate time.Time `json:"application_date"`
	QuantityValue   float64   `json:"quantity_value"`
	QuantityUnit    string    `json:"quantity_unit"`
	Method          *string   `json:"method,omitempty"`
	Cost            float64   `json:"cost"`
}

// Observation is a timestamped health and height snapshot.
type Observation struct {
	ID           int64     `json:"id"`
	CropID       int64     `json:"crop_id"`
	ObservedAt   time.Time `json:"observed_at"`
	HeightCM     *float64  `json:"height_cm,omitempty"`
	HealthStatus string    `json:"health_status"`
	Notes        *string   `json:"notes,omitempty"`
}

// investmentCategories are the expense categories counted into the
// investment total; remaining categories still reduce profit.
var investmentCategories = map[string]bool{
	"seed":       true,
	"fertilizer": true,
	"pesticide":  true,
	"labor":      true,
	"irrigation": true,
	"harvesting": true,
}

// RecalculateFinancials refreshes the derived financial fields from the
// embedded expense list and revenue total. Called on every mutation that
// touches money, never on read.
func (c *Crop) RecalculateFinancials() {
	var investment, total float64
	for _, e := range c.Expenses {
		total += e.Amount
		if investmentCategories[e.Category] {
			investment += e.Amount
		}
	}
	c.InvestmentTotal = investment
	c.Profit = c.RevenueTotal - total
}
