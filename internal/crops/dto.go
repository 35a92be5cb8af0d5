package crops

import "time"

// CreateCropRequest carries the fields a caller may set on creation.
type CreateCropRequest struct {
	FarmID              int64     `json:"farm_id" validate:"required,gt=0"`
	Name                string    `json:"name" validate:"required,max=100"`
	Variety             *string   `json:"variety,omitempty" validate:"omitempty,max=100"`
	Category            string    `json:"category" validate:"required,oneof=cereals vegetables fruits legumes oilseeds spices fiber fodder"`
	FieldName           *string   `json:"field_name,omitempty" validate:"omitempty,max=100"`
	PlantingDate        time.Time `json:"planting_date" validate:"required"`
	ExpectedHarvestDate time.Time `json:"expected_harvest_date" validate:"required"`
	AreaValue           float64   `json:"area_value" validate:"gte=0"`
	AreaUnit            string    `json:"area_unit" validate:"omitempty,oneof=acres hectares square_meters"`
	ExpectedYield       *float64  `json:"expected_yield,omitempty" validate:"omitempty,gte=0"`
	YieldUnit           *string   `json:"yield_unit,omitempty" validate:"omitempty,max=20"`
}

// UpdateCropRequest is the explicit allow-list of mutable crop fields.
type UpdateCropRequest struct {
	Name                *string    `json:"name,omitempty" validate:"omitempty,max=100"`
	Variety             *string    `json:"variety,omitempty" validate:"omitempty,max=100"`
	Category            *string    `json:"category,omitempty" validate:"omitempty,oneof=cereals vegetables fruits legumes oilseeds spices fiber fodder"`
	FieldName           *string    `json:"field_name,omitempty" validate:"omitempty,max=100"`
	PlantingDate        *time.Time `json:"planting_date,omitempty"`
	ExpectedHarvestDate *time.Time `json:"expected_harvest_date,omitempty"`
	ActualHarvestDate   *time.Time `json:"actual_harvest_date,omitempty"`
	GrowthStage         *string    `json:"growth_stage,omitempty" validate:"omitempty,oneof=planted germination vegetative flowering fruiting mature harvested"`
	HealthStatus        *string    `json:"health_status,omitempty" validate:"omitempty,oneof=excellent good fair poor diseased"`
	Status              *string    `json:"status,omitempty" validate:"omitempty,oneof=active completed failed"`
	AreaValue           *float64   `json:"area_value,omitempty" validate:"omitempty,gte=0"`
	AreaUnit            *string    `json:"area_unit,omitempty" validate:"omitempty,oneof=acres hectares square_meters"`
	ExpectedYield       *float64   `json:"expected_yield,omitempty" validate:"omitempty,gte=0"`
	ActualYield         *float64   `json:"actual_yield,omitempty" validate:"omitempty,gte=0"`
	YieldUnit           *string    `json:"yield_unit,omitempty" validate:"omitempty,max=20"`
	RevenueTotal        *float64   `json:"revenue_total,omitempty" validate:"omitempty,gte=0"`
}

// AddExpenseRequest appends an expense sub-record.
type AddExpenseRequest struct {
	Category string     `json:"category" validate:"required,oneof=seed fertilizer pesticide labor irrigation harvesting equipment transport other"`
	Amount   float64    `json:"amount" validate:"gte=0"`
	Date     *time.Time `json:"date,omitempty"`
	Notes    *string    `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// AddApplicationRequest appends a fertilizer or pesticide application.
type AddApplicationRequest struct {
	Name            string     `json:"name" validate:"required,max=100"`
	Kind            string     `json:"kind" validate:"required,max=50"`
	TargetPest      *string    `json:"target_pest,omitempty" validate:"omitempty,max=100"`
	ApplicationDate *time.Time `json:"application_date,omitempty"`
	QuantityValue   float64    `json:"quantity_value" validate:"gte=0"`
	QuantityUnit    string     `json:"quantity_unit" validate:"required,max=20"`
	Method          *string    `json:"method,omitempty" validate:"omitempty,max=50"`
	Cost            float64    `json:"cost" validate:"gte=0"`
}

// AddObservationRequest appends a monitoring snapshot.
type AddObservationRequest struct {
	HeightCM     *float64 `json:"height_cm,omitempty" validate:"omitempty,gte=0"`
	HealthStatus string   `json:"health_status" validate:"required,oneof=excellent good fair poor diseased"`
	Notes        *string  `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// ListCropsRequest scopes a crop listing.
type ListCropsRequest struct {
	OwnerID *int64
	FarmID  *int64
	Status  string
}
