package farms

import "time"

// Soil classifications accepted for a farm.
const (
	SoilClay  = "clay"
	SoilSandy = "sandy"
	SoilLoam  = "loam"
	SoilSilt  = "silt"
	SoilPeat  = "peat"
	SoilChalk = "chalk"
)

// Farm is the canonical farm record. One owner, many fields.
type Farm struct {
	ID               int64     `json:"id"`
	OwnerID          int64     `json:"owner_id"`
	Name             string    `json:"name"`
	Address          string    `json:"address"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	Region           *string   `json:"region,omitempty"`
	AreaValue        float64   `json:"area_value"`
	AreaUnit         string    `json:"area_unit"`
	SoilType         string    `json:"soil_type"`
	SoilPH           *float64  `json:"soil_ph,omitempty"`
	IrrigationSystem string    `json:"irrigation_system"`
	OrganicCertified bool      `json:"organic_certified"`
	Notes            *string   `json:"notes,omitempty"`
	Fields           []Field   `json:"fields"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Field is a sub-plot of a farm, optionally planted with a crop.
type Field struct {
	ID            int64    `json:"id"`
	FarmID        int64    `json:"farm_id"`
	Name          string   `json:"name"`
	AreaValue     float64  `json:"area_value"`
	AreaUnit      string   `json:"area_unit"`
	CurrentCropID *int64   `json:"current_crop_id,omitempty"`
	LastSoilTest  *string  `json:"last_soil_test,omitempty"`
	SoilPH        *float64 `json:"soil_ph,omitempty"`
}
