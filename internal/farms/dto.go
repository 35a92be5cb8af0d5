package farms

// CreateFarmRequest carries the fields a caller may set on creation.
type CreateFarmRequest struct {
	Name             string   `json:"name" validate:"required,max=200"`
	Address          string   `json:"address" validate:"required,max=300"`
	Latitude         float64  `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude        float64  `json:"longitude" validate:"gte=-180,lte=180"`
	Region           *string  `json:"region,omitempty" validate:"omitempty,max=100"`
	AreaValue        float64  `json:"area_value" validate:"gte=0"`
	AreaUnit         string   `json:"area_unit" validate:"omitempty,oneof=acres hectares square_meters square_feet"`
	SoilType         string   `json:"soil_type" validate:"required,oneof=clay sandy loam silt peat chalk"`
	SoilPH           *float64 `json:"soil_ph,omitempty" validate:"omitempty,gte=0,lte=14"`
	IrrigationSystem string   `json:"irrigation_system" validate:"omitempty,oneof=drip sprinkler surface subsurface manual none"`
	OrganicCertified bool     `json:"organic_certified"`
	Notes            *string  `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// UpdateFarmRequest is the explicit allow-list of mutable farm fields.
// Ownership and identity fields are deliberately absent.
type UpdateFarmRequest struct {
	Name             *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Address          *string  `json:"address,omitempty" validate:"omitempty,max=300"`
	Latitude         *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude        *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Region           *string  `json:"region,omitempty" validate:"omitempty,max=100"`
	AreaValue        *float64 `json:"area_value,omitempty" validate:"omitempty,gte=0"`
	AreaUnit         *string  `json:"area_unit,omitempty" validate:"omitempty,oneof=acres hectares square_meters square_feet"`
	SoilType         *string  `json:"soil_type,omitempty" validate:"omitempty,oneof=clay sandy loam silt peat chalk"`
	SoilPH           *float64 `json:"soil_ph,omitempty" validate:"omitempty,gte=0,lte=14"`
	IrrigationSystem *string  `json:"irrigation_system,omitempty" validate:"omitempty,oneof=drip sprinkler surface subsurface manual none"`
	OrganicCertified *bool    `json:"organic_certified,omitempty"`
	Notes            *string  `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// FieldRequest creates or updates a field sub-record.
type FieldRequest struct {
	Name          string  `json:"name" validate:"required,max=100"`
	AreaValue     float64 `json:"area_value" validate:"gte=0"`
	AreaUnit      string  `json:"area_unit" validate:"omitempty,oneof=acres hectares square_meters square_feet"`
	CurrentCropID *int64  `json:"current_crop_id,omitempty"`
}

// ListFarmsRequest scopes a farm listing.
type ListFarmsRequest struct {
	OwnerID *int64
	Search  string
	Page    int
	PerPage int
}
