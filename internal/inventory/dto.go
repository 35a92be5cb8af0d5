package inventory

import "time"

// CreateItemRequest carries the fields a caller may set on creation.
// The supplied quantity seeds both current and initial.
type CreateItemRequest struct {
	Name            string     `json:"name" validate:"required,max=100"`
	Category        string     `json:"category" validate:"required,oneof=seed fertilizer pesticide equipment tool other"`
	Description     *string    `json:"description,omitempty" validate:"omitempty,max=500"`
	FarmID          *int64     `json:"farm_id,omitempty"`
	Quantity        float64    `json:"quantity" validate:"gte=0"`
	MinimumQuantity float64    `json:"minimum_quantity" validate:"gte=0"`
	Unit            string     `json:"unit" validate:"required,max=20"`
	UnitPrice       *float64   `json:"unit_price,omitempty" validate:"omitempty,gte=0"`
	Currency        string     `json:"currency" validate:"omitempty,len=3"`
	SupplierName    *string    `json:"supplier_name,omitempty" validate:"omitempty,max=200"`
	StorageLocation *string    `json:"storage_location,omitempty" validate:"omitempty,max=200"`
	PurchaseDate    *time.Time `json:"purchase_date,omitempty"`
	ExpiryDate      *time.Time `json:"expiry_date,omitempty"`
	BatchNumber     *string    `json:"batch_number,omitempty" validate:"omitempty,max=50"`
}

// UpdateItemRequest is the explicit allow-list of mutable item fields.
// Quantity moves only through usage and restock operations.
type UpdateItemRequest struct {
	Name            *string    `json:"name,omitempty" validate:"omitempty,max=100"`
	Category        *string    `json:"category,omitempty" validate:"omitempty,oneof=seed fertilizer pesticide equipment tool other"`
	Description     *string    `json:"description,omitempty" validate:"omitempty,max=500"`
	FarmID          *int64     `json:"farm_id,omitempty"`
	MinimumQuantity *float64   `json:"minimum_quantity,omitempty" validate:"omitempty,gte=0"`
	Unit            *string    `json:"unit,omitempty" validate:"omitempty,max=20"`
	UnitPrice       *float64   `json:"unit_price,omitempty" validate:"omitempty,gte=0"`
	SupplierName    *string    `json:"supplier_name,omitempty" validate:"omitempty,max=200"`
	StorageLocation *string    `json:"storage_location,omitempty" validate:"omitempty,max=200"`
	ExpiryDate      *time.Time `json:"expiry_date,omitempty"`
	BatchNumber     *string    `json:"batch_number,omitempty" validate:"omitempty,max=50"`
}

// RecordUsageRequest consumes quantity from an item.
type RecordUsageRequest struct {
	Quantity float64 `json:"quantity" validate:"required,gt=0"`
	Purpose  string  `json:"purpose" validate:"required,max=200"`
	CropID   *int64  `json:"crop,omitempty"`
	Notes    *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// RestockRequest adds quantity back to an item. When the new current
// quantity exceeds the initial quantity, initial is raised to match so
// 0 <= current <= initial stays a hard invariant.
type RestockRequest struct {
	Quantity float64 `json:"quantity" validate:"required,gt=0"`
}

// ListItemsRequest scopes an item listing.
type ListItemsRequest struct {
	OwnerID  *int64
	FarmID   *int64
	Category string
	Status   string
	Search   string
}
