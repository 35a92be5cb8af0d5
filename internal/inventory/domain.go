package inventory

import "time"

// Item categories.
const (
	CategorySeed       = "seed"
	CategoryFertilizer = "fertilizer"
	CategoryPesticide  = "pesticide"
	CategoryEquipment  = "equipment"
	CategoryTool       = "tool"
	CategoryOther      = "other"
)

// Stock statuses, in precedence order: expired beats out-of-stock beats
// low-stock beats in-stock.
const (
	StatusExpired    = "expired"
	StatusOutOfStock = "out-of-stock"
	StatusLowStock   = "low-stock"
	StatusInStock    = "in-stock"
)

const expiringSoonWindow = 30 * 24 * time.Hour

// Item is an inventory record with a quantity triple and an append-only
// usage log.
type Item struct {
	ID              int64      `json:"id"`
	OwnerID         int64      `json:"owner_id"`
	FarmID          *int64     `json:"farm_id,omitempty"`
	Name            string     `json:"name"`
	Category        string     `json:"category"`
	Description     *string    `json:"description,omitempty"`
	QuantityCurrent float64    `json:"quantity_current"`
	QuantityInitial float64    `json:"quantity_initial"`
	QuantityMinimum float64    `json:"quantity_minimum"`
	Unit            string     `json:"unit"`
	UnitPrice       *float64   `json:"unit_price,omitempty"`
	TotalCost       *float64   `json:"total_cost,omitempty"`
	Currency        string     `json:"currency"`
	SupplierName    *string    `json:"supplier_name,omitempty"`
	StorageLocation *string    `json:"storage_location,omitempty"`
	PurchaseDate    time.Time  `json:"purchase_date"`
	ExpiryDate      *time.Time `json:"expiry_date,omitempty"`
	BatchNumber     *string    `json:"batch_number,omitempty"`
	Status          string     `json:"status"`
	Alerts          Alerts     `json:"alerts"`
	Usage           []Usage    `json:"usage,omitempty"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Alerts are boolean flags recomputed alongside the status.
type Alerts struct {
	LowStock     bool `json:"low_stock"`
	ExpiringSoon bool `json:"expiring_soon"`
	Expired      bool `json:"expired"`
}

// Usage is an append-only log entry of consumption against an item.
type Usage struct {
	ID         int64     `json:"id"`
	ItemID     int64     `json:"item_id"`
	UsedAt     time.Time `json:"used_at"`
	Quantity   float64   `json:"quantity"`
	Purpose    string    `json:"purpose"`
	CropID     *int64    `json:"crop_id,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
	RecordedBy int64     `json:"recorded_by"`
}

// UsedQuantity sums the usage log.
func (i *Item) UsedQuantity() float64 {
	var total float64
	for _, u := range i.Usage {
		total += u.Quantity
	}
	return total
}

// RemainingPercentage reports current stock relative to the initial quantity.
func (i *Item) RemainingPercentage() float64 {
	if i.QuantityInitial == 0 {
		return 0
	}
	return i.QuantityCurrent / i.QuantityInitial * 100
}

// Derive recomputes the stock status and alert flags from the quantity
// triple and expiry date. Idempotent; runs on every save. Precedence:
// expired > out-of-stock > low-stock > in-stock.
func (i *Item) Derive(now time.Time) {
	expired := i.ExpiryDate != nil && !i.ExpiryDate.After(now)

	switch {
	case expired:
		i.Status = StatusExpired
	case i.QuantityCurrent == 0:
		i.Status = StatusOutOfStock
	case i.QuantityCurrent <= i.QuantityMinimum:
		i.Status = StatusLowStock
	default:
		i.Status = StatusInStock
	}

	i.Alerts.LowStock = i.QuantityCurrent <= i.QuantityMinimum
	i.Alerts.Expired = expired
	i.Alerts.ExpiringSoon = false
	if i.ExpiryDate != nil && !expired {
		i.Alerts.ExpiringSoon = i.ExpiryDate.Sub(now) <= expiringSoonWindow
	}
}
