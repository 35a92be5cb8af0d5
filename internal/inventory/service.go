package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/agritrack/agritrack/internal/shared"
)

// Service applies ownership scoping and stock rules over the repository.
// The status and alert flags are derived on every mutation, never
// accepted from the caller.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs an inventory service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// List returns items visible to the caller. Admins see every item.
func (s *Service) List(ctx context.Context, caller shared.Identity, req ListItemsRequest) ([]Item, error) {
	if !caller.IsAdmin() {
		req.OwnerID = &caller.UserID
	}
	items, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// Get returns one item with its usage log, enforcing owner scoping.
func (s *Service) Get(ctx context.Context, caller shared.Identity, id int64) (*Item, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && item.OwnerID != caller.UserID {
		return nil, shared.ErrAccessDenied
	}
	return item, nil
}

// Create stores a new item owned by the caller. The supplied quantity
// seeds both the current and initial amounts.
func (s *Service) Create(ctx context.Context, caller shared.Identity, req CreateItemRequest) (*Item, error) {
	item := Item{
		OwnerID:         caller.UserID,
		FarmID:          req.FarmID,
		Name:            req.Name,
		Category:        req.Category,
		Description:     req.Description,
		QuantityCurrent: req.Quantity,
		QuantityInitial: req.Quantity,
		QuantityMinimum: req.MinimumQuantity,
		Unit:            req.Unit,
		UnitPrice:       req.UnitPrice,
		Currency:        defaultCurrency(req.Currency),
		SupplierName:    req.SupplierName,
		StorageLocation: req.StorageLocation,
		PurchaseDate:    s.now(),
		ExpiryDate:      req.ExpiryDate,
		BatchNumber:     req.BatchNumber,
	}
	if req.PurchaseDate != nil {
		item.PurchaseDate = *req.PurchaseDate
	}
	if req.UnitPrice != nil {
		total := *req.UnitPrice * req.Quantity
		item.TotalCost = &total
	}
	item.Derive(s.now())

	id, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Update applies the allow-listed fields to an owned item and rederives
// the stock status. Quantity is not updatable here.
func (s *Service) Update(ctx context.Context, caller shared.Identity, id int64, req UpdateItemRequest) (*Item, error) {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.FarmID != nil {
		updates["farm_id"] = *req.FarmID
	}
	if req.MinimumQuantity != nil {
		updates["quantity_minimum"] = *req.MinimumQuantity
	}
	if req.Unit != nil {
		updates["unit"] = *req.Unit
	}
	if req.UnitPrice != nil {
		updates["unit_price"] = *req.UnitPrice
	}
	if req.SupplierName != nil {
		updates["supplier_name"] = *req.SupplierName
	}
	if req.StorageLocation != nil {
		updates["storage_location"] = *req.StorageLocation
	}
	if req.ExpiryDate != nil {
		updates["expiry_date"] = *req.ExpiryDate
	}
	if req.BatchNumber != nil {
		updates["batch_number"] = *req.BatchNumber
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return s.rederive(ctx, id)
}

// Delete soft-deletes an owned item. The usage log is retained.
func (s *Service) Delete(ctx context.Context, caller shared.Identity, id int64) error {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, id)
}

// RecordUsage consumes stock. The decrement and the usage append happen
// atomically; a request exceeding the current quantity is rejected with
// ErrInsufficientQuantity and changes nothing.
func (s *Service) RecordUsage(ctx context.Context, caller shared.Identity, id int64, req RecordUsageRequest) (*Item, float64, error) {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return nil, 0, err
	}

	usage := Usage{
		ItemID:     id,
		UsedAt:     s.now(),
		Quantity:   req.Quantity,
		Purpose:    req.Purpose,
		CropID:     req.CropID,
		Notes:      req.Notes,
		RecordedBy: caller.UserID,
	}
	remaining, err := s.repo.ApplyUsage(ctx, id, usage)
	if err != nil {
		return nil, 0, err
	}

	item, err := s.rederive(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	return item, remaining, nil
}

// Restock raises the current quantity. When it would exceed the initial
// quantity, initial is lifted to match.
func (s *Service) Restock(ctx context.Context, caller shared.Identity, id int64, req RestockRequest) (*Item, error) {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return nil, err
	}
	if _, err := s.repo.Restock(ctx, id, req.Quantity); err != nil {
		return nil, fmt.Errorf("restock item: %w", err)
	}
	return s.rederive(ctx, id)
}

// RefreshAlerts rederives the stored status of every item with an expiry
// date inside the alert window. Run on a schedule by the worker.
func (s *Service) RefreshAlerts(ctx context.Context) (int, error) {
	items, err := s.repo.ListExpiring(ctx, s.now().Add(expiringSoonWindow))
	if err != nil {
		return 0, fmt.Errorf("list expiring items: %w", err)
	}
	var updated int
	for _, item := range items {
		prevStatus, prevAlerts := item.Status, item.Alerts
		item.Derive(s.now())
		if item.Status == prevStatus && item.Alerts == prevAlerts {
			continue
		}
		if err := s.repo.SaveDerived(ctx, item.ID, item.Status, item.Alerts); err != nil {
			return updated, fmt.Errorf("save item %d: %w", item.ID, err)
		}
		updated++
	}
	return updated, nil
}

func (s *Service) rederive(ctx context.Context, id int64) (*Item, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Derive(s.now())
	if err := s.repo.SaveDerived(ctx, id, item.Status, item.Alerts); err != nil {
		return nil, fmt.Errorf("save derived state: %w", err)
	}
	return item, nil
}

func defaultCurrency(c string) string {
	if c == "" {
		return "USD"
	}
	return c
}
