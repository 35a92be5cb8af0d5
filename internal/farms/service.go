package farms

import (
	"context"
	"errors"
	"fmt"

	"github.com/agritrack/agritrack/internal/shared"
)

// Service applies ownership scoping and domain rules over the repository.
type Service struct {
	repo     Repository
	onChange func(context.Context)
}

// NewService constructs a farms service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NotifyChange registers a callback fired after every successful
// mutation, used to drop cached analytics reports.
func (s *Service) NotifyChange(fn func(context.Context)) {
	s.onChange = fn
}

func (s *Service) changed(ctx context.Context) {
	if s.onChange != nil {
		s.onChange(ctx)
	}
}

// List returns farms visible to the caller. Admins see every farm.
func (s *Service) List(ctx context.Context, caller shared.Identity, search string, page, perPage int) ([]Farm, shared.Pagination, error) {
	req := ListFarmsRequest{Search: search, Page: page, PerPage: perPage}
	if !caller.IsAdmin() {
		req.OwnerID = &caller.UserID
	}
	farms, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("list farms: %w", err)
	}
	return farms, shared.NewPagination(page, perPage, total), nil
}

// Get returns one farm, enforcing owner scoping.
func (s *Service) Get(ctx context.Context, caller shared.Identity, id int64) (*Farm, error) {
	farm, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && farm.OwnerID != caller.UserID {
		return nil, shared.ErrAccessDenied
	}
	return farm, nil
}

// Create stores a new farm owned by the caller.
func (s *Service) Create(ctx context.Context, caller shared.Identity, req CreateFarmRequest) (*Farm, error) {
	farm := Farm{
		OwnerID:          caller.UserID,
		Name:             req.Name,
		Address:          req.Address,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		Region:           req.Region,
		AreaValue:        req.AreaValue,
		AreaUnit:         defaultUnit(req.AreaUnit),
		SoilType:         req.SoilType,
		SoilPH:           req.SoilPH,
		IrrigationSystem: defaultIrrigation(req.IrrigationSystem),
		OrganicCertified: req.OrganicCertified,
		Notes:            req.Notes,
	}
	id, err := s.repo.Create(ctx, farm)
	if err != nil {
		return nil, fmt.Errorf("create farm: %w", err)
	}
	s.changed(ctx)
	return s.repo.Get(ctx, id)
}

// Update applies the allow-listed fields to an owned farm.
func (s *Service) Update(ctx context.Context, caller shared.Identity, id int64, req UpdateFarmRequest) (*Farm, error) {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Latitude != nil {
		updates["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		updates["longitude"] = *req.Longitude
	}
	if req.Region != nil {
		updates["region"] = *req.Region
	}
	if req.AreaValue != nil {
		updates["area_value"] = *req.AreaValue
	}
	if req.AreaUnit != nil {
		updates["area_unit"] = *req.AreaUnit
	}
	if req.SoilType != nil {
		updates["soil_type"] = *req.SoilType
	}
	if req.SoilPH != nil {
		updates["soil_ph"] = *req.SoilPH
	}
	if req.IrrigationSystem != nil {
		updates["irrigation_system"] = *req.IrrigationSystem
	}
	if req.OrganicCertified != nil {
		updates["organic_certified"] = *req.OrganicCertified
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update farm: %w", err)
	}
	s.changed(ctx)
	return s.repo.Get(ctx, id)
}

// ErrActiveCrops blocks deletion of a farm that still grows something.
var ErrActiveCrops = errors.New("farm has active crops")

// Delete removes a farm unless crops are still active on it.
func (s *Service) Delete(ctx context.Context, caller shared.Identity, id int64) error {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return err
	}
	active, err := s.repo.CountActiveCrops(ctx, id)
	if err != nil {
		return fmt.Errorf("count active crops: %w", err)
	}
	if active > 0 {
		return ErrActiveCrops
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx)
	return nil
}

// AddField appends a field sub-record to an owned farm.
func (s *Service) AddField(ctx context.Context, caller shared.Identity, farmID int64, req FieldRequest) (*Farm, error) {
	if _, err := s.Get(ctx, caller, farmID); err != nil {
		return nil, err
	}
	field := Field{
		FarmID:        farmID,
		Name:          req.Name,
		AreaValue:     req.AreaValue,
		AreaUnit:      defaultUnit(req.AreaUnit),
		CurrentCropID: req.CurrentCropID,
	}
	if _, err := s.repo.AddField(ctx, field); err != nil {
		return nil, fmt.Errorf("add field: %w", err)
	}
	return s.repo.Get(ctx, farmID)
}

// UpdateField mutates a field sub-record on an owned farm.
func (s *Service) UpdateField(ctx context.Context, caller shared.Identity, farmID, fieldID int64, req FieldRequest) (*Farm, error) {
	if _, err := s.Get(ctx, caller, farmID); err != nil {
		return nil, err
	}
	updates := map[string]any{
		"name":            req.Name,
		"area_value":      req.AreaValue,
		"area_unit":       defaultUnit(req.AreaUnit),
		"current_crop_id": req.CurrentCropID,
	}
	if err := s.repo.UpdateField(ctx, farmID, fieldID, updates); err != nil {
		return nil, fmt.Errorf("update field: %w", err)
	}
	return s.repo.Get(ctx, farmID)
}

func defaultUnit(unit string) string {
	if unit == "" {
		return "acres"
	}
	return unit
}

func defaultIrrigation(system string) string {
	if system == "" {
		return "none"
	}
	return system
}
