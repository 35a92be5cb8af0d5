package crops

import (
	"context"
	"fmt"
	"time"

	"github.com/agritrack/agritrack/internal/shared"
)

// Service applies ownership scoping, domain rules and derived-metric
// recomputation over the repository.
type Service struct {
	repo     Repository
	now      func() time.Time
	onChange func(context.Context)
}

// NewService constructs a crops service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
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

// List returns crops visible to the caller, optionally filtered by farm
// and status.
func (s *Service) List(ctx context.Context, caller shared.Identity, farmID *int64, status string) ([]Crop, error) {
	req := ListCropsRequest{FarmID: farmID, Status: status}
	if !caller.IsAdmin() {
		req.OwnerID = &caller.UserID
	}
	crops, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("list crops: %w", err)
	}
	return crops, nil
}

// Get returns one crop with all sub-records, enforcing owner scoping.
func (s *Service) Get(ctx context.Context, caller shared.Identity, id int64) (*Crop, error) {
	crop, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && crop.OwnerID != caller.UserID {
		return nil, shared.ErrAccessDenied
	}
	return crop, nil
}

// Create stores a new crop after verifying the caller owns the farm.
func (s *Service) Create(ctx context.Context, caller shared.Identity, req CreateCropRequest) (*Crop, error) {
	farmOwner, err := s.repo.FarmOwner(ctx, req.FarmID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && farmOwner != caller.UserID {
		return nil, ErrNotFound
	}

	crop := Crop{
		FarmID:              req.FarmID,
		OwnerID:             farmOwner,
		Name:                req.Name,
		Variety:             req.Variety,
		Category:            req.Category,
		FieldName:           req.FieldName,
		PlantingDate:        req.PlantingDate,
		ExpectedHarvestDate: req.ExpectedHarvestDate,
		GrowthStage:         StagePlanted,
		HealthStatus:        "good",
		Status:              StatusActive,
		AreaValue:           req.AreaValue,
		AreaUnit:            defaultAreaUnit(req.AreaUnit),
		ExpectedYield:       req.ExpectedYield,
		YieldUnit:           req.YieldUnit,
	}
	id, err := s.repo.Create(ctx, crop)
	if err != nil {
		return nil, fmt.Errorf("create crop: %w", err)
	}
	s.changed(ctx)
	return s.repo.Get(ctx, id)
}

// Update applies the allow-listed fields, then recomputes the derived
// financials when revenue changed.
func (s *Service) Update(ctx context.Context, caller shared.Identity, id int64, req UpdateCropRequest) (*Crop, error) {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Variety != nil {
		updates["variety"] = *req.Variety
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.FieldName != nil {
		updates["field_name"] = *req.FieldName
	}
	if req.PlantingDate != nil {
		updates["planting_date"] = *req.PlantingDate
	}
	if req.ExpectedHarvestDate != nil {
		updates["expected_harvest_date"] = *req.ExpectedHarvestDate
	}
	if req.ActualHarvestDate != nil {
		updates["actual_harvest_date"] = *req.ActualHarvestDate
	}
	if req.GrowthStage != nil {
		updates["growth_stage"] = *req.GrowthStage
	}
	if req.HealthStatus != nil {
		updates["health_status"] = *req.HealthStatus
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.AreaValue != nil {
		updates["area_value"] = *req.AreaValue
	}
	if req.AreaUnit != nil {
		updates["area_unit"] = *req.AreaUnit
	}
	if req.ExpectedYield != nil {
		updates["expected_yield"] = *req.ExpectedYield
	}
	if req.ActualYield != nil {
		updates["actual_yield"] = *req.ActualYield
	}
	if req.YieldUnit != nil {
		updates["yield_unit"] = *req.YieldUnit
	}
	if req.RevenueTotal != nil {
		updates["revenue_total"] = *req.RevenueTotal
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update crop: %w", err)
	}
	if req.RevenueTotal != nil {
		if err := s.recalculate(ctx, id); err != nil {
			return nil, err
		}
	}
	s.changed(ctx)
	return s.repo.Get(ctx, id)
}

// Delete removes a crop and its sub-records.
func (s *Service) Delete(ctx context.Context, caller shared.Identity, id int64) error {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx)
	return nil
}

// AddExpense appends an expense and synchronously refreshes the derived
// investment total and profit.
func (s *Service) AddExpense(ctx context.Context, caller shared.Identity, cropID int64, req AddExpenseRequest) (*Crop, error) {
	if _, err := s.Get(ctx, caller, cropID); err != nil {
		return nil, err
	}
	date := s.now()
	if req.Date != nil {
		date = *req.Date
	}
	expense := Expense{
		CropID:   cropID,
		Category: req.Category,
		Amount:   req.Amount,
		Date:     date,
		Notes:    req.Notes,
	}
	if _, err := s.repo.AddExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("add expense: %w", err)
	}
	if err := s.recalculate(ctx, cropID); err != nil {
		return nil, err
	}
	s.changed(ctx)
	return s.repo.Get(ctx, cropID)
}

// AddFertilizer appends a fertilizer application.
func (s *Service) AddFertilizer(ctx context.Context, caller shared.Identity, cropID int64, req AddApplicationRequest) (*Crop, error) {
	return s.addApplication(ctx, caller, cropID, TableFertilizers, req)
}

// AddPesticide appends a pesticide application.
func (s *Service) AddPesticide(ctx context.Context, caller shared.Identity, cropID int64, req AddApplicationRequest) (*Crop, error) {
	return s.addApplication(ctx, caller, cropID, TablePesticides, req)
}

func (s *Service) addApplication(ctx context.Context, caller shared.Identity, cropID int64, table string, req AddApplicationRequest) (*Crop, error) {
	if _, err := s.Get(ctx, caller, cropID); err != nil {
		return nil, err
	}
	date := s.now()
	if req.ApplicationDate != nil {
		date = *req.ApplicationDate
	}
	app := Application{
		CropID:          cropID,
		Name:            req.Name,
		Kind:            req.Kind,
		TargetPest:      req.TargetPest,
		ApplicationDate: date,
		QuantityValue:   req.QuantityValue,
		QuantityUnit:    req.QuantityUnit,
		Method:          req.Method,
		Cost:            req.Cost,
	}
	if _, err := s.repo.AddApplication(ctx, table, app); err != nil {
		return nil, fmt.Errorf("add application: %w", err)
	}
	return s.repo.Get(ctx, cropID)
}

// AddObservation appends a monitoring snapshot stamped with the current time.
func (s *Service) AddObservation(ctx context.Context, caller shared.Identity, cropID int64, req AddObservationRequest) (*Crop, error) {
	if _, err := s.Get(ctx, caller, cropID); err != nil {
		return nil, err
	}
	obs := Observation{
		CropID:       cropID,
		ObservedAt:   s.now(),
		HeightCM:     req.HeightCM,
		HealthStatus: req.HealthStatus,
		Notes:        req.Notes,
	}
	if _, err := s.repo.AddObservation(ctx, obs); err != nil {
		return nil, fmt.Errorf("add observation: %w", err)
	}
	return s.repo.Get(ctx, cropID)
}

func (s *Service) recalculate(ctx context.Context, cropID int64) error {
	crop, err := s.repo.Get(ctx, cropID)
	if err != nil {
		return err
	}
	crop.RecalculateFinancials()
	if err := s.repo.SaveFinancials(ctx, cropID, crop.InvestmentTotal, crop.Profit); err != nil {
		return fmt.Errorf("save financials: %w", err)
	}
	return nil
}

func defaultAreaUnit(unit string) string {
	if unit == "" {
		return "acres"
	}
	return unit
}
