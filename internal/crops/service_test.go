package crops

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agritrack/agritrack/internal/shared"
)

type fakeRepo struct {
	crops      map[int64]*Crop
	farmOwners map[int64]int64
	nextID     int64
}

func newFakeRepo(farmOwners map[int64]int64) *fakeRepo {
	return &fakeRepo{crops: make(map[int64]*Crop), farmOwners: farmOwners, nextID: 1}
}

func (f *fakeRepo) List(_ context.Context, req ListCropsRequest) ([]Crop, error) {
	var out []Crop
	for _, c := range f.crops {
		if req.OwnerID != nil && c.OwnerID != *req.OwnerID {
			continue
		}
		if req.FarmID != nil && c.FarmID != *req.FarmID {
			continue
		}
		if req.Status != "" && c.Status != req.Status {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeRepo) Get(_ context.Context, id int64) (*Crop, error) {
	c, ok := f.crops[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *c
	copied.Expenses = append([]Expense(nil), c.Expenses...)
	return &copied, nil
}

func (f *fakeRepo) Create(_ context.Context, crop Crop) (int64, error) {
	crop.ID = f.nextID
	f.nextID++
	f.crops[crop.ID] = &crop
	return crop.ID, nil
}

func (f *fakeRepo) Update(_ context.Context, id int64, updates map[string]any) error {
	c, ok := f.crops[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["status"]; ok {
		c.Status = v.(string)
	}
	if v, ok := updates["growth_stage"]; ok {
		c.GrowthStage = v.(string)
	}
	if v, ok := updates["revenue_total"]; ok {
		c.RevenueTotal = v.(float64)
	}
	if v, ok := updates["actual_yield"]; ok {
		y := v.(float64)
		c.ActualYield = &y
	}
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.crops[id]; !ok {
		return ErrNotFound
	}
	delete(f.crops, id)
	return nil
}

func (f *fakeRepo) AddExpense(_ context.Context, expense Expense) (int64, error) {
	c, ok := f.crops[expense.CropID]
	if !ok {
		return 0, ErrNotFound
	}
	expense.ID = int64(len(c.Expenses) + 1)
	c.Expenses = append(c.Expenses, expense)
	return expense.ID, nil
}

func (f *fakeRepo) AddApplication(_ context.Context, table string, app Application) (int64, error) {
	c, ok := f.crops[app.CropID]
	if !ok {
		return 0, ErrNotFound
	}
	switch table {
	case TableFertilizers:
		c.Fertilizers = append(c.Fertilizers, app)
	case TablePesticides:
		c.Pesticides = append(c.Pesticides, app)
	}
	return 1, nil
}

func (f *fakeRepo) AddObservation(_ context.Context, obs Observation) (int64, error) {
	c, ok := f.crops[obs.CropID]
	if !ok {
		return 0, ErrNotFound
	}
	c.Monitoring = append(c.Monitoring, obs)
	return 1, nil
}

func (f *fakeRepo) SaveFinancials(_ context.Context, id int64, investment, profit float64) error {
	c, ok := f.crops[id]
	if !ok {
		return ErrNotFound
	}
	c.InvestmentTotal = investment
	c.Profit = profit
	return nil
}

func (f *fakeRepo) FarmOwner(_ context.Context, farmID int64) (int64, error) {
	owner, ok := f.farmOwners[farmID]
	if !ok {
		return 0, ErrNotFound
	}
	return owner, nil
}

var testClock = time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)

func newTestService(repo *fakeRepo) *Service {
	svc := NewService(repo)
	svc.WithNow(func() time.Time { return testClock })
	return svc
}

func farmer(id int64) shared.Identity {
	return shared.Identity{UserID: id, Role: shared.RoleFarmer}
}

func seedCrop(t *testing.T, svc *Service, owner shared.Identity, farmID int64) *Crop {
	t.Helper()
	crop, err := svc.Create(context.Background(), owner, CreateCropRequest{
		FarmID:              farmID,
		Name:                "Wheat",
		Category:            "cereals",
		PlantingDate:        testClock.AddDate(0, -2, 0),
		ExpectedHarvestDate: testClock.AddDate(0, 3, 0),
		AreaValue:           12,
	})
	require.NoError(t, err)
	return crop
}

func TestCreateRequiresFarmOwnership(t *testing.T) {
	repo := newFakeRepo(map[int64]int64{10: 1})
	svc := newTestService(repo)

	crop := seedCrop(t, svc, farmer(1), 10)
	require.Equal(t, StagePlanted, crop.GrowthStage)
	require.Equal(t, StatusActive, crop.Status)
	require.Equal(t, "acres", crop.AreaUnit)

	_, err := svc.Create(context.Background(), farmer(2), CreateCropRequest{
		FarmID:              10,
		Name:                "Barley",
		Category:            "cereals",
		PlantingDate:        testClock,
		ExpectedHarvestDate: testClock.AddDate(0, 4, 0),
		AreaValue:           3,
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAddExpenseRecalculatesFinancials(t *testing.T) {
	repo := newFakeRepo(map[int64]int64{10: 1})
	svc := newTestService(repo)
	owner := farmer(1)
	crop := seedCrop(t, svc, owner, 10)

	updated, err := svc.AddExpense(context.Background(), owner, crop.ID, AddExpenseRequest{
		Category: "seed",
		Amount:   400,
	})
	require.NoError(t, err)
	require.Equal(t, 400.0, updated.InvestmentTotal)
	require.Equal(t, -400.0, updated.Profit)

	updated, err = svc.AddExpense(context.Background(), owner, crop.ID, AddExpenseRequest{
		Category: "labor",
		Amount:   250,
	})
	require.NoError(t, err)
	require.Equal(t, 650.0, updated.InvestmentTotal)
	require.Equal(t, -650.0, updated.Profit)
}

func TestNonInputExpenseLowersProfitNotInvestment(t *testing.T) {
	repo := newFakeRepo(map[int64]int64{10: 1})
	svc := newTestService(repo)
	owner := farmer(1)
	crop := seedCrop(t, svc, owner, 10)

	updated, err := svc.AddExpense(context.Background(), owner, crop.ID, AddExpenseRequest{
		Category: "transport",
		Amount:   100,
	})
	require.NoError(t, err)
	require.Zero(t, updated.InvestmentTotal)
	require.Equal(t, -100.0, updated.Profit)
}

func TestRevenueUpdateRecomputesProfit(t *testing.T) {
	repo := newFakeRepo(map[int64]int64{10: 1})
	svc := newTestService(repo)
	owner := farmer(1)
	crop := seedCrop(t, svc, owner, 10)

	_, err := svc.AddExpense(context.Background(), owner, crop.ID, AddExpenseRequest{
		Category: "fertilizer",
		Amount:   300,
	})
	require.NoError(t, err)

	revenue := 2000.0
	updated, err := svc.Update(context.Background(), owner, crop.ID, UpdateCropRequest{RevenueTotal: &revenue})
	require.NoError(t, err)
	require.Equal(t, 2000.0, updated.RevenueTotal)
	require.Equal(t, 1700.0, updated.Profit)
	require.Equal(t, 300.0, updated.InvestmentTotal)
}

func TestGetDeniesOtherFarmers(t *testing.T) {
	repo := newFakeRepo(map[int64]int64{10: 1})
	svc := newTestService(repo)
	crop := seedCrop(t, svc, farmer(1), 10)

	_, err := svc.Get(context.Background(), farmer(2), crop.ID)
	require.ErrorIs(t, err, shared.ErrAccessDenied)

	admin := shared.Identity{UserID: 99, Role: shared.RoleAdmin}
	got, err := svc.Get(context.Background(), admin, crop.ID)
	require.NoError(t, err)
	require.Equal(t, crop.ID, got.ID)
}

func TestAddObservationStampsClock(t *testing.T) {
	repo := newFakeRepo(map[int64]int64{10: 1})
	svc := newTestService(repo)
	owner := farmer(1)
	crop := seedCrop(t, svc, owner, 10)

	_, err := svc.AddObservation(context.Background(), owner, crop.ID, AddObservationRequest{
		HealthStatus: "good",
	})
	require.NoError(t, err)
	require.Equal(t, testClock, repo.crops[crop.ID].Monitoring[0].ObservedAt)
}

func TestAddFertilizerAndPesticideLand(t *testing.T) {
	repo := newFakeRepo(map[int64]int64{10: 1})
	svc := newTestService(repo)
	owner := farmer(1)
	crop := seedCrop(t, svc, owner, 10)

	_, err := svc.AddFertilizer(context.Background(), owner, crop.ID, AddApplicationRequest{Name: "NPK"})
	require.NoError(t, err)
	_, err = svc.AddPesticide(context.Background(), owner, crop.ID, AddApplicationRequest{Name: "Neem oil"})
	require.NoError(t, err)

	require.Len(t, repo.crops[crop.ID].Fertilizers, 1)
	require.Len(t, repo.crops[crop.ID].Pesticides, 1)
}

func TestListScopesToOwner(t *testing.T) {
	repo := newFakeRepo(map[int64]int64{10: 1, 20: 2})
	svc := newTestService(repo)
	seedCrop(t, svc, farmer(1), 10)
	seedCrop(t, svc, farmer(2), 20)

	crops, err := svc.List(context.Background(), farmer(1), nil, "")
	require.NoError(t, err)
	require.Len(t, crops, 1)
	require.Equal(t, int64(1), crops[0].OwnerID)
}
