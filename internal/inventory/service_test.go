package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agritrack/agritrack/internal/shared"
)

type fakeRepo struct {
	items  map[int64]*Item
	usage  map[int64][]Usage
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[int64]*Item), usage: make(map[int64][]Usage), nextID: 1}
}

func (f *fakeRepo) List(_ context.Context, req ListItemsRequest) ([]Item, error) {
	var out []Item
	for _, it := range f.items {
		if !it.IsActive {
			continue
		}
		if req.OwnerID != nil && it.OwnerID != *req.OwnerID {
			continue
		}
		if req.Category != "" && it.Category != req.Category {
			continue
		}
		if req.Status != "" && it.Status != req.Status {
			continue
		}
		out = append(out, *it)
	}
	return out, nil
}

func (f *fakeRepo) Get(_ context.Context, id int64) (*Item, error) {
	it, ok := f.items[id]
	if !ok || !it.IsActive {
		return nil, ErrNotFound
	}
	copied := *it
	copied.Usage = append([]Usage(nil), f.usage[id]...)
	return &copied, nil
}

func (f *fakeRepo) Create(_ context.Context, item Item) (int64, error) {
	item.ID = f.nextID
	item.IsActive = true
	f.nextID++
	f.items[item.ID] = &item
	return item.ID, nil
}

func (f *fakeRepo) Update(_ context.Context, id int64, updates map[string]any) error {
	it, ok := f.items[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["quantity_minimum"]; ok {
		it.QuantityMinimum = v.(float64)
	}
	if v, ok := updates["expiry_date"]; ok {
		t := v.(time.Time)
		it.ExpiryDate = &t
	}
	if v, ok := updates["name"]; ok {
		it.Name = v.(string)
	}
	return nil
}

func (f *fakeRepo) SoftDelete(_ context.Context, id int64) error {
	it, ok := f.items[id]
	if !ok {
		return ErrNotFound
	}
	it.IsActive = false
	return nil
}

func (f *fakeRepo) ApplyUsage(_ context.Context, itemID int64, usage Usage) (float64, error) {
	it, ok := f.items[itemID]
	if !ok || !it.IsActive || it.QuantityCurrent < usage.Quantity {
		return 0, ErrInsufficientQuantity
	}
	it.QuantityCurrent -= usage.Quantity
	f.usage[itemID] = append(f.usage[itemID], usage)
	return it.QuantityCurrent, nil
}

func (f *fakeRepo) Restock(_ context.Context, itemID int64, qty float64) (float64, error) {
	it, ok := f.items[itemID]
	if !ok || !it.IsActive {
		return 0, ErrNotFound
	}
	it.QuantityCurrent += qty
	if it.QuantityCurrent > it.QuantityInitial {
		it.QuantityInitial = it.QuantityCurrent
	}
	return it.QuantityCurrent, nil
}

func (f *fakeRepo) SaveDerived(_ context.Context, id int64, status string, alerts Alerts) error {
	it, ok := f.items[id]
	if !ok {
		return ErrNotFound
	}
	it.Status = status
	it.Alerts = alerts
	return nil
}

func (f *fakeRepo) ListExpiring(_ context.Context, before time.Time) ([]Item, error) {
	var out []Item
	for _, it := range f.items {
		if it.IsActive && it.ExpiryDate != nil && !it.ExpiryDate.After(before) {
			out = append(out, *it)
		}
	}
	return out, nil
}

var testClock = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestService(repo *fakeRepo) *Service {
	return NewService(repo).WithNow(func() time.Time { return testClock })
}

func farmer(id int64) shared.Identity {
	return shared.Identity{UserID: id, Role: shared.RoleFarmer}
}

func seedItem(t *testing.T, svc *Service, owner shared.Identity, qty, minimum float64) *Item {
	t.Helper()
	item, err := svc.Create(context.Background(), owner, CreateItemRequest{
		Name:            "NPK 20-20-20",
		Category:        CategoryFertilizer,
		Quantity:        qty,
		MinimumQuantity: minimum,
		Unit:            "kg",
	})
	require.NoError(t, err)
	return item
}

func TestCreateSeedsQuantitiesAndStatus(t *testing.T) {
	svc := newTestService(newFakeRepo())
	item := seedItem(t, svc, farmer(1), 50, 10)

	require.Equal(t, 50.0, item.QuantityCurrent)
	require.Equal(t, 50.0, item.QuantityInitial)
	require.Equal(t, StatusInStock, item.Status)
	require.False(t, item.Alerts.LowStock)
}

func TestRecordUsageDecrementsAndLogs(t *testing.T) {
	svc := newTestService(newFakeRepo())
	owner := farmer(1)
	item := seedItem(t, svc, owner, 50, 10)

	updated, remaining, err := svc.RecordUsage(context.Background(), owner, item.ID, RecordUsageRequest{
		Quantity: 30,
		Purpose:  "top dressing",
	})
	require.NoError(t, err)
	require.Equal(t, 20.0, remaining)
	require.Equal(t, 20.0, updated.QuantityCurrent)
	require.Equal(t, 50.0, updated.QuantityInitial)
	require.Len(t, updated.Usage, 1)
	require.Equal(t, owner.UserID, updated.Usage[0].RecordedBy)
	require.Equal(t, 30.0, updated.UsedQuantity())
}

func TestRecordUsageRejectsInsufficientStock(t *testing.T) {
	svc := newTestService(newFakeRepo())
	owner := farmer(1)
	item := seedItem(t, svc, owner, 10, 2)

	_, _, err := svc.RecordUsage(context.Background(), owner, item.ID, RecordUsageRequest{
		Quantity: 11,
		Purpose:  "spraying",
	})
	require.ErrorIs(t, err, ErrInsufficientQuantity)

	got, err := svc.Get(context.Background(), owner, item.ID)
	require.NoError(t, err)
	require.Equal(t, 10.0, got.QuantityCurrent)
	require.Empty(t, got.Usage)
}

func TestUsageToZeroMarksOutOfStock(t *testing.T) {
	svc := newTestService(newFakeRepo())
	owner := farmer(1)
	item := seedItem(t, svc, owner, 10, 5)

	updated, remaining, err := svc.RecordUsage(context.Background(), owner, item.ID, RecordUsageRequest{
		Quantity: 10,
		Purpose:  "final application",
	})
	require.NoError(t, err)
	require.Equal(t, 0.0, remaining)
	require.Equal(t, StatusOutOfStock, updated.Status)
	require.True(t, updated.Alerts.LowStock)
}

func TestUsageBelowMinimumMarksLowStock(t *testing.T) {
	svc := newTestService(newFakeRepo())
	owner := farmer(1)
	item := seedItem(t, svc, owner, 20, 10)

	updated, _, err := svc.RecordUsage(context.Background(), owner, item.ID, RecordUsageRequest{
		Quantity: 12,
		Purpose:  "spraying",
	})
	require.NoError(t, err)
	require.Equal(t, StatusLowStock, updated.Status)
	require.True(t, updated.Alerts.LowStock)
}

func TestExpiredBeatsOutOfStock(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	owner := farmer(1)

	expiry := testClock.Add(-24 * time.Hour)
	item, err := svc.Create(context.Background(), owner, CreateItemRequest{
		Name:       "Old seed lot",
		Category:   CategorySeed,
		Quantity:   0,
		Unit:       "kg",
		ExpiryDate: &expiry,
	})
	require.NoError(t, err)
	require.Equal(t, StatusExpired, item.Status)
	require.True(t, item.Alerts.Expired)
}

func TestRestockLiftsInitialWhenExceeded(t *testing.T) {
	svc := newTestService(newFakeRepo())
	owner := farmer(1)
	item := seedItem(t, svc, owner, 50, 10)

	_, _, err := svc.RecordUsage(context.Background(), owner, item.ID, RecordUsageRequest{
		Quantity: 20,
		Purpose:  "spraying",
	})
	require.NoError(t, err)

	updated, err := svc.Restock(context.Background(), owner, item.ID, RestockRequest{Quantity: 40})
	require.NoError(t, err)
	require.Equal(t, 70.0, updated.QuantityCurrent)
	require.Equal(t, 70.0, updated.QuantityInitial)
	require.Equal(t, StatusInStock, updated.Status)
}

func TestRestockWithinInitialKeepsInitial(t *testing.T) {
	svc := newTestService(newFakeRepo())
	owner := farmer(1)
	item := seedItem(t, svc, owner, 50, 10)

	_, _, err := svc.RecordUsage(context.Background(), owner, item.ID, RecordUsageRequest{
		Quantity: 30,
		Purpose:  "spraying",
	})
	require.NoError(t, err)

	updated, err := svc.Restock(context.Background(), owner, item.ID, RestockRequest{Quantity: 10})
	require.NoError(t, err)
	require.Equal(t, 30.0, updated.QuantityCurrent)
	require.Equal(t, 50.0, updated.QuantityInitial)
}

func TestGetDeniesOtherFarmers(t *testing.T) {
	svc := newTestService(newFakeRepo())
	item := seedItem(t, svc, farmer(1), 50, 10)

	_, err := svc.Get(context.Background(), farmer(2), item.ID)
	require.ErrorIs(t, err, shared.ErrAccessDenied)

	admin := shared.Identity{UserID: 99, Role: shared.RoleAdmin}
	got, err := svc.Get(context.Background(), admin, item.ID)
	require.NoError(t, err)
	require.Equal(t, item.ID, got.ID)
}

func TestListScopesToOwner(t *testing.T) {
	svc := newTestService(newFakeRepo())
	seedItem(t, svc, farmer(1), 50, 10)
	seedItem(t, svc, farmer(2), 25, 5)

	items, err := svc.List(context.Background(), farmer(1), ListItemsRequest{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, int64(1), items[0].OwnerID)
}

func TestRefreshAlertsFlagsExpiringItems(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	owner := farmer(1)

	expiry := testClock.Add(10 * 24 * time.Hour)
	item, err := svc.Create(context.Background(), owner, CreateItemRequest{
		Name:       "Fungicide",
		Category:   CategoryPesticide,
		Quantity:   5,
		Unit:       "l",
		ExpiryDate: &expiry,
	})
	require.NoError(t, err)
	require.True(t, item.Alerts.ExpiringSoon)

	// Force a stale status, then let the scheduled scan fix it.
	repo.items[item.ID].Status = StatusInStock
	past := testClock.Add(-time.Hour)
	repo.items[item.ID].ExpiryDate = &past

	updated, err := svc.RefreshAlerts(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, updated)
	require.Equal(t, StatusExpired, repo.items[item.ID].Status)
}

func TestRefreshAlertsPersistsFlagOnlyChange(t *testing.T) {
	repo := newFakeRepo()
	now := testClock
	svc := NewService(repo).WithNow(func() time.Time { return now })

	expiry := testClock.Add(60 * 24 * time.Hour)
	item, err := svc.Create(context.Background(), farmer(1), CreateItemRequest{
		Name:       "Copper sulfate",
		Category:   CategoryPesticide,
		Quantity:   8,
		Unit:       "kg",
		ExpiryDate: &expiry,
	})
	require.NoError(t, err)
	require.Equal(t, StatusInStock, item.Status)
	require.False(t, item.Alerts.ExpiringSoon)

	// Expiry drifts inside the alert window while the status stays
	// in-stock. The scan must still write the recomputed flags.
	now = testClock.Add(35 * 24 * time.Hour)

	updated, err := svc.RefreshAlerts(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, updated)
	require.Equal(t, StatusInStock, repo.items[item.ID].Status)
	require.True(t, repo.items[item.ID].Alerts.ExpiringSoon)
}
