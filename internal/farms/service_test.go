package farms

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agritrack/agritrack/internal/shared"
)

type fakeRepo struct {
	farms       map[int64]*Farm
	activeCrops map[int64]int
	nextID      int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{farms: make(map[int64]*Farm), activeCrops: make(map[int64]int), nextID: 1}
}

func (f *fakeRepo) List(_ context.Context, req ListFarmsRequest) ([]Farm, int, error) {
	var out []Farm
	for _, farm := range f.farms {
		if !farm.IsActive {
			continue
		}
		if req.OwnerID != nil && farm.OwnerID != *req.OwnerID {
			continue
		}
		if req.Search != "" && !strings.Contains(strings.ToLower(farm.Name), strings.ToLower(req.Search)) {
			continue
		}
		out = append(out, *farm)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Get(_ context.Context, id int64) (*Farm, error) {
	farm, ok := f.farms[id]
	if !ok || !farm.IsActive {
		return nil, ErrNotFound
	}
	copied := *farm
	copied.Fields = append([]Field(nil), farm.Fields...)
	return &copied, nil
}

func (f *fakeRepo) Create(_ context.Context, farm Farm) (int64, error) {
	farm.ID = f.nextID
	farm.IsActive = true
	f.nextID++
	f.farms[farm.ID] = &farm
	return farm.ID, nil
}

func (f *fakeRepo) Update(_ context.Context, id int64, updates map[string]any) error {
	farm, ok := f.farms[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		farm.Name = v.(string)
	}
	if v, ok := updates["soil_type"]; ok {
		farm.SoilType = v.(string)
	}
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	farm, ok := f.farms[id]
	if !ok || !farm.IsActive {
		return ErrNotFound
	}
	farm.IsActive = false
	return nil
}

func (f *fakeRepo) AddField(_ context.Context, field Field) (int64, error) {
	farm, ok := f.farms[field.FarmID]
	if !ok {
		return 0, ErrNotFound
	}
	field.ID = int64(len(farm.Fields) + 1)
	farm.Fields = append(farm.Fields, field)
	return field.ID, nil
}

func (f *fakeRepo) UpdateField(_ context.Context, farmID, fieldID int64, updates map[string]any) error {
	farm, ok := f.farms[farmID]
	if !ok {
		return ErrNotFound
	}
	for i := range farm.Fields {
		if farm.Fields[i].ID == fieldID {
			if v, ok := updates["name"]; ok {
				farm.Fields[i].Name = v.(string)
			}
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeRepo) CountActiveCrops(_ context.Context, farmID int64) (int, error) {
	return f.activeCrops[farmID], nil
}

func farmer(id int64) shared.Identity {
	return shared.Identity{UserID: id, Role: shared.RoleFarmer}
}

func seedFarm(t *testing.T, svc *Service, owner shared.Identity) *Farm {
	t.Helper()
	farm, err := svc.Create(context.Background(), owner, CreateFarmRequest{
		Name:      "Green Valley",
		Address:   "12 River Rd",
		Latitude:  45.12,
		Longitude: -120.88,
		AreaValue: 50,
		SoilType:  "loam",
	})
	require.NoError(t, err)
	return farm
}

func TestCreateAppliesDefaults(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	farm := seedFarm(t, svc, farmer(1))
	require.Equal(t, int64(1), farm.OwnerID)
	require.Equal(t, "acres", farm.AreaUnit)
	require.Equal(t, "none", farm.IrrigationSystem)
}

func TestGetEnforcesOwnership(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	farm := seedFarm(t, svc, farmer(1))

	_, err := svc.Get(context.Background(), farmer(2), farm.ID)
	require.ErrorIs(t, err, shared.ErrAccessDenied)

	admin := shared.Identity{UserID: 9, Role: shared.RoleAdmin}
	got, err := svc.Get(context.Background(), admin, farm.ID)
	require.NoError(t, err)
	require.Equal(t, farm.ID, got.ID)
}

func TestDeleteBlockedByActiveCrops(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	owner := farmer(1)
	farm := seedFarm(t, svc, owner)
	repo.activeCrops[farm.ID] = 2

	err := svc.Delete(context.Background(), owner, farm.ID)
	require.ErrorIs(t, err, ErrActiveCrops)
	_, err = svc.Get(context.Background(), owner, farm.ID)
	require.NoError(t, err)

	repo.activeCrops[farm.ID] = 0
	require.NoError(t, svc.Delete(context.Background(), owner, farm.ID))
	_, err = svc.Get(context.Background(), owner, farm.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRetiresFarmWithFinishedCrops(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	owner := farmer(1)
	farm := seedFarm(t, svc, owner)
	// Completed growing cycles leave crop rows behind without blocking
	// deletion. Retiring keeps the row so that history stays referable.
	repo.activeCrops[farm.ID] = 0

	require.NoError(t, svc.Delete(context.Background(), owner, farm.ID))

	_, err := svc.Get(context.Background(), owner, farm.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.False(t, repo.farms[farm.ID].IsActive)

	farms, total, err := repo.List(context.Background(), ListFarmsRequest{OwnerID: &owner.UserID})
	require.NoError(t, err)
	require.Empty(t, farms)
	require.Zero(t, total)
}

func TestListScopesToOwner(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	seedFarm(t, svc, farmer(1))
	seedFarm(t, svc, farmer(2))

	farms, pg, err := svc.List(context.Background(), farmer(1), "", 1, 20)
	require.NoError(t, err)
	require.Len(t, farms, 1)
	require.Equal(t, 1, pg.Total)

	admin := shared.Identity{UserID: 9, Role: shared.RoleAdmin}
	farms, pg, err = svc.List(context.Background(), admin, "", 1, 20)
	require.NoError(t, err)
	require.Len(t, farms, 2)
	require.Equal(t, 2, pg.Total)
}

func TestAddFieldRequiresOwnership(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	owner := farmer(1)
	farm := seedFarm(t, svc, owner)

	_, err := svc.AddField(context.Background(), farmer(2), farm.ID, FieldRequest{Name: "North plot", AreaValue: 10})
	require.ErrorIs(t, err, shared.ErrAccessDenied)

	updated, err := svc.AddField(context.Background(), owner, farm.ID, FieldRequest{Name: "North plot", AreaValue: 10})
	require.NoError(t, err)
	require.Len(t, updated.Fields, 1)
	require.Equal(t, "acres", updated.Fields[0].AreaUnit)
}

func TestMutationsFireChangeHook(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	var fired int
	svc.NotifyChange(func(context.Context) { fired++ })

	owner := farmer(1)
	farm := seedFarm(t, svc, owner)
	require.Equal(t, 1, fired)

	name := "Renamed"
	_, err := svc.Update(context.Background(), owner, farm.ID, UpdateFarmRequest{Name: &name})
	require.NoError(t, err)
	require.Equal(t, 2, fired)

	repo.activeCrops[farm.ID] = 1
	require.ErrorIs(t, svc.Delete(context.Background(), owner, farm.ID), ErrActiveCrops)
	require.Equal(t, 2, fired)
}

func TestUpdateAllowListedFields(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	owner := farmer(1)
	farm := seedFarm(t, svc, owner)

	name := "Sunrise Acres"
	soil := "clay"
	updated, err := svc.Update(context.Background(), owner, farm.ID, UpdateFarmRequest{Name: &name, SoilType: &soil})
	require.NoError(t, err)
	require.Equal(t, "Sunrise Acres", updated.Name)
	require.Equal(t, "clay", updated.SoilType)
}
