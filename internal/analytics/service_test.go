package analytics

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/agritrack/agritrack/internal/shared"
)

type stubRepo struct {
	calls     atomic.Int64
	yields    []CropYield
	cropTypes []CropTypeStat

	mu         sync.Mutex
	gotFilters []Filter
	countsF    Filter
	statusF    Filter
	plantingsF Filter
}

func (s *stubRepo) track(f Filter) {
	s.calls.Add(1)
	s.mu.Lock()
	s.gotFilters = append(s.gotFilters, f)
	s.mu.Unlock()
}

func (s *stubRepo) filters() []Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Filter(nil), s.gotFilters...)
}

func (s *stubRepo) FarmSummary(_ context.Context, f Filter) (int64, float64, error) {
	s.track(f)
	return 3, 140.5, nil
}

func (s *stubRepo) CropCounts(_ context.Context, f Filter) (int64, int64, error) {
	s.track(f)
	s.mu.Lock()
	s.countsF = f
	s.mu.Unlock()
	return 12, 7, nil
}

func (s *stubRepo) StatusDistribution(_ context.Context, f Filter) ([]StatusCount, error) {
	s.track(f)
	s.mu.Lock()
	s.statusF = f
	s.mu.Unlock()
	return []StatusCount{{Status: "active", Count: 7}, {Status: "completed", Count: 5}}, nil
}

func (s *stubRepo) RecentCrops(_ context.Context, f Filter, _ int) ([]RecentCrop, error) {
	s.track(f)
	return []RecentCrop{{ID: 1, Name: "Wheat", FarmName: "North Field"}}, nil
}

func (s *stubRepo) MonthlyPlantings(_ context.Context, f Filter) ([]MonthCount, error) {
	s.track(f)
	s.mu.Lock()
	s.plantingsF = f
	s.mu.Unlock()
	return []MonthCount{{Month: "2026-01", Count: 2}, {Month: "2026-02", Count: 4}}, nil
}

func (s *stubRepo) TypeDistribution(_ context.Context, f Filter) ([]CropTypeStat, error) {
	s.track(f)
	return s.cropTypes, nil
}

func (s *stubRepo) GrowthStageDistribution(_ context.Context, f Filter) ([]StatusCount, error) {
	s.track(f)
	return nil, nil
}

func (s *stubRepo) HealthDistribution(_ context.Context, f Filter) ([]StatusCount, error) {
	s.track(f)
	return nil, nil
}

func (s *stubRepo) CycleDuration(_ context.Context, f Filter) (CycleDurationStats, error) {
	s.track(f)
	return CycleDurationStats{AverageDays: 110, MinDays: 90, MaxDays: 130, CropCount: 5}, nil
}

func (s *stubRepo) ExpensesByCategory(_ context.Context, f Filter) ([]CategoryExpense, error) {
	s.track(f)
	return []CategoryExpense{{Category: "fertilizer", Total: 900, Count: 3}}, nil
}

func (s *stubRepo) MonthlyFinancials(_ context.Context, f Filter) ([]MonthlyFinancial, error) {
	s.track(f)
	return nil, nil
}

func (s *stubRepo) ProfitAnalysis(_ context.Context, f Filter) (ProfitAnalysis, error) {
	s.track(f)
	return ProfitAnalysis{TotalProfit: 5300, CropCount: 4, ProfitableCount: 3}, nil
}

func (s *stubRepo) YieldByCropType(_ context.Context, f Filter) ([]CropYield, error) {
	s.track(f)
	return s.yields, nil
}

func (s *stubRepo) MonthlyYieldTrend(_ context.Context, f Filter) ([]MonthlyYield, error) {
	s.track(f)
	return nil, nil
}

func (s *stubRepo) TopFarmsByYield(_ context.Context, f Filter, _ int) ([]FarmYieldRank, error) {
	s.track(f)
	return nil, nil
}

func newTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, ttl)
}

func farmer(id int64) shared.Identity {
	return shared.Identity{UserID: id, Role: shared.RoleFarmer}
}

func TestDashboardAssemblesReport(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, NewCache(nil, 0))

	d, err := svc.Dashboard(context.Background(), farmer(7), "3months")
	require.NoError(t, err)
	require.Equal(t, int64(3), d.Summary.FarmCount)
	require.Equal(t, 140.5, d.Summary.TotalFarmArea)
	require.Equal(t, int64(12), d.Summary.CropCount)
	require.Equal(t, int64(7), d.Summary.ActiveCropCount)
	require.Len(t, d.RecentCrops, 1)
	require.Equal(t, []MonthCount{{Month: "2026-01", Count: 2}, {Month: "2026-02", Count: 4}}, d.MonthlyPlantings)

	for _, f := range repo.filters() {
		require.NotNil(t, f.OwnerID)
		require.Equal(t, int64(7), *f.OwnerID)
	}
}

func TestDashboardCountsIgnoreTimeframe(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, NewCache(nil, 0))

	// A crop planted before the window still counts. Only the monthly
	// planting buckets honour the requested timeframe.
	_, err := svc.Dashboard(context.Background(), farmer(7), "1month")
	require.NoError(t, err)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	require.True(t, repo.countsF.Since.IsZero())
	require.True(t, repo.statusF.Since.IsZero())
	require.False(t, repo.plantingsF.Since.IsZero())
}

func TestAdminQueriesUnscoped(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, NewCache(nil, 0))

	admin := shared.Identity{UserID: 1, Role: shared.RoleAdmin}
	_, err := svc.Dashboard(context.Background(), admin, "")
	require.NoError(t, err)
	for _, f := range repo.filters() {
		require.Nil(t, f.OwnerID)
	}
}

func TestDashboardSecondCallServedFromCache(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, newTestCache(t, time.Minute))
	caller := farmer(7)

	first, err := svc.Dashboard(context.Background(), caller, "3months")
	require.NoError(t, err)
	queries := repo.calls.Load()
	require.Positive(t, queries)

	second, err := svc.Dashboard(context.Background(), caller, "3months")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, queries, repo.calls.Load())
}

func TestCacheKeysSeparateOwnersAndTimeframes(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, newTestCache(t, time.Minute))

	_, err := svc.Dashboard(context.Background(), farmer(1), "3months")
	require.NoError(t, err)
	afterFirst := repo.calls.Load()

	_, err = svc.Dashboard(context.Background(), farmer(2), "3months")
	require.NoError(t, err)
	require.Greater(t, repo.calls.Load(), afterFirst)

	afterSecond := repo.calls.Load()
	_, err = svc.Dashboard(context.Background(), farmer(1), "1month")
	require.NoError(t, err)
	require.Greater(t, repo.calls.Load(), afterSecond)
}

func TestInvalidateForcesRecompute(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, newTestCache(t, time.Minute))
	caller := farmer(7)

	_, err := svc.Dashboard(context.Background(), caller, "")
	require.NoError(t, err)
	queries := repo.calls.Load()

	require.NoError(t, svc.Invalidate(context.Background()))

	_, err = svc.Dashboard(context.Background(), caller, "")
	require.NoError(t, err)
	require.Greater(t, repo.calls.Load(), queries)
}

func TestYieldEfficiencySentinelOnZeroExpected(t *testing.T) {
	repo := &stubRepo{yields: []CropYield{
		{Name: "wheat", AverageActual: 45, AverageExpected: 50, CropCount: 3},
		{Name: "volunteer barley", AverageActual: 12, AverageExpected: 0, CropCount: 1},
	}}
	svc := NewService(repo, NewCache(nil, 0))

	rep, err := svc.Yield(context.Background(), farmer(1), "", nil, "")
	require.NoError(t, err)
	require.Len(t, rep.ByCropType, 2)
	require.InDelta(t, 90.0, rep.ByCropType[0].Efficiency, 0.001)
	require.Zero(t, rep.ByCropType[1].Efficiency)
	require.Equal(t, "Wheat", rep.ByCropType[0].Name)
	require.Equal(t, "Volunteer Barley", rep.ByCropType[1].Name)
}

func TestFarmAndCropTypeFiltersReachQueries(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, NewCache(nil, 0))

	farmID := int64(4)
	_, err := svc.Yield(context.Background(), farmer(1), "6months", &farmID, " Wheat ")
	require.NoError(t, err)
	for _, f := range repo.filters() {
		require.NotNil(t, f.FarmID)
		require.Equal(t, int64(4), *f.FarmID)
		require.Equal(t, "Wheat", f.CropName)
	}
}

func TestCropReportTitleCasesTypes(t *testing.T) {
	repo := &stubRepo{cropTypes: []CropTypeStat{{Name: "sweet corn", Count: 4, TotalArea: 12}}}
	svc := NewService(repo, NewCache(nil, 0))

	rep, err := svc.Crops(context.Background(), farmer(1), "", nil)
	require.NoError(t, err)
	require.Equal(t, "Sweet Corn", rep.TypeDistribution[0].Name)
}
