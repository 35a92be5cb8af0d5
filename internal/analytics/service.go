package analytics

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agritrack/agritrack/internal/shared"
)

const (
	recentCropsLimit = 10
	topFarmsLimit    = 10
)

// Service computes owner-scoped read models, fanning constituent queries
// out concurrently and caching assembled reports.
type Service struct {
	repo  Repository
	cache *Cache
	now   func() time.Time
}

// NewService wires a Repository with a Cache helper.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

var titleCaser = cases.Title(language.English)

func (s *Service) filter(caller shared.Identity, timeframe string, farmID *int64) (Filter, string) {
	token, since := ResolveTimeframe(timeframe, s.now())
	f := Filter{Since: since, FarmID: farmID}
	if !caller.IsAdmin() {
		f.OwnerID = &caller.UserID
	}
	return f, token
}

// Dashboard assembles the landing-page read model.
func (s *Service) Dashboard(ctx context.Context, caller shared.Identity, timeframe string) (Dashboard, error) {
	f, token := s.filter(caller, timeframe, nil)
	// Counts and the status breakdown span the owner's whole history.
	lifetime := f
	lifetime.Since = time.Time{}

	loader := func(ctx context.Context) (any, error) {
		var d Dashboard
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			d.Summary.FarmCount, d.Summary.TotalFarmArea, err = s.repo.FarmSummary(gctx, lifetime)
			return err
		})
		g.Go(func() error {
			var err error
			d.Summary.CropCount, d.Summary.ActiveCropCount, err = s.repo.CropCounts(gctx, lifetime)
			return err
		})
		g.Go(func() error {
			var err error
			d.StatusDistribution, err = s.repo.StatusDistribution(gctx, lifetime)
			return err
		})
		g.Go(func() error {
			var err error
			d.RecentCrops, err = s.repo.RecentCrops(gctx, f, recentCropsLimit)
			return err
		})
		g.Go(func() error {
			var err error
			d.MonthlyPlantings, err = s.repo.MonthlyPlantings(gctx, f)
			return err
		})
		if err := g.Wait(); err != nil {
			return Dashboard{}, err
		}
		return d, nil
	}

	var d Dashboard
	if err := s.cached(ctx, &d, loader, "analytics", "dashboard", ownerToken(f.OwnerID), token); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

// Crops assembles the crop composition report.
func (s *Service) Crops(ctx context.Context, caller shared.Identity, timeframe string, farmID *int64) (CropReport, error) {
	f, token := s.filter(caller, timeframe, farmID)

	loader := func(ctx context.Context) (any, error) {
		var rep CropReport
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			types, err := s.repo.TypeDistribution(gctx, f)
			if err != nil {
				return err
			}
			for i := range types {
				types[i].Name = titleCaser.String(types[i].Name)
			}
			rep.TypeDistribution = types
			return nil
		})
		g.Go(func() error {
			var err error
			rep.GrowthStages, err = s.repo.GrowthStageDistribution(gctx, f)
			return err
		})
		g.Go(func() error {
			var err error
			rep.HealthStatuses, err = s.repo.HealthDistribution(gctx, f)
			return err
		})
		g.Go(func() error {
			var err error
			rep.CycleDuration, err = s.repo.CycleDuration(gctx, f)
			return err
		})
		if err := g.Wait(); err != nil {
			return CropReport{}, err
		}
		return rep, nil
	}

	var rep CropReport
	if err := s.cached(ctx, &rep, loader, "analytics", "crops", ownerToken(f.OwnerID), farmToken(f.FarmID), token); err != nil {
		return CropReport{}, err
	}
	return rep, nil
}

// Financial assembles the expense and profit report.
func (s *Service) Financial(ctx context.Context, caller shared.Identity, timeframe string, farmID *int64) (FinancialReport, error) {
	f, token := s.filter(caller, timeframe, farmID)

	loader := func(ctx context.Context) (any, error) {
		var rep FinancialReport
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			rep.ExpensesByCategory, err = s.repo.ExpensesByCategory(gctx, f)
			return err
		})
		g.Go(func() error {
			var err error
			rep.MonthlyFinancials, err = s.repo.MonthlyFinancials(gctx, f)
			return err
		})
		g.Go(func() error {
			var err error
			rep.ProfitAnalysis, err = s.repo.ProfitAnalysis(gctx, f)
			return err
		})
		if err := g.Wait(); err != nil {
			return FinancialReport{}, err
		}
		return rep, nil
	}

	var rep FinancialReport
	if err := s.cached(ctx, &rep, loader, "analytics", "financial", ownerToken(f.OwnerID), farmToken(f.FarmID), token); err != nil {
		return FinancialReport{}, err
	}
	return rep, nil
}

// Yield assembles the harvest output report.
func (s *Service) Yield(ctx context.Context, caller shared.Identity, timeframe string, farmID *int64, cropType string) (YieldReport, error) {
	f, token := s.filter(caller, timeframe, farmID)
	f.CropName = strings.TrimSpace(cropType)

	loader := func(ctx context.Context) (any, error) {
		var rep YieldReport
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			yields, err := s.repo.YieldByCropType(gctx, f)
			if err != nil {
				return err
			}
			for i := range yields {
				yields[i].Name = titleCaser.String(yields[i].Name)
				yields[i].Efficiency = yieldEfficiency(yields[i].AverageActual, yields[i].AverageExpected)
			}
			rep.ByCropType = yields
			return nil
		})
		g.Go(func() error {
			var err error
			rep.MonthlyTrend, err = s.repo.MonthlyYieldTrend(gctx, f)
			return err
		})
		g.Go(func() error {
			var err error
			rep.TopFarms, err = s.repo.TopFarmsByYield(gctx, f, topFarmsLimit)
			return err
		})
		if err := g.Wait(); err != nil {
			return YieldReport{}, err
		}
		return rep, nil
	}

	var rep YieldReport
	if err := s.cached(ctx, &rep, loader, "analytics", "yield", ownerToken(f.OwnerID), farmToken(f.FarmID), cropToken(f.CropName), token); err != nil {
		return YieldReport{}, err
	}
	return rep, nil
}

// Invalidate drops every cached report. Called after bulk mutations.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) cached(ctx context.Context, dest any, loader func(context.Context) (any, error), keyParts ...string) error {
	key, err := s.cache.BuildKey(ctx, keyParts...)
	if err != nil {
		return err
	}
	return s.cache.FetchJSON(ctx, key, dest, loader)
}

// yieldEfficiency reports actual against expected yield as a percentage,
// with zero as the sentinel when no expected yield was recorded.
func yieldEfficiency(avgActual, avgExpected float64) float64 {
	if avgExpected == 0 {
		return 0
	}
	return avgActual / avgExpected * 100
}
